package request

import (
	"fmt"
	"math"
	"strings"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed full-text query length.
	MaxQueryLength = 4096
	// MaxWindowEnd bounds skip+limit; FT.SEARCH rejects windows past MAXSEARCHRESULTS.
	MaxWindowEnd = 10000
)

// Window is a zero-based page cut from an ordered result set.
type Window struct {
	offset int
	limit  int
}

// NewWindow validates paging parameters. limit = pageSize, skip = page*pageSize.
// pageSize 0 is a valid empty window.
func NewWindow(pageSize, page int) (Window, error) {
	if pageSize < 0 {
		return Window{}, fmt.Errorf("page size must not be negative")
	}
	if page < 0 {
		return Window{}, fmt.Errorf("page must not be negative")
	}
	if pageSize > 0 && page > (math.MaxInt-pageSize)/pageSize {
		return Window{}, fmt.Errorf("page %d is out of range", page)
	}
	w := Window{offset: page * pageSize, limit: pageSize}
	if w.End() > MaxWindowEnd {
		return Window{}, fmt.Errorf("page window ends past %d results", MaxWindowEnd)
	}
	return w, nil
}

// Offset returns the number of leading results to skip.
func (w Window) Offset() int { return w.offset }

// Limit returns the page size.
func (w Window) Limit() int { return w.limit }

// End returns the exclusive end of the window.
func (w Window) End() int { return w.offset + w.limit }

// IsEmpty reports whether the window selects nothing.
func (w Window) IsEmpty() bool { return w.limit == 0 }

// Text is a validated full-text query.
type Text struct {
	entity string
	query  string
	window Window
}

// NewText validates and creates a full-text request.
func NewText(entity, query string, pageSize, page int) (Text, error) {
	if entity == "" {
		return Text{}, fmt.Errorf("entity is required")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return Text{}, fmt.Errorf("query is required")
	}
	if len(query) > MaxQueryLength {
		return Text{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	w, err := NewWindow(pageSize, page)
	if err != nil {
		return Text{}, err
	}
	return Text{entity: entity, query: query, window: w}, nil
}

// Entity returns the descriptor entity name.
func (r *Text) Entity() string { return r.entity }

// Query returns the trimmed query text.
func (r *Text) Query() string { return r.query }

// Window returns the page window.
func (r *Text) Window() Window { return r.window }

// Similarity is a validated nearest-neighbour query anchored at a reference segment.
type Similarity struct {
	entity     string
	resourceID string
	timestamp  float64
	window     Window
}

// NewSimilarity validates and creates a similarity request.
func NewSimilarity(entity, resourceID string, timestamp float64, pageSize, page int) (Similarity, error) {
	if entity == "" {
		return Similarity{}, fmt.Errorf("entity is required")
	}
	if resourceID == "" {
		return Similarity{}, fmt.Errorf("media resource id is required")
	}
	if math.IsNaN(timestamp) || math.IsInf(timestamp, 0) || timestamp < 0 {
		return Similarity{}, fmt.Errorf("timestamp must be a non-negative number")
	}
	w, err := NewWindow(pageSize, page)
	if err != nil {
		return Similarity{}, err
	}
	return Similarity{entity: entity, resourceID: resourceID, timestamp: timestamp, window: w}, nil
}

// Entity returns the descriptor entity name.
func (r *Similarity) Entity() string { return r.entity }

// ResourceID returns the reference media resource.
func (r *Similarity) ResourceID() string { return r.resourceID }

// Timestamp returns the reference time in seconds.
func (r *Similarity) Timestamp() float64 { return r.timestamp }

// Window returns the page window.
func (r *Similarity) Window() Window { return r.window }
