package result

import "github.com/rahelarnold98/xreco-nmr/internal/domain/feature"

// Item is a single scored hit.
type Item struct {
	resourceID string
	score      float64
	segment    *feature.Segment
}

// New creates a result item. segment may be nil.
func New(resourceID string, score float64, segment *feature.Segment) Item {
	return Item{resourceID: resourceID, score: score, segment: segment}
}

// ResourceID returns the media resource identifier.
func (r *Item) ResourceID() string { return r.resourceID }

// Score returns the relevance or similarity score.
func (r *Item) Score() float64 { return r.score }

// Segment returns the matching segment or nil.
func (r *Item) Segment() *feature.Segment { return r.segment }

// Page is a window of results together with the unbounded match count.
type Page struct {
	count int
	items []Item
}

// NewPage creates a page.
func NewPage(count int, items []Item) Page {
	if items == nil {
		items = []Item{}
	}
	return Page{count: count, items: items}
}

// Count returns the number of matches before windowing.
func (p *Page) Count() int { return p.count }

// Items returns the windowed hits in rank order.
func (p *Page) Items() []Item { return p.items }
