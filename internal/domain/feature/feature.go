// Package feature describes descriptors derived from media resources.
package feature

import (
	"fmt"
	"math"
)

// Known descriptor entities.
const (
	// EntityLandmark holds landmark labels, queried by full text.
	EntityLandmark = "features_landmark"
	// EntityClip holds CLIP embeddings, queried by nearest neighbour.
	EntityClip = "features_clip"
)

// Segment is the temporal sub-range of a resource a descriptor describes, in seconds.
type Segment struct {
	start float64
	end   float64
	rep   float64
}

// NewSegment validates and creates a Segment.
func NewSegment(start, end, rep float64) (Segment, error) {
	for _, v := range [...]float64{start, end, rep} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Segment{}, fmt.Errorf("segment bounds must be finite")
		}
	}
	if start > end {
		return Segment{}, fmt.Errorf("segment start %g is after end %g", start, end)
	}
	return Segment{start: start, end: end, rep: rep}, nil
}

// Start returns the segment start.
func (s Segment) Start() float64 { return s.start }

// End returns the segment end.
func (s Segment) End() float64 { return s.end }

// Rep returns the representative time.
func (s Segment) Rep() float64 { return s.rep }

// Contains reports whether t lies within [start, end].
func (s Segment) Contains(t float64) bool { return s.start <= t && t <= s.end }

// Descriptor is a label or a vector attached to a media resource or one of its segments.
type Descriptor struct {
	resourceID string
	label      string
	vector     []float32
	segment    *Segment
}

// NewLabel creates a label descriptor. segment may be nil.
func NewLabel(resourceID, label string, segment *Segment) (Descriptor, error) {
	if resourceID == "" {
		return Descriptor{}, fmt.Errorf("media resource id is required")
	}
	if label == "" {
		return Descriptor{}, fmt.Errorf("label is required")
	}
	return Descriptor{resourceID: resourceID, label: label, segment: segment}, nil
}

// NewVector creates a vector descriptor. segment may be nil.
func NewVector(resourceID string, vector []float32, segment *Segment) (Descriptor, error) {
	if resourceID == "" {
		return Descriptor{}, fmt.Errorf("media resource id is required")
	}
	if len(vector) == 0 {
		return Descriptor{}, fmt.Errorf("vector is required")
	}
	return Descriptor{resourceID: resourceID, vector: vector, segment: segment}, nil
}

// ResourceID returns the owning media resource.
func (d *Descriptor) ResourceID() string { return d.resourceID }

// Label returns the label (empty for vector descriptors).
func (d *Descriptor) Label() string { return d.label }

// Vector returns the feature vector (nil for label descriptors).
func (d *Descriptor) Vector() []float32 { return d.vector }

// Segment returns the segment or nil for whole-resource descriptors.
func (d *Descriptor) Segment() *Segment { return d.segment }

// IsSegment reports whether start, end and rep are all present.
func (d *Descriptor) IsSegment() bool { return d.segment != nil }

// Values are the descriptor values of one entity for one resource.
// Exactly one of Labels and Vectors is set.
type Values struct {
	Entity  string      `json:"entity"`
	Labels  []string    `json:"labels,omitempty"`
	Vectors [][]float32 `json:"vectors,omitempty"`
}
