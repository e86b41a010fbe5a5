package resource

import (
	"context"
	"image"
	"time"

	dommedia "github.com/rahelarnold98/xreco-nmr/internal/domain/media"
)

// MediaReader reads media resource records.
type MediaReader interface {
	Get(ctx context.Context, id string) (dommedia.Resource, error)
}

// SegmentReader finds the segment of a resource that contains a time.
type SegmentReader interface {
	RepresentativeFrame(ctx context.Context, entity, resourceID string, t float64) (float64, error)
}

// ThumbnailCache stores rendered previews by key.
type ThumbnailCache interface {
	Get(key string) ([]byte, bool, error)
	PutIfAbsent(key string, data []byte) ([]byte, error)
}

// FrameGrabber decodes one video frame.
type FrameGrabber interface {
	Grab(ctx context.Context, videoPath string, at time.Duration) (image.Image, error)
}
