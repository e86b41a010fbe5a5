package resource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/rahelarnold98/xreco-nmr/internal/domain"
	dommedia "github.com/rahelarnold98/xreco-nmr/internal/domain/media"
	"github.com/rahelarnold98/xreco-nmr/internal/imaging"
	"github.com/rahelarnold98/xreco-nmr/internal/logger"
	"github.com/rahelarnold98/xreco-nmr/internal/metrics"
	"github.com/rahelarnold98/xreco-nmr/internal/repository/thumbnail"
)

// Location is where a media resource's file lives on disk.
type Location struct {
	Path string
	Type dommedia.Type
}

// Config tunes the resolver.
type Config struct {
	Root          string // asset root that record paths are relative to
	ThumbnailSize int    // bounding box edge in pixels
	JPEGQuality   int
	SegmentEntity string // descriptor entity whose segments carry representative frames
}

// Service resolves media files and renders cached thumbnails.
type Service struct {
	media    MediaReader
	segments SegmentReader
	cache    ThumbnailCache
	grabber  FrameGrabber
	cfg      Config
	group    singleflight.Group
}

// New creates a resource service.
func New(media MediaReader, segments SegmentReader, cache ThumbnailCache, grabber FrameGrabber, cfg Config) *Service {
	return &Service{media: media, segments: segments, cache: cache, grabber: grabber, cfg: cfg}
}

// Metadata returns the media resource record.
func (s *Service) Metadata(ctx context.Context, id string) (dommedia.Resource, error) {
	r, err := s.media.Get(ctx, id)
	if err != nil {
		return dommedia.Resource{}, fmt.Errorf("metadata of %s: %w", id, err)
	}
	return r, nil
}

// RepresentativeFrame returns the representative time, in seconds, of the
// segment of id that contains timestamp.
func (s *Service) RepresentativeFrame(ctx context.Context, id string, timestamp float64) (float64, error) {
	if math.IsNaN(timestamp) || math.IsInf(timestamp, 0) || timestamp < 0 {
		return 0, domain.BadRequest("invalid timestamp %v", timestamp)
	}
	rep, err := s.segments.RepresentativeFrame(ctx, s.cfg.SegmentEntity, id, timestamp)
	if err != nil {
		return 0, fmt.Errorf("representative frame of %s: %w", id, err)
	}
	return rep, nil
}

// Resolve maps a media resource to its file under the asset root.
func (s *Service) Resolve(ctx context.Context, id string) (Location, error) {
	r, err := s.media.Get(ctx, id)
	if err != nil {
		return Location{}, fmt.Errorf("resolve %s: %w", id, err)
	}

	rel := filepath.FromSlash(r.Path())
	if rel == "" || !filepath.IsLocal(rel) {
		return Location{}, domain.BadRequest("media resource %s has an invalid path", id)
	}
	p := filepath.Join(s.cfg.Root, rel)

	fi, err := os.Stat(p)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return Location{}, domain.NotFound("could not find file for media resource %s", id)
	case err != nil:
		return Location{}, domain.Internal("stat file of "+id, err)
	case fi.IsDir():
		return Location{}, domain.NotFound("could not find file for media resource %s", id)
	}
	return Location{Path: p, Type: r.Type()}, nil
}

// Thumbnail returns the JPEG preview of a resource. timestamp is in seconds
// and required for videos; nil selects the cache slot of timestamp 0.
func (s *Service) Thumbnail(ctx context.Context, id string, timestamp *int64) ([]byte, error) {
	var ts int64
	if timestamp != nil {
		if *timestamp < 0 {
			return nil, domain.BadRequest("timestamp must not be negative")
		}
		ts = *timestamp
	}
	key, err := thumbnail.Key(id, ts)
	if err != nil {
		return nil, domain.BadRequest("%v", err)
	}

	b, ok, err := s.cache.Get(key)
	if err != nil {
		return nil, domain.Internal("read thumbnail "+key, err)
	}
	if ok {
		metrics.ThumbnailCacheTotal.WithLabelValues("hit").Inc()
		return b, nil
	}
	metrics.ThumbnailCacheTotal.WithLabelValues("miss").Inc()

	// The render is shared by every caller of key and runs to completion even
	// when the caller that started it goes away. The grabber timeout bounds it.
	renders := s.group.DoChan(key, func() (any, error) {
		return s.render(context.WithoutCancel(ctx), id, key, timestamp)
	})
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("thumbnail %s: %w", key, ctx.Err())
	case res := <-renders:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

func (s *Service) render(ctx context.Context, id, key string, timestamp *int64) ([]byte, error) {
	loc, err := s.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var src image.Image
	switch loc.Type {
	case dommedia.Video:
		if timestamp == nil {
			return nil, domain.BadRequest("a timestamp is required for video previews")
		}
		at := time.Duration(*timestamp) * time.Second
		src, err = s.grabber.Grab(ctx, loc.Path, at)
		if errors.Is(err, imaging.ErrNoFrame) {
			return nil, domain.NotFound("media resource %s has no frame at %ds", id, *timestamp)
		}
	case dommedia.Image:
		src, err = decodeFile(loc.Path)
	default:
		return nil, domain.BadRequest("thumbnails are not supported for media type %s", loc.Type)
	}
	if err != nil {
		return nil, domain.Internal("failed to create thumbnail for "+id, err)
	}

	thumb, err := imaging.Fit(src, s.cfg.ThumbnailSize)
	if err != nil {
		return nil, domain.Internal("failed to create thumbnail for "+id, err)
	}
	var buf bytes.Buffer
	if err := imaging.EncodeJPEG(&buf, thumb, s.cfg.JPEGQuality); err != nil {
		return nil, domain.Internal("failed to create thumbnail for "+id, err)
	}
	metrics.ThumbnailRenderDuration.WithLabelValues(loc.Type.String()).Observe(time.Since(start).Seconds())

	stored, err := s.cache.PutIfAbsent(key, buf.Bytes())
	if err != nil {
		return nil, domain.Internal("store thumbnail "+key, err)
	}
	logger.FromContext(ctx).Debug("Thumbnail rendered",
		zap.String("key", key),
		zap.String("media_type", loc.Type.String()),
		zap.Duration("duration", time.Since(start)),
	)
	return stored, nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	img, _, err := imaging.Decode(f)
	return img, err
}
