package retrieval

import (
	"context"
	"fmt"

	"github.com/rahelarnold98/xreco-nmr/internal/domain"
	domfeature "github.com/rahelarnold98/xreco-nmr/internal/domain/feature"
	dommedia "github.com/rahelarnold98/xreco-nmr/internal/domain/media"
	"github.com/rahelarnold98/xreco-nmr/internal/domain/search/mode"
	"github.com/rahelarnold98/xreco-nmr/internal/domain/search/request"
	"github.com/rahelarnold98/xreco-nmr/internal/domain/search/result"
)

// Entity registers a descriptor entity with the engine.
// Extractor is optional and only meaningful for vector entities.
type Entity struct {
	Name      string
	Mode      mode.Mode
	Extractor Extractor
}

// Service answers lookups, full-text and similarity queries.
type Service struct {
	media    MediaReader
	features Retriever
	entities map[string]Entity
}

// New creates a retrieval service over the given entities.
func New(media MediaReader, features Retriever, entities ...Entity) *Service {
	s := &Service{media: media, features: features, entities: make(map[string]Entity, len(entities))}
	for _, e := range entities {
		s.entities[e.Name] = e
	}
	return s
}

// Lookup returns the media resource record.
func (s *Service) Lookup(ctx context.Context, resourceID string) (dommedia.Resource, error) {
	if resourceID == "" {
		return dommedia.Resource{}, domain.BadRequest("media resource id is required")
	}
	r, err := s.media.Get(ctx, resourceID)
	if err != nil {
		return dommedia.Resource{}, fmt.Errorf("lookup %s: %w", resourceID, err)
	}
	return r, nil
}

// LookupEntity returns the labels or vectors one entity holds for a resource.
func (s *Service) LookupEntity(ctx context.Context, resourceID, entity string) (domfeature.Values, error) {
	e, err := s.entity(entity)
	if err != nil {
		return domfeature.Values{}, err
	}
	if resourceID == "" {
		return domfeature.Values{}, domain.BadRequest("media resource id is required")
	}
	v, err := s.features.Values(ctx, e.Name, e.Mode, resourceID)
	if err != nil {
		return domfeature.Values{}, fmt.Errorf("lookup %s of %s: %w", entity, resourceID, err)
	}
	return v, nil
}

// FullText runs a paged full-text query. On a vector entity with an extractor
// the text is encoded and the query runs as a nearest-neighbour search.
func (s *Service) FullText(ctx context.Context, entity, text string, pageSize, page int) (result.Page, error) {
	req, err := request.NewText(entity, text, pageSize, page)
	if err != nil {
		return result.Page{}, domain.BadRequest("%v", err)
	}
	e, err := s.entity(req.Entity())
	if err != nil {
		return result.Page{}, err
	}

	switch e.Mode {
	case mode.Text:
		return s.textPage(ctx, e.Name, req.Query(), req.Window())
	case mode.Vector:
		if e.Extractor == nil {
			return result.Page{}, domain.BadRequest("entity %q does not support text queries", e.Name)
		}
		vec, err := e.Extractor.Extract(ctx, req.Query())
		if err != nil {
			return result.Page{}, fmt.Errorf("encode query for %s: %w", e.Name, err)
		}
		return s.knnPage(ctx, e.Name, vec, req.Window())
	}
	return result.Page{}, domain.BadRequest("entity %q has unsupported mode %q", e.Name, e.Mode)
}

// Similarity ranks descriptors by similarity to the reference segment of
// resourceID that contains timestamp. The reference may appear in its own results.
func (s *Service) Similarity(
	ctx context.Context, entity, resourceID string, timestamp float64, pageSize, page int,
) (result.Page, error) {
	req, err := request.NewSimilarity(entity, resourceID, timestamp, pageSize, page)
	if err != nil {
		return result.Page{}, domain.BadRequest("%v", err)
	}
	e, err := s.entity(req.Entity())
	if err != nil {
		return result.Page{}, err
	}
	if e.Mode != mode.Vector {
		return result.Page{}, domain.BadRequest("entity %q does not support similarity queries", e.Name)
	}

	ref, err := s.features.ReferenceVector(ctx, e.Name, req.ResourceID(), req.Timestamp())
	if err != nil {
		return result.Page{}, fmt.Errorf("reference of %s at %gs: %w", req.ResourceID(), req.Timestamp(), err)
	}
	return s.knnPage(ctx, e.Name, ref, req.Window())
}

// Filter is reserved.
func (s *Service) Filter(context.Context, string, int, int) (result.Page, error) {
	return result.Page{}, domain.NotImplemented("filter retrieval")
}

func (s *Service) entity(name string) (Entity, error) {
	e, ok := s.entities[name]
	if !ok {
		return Entity{}, domain.BadRequest("unknown entity %q", name)
	}
	return e, nil
}

// textPage counts the unbounded match, then reads the window.
func (s *Service) textPage(ctx context.Context, entity, query string, w request.Window) (result.Page, error) {
	count, err := s.features.CountText(ctx, entity, query)
	if err != nil {
		return result.Page{}, fmt.Errorf("count %s: %w", entity, err)
	}
	if w.IsEmpty() || w.Offset() >= count {
		return result.NewPage(count, nil), nil
	}
	items, err := s.features.SearchText(ctx, entity, query, w)
	if err != nil {
		return result.Page{}, fmt.Errorf("search %s: %w", entity, err)
	}
	return result.NewPage(count, items), nil
}

// knnPage ranks every descriptor of the entity, so the count is the entity size.
func (s *Service) knnPage(ctx context.Context, entity string, vec []float32, w request.Window) (result.Page, error) {
	count, err := s.features.Count(ctx, entity)
	if err != nil {
		return result.Page{}, fmt.Errorf("count %s: %w", entity, err)
	}
	if w.IsEmpty() || w.Offset() >= count {
		return result.NewPage(count, nil), nil
	}
	items, err := s.features.SearchKNN(ctx, entity, vec, w)
	if err != nil {
		return result.Page{}, fmt.Errorf("search %s: %w", entity, err)
	}
	return result.NewPage(count, items), nil
}
