package feature

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rahelarnold98/xreco-nmr/internal/db"
	"github.com/rahelarnold98/xreco-nmr/internal/domain"
	domfeature "github.com/rahelarnold98/xreco-nmr/internal/domain/feature"
	"github.com/rahelarnold98/xreco-nmr/internal/domain/search/filter"
	"github.com/rahelarnold98/xreco-nmr/internal/domain/search/mode"
	"github.com/rahelarnold98/xreco-nmr/internal/domain/search/request"
	"github.com/rahelarnold98/xreco-nmr/internal/domain/search/result"
	"github.com/rahelarnold98/xreco-nmr/internal/repository/storeerr"
)

// maxDescriptorsPerResource caps the rows read for one resource.
const maxDescriptorsPerResource = request.MaxWindowEnd

// referenceCandidates is how many containing segments are compared by rep distance.
const referenceCandidates = 16

var itemFields = []string{fieldResourceID, fieldStart, fieldEnd, fieldRep}

// store is the consumer interface for descriptor queries (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SearchList(ctx context.Context, index string, f filter.Expression, offset, limit int, fields []string) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index string, f filter.Expression) (int, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo implements descriptor reads for the retrieval engine.
type Repo struct {
	store     store
	prefix    string
	hnsw      HNSWConfig
	distances map[string]db.DistanceMetric
}

// New creates a descriptor repository.
func New(s store, prefix string) *Repo {
	return &Repo{
		store:     s,
		prefix:    prefix,
		hnsw:      HNSWConfig{M: 16, EFConstruct: 200},
		distances: make(map[string]db.DistanceMetric),
	}
}

// WithSchemas records the distance metric of each vector entity so KNN
// scores are computed the way the index measures distance.
func (r *Repo) WithSchemas(schemas ...Schema) *Repo {
	for _, s := range schemas {
		if s.Mode == mode.Vector {
			r.distances[s.Entity] = s.Distance
		}
	}
	return r
}

// WithHNSW configures HNSW index parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// EnsureIndex creates the entity index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context, s Schema) error {
	def, err := r.buildIndex(s)
	if err != nil {
		return err
	}
	exists, err := r.store.IndexExists(ctx, def.Name)
	if err != nil {
		return storeerr.Map("check index "+def.Name, err)
	}
	if exists {
		return nil
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return storeerr.Map("create index "+def.Name, err)
	}
	return nil
}

// Values returns the labels or vectors of an entity for one resource.
// Labels are de-duplicated in first-seen order.
func (r *Repo) Values(ctx context.Context, entity string, m mode.Mode, resourceID string) (domfeature.Values, error) {
	f, err := resourceFilter(resourceID)
	if err != nil {
		return domfeature.Values{}, domain.BadRequest("%v", err)
	}

	field := fieldLabel
	if m == mode.Vector {
		field = fieldFeature
	}
	sr, err := r.store.SearchList(ctx, r.indexName(entity), f, 0, maxDescriptorsPerResource, []string{field})
	if err != nil {
		return domfeature.Values{}, storeerr.Map(fmt.Sprintf("lookup %s of %s", entity, resourceID), err)
	}
	if len(sr.Entries) == 0 {
		return domfeature.Values{}, domain.NotFound("no %s descriptors for media resource %q", entity, resourceID)
	}

	out := domfeature.Values{Entity: entity}
	if m == mode.Vector {
		out.Vectors = make([][]float32, 0, len(sr.Entries))
		for _, e := range sr.Entries {
			v, err := vectorFromFields(e.Fields)
			if err != nil {
				return domfeature.Values{}, domain.Internal(fmt.Sprintf("decode %s vector of %s", entity, resourceID), err)
			}
			out.Vectors = append(out.Vectors, v)
		}
		return out, nil
	}

	seen := make(map[string]bool, len(sr.Entries))
	for _, e := range sr.Entries {
		label := e.Fields[fieldLabel]
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		out.Labels = append(out.Labels, label)
	}
	return out, nil
}

// CountText returns the number of descriptors matching a full-text query.
func (r *Repo) CountText(ctx context.Context, entity, query string) (int, error) {
	sr, err := r.store.SearchText(ctx, &db.TextQuery{
		IndexName: r.indexName(entity),
		Field:     fieldLabel,
		Query:     query,
		Limit:     0,
	})
	if err != nil {
		return 0, storeerr.Map("count "+entity, err)
	}
	return sr.Total, nil
}

// SearchText returns a window of full-text hits ordered by descending score.
func (r *Repo) SearchText(ctx context.Context, entity, query string, w request.Window) ([]result.Item, error) {
	sr, err := r.store.SearchText(ctx, &db.TextQuery{
		IndexName:    r.indexName(entity),
		Field:        fieldLabel,
		Query:        query,
		Offset:       w.Offset(),
		Limit:        w.Limit(),
		ReturnFields: itemFields,
	})
	if err != nil {
		return nil, storeerr.Map("search "+entity, err)
	}
	return itemsFromResult(sr), nil
}

// Count returns the number of descriptors of an entity.
func (r *Repo) Count(ctx context.Context, entity string) (int, error) {
	n, err := r.store.SearchCount(ctx, r.indexName(entity), filter.Expression{})
	if err != nil {
		return 0, storeerr.Map("count "+entity, err)
	}
	return n, nil
}

// SearchKNN returns a window of nearest neighbours ordered by descending similarity.
func (r *Repo) SearchKNN(ctx context.Context, entity string, vector []float32, w request.Window) ([]result.Item, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.indexName(entity),
		Field:        vectorAlias,
		Vector:       vector,
		K:            w.End(),
		Offset:       w.Offset(),
		Limit:        w.Limit(),
		ReturnFields: itemFields,
		Distance:     r.distances[entity],
	})
	if err != nil {
		return nil, storeerr.Map("similarity "+entity, err)
	}
	return itemsFromResult(sr), nil
}

// ReferenceVector fetches the vector of resourceID at time t. A segment
// containing t wins, the one whose representative time is nearest to t
// first; otherwise a whole-resource descriptor matches any t.
func (r *Repo) ReferenceVector(ctx context.Context, entity, resourceID string, t float64) ([]float32, error) {
	op := fmt.Sprintf("reference %s of %s", entity, resourceID)
	fields := []string{fieldFeature, fieldStart, fieldEnd, fieldRep}

	f, err := segmentFilter(resourceID, t)
	if err != nil {
		return nil, domain.BadRequest("%v", err)
	}
	sr, err := r.store.SearchList(ctx, r.indexName(entity), f, 0, referenceCandidates, fields)
	if err != nil {
		return nil, storeerr.Map(op, err)
	}
	if best := nearestRep(sr.Entries, t); best != nil {
		return r.decodeReference(op, best)
	}

	all, err := resourceFilter(resourceID)
	if err != nil {
		return nil, domain.BadRequest("%v", err)
	}
	sr, err = r.store.SearchList(ctx, r.indexName(entity), all, 0, maxDescriptorsPerResource, fields)
	if err != nil {
		return nil, storeerr.Map(op, err)
	}
	for i := range sr.Entries {
		if segmentFromFields(sr.Entries[i].Fields) == nil {
			return r.decodeReference(op, &sr.Entries[i])
		}
	}
	return nil, domain.NotFound("no %s descriptor of media resource %q at %gs", entity, resourceID, t)
}

// RepresentativeFrame returns the representative time of the segment of
// resourceID that contains t. Overlapping segments resolve to the rep nearest t.
func (r *Repo) RepresentativeFrame(ctx context.Context, entity, resourceID string, t float64) (float64, error) {
	f, err := segmentFilter(resourceID, t)
	if err != nil {
		return 0, domain.BadRequest("%v", err)
	}
	sr, err := r.store.SearchList(ctx, r.indexName(entity), f, 0, referenceCandidates, []string{fieldStart, fieldEnd, fieldRep})
	if err != nil {
		return 0, storeerr.Map(fmt.Sprintf("representative frame of %s", resourceID), err)
	}
	best := nearestRep(sr.Entries, t)
	if best == nil {
		return 0, domain.NotFound("media resource %q has no segment at %gs", resourceID, t)
	}
	return segmentFromFields(best.Fields).Rep(), nil
}

func (r *Repo) decodeReference(op string, e *db.SearchEntry) ([]float32, error) {
	v, err := vectorFromFields(e.Fields)
	if err != nil || len(v) == 0 {
		if err == nil {
			err = errors.New("empty vector")
		}
		return nil, domain.Internal(op, err)
	}
	return v, nil
}

func nearestRep(entries []db.SearchEntry, t float64) *db.SearchEntry {
	var best *db.SearchEntry
	bestDist := math.Inf(1)
	for i := range entries {
		seg := segmentFromFields(entries[i].Fields)
		if seg == nil || !seg.Contains(t) {
			continue
		}
		if d := math.Abs(seg.Rep() - t); d < bestDist {
			best, bestDist = &entries[i], d
		}
	}
	return best
}

func resourceFilter(resourceID string) (filter.Expression, error) {
	c, err := filter.NewMatch(fieldResourceID, resourceID)
	if err != nil {
		return filter.Expression{}, err
	}
	return filter.And(c)
}

func segmentFilter(resourceID string, t float64) (filter.Expression, error) {
	id, err := filter.NewMatch(fieldResourceID, resourceID)
	if err != nil {
		return filter.Expression{}, err
	}
	start, err := filter.NewRange(fieldStart, filter.AtMost(t))
	if err != nil {
		return filter.Expression{}, err
	}
	end, err := filter.NewRange(fieldEnd, filter.AtLeast(t))
	if err != nil {
		return filter.Expression{}, err
	}
	return filter.And(id, start, end)
}
