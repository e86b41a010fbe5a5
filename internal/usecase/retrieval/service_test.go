package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/rahelarnold98/xreco-nmr/internal/domain"
	domfeature "github.com/rahelarnold98/xreco-nmr/internal/domain/feature"
	dommedia "github.com/rahelarnold98/xreco-nmr/internal/domain/media"
	"github.com/rahelarnold98/xreco-nmr/internal/domain/search/mode"
	"github.com/rahelarnold98/xreco-nmr/internal/domain/search/request"
	"github.com/rahelarnold98/xreco-nmr/internal/domain/search/result"
)

// --- Mocks ---

type mockMedia struct {
	res dommedia.Resource
	err error
}

func (m *mockMedia) Get(_ context.Context, _ string) (dommedia.Resource, error) {
	return m.res, m.err
}

type mockRetriever struct {
	values    domfeature.Values
	valuesErr error
	lastMode  mode.Mode

	textCount    int
	textCountErr error
	textItems    []result.Item
	textErr      error
	textCalled   bool

	count      int
	countErr   error
	knnItems   []result.Item
	knnErr     error
	knnCalled  bool
	lastVector []float32
	lastWindow request.Window

	ref       []float32
	refErr    error
	lastRefID string
	lastRefT  float64
}

func (m *mockRetriever) Values(_ context.Context, _ string, md mode.Mode, _ string) (domfeature.Values, error) {
	m.lastMode = md
	return m.values, m.valuesErr
}

func (m *mockRetriever) CountText(_ context.Context, _, _ string) (int, error) {
	return m.textCount, m.textCountErr
}

func (m *mockRetriever) SearchText(_ context.Context, _, _ string, w request.Window) ([]result.Item, error) {
	m.textCalled = true
	m.lastWindow = w
	return m.textItems, m.textErr
}

func (m *mockRetriever) Count(_ context.Context, _ string) (int, error) {
	return m.count, m.countErr
}

func (m *mockRetriever) SearchKNN(_ context.Context, _ string, v []float32, w request.Window) ([]result.Item, error) {
	m.knnCalled = true
	m.lastVector = v
	m.lastWindow = w
	return m.knnItems, m.knnErr
}

func (m *mockRetriever) ReferenceVector(_ context.Context, _, id string, t float64) ([]float32, error) {
	m.lastRefID = id
	m.lastRefT = t
	return m.ref, m.refErr
}

type mockExtractor struct {
	vec    []float32
	err    error
	called bool
}

func (m *mockExtractor) Extract(_ context.Context, _ string) ([]float32, error) {
	m.called = true
	return m.vec, m.err
}

func newService(r *mockRetriever, ex Extractor) *Service {
	return New(&mockMedia{}, r,
		Entity{Name: domfeature.EntityLandmark, Mode: mode.Text},
		Entity{Name: domfeature.EntityClip, Mode: mode.Vector, Extractor: ex},
	)
}

func items(ids ...string) []result.Item {
	out := make([]result.Item, len(ids))
	for i, id := range ids {
		out[i] = result.New(id, 1-float64(i)/10, nil)
	}
	return out
}

// --- Tests ---

func TestLookup(t *testing.T) {
	res, _ := dommedia.New("m1", dommedia.Image, "", "", "", "a.jpg")
	svc := New(&mockMedia{res: res}, &mockRetriever{})

	got, err := svc.Lookup(context.Background(), "m1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID() != "m1" {
		t.Errorf("ID = %q", got.ID())
	}
}

func TestLookup_NotFound(t *testing.T) {
	svc := New(&mockMedia{err: domain.NotFound("media resource %q not found", "m9")}, &mockRetriever{})
	_, err := svc.Lookup(context.Background(), "m9")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLookupEntity_ModeFromRegistry(t *testing.T) {
	tests := []struct {
		entity string
		want   mode.Mode
	}{
		{domfeature.EntityLandmark, mode.Text},
		{domfeature.EntityClip, mode.Vector},
	}
	for _, tc := range tests {
		t.Run(tc.entity, func(t *testing.T) {
			r := &mockRetriever{values: domfeature.Values{Entity: tc.entity}}
			if _, err := newService(r, nil).LookupEntity(context.Background(), "m1", tc.entity); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.lastMode != tc.want {
				t.Errorf("mode = %q, want %q", r.lastMode, tc.want)
			}
		})
	}
}

func TestLookupEntity_UnknownEntity(t *testing.T) {
	_, err := newService(&mockRetriever{}, nil).LookupEntity(context.Background(), "m1", "features_asr")
	if !errors.Is(err, domain.ErrBadRequest) {
		t.Errorf("expected ErrBadRequest, got %v", err)
	}
}

func TestFullText_Window(t *testing.T) {
	r := &mockRetriever{textCount: 25, textItems: items("a", "b")}
	page, err := newService(r, nil).FullText(context.Background(), domfeature.EntityLandmark, "tower", 10, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Count() != 25 {
		t.Errorf("Count = %d, want 25", page.Count())
	}
	if len(page.Items()) != 2 {
		t.Errorf("expected 2 items, got %d", len(page.Items()))
	}
	if r.lastWindow.Offset() != 20 || r.lastWindow.Limit() != 10 {
		t.Errorf("window = %d+%d, want 20+10", r.lastWindow.Offset(), r.lastWindow.Limit())
	}
}

func TestFullText_ZeroPageSize(t *testing.T) {
	r := &mockRetriever{textCount: 3}
	page, err := newService(r, nil).FullText(context.Background(), domfeature.EntityLandmark, "tower", 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Count() != 3 || len(page.Items()) != 0 {
		t.Errorf("page = %d/%d, want 3/0", page.Count(), len(page.Items()))
	}
	if r.textCalled {
		t.Error("window query must be skipped for an empty window")
	}
}

func TestFullText_PastEnd(t *testing.T) {
	r := &mockRetriever{textCount: 5}
	page, err := newService(r, nil).FullText(context.Background(), domfeature.EntityLandmark, "tower", 10, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Count() != 5 || len(page.Items()) != 0 {
		t.Errorf("page = %d/%d, want 5/0", page.Count(), len(page.Items()))
	}
	if r.textCalled {
		t.Error("window past the count must not be queried")
	}
}

func TestFullText_BadRequests(t *testing.T) {
	tests := []struct {
		name     string
		entity   string
		text     string
		pageSize int
		page     int
	}{
		{"negative page size", domfeature.EntityLandmark, "x", -1, 0},
		{"negative page", domfeature.EntityLandmark, "x", 10, -1},
		{"blank text", domfeature.EntityLandmark, "   ", 10, 0},
		{"unknown entity", "features_asr", "x", 10, 0},
		{"vector entity without extractor", domfeature.EntityClip, "x", 10, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newService(&mockRetriever{}, nil).FullText(context.Background(), tc.entity, tc.text, tc.pageSize, tc.page)
			if !errors.Is(err, domain.ErrBadRequest) {
				t.Errorf("expected ErrBadRequest, got %v", err)
			}
		})
	}
}

func TestFullText_VectorEntityUsesExtractor(t *testing.T) {
	ex := &mockExtractor{vec: []float32{0.1, 0.2}}
	r := &mockRetriever{count: 100, knnItems: items("m1")}
	page, err := newService(r, ex).FullText(context.Background(), domfeature.EntityClip, "a red car", 5, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ex.called || !r.knnCalled {
		t.Fatal("expected extractor and KNN search")
	}
	if len(r.lastVector) != 2 || r.lastVector[1] != 0.2 {
		t.Errorf("query vector = %v", r.lastVector)
	}
	if page.Count() != 100 || len(page.Items()) != 1 {
		t.Errorf("page = %d/%d", page.Count(), len(page.Items()))
	}
}

func TestFullText_ExtractorFailure(t *testing.T) {
	ex := &mockExtractor{err: domain.Unavailable("text encoder is unavailable", errors.New("dial"))}
	_, err := newService(&mockRetriever{count: 1}, ex).FullText(context.Background(), domfeature.EntityClip, "car", 5, 0)
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestFullText_StoreErrorPropagates(t *testing.T) {
	r := &mockRetriever{textCountErr: domain.Unavailable("store is unavailable", nil)}
	_, err := newService(r, nil).FullText(context.Background(), domfeature.EntityLandmark, "x", 10, 0)
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestSimilarity(t *testing.T) {
	r := &mockRetriever{
		ref:      []float32{1, 0},
		count:    40,
		knnItems: items("m1", "m2", "m3"),
	}
	page, err := newService(r, nil).Similarity(context.Background(), domfeature.EntityClip, "m1", 12.5, 3, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.lastRefID != "m1" || r.lastRefT != 12.5 {
		t.Errorf("reference = %s@%g", r.lastRefID, r.lastRefT)
	}
	if r.lastWindow.Offset() != 3 || r.lastWindow.Limit() != 3 {
		t.Errorf("window = %d+%d, want 3+3", r.lastWindow.Offset(), r.lastWindow.Limit())
	}
	if page.Count() != 40 || len(page.Items()) != 3 {
		t.Errorf("page = %d/%d", page.Count(), len(page.Items()))
	}
	// the reference may rank itself first
	first := page.Items()[0]
	if first.ResourceID() != "m1" {
		t.Errorf("first = %q", first.ResourceID())
	}
}

func TestSimilarity_NoReference(t *testing.T) {
	r := &mockRetriever{refErr: domain.NotFound("no descriptor")}
	_, err := newService(r, nil).Similarity(context.Background(), domfeature.EntityClip, "m1", 3, 10, 0)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if r.knnCalled {
		t.Error("KNN must not run without a reference")
	}
}

func TestSimilarity_BadRequests(t *testing.T) {
	tests := []struct {
		name   string
		entity string
		ts     float64
		size   int
	}{
		{"text entity", domfeature.EntityLandmark, 0, 10},
		{"unknown entity", "features_asr", 0, 10},
		{"negative timestamp", domfeature.EntityClip, -1, 10},
		{"negative page size", domfeature.EntityClip, 0, -5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newService(&mockRetriever{}, nil).Similarity(context.Background(), tc.entity, "m1", tc.ts, tc.size, 0)
			if !errors.Is(err, domain.ErrBadRequest) {
				t.Errorf("expected ErrBadRequest, got %v", err)
			}
		})
	}
}

func TestFilter_NotImplemented(t *testing.T) {
	_, err := newService(&mockRetriever{}, nil).Filter(context.Background(), "type=VIDEO", 10, 0)
	if !errors.Is(err, domain.ErrNotImplemented) {
		t.Errorf("expected ErrNotImplemented, got %v", err)
	}
}
