package retrieval

import (
	"context"

	domfeature "github.com/rahelarnold98/xreco-nmr/internal/domain/feature"
	dommedia "github.com/rahelarnold98/xreco-nmr/internal/domain/media"
	"github.com/rahelarnold98/xreco-nmr/internal/domain/search/mode"
	"github.com/rahelarnold98/xreco-nmr/internal/domain/search/request"
	"github.com/rahelarnold98/xreco-nmr/internal/domain/search/result"
)

// MediaReader reads media resource records.
type MediaReader interface {
	Get(ctx context.Context, id string) (dommedia.Resource, error)
}

// Retriever reads and ranks the descriptors of registered entities.
type Retriever interface {
	Values(ctx context.Context, entity string, m mode.Mode, resourceID string) (domfeature.Values, error)

	CountText(ctx context.Context, entity, query string) (int, error)
	SearchText(ctx context.Context, entity, query string, w request.Window) ([]result.Item, error)

	Count(ctx context.Context, entity string) (int, error)
	SearchKNN(ctx context.Context, entity string, vector []float32, w request.Window) ([]result.Item, error)
	ReferenceVector(ctx context.Context, entity, resourceID string, t float64) ([]float32, error)
}

// Extractor encodes query text into the vector space of an entity.
type Extractor interface {
	Extract(ctx context.Context, text string) ([]float32, error)
}
