package chi

import (
	"context"

	dombasket "github.com/rahelarnold98/xreco-nmr/internal/domain/basket"
	domfeature "github.com/rahelarnold98/xreco-nmr/internal/domain/feature"
	doming "github.com/rahelarnold98/xreco-nmr/internal/domain/ingest"
	dommedia "github.com/rahelarnold98/xreco-nmr/internal/domain/media"
	"github.com/rahelarnold98/xreco-nmr/internal/domain/search/result"
	healthuc "github.com/rahelarnold98/xreco-nmr/internal/usecase/health"
	resourceuc "github.com/rahelarnold98/xreco-nmr/internal/usecase/resource"
)

// BasketService is the basket surface the handlers use.
type BasketService interface {
	Create(ctx context.Context, name string) (dombasket.Basket, error)
	Delete(ctx context.Context, id int64) error
	AddElement(ctx context.Context, id int64, resourceID string) error
	DropElement(ctx context.Context, id int64, resourceID string) error
	ListElements(ctx context.Context, id int64) ([]string, error)
	ListAll(ctx context.Context) ([]dombasket.Preview, error)
	ListByUser(ctx context.Context, userID string) ([]dombasket.Preview, error)
}

// RetrievalService answers lookups and paged queries.
type RetrievalService interface {
	Lookup(ctx context.Context, resourceID string) (dommedia.Resource, error)
	LookupEntity(ctx context.Context, resourceID, entity string) (domfeature.Values, error)
	FullText(ctx context.Context, entity, text string, pageSize, page int) (result.Page, error)
	Similarity(ctx context.Context, entity, resourceID string, timestamp float64, pageSize, page int) (result.Page, error)
	Filter(ctx context.Context, condition string, pageSize, page int) (result.Page, error)
}

// ResourceService serves media files and thumbnails.
type ResourceService interface {
	Metadata(ctx context.Context, id string) (dommedia.Resource, error)
	Resolve(ctx context.Context, id string) (resourceuc.Location, error)
	Thumbnail(ctx context.Context, id string, timestamp *int64) ([]byte, error)
	RepresentativeFrame(ctx context.Context, id string, timestamp float64) (float64, error)
}

// IngestService submits and tracks ingest jobs.
type IngestService interface {
	Submit(ctx context.Context, kind string, files []doming.File) (doming.Job, error)
	Status(ctx context.Context, jobID string) (doming.JobStatus, error)
	Cancel(ctx context.Context, jobID string) (bool, error)
}

// HealthService aggregates dependency checks.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}
