package ingest

import (
	"context"
	"io"

	doming "github.com/rahelarnold98/xreco-nmr/internal/domain/ingest"
)

// AssetStore persists uploaded files in the asset bucket.
type AssetStore interface {
	PutAsset(ctx context.Context, a doming.Asset, body io.Reader) error
}

// Engine runs ingest pipelines. Status reports StatusUnknown for jobs it does
// not know; Cancel reports false for them.
type Engine interface {
	Start(ctx context.Context, jobID string, p doming.Pipeline, assetIDs []string) error
	Status(ctx context.Context, jobID string) (doming.Status, error)
	Cancel(ctx context.Context, jobID string) (bool, error)
}
