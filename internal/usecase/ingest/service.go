package ingest

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rahelarnold98/xreco-nmr/internal/domain"
	doming "github.com/rahelarnold98/xreco-nmr/internal/domain/ingest"
	"github.com/rahelarnold98/xreco-nmr/internal/logger"
	"github.com/rahelarnold98/xreco-nmr/internal/metrics"
)

// Service uploads assets and drives ingest jobs on the engine.
type Service struct {
	assets AssetStore
	engine Engine
	now    func() time.Time
	newID  func() string
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDs overrides the id generator used for assets and jobs.
func WithIDs(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// New creates an ingest service.
func New(assets AssetStore, engine Engine, opts ...Option) *Service {
	s := &Service{assets: assets, engine: engine, now: time.Now, newID: uuid.NewString}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Upload stores every file in the asset bucket and returns the new asset ids
// in file order. All extensions are validated before the first upload.
func (s *Service) Upload(ctx context.Context, files []doming.File) ([]string, error) {
	types := make([]doming.MediaType, len(files))
	for i, f := range files {
		t, err := doming.MediaTypeOf(f.Name)
		if err != nil {
			return nil, domain.BadRequest("%v", err)
		}
		types[i] = t
	}

	ids := make([]string, 0, len(files))
	for i, f := range files {
		id, err := s.upload(ctx, f, types[i])
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Service) upload(ctx context.Context, f doming.File, t doming.MediaType) (string, error) {
	body, err := f.Open()
	if err != nil {
		return "", domain.Internal("upload of "+f.Name+" failed", err)
	}
	defer body.Close()

	mt, err := mimetype.DetectReader(body)
	if err != nil {
		return "", domain.Internal("upload of "+f.Name+" failed", fmt.Errorf("detect mime type: %w", err))
	}
	if _, err := body.Seek(0, io.SeekStart); err != nil {
		return "", domain.Internal("upload of "+f.Name+" failed", fmt.Errorf("rewind: %w", err))
	}

	a := doming.Asset{
		ID:         s.newID(),
		Filename:   f.Name,
		MediaType:  t,
		MimeType:   mt.String(),
		Size:       f.Size,
		UploadedAt: s.now(),
	}
	if err := s.assets.PutAsset(ctx, a, body); err != nil {
		return "", domain.Internal("upload of "+f.Name+" failed", err)
	}
	metrics.IngestUploadedBytes.Add(float64(f.Size))
	return a.ID, nil
}

// Submit uploads the files and starts the pipeline chosen by the first file.
// The route kind must agree with that pipeline.
func (s *Service) Submit(ctx context.Context, kind string, files []doming.File) (doming.Job, error) {
	k, err := doming.ParseKind(kind)
	if err != nil {
		return doming.Job{}, domain.BadRequest("%v", err)
	}
	if len(files) == 0 {
		return doming.Job{}, domain.BadRequest("no files to ingest")
	}
	p, err := doming.ChoosePipeline(files[0].Name)
	if err != nil {
		return doming.Job{}, domain.BadRequest("%v", err)
	}
	if p != k.Pipeline() {
		return doming.Job{}, domain.BadRequest("file %q does not match %s ingest", files[0].Name, k)
	}

	job, err := s.submit(ctx, p, files)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.IngestSubmissionsTotal.WithLabelValues(string(p), status).Inc()
	return job, err
}

func (s *Service) submit(ctx context.Context, p doming.Pipeline, files []doming.File) (doming.Job, error) {
	log := logger.FromContext(ctx)

	assetIDs, err := s.Upload(ctx, files)
	if err != nil {
		return doming.Job{}, err
	}

	jobID := s.newID()
	if err := s.engine.Start(ctx, jobID, p, assetIDs); err != nil {
		log.Error("Ingest job not started",
			zap.String("pipeline", string(p)),
			zap.Strings("asset_ids", assetIDs),
			zap.Error(err),
		)
		return doming.Job{}, fmt.Errorf("start %s pipeline: %w", p, err)
	}

	log.Info("Ingest job started",
		zap.String("job_id", jobID),
		zap.String("pipeline", string(p)),
		zap.Int("assets", len(assetIDs)),
	)
	return doming.Job{ID: jobID, AssetIDs: assetIDs, SubmittedAt: s.now()}, nil
}

// Status reports the engine state of a job. Unknown jobs are StatusUnknown, not an error.
func (s *Service) Status(ctx context.Context, jobID string) (doming.JobStatus, error) {
	id, err := parseJobID(jobID)
	if err != nil {
		return doming.JobStatus{}, err
	}
	st, err := s.engine.Status(ctx, id)
	if err != nil {
		return doming.JobStatus{}, fmt.Errorf("status of job %s: %w", id, err)
	}
	return doming.JobStatus{ID: id, Status: st, Timestamp: s.now()}, nil
}

// Cancel asks the engine to abort a job. It reports false when the engine does
// not know the job. Uploaded assets are left in place.
func (s *Service) Cancel(ctx context.Context, jobID string) (bool, error) {
	id, err := parseJobID(jobID)
	if err != nil {
		return false, err
	}
	ok, err := s.engine.Cancel(ctx, id)
	if err != nil {
		return false, fmt.Errorf("cancel job %s: %w", id, err)
	}
	if ok {
		logger.FromContext(ctx).Info("Ingest job cancelled", zap.String("job_id", id))
	}
	return ok, nil
}

func parseJobID(raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", &domain.Error{Kind: domain.ErrBadRequest, Description: "invalid job id " + raw, Err: err}
	}
	return id.String(), nil
}
