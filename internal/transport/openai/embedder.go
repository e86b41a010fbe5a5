// Package openai encodes query text into CLIP vectors through an
// OpenAI-compatible embeddings endpoint.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/rahelarnold98/xreco-nmr/internal/domain"
	"github.com/rahelarnold98/xreco-nmr/internal/metrics"
)

// Extractor is a text → vector encoder for semantic queries.
type Extractor struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	logger     *zap.Logger
}

// Config holds the text encoder settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int // expected vector length, 0 disables the check
	Timeout    time.Duration
	Logger     *zap.Logger
}

// NewExtractor creates an encoder client.
func NewExtractor(cfg *Config) *Extractor {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
		logger:     log,
	}
}

// Extract encodes text into one query vector.
func (e *Extractor) Extract(ctx context.Context, text string) ([]float32, error) {
	model := string(e.model)
	start := time.Now()

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	})
	if err != nil {
		metrics.ExtractorRequestsTotal.WithLabelValues(model, "error").Inc()
		e.logger.Warn("text encoder request failed", zap.String("model", model), zap.Error(err))
		return nil, classify(err)
	}
	metrics.ExtractorRequestDuration.WithLabelValues(model).Observe(time.Since(start).Seconds())

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		metrics.ExtractorRequestsTotal.WithLabelValues(model, "empty").Inc()
		return nil, domain.Internal("text encoder failed", errors.New("empty embedding response"))
	}
	vec := resp.Data[0].Embedding
	if e.dimensions > 0 && len(vec) != e.dimensions {
		metrics.ExtractorRequestsTotal.WithLabelValues(model, "error").Inc()
		return nil, domain.Internal("text encoder failed",
			fmt.Errorf("vector has %d dimensions, want %d", len(vec), e.dimensions))
	}

	metrics.ExtractorRequestsTotal.WithLabelValues(model, "success").Inc()
	return vec, nil
}

// Check verifies the encoder answers ListModels.
func (e *Extractor) Check(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return classify(err)
	}
	return nil
}

// classify separates an unreachable encoder from one that answered with an error.
func classify(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		if reqErr.HTTPStatusCode >= 500 {
			return domain.Unavailable("text encoder is unavailable",
				fmt.Errorf("status %d: %s", reqErr.HTTPStatusCode, detail))
		}
		return domain.Internal("text encoder failed", fmt.Errorf("status %d: %s", reqErr.HTTPStatusCode, detail))
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode >= 500 {
			return domain.Unavailable("text encoder is unavailable",
				fmt.Errorf("status %d: %s", apiErr.HTTPStatusCode, apiErr.Message))
		}
		return domain.Internal("text encoder failed", fmt.Errorf("status %d: %s", apiErr.HTTPStatusCode, apiErr.Message))
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.Unavailable("text encoder is unavailable", err)
	}
	return domain.Internal("text encoder failed", err)
}

// extractDetail reads the "detail" field of a FastAPI-style error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
