// Package embcache caches text-encoder output so repeated semantic queries
// skip the remote model.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/rahelarnold98/xreco-nmr/internal/db"
)

// DefaultTTL bounds how long a cached query vector survives a model swap.
const DefaultTTL = 24 * time.Hour

type extractor interface {
	Extract(ctx context.Context, text string) ([]float32, error)
}

// store is the consumer interface for the vector cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedExtractor wraps a text encoder with a key-value cache keyed by model and text.
type CachedExtractor struct {
	inner      extractor
	store      store
	prefix     string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// Config for New. Zero TTL means DefaultTTL.
type Config struct {
	KeyPrefix  string
	Model      string
	TTL        time.Duration
	CacheTotal *prometheus.CounterVec // label "result": "hit" / "miss"
	Logger     *zap.Logger
}

// New creates a caching decorator around inner.
func New(inner extractor, s store, cfg Config) *CachedExtractor {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedExtractor{
		inner:      inner,
		store:      s,
		prefix:     cfg.KeyPrefix + "clip_cache:" + cfg.Model + ":",
		ttl:        ttl,
		cacheTotal: cfg.CacheTotal,
		logger:     logger,
	}
}

// Extract returns the cached vector for text or asks the inner encoder.
// Cache failures never fail the query.
func (c *CachedExtractor) Extract(ctx context.Context, text string) ([]float32, error) {
	key := c.cacheKey(text)

	if vec, ok := c.get(ctx, key); ok {
		c.inc("hit")
		return vec, nil
	}
	c.inc("miss")

	vec, err := c.inner.Extract(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}

	if err := c.store.SetWithTTL(ctx, key, db.VectorToBytes(vec), c.ttl); err != nil {
		c.logger.Warn("Query vector cache write failed", zap.String("key", key), zap.Error(err))
	}
	return vec, nil
}

func (c *CachedExtractor) get(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Query vector cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	vec, err := db.BytesToVector(data)
	if err != nil || len(vec) == 0 {
		c.logger.Warn("Corrupt query vector in cache", zap.String("key", key), zap.Int("bytes", len(data)))
		return nil, false
	}
	return vec, true
}

func (c *CachedExtractor) inc(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedExtractor) cacheKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return c.prefix + hex.EncodeToString(h[:])
}
