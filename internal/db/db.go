package db

import (
	"context"
	"time"

	"github.com/rahelarnold98/xreco-nmr/internal/domain/search/filter"
)

// Store is the main database facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	HashStore
	SetStore
	KVStore
	IndexManager
	Searcher
	Transactor
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashStore provides hash-based key-value operations.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetNX(ctx context.Context, key, field, value string) (bool, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HDel(ctx context.Context, key string, fields ...string) error
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// SetStore provides unordered set operations.
type SetStore interface {
	// SAddIfExists adds members to setKey only while guardKey exists, atomically.
	// It reports false when guardKey is absent.
	SAddIfExists(ctx context.Context, guardKey, setKey string, members ...string) (bool, error)
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
	SCard(ctx context.Context, key string) (int64, error)
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher provides search operations over FT indexes.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
	SearchText(ctx context.Context, q *TextQuery) (*SearchResult, error)
	SearchList(ctx context.Context, index string, f filter.Expression, offset, limit int, fields []string) (*SearchResult, error)
	SearchCount(ctx context.Context, index string, f filter.Expression) (int, error)
}

// Transactor opens write transactions.
type Transactor interface {
	Begin() Tx
}

// Tx queues write commands and applies them all-or-nothing on Commit.
// Nothing reaches the store before Commit; Rollback discards the queue.
type Tx interface {
	HDel(key string, fields ...string)
	Del(keys ...string)
	SRem(key string, members ...string)
	Commit(ctx context.Context) error
	Rollback()
}
