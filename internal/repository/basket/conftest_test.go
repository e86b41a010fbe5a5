package basket

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/rahelarnold98/xreco-nmr/internal/db"
)

// memStore is an in-memory implementation of the consumer interface for tests.
type memStore struct {
	mu        sync.Mutex
	counters  map[string]int64
	hashes    map[string]map[string]string
	sets      map[string]map[string]bool
	commitErr error // returned by Tx.Commit before anything is applied
	scardErr  error
}

func newMemStore() *memStore {
	return &memStore{
		counters: map[string]int64{},
		hashes:   map[string]map[string]string{},
		sets:     map[string]map[string]bool{},
	}
}

func (m *memStore) IncrBy(_ context.Context, key string, val int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[key] += val
	return m.counters[key], nil
}

func (m *memStore) HSet(_ context.Context, key string, fields map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hset(key, fields)
	return nil
}

func (m *memStore) hset(key string, fields map[string]string) {
	h, ok := m.hashes[key]
	if !ok {
		h = map[string]string{}
		m.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
}

func (m *memStore) HSetNX(_ context.Context, key, field, value string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.hashes[key][field]; ok {
		return false, nil
	}
	m.hset(key, map[string]string{field: value})
	return true, nil
}

func (m *memStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]string{}
	for k, v := range m.hashes[key] {
		out[k] = v
	}
	return out, nil
}

func (m *memStore) HDel(_ context.Context, key string, fields ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hdel(key, fields...)
	return nil
}

func (m *memStore) hdel(key string, fields ...string) {
	for _, f := range fields {
		delete(m.hashes[key], f)
	}
	if len(m.hashes[key]) == 0 {
		delete(m.hashes, key)
	}
}

func (m *memStore) del(keys ...string) {
	for _, k := range keys {
		delete(m.hashes, k)
		delete(m.sets, k)
		delete(m.counters, k)
	}
}

func (m *memStore) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, h := m.hashes[key]
	_, s := m.sets[key]
	return h || s, nil
}

func (m *memStore) SAddIfExists(_ context.Context, guardKey, setKey string, members ...string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.hashes[guardKey]; !ok {
		return false, nil
	}
	s, ok := m.sets[setKey]
	if !ok {
		s = map[string]bool{}
		m.sets[setKey] = s
	}
	for _, v := range members {
		s[v] = true
	}
	return true, nil
}

func (m *memStore) SRem(_ context.Context, key string, members ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range members {
		delete(m.sets[key], v)
	}
	if len(m.sets[key]) == 0 {
		delete(m.sets, key)
	}
	return nil
}

func (m *memStore) SMembers(_ context.Context, key string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.sets[key]))
	for v := range m.sets[key] {
		out = append(out, v)
	}
	return out, nil
}

func (m *memStore) SCard(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.scardErr != nil {
		return 0, m.scardErr
	}
	return int64(len(m.sets[key])), nil
}

func (m *memStore) Begin() db.Tx {
	return &memTx{m: m}
}

// memTx queues operations and applies them under one lock on Commit.
type memTx struct {
	m    *memStore
	ops  []func()
	done bool
}

func (t *memTx) HSet(key string, fields map[string]string) {
	t.ops = append(t.ops, func() { t.m.hset(key, fields) })
}

func (t *memTx) HDel(key string, fields ...string) {
	t.ops = append(t.ops, func() { t.m.hdel(key, fields...) })
}

func (t *memTx) Del(keys ...string) {
	t.ops = append(t.ops, func() { t.m.del(keys...) })
}

func (t *memTx) SRem(key string, members ...string) {
	t.ops = append(t.ops, func() {
		for _, v := range members {
			delete(t.m.sets[key], v)
		}
	})
}

func (t *memTx) Commit(context.Context) error {
	if t.done {
		return errors.New("tx finished")
	}
	t.done = true
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.m.commitErr != nil {
		return t.m.commitErr
	}
	for _, op := range t.ops {
		op()
	}
	return nil
}

func (t *memTx) Rollback() {
	t.done = true
	t.ops = nil
}

func (m *memStore) hasKey(key string) bool {
	ok, _ := m.Exists(context.Background(), key)
	return ok
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
