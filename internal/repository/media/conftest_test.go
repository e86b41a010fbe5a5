package media

import "context"

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hgetAllFn func(ctx context.Context, key string) (map[string]string, error)
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}
