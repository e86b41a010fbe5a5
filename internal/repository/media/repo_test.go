package media

import (
	"context"
	"errors"
	"testing"

	"github.com/rahelarnold98/xreco-nmr/internal/db"
	"github.com/rahelarnold98/xreco-nmr/internal/domain"
	dommedia "github.com/rahelarnold98/xreco-nmr/internal/domain/media"
)

func TestGet_Success(t *testing.T) {
	var gotKey string
	s := &mockStore{hgetAllFn: func(_ context.Context, key string) (map[string]string, error) {
		gotKey = key
		return map[string]string{
			"mediaResourceId": "m1",
			"type":            "0",
			"title":           "Harbour",
			"uri":             "http://cdn/m1.mp4",
			"path":            "videos/m1.mp4",
		}, nil
	}}

	r := New(s, "nmr:")
	res, err := r.Get(context.Background(), "m1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "nmr:media_resources:m1" {
		t.Errorf("key = %q", gotKey)
	}
	if res.Type() != dommedia.Video || res.Title() != "Harbour" || res.Path() != "videos/m1.mp4" {
		t.Errorf("unexpected resource: %+v", res)
	}
}

func TestGet_NotFound(t *testing.T) {
	r := New(&mockStore{}, "nmr:")
	_, err := r.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGet_Unavailable(t *testing.T) {
	s := &mockStore{hgetAllFn: func(context.Context, string) (map[string]string, error) {
		return nil, &db.Error{Op: db.OpHGetAll, Err: db.ErrUnavailable}
	}}
	_, err := New(s, "nmr:").Get(context.Background(), "m1")
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestGet_Corrupt(t *testing.T) {
	tests := []struct {
		name string
		hash map[string]string
	}{
		{"bad type", map[string]string{"mediaResourceId": "m1", "type": "9"}},
		{"id mismatch", map[string]string{"mediaResourceId": "m2", "type": "1"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := &mockStore{hgetAllFn: func(context.Context, string) (map[string]string, error) {
				return tc.hash, nil
			}}
			_, err := New(s, "nmr:").Get(context.Background(), "m1")
			if err == nil {
				t.Fatal("expected error")
			}
			if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrBadRequest) {
				t.Errorf("expected internal error, got %v", err)
			}
		})
	}
}

func TestGet_MissingTypeIsUnknown(t *testing.T) {
	s := &mockStore{hgetAllFn: func(context.Context, string) (map[string]string, error) {
		return map[string]string{"path": "x.bin"}, nil
	}}
	res, err := New(s, "nmr:").Get(context.Background(), "m1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Type() != dommedia.Unknown {
		t.Errorf("Type() = %v", res.Type())
	}
}
