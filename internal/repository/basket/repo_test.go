package basket

import (
	"context"
	"errors"
	"testing"

	"github.com/rahelarnold98/xreco-nmr/internal/db"
	"github.com/rahelarnold98/xreco-nmr/internal/domain"
)

func TestScenario_TripLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	r := New(s, "nmr:")

	b, err := r.Create(ctx, "trip")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.ID() != 1 || b.Name() != "trip" {
		t.Errorf("unexpected basket: %+v", b)
	}

	if err := r.AddElement(ctx, b.ID(), "m1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	elems, err := r.ListElements(ctx, b.ID())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(elems) != 1 || elems[0] != "m1" {
		t.Errorf("elements = %v, want [m1]", elems)
	}

	if err := r.Delete(ctx, b.ID()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := r.ListElements(ctx, b.ID()); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("list after delete: expected ErrNotFound, got %v", err)
	}
	if s.hasKey("nmr:baskets:1:elements") {
		t.Error("elements survived delete")
	}

	// the name is free again
	if _, err := r.Create(ctx, "trip"); err != nil {
		t.Errorf("re-create after delete: %v", err)
	}
}

func TestCreate_DuplicateName(t *testing.T) {
	ctx := context.Background()
	r := New(newMemStore(), "nmr:")
	if _, err := r.Create(ctx, "trip"); err != nil {
		t.Fatal(err)
	}
	_, err := r.Create(ctx, "trip")
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestCreate_EmptyName(t *testing.T) {
	s := newMemStore()
	_, err := New(s, "nmr:").Create(context.Background(), "")
	if !errors.Is(err, domain.ErrBadRequest) {
		t.Errorf("expected ErrBadRequest, got %v", err)
	}
	if s.counters["nmr:baskets:seq"] != 0 {
		t.Error("id allocated for an invalid name")
	}
}

func TestDelete_NotFound(t *testing.T) {
	err := New(newMemStore(), "nmr:").Delete(context.Background(), 42)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete_FailedCommitLeavesEverything(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	r := New(s, "nmr:")

	b, _ := r.Create(ctx, "trip")
	_ = r.AddElement(ctx, b.ID(), "m1")

	s.commitErr = &db.Error{Op: db.OpExec, Err: db.ErrUnavailable}
	err := r.Delete(ctx, b.ID())
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}

	if !s.hasKey("nmr:baskets:" + itoa(b.ID())) {
		t.Error("basket hash removed by failed delete")
	}
	if !s.hasKey("nmr:baskets:" + itoa(b.ID()) + ":elements") {
		t.Error("elements removed by failed delete")
	}
	if _, ok := s.hashes["nmr:baskets:names"]["trip"]; !ok {
		t.Error("name released by failed delete")
	}
}

func TestDelete_Aborted(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	r := New(s, "nmr:")
	b, _ := r.Create(ctx, "trip")

	s.commitErr = &db.Error{Op: db.OpExec, Err: db.ErrTxAborted}
	err := r.Delete(ctx, b.ID())
	if err == nil {
		t.Fatal("expected error")
	}
	for _, k := range []error{domain.ErrNotFound, domain.ErrBadRequest, domain.ErrUnavailable} {
		if errors.Is(err, k) {
			t.Errorf("aborted transaction classified as %v", k)
		}
	}
}

func TestAddElement_UnknownBasket(t *testing.T) {
	err := New(newMemStore(), "nmr:").AddElement(context.Background(), 7, "m1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAddElement_DeletedBasketLeavesNoElements(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	r := New(s, "nmr:")
	b, _ := r.Create(ctx, "trip")
	if err := r.Delete(ctx, b.ID()); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	err := r.AddElement(ctx, b.ID(), "m1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, ok := s.sets[r.elementsKey(b.ID())]; ok {
		t.Error("element set written for a deleted basket")
	}
}

func TestAddElement_Idempotent(t *testing.T) {
	ctx := context.Background()
	r := New(newMemStore(), "nmr:")
	b, _ := r.Create(ctx, "trip")
	_ = r.AddElement(ctx, b.ID(), "m1")
	_ = r.AddElement(ctx, b.ID(), "m1")

	elems, _ := r.ListElements(ctx, b.ID())
	if len(elems) != 1 {
		t.Errorf("elements = %v, want one entry", elems)
	}
}

func TestDropElement_Idempotent(t *testing.T) {
	ctx := context.Background()
	r := New(newMemStore(), "nmr:")
	b, _ := r.Create(ctx, "trip")

	if err := r.DropElement(ctx, b.ID(), "never-added"); err != nil {
		t.Errorf("drop missing member: %v", err)
	}
	if err := r.DropElement(ctx, 999, "m1"); err != nil {
		t.Errorf("drop from unknown basket: %v", err)
	}
}

func TestListElements_EmptyBasket(t *testing.T) {
	ctx := context.Background()
	r := New(newMemStore(), "nmr:")
	b, _ := r.Create(ctx, "empty")

	elems, err := r.ListElements(ctx, b.ID())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elems == nil || len(elems) != 0 {
		t.Errorf("elements = %v, want empty", elems)
	}
}

func TestListAll_SortedWithSizes(t *testing.T) {
	ctx := context.Background()
	r := New(newMemStore(), "nmr:")

	for _, name := range []string{"a", "b", "c"} {
		if _, err := r.Create(ctx, name); err != nil {
			t.Fatal(err)
		}
	}
	_ = r.AddElement(ctx, 2, "m1")
	_ = r.AddElement(ctx, 2, "m2")
	_ = r.AddElement(ctx, 3, "m1")

	previews, err := r.ListAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(previews) != 3 {
		t.Fatalf("expected 3 previews, got %d", len(previews))
	}
	wantSizes := []int64{0, 2, 1}
	for i, p := range previews {
		if p.ID() != int64(i+1) {
			t.Errorf("previews[%d].ID() = %d", i, p.ID())
		}
		if p.Size() != wantSizes[i] {
			t.Errorf("previews[%d].Size() = %d, want %d", i, p.Size(), wantSizes[i])
		}
	}
}

func TestListAll_Empty(t *testing.T) {
	previews, err := New(newMemStore(), "nmr:").ListAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(previews) != 0 {
		t.Errorf("expected no previews, got %v", previews)
	}
}

func TestListAll_CountFailure(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	r := New(s, "nmr:")
	_, _ = r.Create(ctx, "a")

	s.scardErr = &db.Error{Op: db.OpSCard, Err: db.ErrUnavailable}
	if _, err := r.ListAll(ctx); !errors.Is(err, domain.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
