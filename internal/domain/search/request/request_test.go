package request

import (
	"strings"
	"testing"
)

func TestNewWindow(t *testing.T) {
	tests := []struct {
		name         string
		pageSize     int
		page         int
		offset, lim  int
		wantErr      bool
		wantNonEmpty bool
	}{
		{"first page", 10, 0, 0, 10, false, true},
		{"third page", 10, 2, 20, 10, false, true},
		{"empty window", 0, 5, 0, 0, false, false},
		{"negative size", -1, 0, 0, 0, true, false},
		{"negative page", 10, -1, 0, 0, true, false},
		{"past max", 100, 100, 0, 0, true, false},
		{"overflow", 2, int(^uint(0) >> 2), 0, 0, true, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, err := NewWindow(tc.pageSize, tc.page)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if tc.wantErr {
				return
			}
			if w.Offset() != tc.offset || w.Limit() != tc.lim {
				t.Errorf("window = [%d,+%d), want [%d,+%d)", w.Offset(), w.Limit(), tc.offset, tc.lim)
			}
			if w.IsEmpty() == tc.wantNonEmpty {
				t.Errorf("IsEmpty() = %v", w.IsEmpty())
			}
		})
	}
}

func TestWindow_PagesPartition(t *testing.T) {
	const pageSize = 7
	next := 0
	for page := range 5 {
		w, err := NewWindow(pageSize, page)
		if err != nil {
			t.Fatal(err)
		}
		if w.Offset() != next {
			t.Fatalf("page %d starts at %d, want %d", page, w.Offset(), next)
		}
		next = w.End()
	}
}

func TestNewText(t *testing.T) {
	r, err := NewText("features_landmark", "  tower ", 5, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Query() != "tower" {
		t.Errorf("Query() = %q", r.Query())
	}
	if r.Entity() != "features_landmark" {
		t.Errorf("Entity() = %q", r.Entity())
	}
	if r.Window().Offset() != 5 {
		t.Errorf("Offset() = %d", r.Window().Offset())
	}

	if _, err := NewText("", "x", 1, 0); err == nil {
		t.Error("expected error for empty entity")
	}
	if _, err := NewText("e", " ", 1, 0); err == nil {
		t.Error("expected error for blank query")
	}
	if _, err := NewText("e", strings.Repeat("a", MaxQueryLength+1), 1, 0); err == nil {
		t.Error("expected error for long query")
	}
	if _, err := NewText("e", "x", -1, 0); err == nil {
		t.Error("expected error for negative page size")
	}
}

func TestNewSimilarity(t *testing.T) {
	r, err := NewSimilarity("features_clip", "m1", 12.5, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ResourceID() != "m1" || r.Timestamp() != 12.5 || r.Window().Limit() != 10 {
		t.Errorf("unexpected request: %+v", r)
	}

	if _, err := NewSimilarity("features_clip", "", 0, 10, 0); err == nil {
		t.Error("expected error for empty resource id")
	}
	if _, err := NewSimilarity("features_clip", "m1", -1, 10, 0); err == nil {
		t.Error("expected error for negative timestamp")
	}
	if _, err := NewSimilarity("", "m1", 0, 10, 0); err == nil {
		t.Error("expected error for empty entity")
	}
}
