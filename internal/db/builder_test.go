package db

import (
	"math"
	"strings"
	"testing"
)

func TestIndexBuilder_LabelIndex(t *testing.T) {
	idx, err := NewIndex("nmr:features_landmark:idx").
		Prefix("nmr:features_landmark:").
		NoStopWords().
		Tag("mediaResourceId").
		Numeric("start", "end", "rep").
		Label("label").
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(idx.Fields) != 5 {
		t.Fatalf("fields count = %d, want 5", len(idx.Fields))
	}
	if f := idx.Fields[0]; f.Name != "mediaResourceId" || f.Type != IndexFieldTag || !f.TagCaseSensitive {
		t.Errorf("field[0] = %+v, want case-sensitive mediaResourceId TAG", f)
	}
	for i, name := range []string{"start", "end", "rep"} {
		if f := idx.Fields[i+1]; f.Name != name || f.Type != IndexFieldNumeric {
			t.Errorf("field[%d] = %+v, want %s NUMERIC", i+1, f, name)
		}
	}
	if f := idx.Fields[4]; f.Name != "label" || f.Type != IndexFieldText || !f.TextNoStem {
		t.Errorf("field[4] = %+v, want label TEXT NOSTEM", f)
	}
	if !idx.NoStopWords {
		t.Error("expected STOPWORDS 0")
	}
}

func TestIndexBuilder_VectorHNSW(t *testing.T) {
	idx, err := NewIndex("nmr:features_clip:idx").
		Prefix("nmr:features_clip:").
		Tag("mediaResourceId").
		VectorHNSW("feature", "vector", 512, DistanceCosine, 16, 200).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f := idx.Fields[1]
	if f.Alias != "vector" {
		t.Errorf("alias = %q, want vector", f.Alias)
	}
	if f.VectorAlgo != VectorHNSW || f.VectorDim != 512 || f.VectorDistance != DistanceCosine {
		t.Errorf("vector field = %+v", f)
	}
	if f.VectorM != 16 || f.VectorEFConstruct != 200 {
		t.Errorf("hnsw params = M %d EF %d, want 16/200", f.VectorM, f.VectorEFConstruct)
	}
}

func TestIndexBuilder_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		builder *IndexBuilder
		wantErr string
	}{
		{"empty name", NewIndex("").Tag("a"), "index name is required"},
		{"bad name", NewIndex("bad name").Tag("a"), "invalid characters"},
		{"no fields", NewIndex("idx"), "at least one field"},
		{"duplicate", NewIndex("idx").Tag("a").Text("a"), "duplicate field name: a"},
		{"zero dim", NewIndex("idx").VectorHNSW("v", "", 0, DistanceCosine, 0, 0), "positive DIM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Build()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestIndexDefinition_String(t *testing.T) {
	idx, err := NewIndex("idx").Prefix("p:").Tag("id").VectorHNSW("feature", "vector", 4, DistanceL2, 0, 0).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "FT.CREATE idx ON HASH PREFIX p: SCHEMA id TAG feature AS vector VECTOR HNSW"
	if got := idx.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	labels, err := NewIndex("idx").NoStopWords().Label("label").Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want = "FT.CREATE idx ON HASH STOPWORDS 0 SCHEMA label TEXT NOSTEM"
	if got := labels.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestParseDistance(t *testing.T) {
	tests := []struct {
		in      string
		want    DistanceMetric
		wantErr bool
	}{
		{"", DistanceCosine, false},
		{"COSINE", DistanceCosine, false},
		{"L2", DistanceL2, false},
		{"IP", DistanceIP, false},
		{"manhattan", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDistance(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDistance(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDistance(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsValidIdentifier(t *testing.T) {
	tests := []struct {
		s    string
		want bool
	}{
		{"nmr:features_clip:idx", true},
		{"a-b_c", true},
		{"", false},
		{"has space", false},
		{"dot.name", false},
	}
	for _, tt := range tests {
		if got := IsValidIdentifier(tt.s); got != tt.want {
			t.Errorf("IsValidIdentifier(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}
}

func TestDistanceMetric_Similarity(t *testing.T) {
	tests := []struct {
		metric DistanceMetric
		d      float64
		want   float64
	}{
		{DistanceCosine, 0.1, 0.9},
		{DistanceCosine, 1.4, 0},
		{"", 0.25, 0.75},
		{DistanceIP, -0.5, 1.5},
		{DistanceL2, 0, 1},
		{DistanceL2, 1.5, 0.4},
		{DistanceL2, 9, 0.1},
	}
	for _, tt := range tests {
		if got := tt.metric.Similarity(tt.d); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%q.Similarity(%v) = %v, want %v", tt.metric, tt.d, got, tt.want)
		}
	}

	// closer L2 neighbours must keep scoring higher
	if DistanceL2.Similarity(2) <= DistanceL2.Similarity(3) {
		t.Error("L2 similarity must decrease with distance")
	}
}
