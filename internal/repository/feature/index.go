package feature

import (
	"fmt"

	"github.com/rahelarnold98/xreco-nmr/internal/db"
	"github.com/rahelarnold98/xreco-nmr/internal/domain/search/mode"
)

// Hash field names shared by every descriptor entity.
const (
	fieldResourceID = "mediaResourceId"
	fieldStart      = "start"
	fieldEnd        = "end"
	fieldRep        = "rep"
	fieldLabel      = "label"
	fieldFeature    = "feature"
	vectorAlias     = "vector"
)

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Schema describes how one descriptor entity is stored and indexed.
type Schema struct {
	Entity   string
	Mode     mode.Mode
	Dim      int // vector entities only
	Distance db.DistanceMetric
}

func (r *Repo) indexName(entity string) string {
	return r.prefix + entity + ":idx"
}

func (r *Repo) keyPrefix(entity string) string {
	return r.prefix + entity + ":"
}

// buildIndex creates the FT index definition of a descriptor entity.
func (r *Repo) buildIndex(s Schema) (*db.IndexDefinition, error) {
	b := db.NewIndex(r.indexName(s.Entity)).
		Prefix(r.keyPrefix(s.Entity)).
		Tag(fieldResourceID).
		Numeric(fieldStart, fieldEnd, fieldRep)

	switch s.Mode {
	case mode.Text:
		b.NoStopWords().Label(fieldLabel)
	case mode.Vector:
		if s.Dim <= 0 {
			return nil, fmt.Errorf("entity %s: vector dimension must be positive", s.Entity)
		}
		b.VectorHNSW(fieldFeature, vectorAlias, s.Dim, s.Distance, r.hnsw.M, r.hnsw.EFConstruct)
	default:
		return nil, fmt.Errorf("entity %s: unknown mode %q", s.Entity, s.Mode)
	}
	return b.Build()
}
