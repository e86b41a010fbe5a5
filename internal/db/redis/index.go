package redis

import (
	"context"
	"errors"
	"strconv"

	"github.com/rahelarnold98/xreco-nmr/internal/db"
)

const errUnknownIndex = "unknown index name"

// CreateIndex issues FT.CREATE for def. An existing index yields db.ErrIndexExists.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := buildCreateArgs(def)
	if err != nil {
		return err
	}

	cmd := s.b().Arbitrary("FT.CREATE").Args(args...).Build()
	err = s.do(ctx, cmd).Error()
	switch {
	case err == nil:
		return nil
	case isRedisErr(err, "index already exists"):
		return db.ErrIndexExists
	default:
		return opErr(db.OpCreateIndex, err)
	}
}

// IndexExists checks the index with FT.INFO.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	err := s.do(ctx, cmd).Error()
	switch {
	case err == nil:
		return true, nil
	case isRedisErr(err, errUnknownIndex):
		return false, nil
	default:
		return false, opErr(db.OpIndexInfo, err)
	}
}

// buildCreateArgs renders def as FT.CREATE arguments:
// name ON HASH [PREFIX n p...] [STOPWORDS 0] SCHEMA field...
func buildCreateArgs(def *db.IndexDefinition) ([]string, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	args := []string{def.Name, "ON", "HASH"}
	if n := len(def.Prefixes); n > 0 {
		args = append(args, "PREFIX", strconv.Itoa(n))
		args = append(args, def.Prefixes...)
	}
	if def.NoStopWords {
		args = append(args, "STOPWORDS", "0")
	}
	args = append(args, "SCHEMA")

	for i := range def.Fields {
		fa, err := buildFieldArgs(&def.Fields[i])
		if err != nil {
			return nil, err
		}
		args = append(args, fa...)
	}
	return args, nil
}

func buildFieldArgs(f *db.IndexField) ([]string, error) {
	if f.Name == "" {
		return nil, errors.New("field name is required")
	}

	args := []string{f.Name}
	if f.Alias != "" {
		args = append(args, "AS", f.Alias)
	}

	switch f.Type {
	case db.IndexFieldNumeric:
		return append(args, "NUMERIC"), nil
	case db.IndexFieldText:
		args = append(args, "TEXT")
		if f.TextNoStem {
			args = append(args, "NOSTEM")
		}
		return args, nil
	case db.IndexFieldTag:
		args = append(args, "TAG")
		if f.TagCaseSensitive {
			args = append(args, "CASESENSITIVE")
		}
		return args, nil
	case db.IndexFieldVector:
		attrs, err := vectorAttrs(f)
		if err != nil {
			return nil, err
		}
		args = append(args, "VECTOR", string(vectorAlgo(f)), strconv.Itoa(len(attrs)))
		return append(args, attrs...), nil
	}
	return nil, errors.New("unknown field type")
}

func vectorAlgo(f *db.IndexField) db.VectorAlgorithm {
	if f.VectorAlgo == "" {
		return db.VectorFlat
	}
	return f.VectorAlgo
}

// vectorAttrs lists the counted attribute pairs of a VECTOR field.
func vectorAttrs(f *db.IndexField) ([]string, error) {
	if f.VectorDim <= 0 {
		return nil, errors.New("vector DIM must be positive")
	}
	distance := f.VectorDistance
	if distance == "" {
		distance = db.DistanceCosine
	}

	attrs := []string{
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(f.VectorDim),
		"DISTANCE_METRIC", string(distance),
	}
	if vectorAlgo(f) == db.VectorHNSW {
		if f.VectorM > 0 {
			attrs = append(attrs, "M", strconv.Itoa(f.VectorM))
		}
		if f.VectorEFConstruct > 0 {
			attrs = append(attrs, "EF_CONSTRUCTION", strconv.Itoa(f.VectorEFConstruct))
		}
	}
	return attrs, nil
}
