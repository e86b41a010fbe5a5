package db

import (
	"errors"
	"fmt"
)

// DistanceMetric is the DISTANCE_METRIC of a vector field.
type DistanceMetric string

// Supported vector distances.
const (
	DistanceL2     DistanceMetric = "L2"
	DistanceIP     DistanceMetric = "IP"
	DistanceCosine DistanceMetric = "COSINE"
)

// ParseDistance maps a config value to a DistanceMetric, defaulting to cosine.
func ParseDistance(s string) (DistanceMetric, error) {
	switch d := DistanceMetric(s); d {
	case "":
		return DistanceCosine, nil
	case DistanceCosine, DistanceL2, DistanceIP:
		return d, nil
	}
	return "", fmt.Errorf("unknown distance metric %q", s)
}

// Similarity turns a KNN distance into a score where higher means closer.
// COSINE and IP distances are 1-x of the underlying product; L2 distances are
// unbounded and map to 1/(1+d). The empty metric is treated as COSINE.
func (m DistanceMetric) Similarity(d float64) float64 {
	switch m {
	case DistanceL2:
		return 1 / (1 + max(0, d))
	case DistanceIP:
		return 1 - d
	default:
		return max(0, 1-d)
	}
}

// VectorAlgorithm is the vector index algorithm.
type VectorAlgorithm string

// Supported vector algorithms. FLAT is exact, HNSW approximate.
const (
	VectorHNSW VectorAlgorithm = "HNSW"
	VectorFlat VectorAlgorithm = "FLAT"
)

// IndexFieldType enumerates FT schema field types.
type IndexFieldType int

// Field types used by descriptor indexes.
const (
	IndexFieldNumeric IndexFieldType = iota
	IndexFieldTag
	IndexFieldText
	IndexFieldVector
)

// IndexField is one attribute of an FT schema.
type IndexField struct {
	Name  string
	Alias string // queried as @Alias when set
	Type  IndexFieldType

	TagCaseSensitive bool
	TextNoStem       bool // labels are proper names, match them as written

	VectorAlgo        VectorAlgorithm
	VectorDim         int
	VectorDistance    DistanceMetric
	VectorM           int
	VectorEFConstruct int
}

// attr is the name the field is queried by.
func (f *IndexField) attr() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

// IndexDefinition is an FT index over HASH keys sharing the given prefixes.
type IndexDefinition struct {
	Name        string
	Prefixes    []string
	Fields      []IndexField
	NoStopWords bool // STOPWORDS 0
}

// Validate checks that the definition can be sent to FT.CREATE.
func (idx *IndexDefinition) Validate() error {
	switch {
	case idx.Name == "":
		return errors.New("index name is required")
	case !IsValidIdentifier(idx.Name):
		return fmt.Errorf("index name %q contains invalid characters", idx.Name)
	case len(idx.Fields) == 0:
		return errors.New("at least one field is required")
	}

	seen := make(map[string]struct{}, len(idx.Fields))
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Name == "" {
			return fmt.Errorf("field %d: name is required", i)
		}
		if _, dup := seen[f.attr()]; dup {
			return fmt.Errorf("duplicate field name: %s", f.attr())
		}
		seen[f.attr()] = struct{}{}

		if f.Type == IndexFieldVector && f.VectorDim <= 0 {
			return fmt.Errorf("vector field %s requires positive DIM", f.Name)
		}
	}
	return nil
}

// IsValidIdentifier reports whether s is non-empty and made of [a-zA-Z0-9_:-].
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_', r == ':', r == '-':
		default:
			return false
		}
	}
	return true
}
