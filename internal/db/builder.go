package db

import "strings"

// IndexBuilder assembles an IndexDefinition field by field.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts an index definition named name.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{def: IndexDefinition{Name: name}}
}

// Prefix restricts the index to keys with the given prefixes.
func (b *IndexBuilder) Prefix(prefixes ...string) *IndexBuilder {
	b.def.Prefixes = append(b.def.Prefixes, prefixes...)
	return b
}

// NoStopWords indexes every token, so "the" in "The Louvre" stays searchable.
func (b *IndexBuilder) NoStopWords() *IndexBuilder {
	b.def.NoStopWords = true
	return b
}

// Numeric adds NUMERIC fields.
func (b *IndexBuilder) Numeric(names ...string) *IndexBuilder {
	for _, name := range names {
		b.add(IndexField{Name: name, Type: IndexFieldNumeric})
	}
	return b
}

// Tag adds a case-sensitive TAG field. Ids are matched verbatim.
func (b *IndexBuilder) Tag(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Type: IndexFieldTag, TagCaseSensitive: true})
}

// Text adds a stemmed TEXT field.
func (b *IndexBuilder) Text(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Type: IndexFieldText})
}

// Label adds an unstemmed TEXT field for names and classification labels.
func (b *IndexBuilder) Label(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Type: IndexFieldText, TextNoStem: true})
}

// VectorHNSW adds an HNSW VECTOR field queried through alias.
func (b *IndexBuilder) VectorHNSW(name, alias string, dim int, distance DistanceMetric, m, efConstruct int) *IndexBuilder {
	return b.add(IndexField{
		Name:              name,
		Alias:             alias,
		Type:              IndexFieldVector,
		VectorAlgo:        VectorHNSW,
		VectorDim:         dim,
		VectorDistance:    distance,
		VectorM:           m,
		VectorEFConstruct: efConstruct,
	})
}

func (b *IndexBuilder) add(f IndexField) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, f)
	return b
}

// Build validates and returns the definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	return &b.def, nil
}

// String renders a short FT.CREATE-like form for logs and tests.
// Vector attributes are left out.
func (idx *IndexDefinition) String() string {
	var sb strings.Builder
	sb.WriteString("FT.CREATE " + idx.Name + " ON HASH")
	if len(idx.Prefixes) > 0 {
		sb.WriteString(" PREFIX " + strings.Join(idx.Prefixes, " "))
	}
	if idx.NoStopWords {
		sb.WriteString(" STOPWORDS 0")
	}
	sb.WriteString(" SCHEMA")
	for i := range idx.Fields {
		f := &idx.Fields[i]
		sb.WriteString(" " + f.Name)
		if f.Alias != "" {
			sb.WriteString(" AS " + f.Alias)
		}
		switch f.Type {
		case IndexFieldTag:
			sb.WriteString(" TAG")
		case IndexFieldNumeric:
			sb.WriteString(" NUMERIC")
		case IndexFieldText:
			sb.WriteString(" TEXT")
			if f.TextNoStem {
				sb.WriteString(" NOSTEM")
			}
		case IndexFieldVector:
			sb.WriteString(" VECTOR " + string(f.VectorAlgo))
		}
	}
	return sb.String()
}
