package db

// KNNQuery is the input for vector similarity search.
// The window [Offset, Offset+Limit) is cut from the K nearest neighbours.
type KNNQuery struct {
	IndexName    string
	Field        string // vector field alias
	Vector       []float32
	K            int
	Offset       int
	Limit        int
	ReturnFields []string
	Distance     DistanceMetric // metric of the index, used to turn distances into scores
}

// TextQuery is the input for scored full-text search.
type TextQuery struct {
	IndexName    string
	Field        string
	Query        string
	Offset       int
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
