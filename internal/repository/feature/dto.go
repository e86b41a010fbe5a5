package feature

import (
	"strconv"

	"github.com/rahelarnold98/xreco-nmr/internal/db"
	domfeature "github.com/rahelarnold98/xreco-nmr/internal/domain/feature"
	"github.com/rahelarnold98/xreco-nmr/internal/domain/search/result"
)

// segmentFromFields decodes start/end/rep. Returns nil unless all three parse.
func segmentFromFields(m map[string]string) *domfeature.Segment {
	start, ok1 := parseFloat(m, fieldStart)
	end, ok2 := parseFloat(m, fieldEnd)
	rep, ok3 := parseFloat(m, fieldRep)
	if !ok1 || !ok2 || !ok3 {
		return nil
	}
	seg, err := domfeature.NewSegment(start, end, rep)
	if err != nil {
		return nil
	}
	return &seg
}

func parseFloat(m map[string]string, name string) (float64, bool) {
	raw, ok := m[name]
	if !ok || raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// itemsFromResult converts search hits into scored items, skipping hits without an owner.
func itemsFromResult(sr *db.SearchResult) []result.Item {
	items := make([]result.Item, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		id := e.Fields[fieldResourceID]
		if id == "" {
			continue
		}
		items = append(items, result.New(id, e.Score, segmentFromFields(e.Fields)))
	}
	return items
}

func vectorFromFields(m map[string]string) ([]float32, error) {
	return db.BytesToVector([]byte(m[fieldFeature]))
}
