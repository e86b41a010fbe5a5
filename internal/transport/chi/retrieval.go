package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	dommedia "github.com/rahelarnold98/xreco-nmr/internal/domain/media"
	"github.com/rahelarnold98/xreco-nmr/internal/domain/search/result"
)

// MediaResource is the JSON form of a media resource record.
type MediaResource struct {
	MediaResourceID string        `json:"mediaResourceId"`
	Type            dommedia.Type `json:"type"`
	Title           string        `json:"title,omitempty"`
	Description     string        `json:"description,omitempty"`
	URI             string        `json:"uri"`
	Path            string        `json:"path"`
}

// ScoredItem is one ranked hit.
type ScoredItem struct {
	MediaResourceID string   `json:"mediaResourceId"`
	Score           float64  `json:"score"`
	Start           *float64 `json:"start,omitempty"`
	End             *float64 `json:"end,omitempty"`
	Rep             *float64 `json:"rep,omitempty"`
}

// RetrievalResult is one page of a ranked query.
type RetrievalResult struct {
	Count int          `json:"count"`
	Items []ScoredItem `json:"items"`
}

// lookup handles GET /retrieval/{elementId}.
func (h *handlers) lookup(w http.ResponseWriter, r *http.Request) {
	var id string
	if !h.pathParam(w, r, "elementId", &id) {
		return
	}
	res, err := h.s.retrieval.Lookup(r.Context(), id)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mediaResource(&res))
}

// lookupEntity handles GET /retrieval/lookup/{elementId}/{entity}.
func (h *handlers) lookupEntity(w http.ResponseWriter, r *http.Request) {
	var id, entity string
	if !h.pathParam(w, r, "elementId", &id) || !h.pathParam(w, r, "entity", &entity) {
		return
	}
	vals, err := h.s.retrieval.LookupEntity(r.Context(), id, entity)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vals)
}

// fullText handles GET /retrieval/text/{entity}/{text}/{pageSize}/{page}.
func (h *handlers) fullText(w http.ResponseWriter, r *http.Request) {
	var (
		entity, text   string
		pageSize, page int
	)
	if !h.pathParam(w, r, "entity", &entity) || !h.pathParam(w, r, "text", &text) ||
		!h.pathParam(w, r, "pageSize", &pageSize) || !h.pathParam(w, r, "page", &page) {
		return
	}
	p, err := h.s.retrieval.FullText(r.Context(), entity, text, pageSize, page)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, retrievalResult(&p))
}

// similarity handles GET /retrieval/similarity/{entity}/{mediaResourceId}/{timestamp}/{pageSize}/{page}.
func (h *handlers) similarity(w http.ResponseWriter, r *http.Request) {
	var (
		entity, id     string
		timestamp      float64
		pageSize, page int
	)
	if !h.pathParam(w, r, "entity", &entity) || !h.pathParam(w, r, "mediaResourceId", &id) ||
		!h.pathParam(w, r, "timestamp", &timestamp) ||
		!h.pathParam(w, r, "pageSize", &pageSize) || !h.pathParam(w, r, "page", &page) {
		return
	}
	p, err := h.s.retrieval.Similarity(r.Context(), entity, id, timestamp, pageSize, page)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, retrievalResult(&p))
}

// filter handles GET /retrieval/filter/*.
func (h *handlers) filter(w http.ResponseWriter, r *http.Request) {
	p, err := h.s.retrieval.Filter(r.Context(), chi.URLParam(r, "*"), 0, 0)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, retrievalResult(&p))
}

func mediaResource(r *dommedia.Resource) MediaResource {
	return MediaResource{
		MediaResourceID: r.ID(),
		Type:            r.Type(),
		Title:           r.Title(),
		Description:     r.Description(),
		URI:             r.URI(),
		Path:            r.Path(),
	}
}

func retrievalResult(p *result.Page) RetrievalResult {
	items := p.Items()
	out := RetrievalResult{Count: p.Count(), Items: make([]ScoredItem, len(items))}
	for i := range items {
		it := ScoredItem{MediaResourceID: items[i].ResourceID(), Score: items[i].Score()}
		if seg := items[i].Segment(); seg != nil {
			start, end, rep := seg.Start(), seg.End(), seg.Rep()
			it.Start, it.End, it.Rep = &start, &end, &rep
		}
		out.Items[i] = it
	}
	return out
}
