package chi

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gabriel-vasile/mimetype"

	"github.com/rahelarnold98/xreco-nmr/internal/domain"
	dommedia "github.com/rahelarnold98/xreco-nmr/internal/domain/media"
)

// RepresentativeFrame is the segment representative for a point in time.
type RepresentativeFrame struct {
	MediaResourceID string  `json:"mediaResourceId"`
	Timestamp       float64 `json:"timestamp"`
	Rep             float64 `json:"rep"`
}

// resource handles GET /resource/{mediaResourceId}. Videos are served with
// range support, everything else as one body.
func (h *handlers) resource(w http.ResponseWriter, r *http.Request) {
	var id string
	if !h.pathParam(w, r, "mediaResourceId", &id) {
		return
	}
	loc, err := h.s.resources.Resolve(r.Context(), id)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	if loc.Type == dommedia.Video {
		streamFile(w, r, loc.Path)
		return
	}
	data, err := os.ReadFile(loc.Path)
	if err != nil {
		handleDomainError(w, r, domain.Internal("read media resource "+id, err))
		return
	}
	w.Header().Set("Content-Type", mimetype.Detect(data).String())
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func streamFile(w http.ResponseWriter, r *http.Request, path string) {
	f, err := os.Open(path)
	if err != nil {
		handleDomainError(w, r, domain.Internal("open "+filepath.Base(path), err))
		return
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		handleDomainError(w, r, domain.Internal("stat "+filepath.Base(path), err))
		return
	}
	mt, err := mimetype.DetectReader(f)
	if err != nil {
		handleDomainError(w, r, domain.Internal("sniff "+filepath.Base(path), err))
		return
	}
	// ServeContent seeks back to the start before writing.
	w.Header().Set("Content-Type", mt.String())
	http.ServeContent(w, r, st.Name(), st.ModTime(), f)
}

// metadata handles GET /resource/{mediaResourceId}/metadata.
func (h *handlers) metadata(w http.ResponseWriter, r *http.Request) {
	var id string
	if !h.pathParam(w, r, "mediaResourceId", &id) {
		return
	}
	res, err := h.s.resources.Metadata(r.Context(), id)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mediaResource(&res))
}

// preview handles GET /resource/{mediaResourceId}/preview/{timestamp}.
func (h *handlers) preview(w http.ResponseWriter, r *http.Request) {
	var (
		id string
		ts int64
	)
	if !h.pathParam(w, r, "mediaResourceId", &id) || !h.pathParam(w, r, "timestamp", &ts) {
		return
	}
	data, err := h.s.resources.Thumbnail(r.Context(), id, &ts)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", thumbnailMaxAge)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// representativeFrame handles GET /resource/{mediaResourceId}/frame/{timestamp}.
func (h *handlers) representativeFrame(w http.ResponseWriter, r *http.Request) {
	var (
		id string
		ts float64
	)
	if !h.pathParam(w, r, "mediaResourceId", &id) || !h.pathParam(w, r, "timestamp", &ts) {
		return
	}
	rep, err := h.s.resources.RepresentativeFrame(r.Context(), id, ts)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RepresentativeFrame{MediaResourceID: id, Timestamp: ts, Rep: rep})
}
