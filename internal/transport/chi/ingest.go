package chi

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/rahelarnold98/xreco-nmr/internal/domain"
	doming "github.com/rahelarnold98/xreco-nmr/internal/domain/ingest"
)

// uploadField is the multipart field carrying the files.
const uploadField = "files"

// submitIngest handles POST /ingest/{kind}.
func (h *handlers) submitIngest(w http.ResponseWriter, r *http.Request) {
	var kind string
	if !h.pathParam(w, r, "kind", &kind) {
		return
	}
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		handleDomainError(w, r, domain.BadRequest("invalid multipart upload: %v", err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	job, err := h.s.ingest.Submit(r.Context(), kind, uploadedFiles(r.MultipartForm.File[uploadField]))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// ingestStatus handles GET /ingest/{jobId}/status.
func (h *handlers) ingestStatus(w http.ResponseWriter, r *http.Request) {
	var jobID string
	if !h.pathParam(w, r, "jobId", &jobID) {
		return
	}
	st, err := h.s.ingest.Status(r.Context(), jobID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	switch st.Status {
	case doming.StatusRunning, doming.StatusCompleted:
		writeJSON(w, http.StatusOK, st)
	case doming.StatusFailed:
		handleDomainError(w, r, domain.Internal("Ingest job failed", nil))
	default:
		handleDomainError(w, r, domain.NotFound("Ingest job not found"))
	}
}

// abortIngest handles DELETE /ingest/{jobId}/abort.
func (h *handlers) abortIngest(w http.ResponseWriter, r *http.Request) {
	var jobID string
	if !h.pathParam(w, r, "jobId", &jobID) {
		return
	}
	ok, err := h.s.ingest.Cancel(r.Context(), jobID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	if !ok {
		handleDomainError(w, r, domain.NotFound("Job %s not found.", jobID))
		return
	}
	writeSuccess(w, "Ingest job aborted")
}

func uploadedFiles(headers []*multipart.FileHeader) []doming.File {
	files := make([]doming.File, len(headers))
	for i, fh := range headers {
		files[i] = doming.File{
			Name: fh.Filename,
			Size: fh.Size,
			Open: func() (io.ReadSeekCloser, error) { return fh.Open() },
		}
	}
	return files
}
