package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/rahelarnold98/xreco-nmr/internal/domain"
	"github.com/rahelarnold98/xreco-nmr/internal/logger"
)

// ErrorStatus is the body of every failed request.
type ErrorStatus struct {
	Code        int    `json:"code"`
	Description string `json:"description"`
}

// SuccessStatus acknowledges a request without a payload.
type SuccessStatus struct {
	Description string `json:"description"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

var errorHandlers = []errorHandler{
	sentinelHandler(domain.ErrNotFound, http.StatusNotFound),
	sentinelHandler(domain.ErrBadRequest, http.StatusBadRequest),
	sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict),
	sentinelHandler(domain.ErrNotImplemented, http.StatusNotImplemented),
	sentinelHandler(domain.ErrUnavailable, http.StatusServiceUnavailable),
}

// sentinelHandler returns an errorHandler that matches a single taxonomy kind.
func sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, domain.Describe(err))
		return true
	}
}

// handleDomainError writes the taxonomy status of err. Unclassified errors
// are Internal and carry the underlying message.
func handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	for _, h := range errorHandlers {
		if h(w, err) {
			log.Warn("request failed", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, domain.Describe(err))
}

// bindErrorHandler answers path parameters that do not bind.
func bindErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	writeError(w, http.StatusBadRequest, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, description string) {
	writeJSON(w, status, ErrorStatus{Code: status, Description: description})
}

func writeSuccess(w http.ResponseWriter, description string) {
	writeJSON(w, http.StatusOK, SuccessStatus{Description: description})
}
