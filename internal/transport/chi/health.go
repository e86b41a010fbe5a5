package chi

import (
	"net/http"

	healthuc "github.com/rahelarnold98/xreco-nmr/internal/usecase/health"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status healthuc.Status                 `json:"status"`
	Checks map[string]healthuc.CheckResult `json:"checks"`
}

// healthCheck handles GET /health. Only an unhealthy report is a 503.
func (h *handlers) healthCheck(w http.ResponseWriter, r *http.Request) {
	report := h.s.health.Check(r.Context())
	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, HealthResponse{Status: report.Status, Checks: report.Checks})
}
