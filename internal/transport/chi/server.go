// Package chi exposes the retrieval, basket, resource and ingest services over HTTP.
package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxUploadMemory is the multipart size kept in memory before spilling to disk.
const maxUploadMemory = 32 << 20

// thumbnailMaxAge is the Cache-Control lifetime of rendered previews.
const thumbnailMaxAge = "max-age=31622400"

// Server holds the services behind the HTTP API.
type Server struct {
	baskets   BasketService
	retrieval RetrievalService
	resources ResourceService
	ingest    IngestService
	health    HealthService
}

// Services groups the handler dependencies.
type Services struct {
	Baskets   BasketService
	Retrieval RetrievalService
	Resources ResourceService
	Ingest    IngestService
	Health    HealthService
}

// NewServer creates an HTTP API server.
func NewServer(s Services) *Server {
	return &Server{
		baskets:   s.Baskets,
		retrieval: s.Retrieval,
		resources: s.Resources,
		ingest:    s.Ingest,
		health:    s.Health,
	}
}

// Options configures the router the server is mounted on.
type Options struct {
	BaseRouter       chi.Router
	BaseURL          string
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerWithOptions mounts the API on opts.BaseRouter (or a fresh router).
// /health and /metrics live at the root, everything else under BaseURL.
func HandlerWithOptions(s *Server, opts Options) http.Handler {
	r := opts.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "/api"
	}
	bind := opts.ErrorHandlerFunc
	if bind == nil {
		bind = bindErrorHandler
	}
	h := &handlers{s: s, bindError: bind}

	r.Get("/health", h.healthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route(opts.BaseURL, func(r chi.Router) {
		r.Route("/basket", func(r chi.Router) {
			r.Get("/list/all", h.listBaskets)
			r.Get("/list/{userId}", h.listBasketsByUser)
			r.Post("/{name}", h.createBasket)
			r.Get("/{id}", h.listBasketElements)
			r.Delete("/{id}", h.deleteBasket)
			r.Put("/{id}/{mediaResourceId}", h.addBasketElement)
			r.Delete("/{id}/{mediaResourceId}", h.dropBasketElement)
		})
		r.Route("/retrieval", func(r chi.Router) {
			r.Get("/lookup/{elementId}/{entity}", h.lookupEntity)
			r.Get("/text/{entity}/{text}/{pageSize}/{page}", h.fullText)
			r.Get("/similarity/{entity}/{mediaResourceId}/{timestamp}/{pageSize}/{page}", h.similarity)
			r.Get("/filter/*", h.filter)
			r.Get("/{elementId}", h.lookup)
		})
		r.Route("/resource/{mediaResourceId}", func(r chi.Router) {
			r.Get("/", h.resource)
			r.Get("/metadata", h.metadata)
			r.Get("/preview/{timestamp}", h.preview)
			r.Get("/frame/{timestamp}", h.representativeFrame)
		})
		r.Route("/ingest", func(r chi.Router) {
			r.Post("/{kind}", h.submitIngest)
			r.Get("/{jobId}/status", h.ingestStatus)
			r.Delete("/{jobId}/abort", h.abortIngest)
		})
	})
	return r
}

// InvalidParamFormatError reports a path parameter that did not bind.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return "invalid format for parameter " + e.ParamName + ": " + e.Err.Error()
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

type handlers struct {
	s         *Server
	bindError func(w http.ResponseWriter, r *http.Request, err error)
}

// pathParam binds a required path parameter into dest. On failure the bind
// error handler has already answered and false is returned.
func (h *handlers) pathParam(w http.ResponseWriter, r *http.Request, name string, dest any) bool {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		h.bindError(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return false
	}
	return true
}
