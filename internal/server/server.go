// Package server implements the gridder HTTP API.
//
// Routes:
//
//	POST   /v1/grids               generate a grid and store it
//	GET    /v1/grids               list stored grid IDs
//	GET    /v1/grids/{id}          fetch a stored grid document
//	DELETE /v1/grids/{id}          delete a stored grid
//	GET    /v1/grids/{id}/{format} export a stored grid (json, geojson, dot, svg, png)
//	GET    /healthz                liveness probe
//	GET    /metrics                Prometheus metrics, when a gatherer is set
//
// Errors are returned as {"code": ..., "error": ...} with the status chosen
// from the error code.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/gridder/pkg/buildinfo"
	gerrors "github.com/matzehuels/gridder/pkg/errors"
	"github.com/matzehuels/gridder/pkg/observability"
	"github.com/matzehuels/gridder/pkg/pipeline"
	"github.com/matzehuels/gridder/pkg/storage"
)

// maxBodyBytes bounds generation request bodies.
const maxBodyBytes = 1 << 20

// Server serves the HTTP API. Runner and Store are required.
type Server struct {
	Runner *pipeline.Runner
	Store  storage.Store
	Logger *log.Logger

	// Gatherer, when set, is exposed on /metrics.
	Gatherer prometheus.Gatherer
}

// New creates a server. A nil logger discards output.
func New(runner *pipeline.Runner, store storage.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Server{Runner: runner, Store: store, Logger: logger}
}

// Handler returns the router for the API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.health)
	if s.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1/grids", func(r chi.Router) {
		r.Post("/", s.createGrid)
		r.Get("/", s.listGrids)
		r.Get("/{id}", s.getGrid)
		r.Delete("/{id}", s.deleteGrid)
		r.Get("/{id}/{format}", s.exportGrid)
	})
	return r
}

// observe reports every request to the server hooks and logs it at debug level.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		w.Header().Set("Server", buildinfo.UserAgent())
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)
		observability.Server().OnRequest(r.Context(), r.Method, route, status, dur)
		s.Logger.Debug("request", "method", r.Method, "route", route, "status", status, "duration", dur)
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// StatusCode maps an error to its HTTP status.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound), gerrors.Is(err, gerrors.ErrCodeNotFound):
		return http.StatusNotFound
	case gerrors.Is(err, gerrors.ErrCodeAmbiguousMatch), gerrors.Is(err, gerrors.ErrCodeUnmatched):
		return http.StatusUnprocessableEntity
	case gerrors.IsInputError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := StatusCode(err)
	code := string(gerrors.GetCode(err))
	msg := gerrors.UserMessage(err)

	switch {
	case status == http.StatusNotFound:
		code, msg = string(gerrors.ErrCodeNotFound), err.Error()
	case status >= http.StatusInternalServerError:
		s.Logger.Error("request failed", "err", err)
		code, msg = string(gerrors.ErrCodeInternal), "internal error"
	}
	writeJSON(w, status, errorBody{Code: code, Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
