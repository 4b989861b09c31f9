// Package server serves the account HTTP API the terminal client talks to.
package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"acctdesk/internal/logging"
	"acctdesk/internal/storage"
)

const (
	requestIDHeader = "X-Request-ID"
	maxUploadSize   = 8 << 20
)

// Store is the persistence the handlers need.
type Store interface {
	Search(ctx context.Context, term string) ([]storage.Account, error)
	ByIDs(ctx context.Context, ids []int64) ([]storage.Account, error)
	ByID(ctx context.Context, id int64) (*storage.Account, error)
	Create(ctx context.Context, a *storage.Account) error
	Update(ctx context.Context, a *storage.Account) error
	SoftDelete(ctx context.Context, id int64) error
	ImportAccounts(ctx context.Context, format storage.Format, r io.Reader) (storage.ImportResult, error)
}

type Server struct {
	store    Store
	log      logging.Logger
	mux      *http.ServeMux
	registry *prometheus.Registry
	metrics  *metrics
}

func New(store Store, log logging.Logger) *Server {
	reg := prometheus.NewRegistry()
	s := &Server{
		store:    store,
		log:      log,
		mux:      http.NewServeMux(),
		registry: reg,
		metrics:  newMetrics(reg),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.handle("GET /accounts", "search", s.handleSearch)
	s.handle("POST /accounts/create", "create", s.handleCreate)
	s.handle("PATCH /accounts/update", "update", s.handleUpdate)
	s.handle("DELETE /accounts/delete/{id}", "delete", s.handleDelete)
	s.handle("POST /accounts/export", "export", s.handleExport)
	s.handle("POST /accounts/upload", "upload", s.handleUpload)
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.mux }

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// handle registers fn under pattern with request-id propagation, logging and metrics.
func (s *Server) handle(pattern, route string, fn http.HandlerFunc) {
	s.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		fn(rec, r)

		elapsed := time.Since(start)
		s.metrics.observe(route, rec.status, elapsed)
		s.log.Info(r.Context(), "request",
			"route", route, "status", rec.status, "elapsed", elapsed, "request_id", id)
	})
}
