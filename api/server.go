// Package api implements the HTTP surface (§6) over a *semaflow.Handle:
// GET /flows, GET /flows/{flow}, and POST /flows/{flow}/query, via
// github.com/go-chi/chi/v5, with request metrics through
// github.com/prometheus/client_golang and per-request correlation IDs from
// github.com/google/uuid attached to every log line.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/semaflow-labs/semaflow"
)

// Server wraps a semaflow.Handle with chi routing.
type Server struct {
	handle *semaflow.Handle
	log    logrus.FieldLogger
	router chi.Router
}

// NewServer builds a Server ready to be used as an http.Handler.
func NewServer(handle *semaflow.Handle, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.New()
	}
	s := &Server{handle: handle, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestMetrics)
	r.Use(correlationID)

	r.Get("/flows", s.handleListFlows)
	r.Get("/flows/{flow}", s.handleGetFlow)
	r.Post("/flows/{flow}/query", s.handleQuery)
	r.Handle("/metrics", promhttp.Handler())

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
