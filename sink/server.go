// Package sink is an HTTP record sink that drives the inference engine:
// records are POSTed in, the current schema snapshot is read out. The
// engine itself is single-writer, so one mutex guards the live Inferrer.
package sink

import (
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/fieldprint/fieldprint/infer"
)

type Server struct {
	router *mux.Router
	cfg    infer.Config

	mu  sync.Mutex
	inf *infer.Inferrer

	metrics *metrics
}

func NewServer(cfg infer.Config) (*Server, error) {
	in, err := infer.New(cfg)
	if err != nil {
		return nil, err
	}
	s := &Server{
		router:  mux.NewRouter(),
		cfg:     cfg,
		inf:     in,
		metrics: newMetrics(),
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// snapshot finalizes a clone of the live accumulator, so the live one
// keeps accumulating. The clone is a fresh Inferrer merged from the live
// one under the lock.
func (s *Server) snapshot() (*infer.InferredSchema, error) {
	clone, err := infer.New(s.cfg)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	err = clone.Merge(s.inf)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.metrics.snapshots.Inc()
	return clone.Finalize()
}

// Final finalizes the live accumulator for good. Meant for shutdown;
// records arriving afterwards are rejected with ErrFinalized.
func (s *Server) Final() (*infer.InferredSchema, infer.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := s.inf.Stats()
	schema, err := s.inf.Finalize()
	return schema, stats, err
}

// reset swaps in a fresh accumulator and returns the finalized schema of
// the old one.
func (s *Server) reset() (*infer.InferredSchema, error) {
	fresh, err := infer.New(s.cfg)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	old := s.inf
	s.inf = fresh
	s.mu.Unlock()

	return old.Finalize()
}
