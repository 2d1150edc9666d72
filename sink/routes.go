package sink

import (
	"bufio"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/urfave/negroni"

	"github.com/fieldprint/fieldprint/export"
	"github.com/fieldprint/fieldprint/infer"
)

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/records", s.handlePostRecords()).Methods("POST")
	s.router.HandleFunc("/schema", s.handleGetSchema()).Methods("GET")
	s.router.HandleFunc("/schema/openapi", s.handleGetSchemaDocument()).Methods("GET")
	s.router.HandleFunc("/stats", s.handleGetStats()).Methods("GET")
	s.router.HandleFunc("/reset", s.handlePostReset()).Methods("POST")
	s.router.Handle("/metrics", s.metrics.handler()).Methods("GET")
	s.router.Use(logMiddleware)
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := negroni.NewResponseWriter(w)
		next.ServeHTTP(ww, r)
		slog.Info("request", "method", r.Method, "uri", r.RequestURI, "status", ww.Status())
	})
}

type recordFailure struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

type postRecordsResponse struct {
	BatchID  string          `json:"batchID"`
	Received int             `json:"received"`
	Accepted int             `json:"accepted"`
	Failures []recordFailure `json:"failures,omitempty"`
}

// handlePostRecords ingests a newline-delimited JSON body. Bad lines are
// reported back, good lines still count; the batch never aborts early.
func (s *Server) handlePostRecords() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := postRecordsResponse{BatchID: uuid.NewString()}

		sc := bufio.NewScanner(r.Body)
		sc.Buffer(make([]byte, 64<<10), 16<<20)

		s.mu.Lock()
		for sc.Scan() {
			line := sc.Bytes()
			if len(line) == 0 {
				continue
			}
			resp.Received++
			s.metrics.records.Inc()
			if err := s.inf.AddJSON(line); err != nil {
				s.metrics.parseFailures.Inc()
				resp.Failures = append(resp.Failures, recordFailure{
					Line:  resp.Received - 1,
					Error: err.Error(),
				})
				continue
			}
			resp.Accepted++
		}
		s.metrics.trackedPaths.Set(float64(s.inf.PathCount()))
		s.mu.Unlock()

		if err := sc.Err(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusOK, &resp)
	}
}

func (s *Server) handleGetSchema() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		schema, err := s.snapshot()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, schema)
	}
}

func (s *Server) handleGetSchemaDocument() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		schema, err := s.snapshot()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, export.Schema(schema))
	}
}

func (s *Server) handleGetStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		stats := s.inf.Stats()
		paths := s.inf.PathCount()
		s.mu.Unlock()

		writeJSON(w, http.StatusOK, map[string]any{
			"stats":        stats,
			"trackedPaths": paths,
		})
	}
}

func (s *Server) handlePostReset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		schema, err := s.reset()
		if err != nil && !errors.Is(err, infer.ErrFinalized) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, schema)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("could not encode response", "err", err)
	}
}
