package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/geo-hotspot/internal/export"
	"github.com/couchcryptid/geo-hotspot/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// LatestProvider exposes the most recent analysis result, nil before the first run.
type LatestProvider interface {
	Latest() *pipeline.Result
}

// Server exposes health, readiness, metrics and the latest analysis outputs over HTTP.
type Server struct {
	httpServer *http.Server
	latest     LatestProvider
	delimiter  rune
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics,
// /insights and /exports/{table} routes. Exports use delimiter between fields.
func NewServer(addr string, ready sharedobs.ReadinessChecker, latest LatestProvider, delimiter rune, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		latest:    latest,
		delimiter: delimiter,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /insights", s.handleInsights)
	mux.HandleFunc("GET /exports/{table}", s.handleExport)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type insightsResponse struct {
	RunID       string         `json:"run_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Valid       int            `json:"valid_rows"`
	Dropped     int            `json:"dropped_rows"`
	DropReasons map[string]int `json:"drop_reasons,omitempty"`
	Filtered    int            `json:"filtered"`
	Empty       bool           `json:"empty"`
	Summary     any            `json:"summary"`
}

func (s *Server) handleInsights(w http.ResponseWriter, _ *http.Request) {
	res := s.latest.Latest()
	if res == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no analysis run has completed yet"})
		return
	}
	writeJSON(w, http.StatusOK, insightsResponse{
		RunID:       res.RunID,
		GeneratedAt: res.GeneratedAt,
		Valid:       res.Valid,
		Dropped:     res.Dropped,
		DropReasons: res.DropReasons,
		Filtered:    res.Filtered,
		Empty:       res.Empty,
		Summary:     res.Insights,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	res := s.latest.Latest()
	if res == nil {
		http.Error(w, "no analysis run has completed yet", http.StatusNotFound)
		return
	}

	var table export.Table
	switch name := r.PathValue("table"); name {
	case export.TableEvents:
		table = export.Events(res.Labeled)
	case export.TableClusters:
		table = export.Clusters(res.Clusters)
	case export.TableCenters:
		table = export.Centers(res.Centers)
	default:
		http.Error(w, "unknown table "+name, http.StatusNotFound)
		return
	}
	if res.Empty {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	body, err := export.Serialize(table, export.WithDelimiter(s.delimiter))
	if err != nil {
		s.logger.Error("export failed", "table", table.Name(), "run_id", res.RunID, "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+table.Name()+`.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
