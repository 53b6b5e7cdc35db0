package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rawhoneyguide/honeyscout/internal/metrics"
	"github.com/rawhoneyguide/honeyscout/internal/scheduler"
)

// HealthFunc checks a dependency, typically the database.
type HealthFunc func(ctx context.Context) error

// StatusFunc reports the last scheduled run.
type StatusFunc func() scheduler.RunStatus

type healthResponse struct {
	Status  string               `json:"status"`
	Error   string               `json:"error,omitempty"`
	LastRun *scheduler.RunStatus `json:"last_run,omitempty"`
}

// NewRouter exposes GET /healthz and GET /metrics. health and status may be nil.
func NewRouter(collector *metrics.Collector, health HealthFunc, status StatusFunc) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(collector.InstrumentHandler)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		resp := healthResponse{Status: "ok"}
		code := http.StatusOK

		if health != nil {
			ctx, cancel := context.WithTimeout(req.Context(), 5*time.Second)
			defer cancel()
			if err := health(ctx); err != nil {
				resp.Status = "unavailable"
				resp.Error = err.Error()
				code = http.StatusServiceUnavailable
			}
		}

		if status != nil {
			last := status()
			if !last.StartedAt.IsZero() {
				resp.LastRun = &last
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
	})

	r.Method(http.MethodGet, "/metrics", collector.Handler())

	return r
}
