package http_handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/baechuer/coursehub/internal/logger"
	"github.com/baechuer/coursehub/internal/metrics"
	"github.com/baechuer/coursehub/internal/transport/http/response"
)

// Pinger is a dependency that can report readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	deps    map[string]Pinger
	timeout time.Duration
}

// NewHealthHandler takes the optional dependencies by name; nil entries are skipped.
func NewHealthHandler(deps map[string]Pinger) *HealthHandler {
	clean := make(map[string]Pinger, len(deps))
	for name, p := range deps {
		if p != nil {
			clean[name] = p
		}
	}
	return &HealthHandler{deps: clean, timeout: 2 * time.Second}
}

// GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{"status": "ok"})
}

// GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	checks := make(map[string]string, len(h.deps))
	ready := true
	for name, p := range h.deps {
		err := p.Ping(ctx)
		metrics.SetDependencyHealth(name, err == nil)
		if err != nil {
			ready = false
			checks[name] = "down"
			logger.WithCtx(r.Context()).Warn().Err(err).Str("dependency", name).Msg("readiness_check_failed")
			continue
		}
		checks[name] = "up"
	}

	body := map[string]any{"status": "ready", "checks": checks}
	if !ready {
		body["status"] = "not_ready"
		response.WriteJSON(w, http.StatusServiceUnavailable, response.Envelope{Data: body})
		return
	}
	response.OK(w, body)
}
