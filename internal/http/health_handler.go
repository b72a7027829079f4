package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// HealthHandler reports liveness after pinging the store.
type HealthHandler struct {
	pinger    interface{ Ping(ctx context.Context) error }
	responder responder
	started   time.Time
}

func NewHealthHandler(pinger interface{ Ping(ctx context.Context) error }, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{pinger: pinger, responder: newResponder(logger), started: time.Now()}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			h.responder.loggerFor(r.Context()).ErrorContext(r.Context(), "health check failed", "error", err)
			status, code = "unavailable", http.StatusServiceUnavailable
		}
	}
	h.responder.writeJSON(r.Context(), w, code, healthResponse{
		Status: status,
		Uptime: time.Since(h.started).Truncate(time.Second).String(),
	})
}

type healthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}
