// Package health provides health check endpoints for the portfolio backend
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Prober checks that an upstream dependency is reachable
type Prober interface {
	Healthy(ctx context.Context) error
}

// Handler serves the health check endpoints
type Handler struct {
	notifier Prober
	logger   *logrus.Logger
	started  time.Time
}

// NewHandler creates a health handler probing the given notifier
func NewHandler(notifier Prober, logger *logrus.Logger) *Handler {
	return &Handler{
		notifier: notifier,
		logger:   logger,
		started:  time.Now(),
	}
}

// HealthResponse is the health endpoint payload
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	UptimeSec int64             `json:"uptime_seconds"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HandleLiveness godoc
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} health.HealthResponse
// @Router /health/live [get]
func (h *Handler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, HealthResponse{
		Status:    "alive",
		Timestamp: time.Now(),
		UptimeSec: int64(time.Since(h.started).Seconds()),
	})
}

// HandleReadiness godoc
// @Summary Readiness probe
// @Description Reports ready only when the chat API is reachable
// @Tags health
// @Produce json
// @Success 200 {object} health.HealthResponse
// @Failure 503 {object} health.HealthResponse
// @Router /health/ready [get]
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{"telegram": "ok"}
	status := http.StatusOK
	overall := "ready"

	if err := h.notifier.Healthy(ctx); err != nil {
		checks["telegram"] = err.Error()
		status = http.StatusServiceUnavailable
		overall = "not ready"
		h.logger.WithField("error", err.Error()).Warn("Readiness probe failed")
	}

	h.respond(w, status, HealthResponse{
		Status:    overall,
		Timestamp: time.Now(),
		UptimeSec: int64(time.Since(h.started).Seconds()),
		Checks:    checks,
	})
}

// HandleHealth godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} health.HealthResponse
// @Router /health [get]
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		UptimeSec: int64(time.Since(h.started).Seconds()),
	})
}

func (h *Handler) respond(w http.ResponseWriter, status int, body HealthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
