package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	h "clubsite/internal/delivery/http/helpers"
)

const readinessTimeout = 2 * time.Second

// Pinger reports whether a dependency is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthResponse is the data payload for the health endpoints.
type HealthResponse struct {
	Status string `json:"status"`
}

type HealthController struct {
	Logger *slog.Logger
	DB     Pinger
}

func NewHealthController(logger *slog.Logger, db Pinger) *HealthController {
	return &HealthController{Logger: logger, DB: db}
}

// Healthz godoc
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} helpers.APIResponse "data.status: ok"
// @Router /healthz [get]
func (c *HealthController) Healthz(w http.ResponseWriter, r *http.Request) {
	h.WriteJSONSuccess(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Readyz godoc
// @Summary Readiness probe
// @Description Reports ready once the database answers a ping.
// @Tags health
// @Produce json
// @Success 200 {object} helpers.APIResponse "data.status: ready"
// @Failure 503 {object} helpers.APIResponse "error.code: service_unavailable"
// @Router /readyz [get]
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()
	if err := c.DB.PingContext(ctx); err != nil {
		c.Logger.WarnContext(r.Context(), "readiness check failed", "err", err)
		h.WriteJSONError(w, http.StatusServiceUnavailable, h.ErrCodeUnavailable, "database unavailable")
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, HealthResponse{Status: "ready"})
}
