package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/emphasis-lines-api/internal/middleware"
	"github.com/noah-isme/emphasis-lines-api/internal/service"
	"github.com/noah-isme/emphasis-lines-api/pkg/response"
)

// HealthHandler exposes liveness, readiness and metrics endpoints.
type HealthHandler struct {
	probe   middleware.ReadinessProbe
	metrics *service.MetricsService
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(probe middleware.ReadinessProbe, metrics *service.MetricsService) *HealthHandler {
	return &HealthHandler{probe: probe, metrics: metrics}
}

// Health responds with a generic OK payload for liveness usage.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready answers 200 once the document has been loaded, 503 before.
func (h *HealthHandler) Ready(c *gin.Context) {
	if !h.probe.IsReady() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "loading"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *HealthHandler) Prometheus(c *gin.Context) {
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Summary godoc
// @Summary Metrics summary
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/metrics [get]
func (h *HealthHandler) Summary(c *gin.Context) {
	response.OK(c, h.metrics.Snapshot())
}
