package handlers

import (
	"net/http"
	"time"

	"calbook/utils"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	checks  map[string]utils.HealthCheck
	timeout time.Duration
}

// NewHealthHandler takes named dependency probes, e.g. "gateway" and "sessions".
func NewHealthHandler(checks map[string]utils.HealthCheck, timeout time.Duration) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: timeout}
}

// Root handles GET /.
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "API is live."})
}

// Health handles GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	status := utils.CheckHealth(c.Request.Context(), h.timeout, h.checks)
	body := gin.H{"status": "healthy"}
	for name, state := range status.Components {
		body[name] = state
	}
	if !status.Healthy {
		body["status"] = "unavailable"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	c.JSON(http.StatusOK, body)
}
