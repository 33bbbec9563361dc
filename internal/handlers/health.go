package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/solarworks/solarworks/internal/monitors"
)

func (h *Handler) HealthCheck(c *gin.Context) {
	database := monitors.CheckDatabase(c.Request.Context(), h.store, h.opts.HealthTimeout)

	status := http.StatusOK
	overall := "ok"

	if !database.Healthy() {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}

	c.JSON(status, gin.H{
		"status":    overall,
		"message":   h.opts.SiteName + " API is running",
		"timestamp": time.Now().Format(time.RFC3339),
		"database":  database,
	})
}
