package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-sync/internal/presence"
	"campus-sync/internal/telemetry"
)

// RegisterDebugRoutes wires endpoints for operators poking at a running
// instance. Never enabled outside development.
func RegisterDebugRoutes(router *gin.Engine, emitter *telemetry.AuditEmitter, tracker *presence.Tracker, enabled bool) {
	if !enabled {
		return
	}

	router.GET("/debug/audit-test", func(c *gin.Context) {
		if emitter == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit emitter not configured"})
			return
		}
		emitter.Emit(c.Request.Context(), "debug", "INFO", "audit test", requestIDFromContext(c), userIDFromContext(c))
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/debug/presence", func(c *gin.Context) {
		if tracker == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "presence tracker not configured"})
			return
		}
		snapshot := tracker.Snapshot()
		c.JSON(http.StatusOK, gin.H{"count": len(snapshot), "statuses": snapshot})
	})
}
