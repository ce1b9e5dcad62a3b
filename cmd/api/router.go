package api

import (
	"context"
	"net/http"
	"os"
	"time"

	authDelivery "devtodo-backend/internal/auth/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *Handler) {
	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", h.Health)

		// Register and login are public; verify applies the auth middleware itself
		h.authHandler.RegisterRoutes(api)

		// Google redirects here without a bearer token
		h.integrationsHandler.RegisterPublicRoutes(api)

		protected := api.Group("")
		protected.Use(authDelivery.AuthMiddleware(h.authUsecase))
		{
			h.taskHandler.RegisterRoutes(protected)
			h.gitHandler.RegisterRoutes(protected)
			h.claudeHandler.RegisterRoutes(protected)
			h.dockerHandler.RegisterRoutes(protected)
			h.integrationsHandler.RegisterRoutes(protected)
			h.settingsHandler.RegisterRoutes(protected)
		}
	}
}

// Health reports the store driver, Docker reachability and whether the
// Claude data directory is mounted
// GET /api/health
func (h *Handler) Health(c *gin.Context) {
	docker := "disconnected"
	if h.dockerEngine != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		if err := h.dockerEngine.Ping(ctx); err == nil {
			docker = "connected"
		}
		cancel()
	}

	claude := "not accessible"
	if _, err := os.Stat(h.config.ClaudeDataPath); err == nil {
		claude = "accessible"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services": gin.H{
			"store":  h.config.StoreDriver,
			"docker": docker,
			"claude": claude,
		},
	})
}
