package bootstrap

import (
	"log"
	"net/http"

	"github.com/go-authgate/authd/internal/config"
	"github.com/go-authgate/authd/internal/metrics"
	"github.com/go-authgate/authd/internal/middleware"
	"github.com/go-authgate/authd/internal/models"
	"github.com/go-authgate/authd/internal/store"
	"github.com/go-authgate/authd/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRouter configures the Gin router with all routes and middleware
func setupRouter(
	cfg *config.Config,
	db *store.Store,
	h handlerSet,
	tokens *token.Service,
	recorder metrics.Recorder,
) *gin.Engine {
	setupGinMode(cfg)
	r := gin.New()

	r.Use(metrics.HTTPMiddleware(recorder))
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/health", createHealthCheckHandler(db))
	setupMetricsEndpoint(r, cfg)

	limiter := setupRateLimiting(cfg)
	setupAPIRoutes(r, h, tokens, recorder, limiter)

	log.Printf("Auth server starting on %s", cfg.ServerAddr)
	return r
}

// setupAPIRoutes configures the /api/v1 route tree
func setupAPIRoutes(
	r *gin.Engine,
	h handlerSet,
	tokens *token.Service,
	recorder metrics.Recorder,
	limiter gin.HandlerFunc,
) {
	requireAuth := middleware.RequireAuth(tokens, recorder)
	requireAdmin := middleware.RequireRole(models.RoleAdmin)

	api := r.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/registration", limiter, h.auth.Register)
		auth.POST("/login", limiter, h.auth.Login)
		auth.POST("/refresh", h.auth.Refresh)
		auth.POST("/change", requireAuth, h.auth.Change)
		auth.GET("/history", requireAuth, h.auth.History)
		auth.POST("/logout", requireAuth, h.auth.Logout)
	}

	oauth := api.Group("/oauth")
	{
		oauth.GET("/:provider", h.oauth.Authorize)
		oauth.GET("/callback/:provider", h.oauth.Callback)
		oauth.GET("/add/:provider", requireAuth, h.oauth.Attach)
		oauth.DELETE("/:provider", requireAuth, h.oauth.Detach)
	}

	roles := api.Group("/roles", requireAuth, requireAdmin)
	{
		roles.GET("", h.roles.List)
		roles.POST("", h.roles.Create)
		roles.PATCH("/:id", h.roles.Rename)
		roles.DELETE("/:id", h.roles.Delete)
	}

	users := api.Group("/users", requireAuth, requireAdmin)
	{
		users.GET("", h.users.List)
		users.PUT("/:id/roles/:role", h.users.Grant)
		users.DELETE("/:id/roles/:role", h.users.Revoke)
	}
}

// setupMetricsEndpoint configures the Prometheus metrics endpoint
func setupMetricsEndpoint(r *gin.Engine, cfg *config.Config) {
	if !cfg.MetricsEnabled {
		log.Printf("Prometheus metrics disabled")
		return
	}
	log.Printf("Prometheus metrics enabled at /metrics")
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// createHealthCheckHandler creates health check endpoint handler
func createHealthCheckHandler(db *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch err := db.Health(); err {
		case nil:
			c.JSON(http.StatusOK, gin.H{
				"status":   "healthy",
				"database": "connected",
			})
		default:
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "disconnected",
			})
		}
	}
}

// setupGinMode sets Gin mode based on environment configuration
func setupGinMode(cfg *config.Config) {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
		return
	}
	gin.SetMode(gin.DebugMode)
}
