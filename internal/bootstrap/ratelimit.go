package bootstrap

import (
	"log"

	"github.com/go-authgate/authd/internal/config"
	"github.com/go-authgate/authd/internal/middleware"

	"github.com/gin-gonic/gin"
)

// setupRateLimiting creates the rate limiting middleware for the credential
// endpoints. Returns a no-op middleware when rate limiting is disabled.
func setupRateLimiting(cfg *config.Config) gin.HandlerFunc {
	if !cfg.EnableRateLimit {
		return func(c *gin.Context) { c.Next() }
	}

	log.Printf("Rate limiting enabled (store: %s, %d req/min)",
		cfg.RateLimitStore, cfg.RateLimitPerMinute)

	limiter, err := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RequestsPerMinute: cfg.RateLimitPerMinute,
		StoreType:         middleware.RateLimitStoreType(cfg.RateLimitStore),
		RedisAddr:         cfg.RedisAddr,
		RedisPassword:     cfg.RedisPassword,
		RedisDB:           cfg.RedisDB,
	})
	if err != nil {
		log.Fatalf("Failed to create rate limiter: %v", err)
	}
	return limiter
}
