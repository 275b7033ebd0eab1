package bootstrap

import (
	"context"
	"fmt"
	"log"

	"github.com/go-authgate/authd/internal/cache"
	"github.com/go-authgate/authd/internal/config"
	"github.com/go-authgate/authd/internal/metrics"
)

// initializeMetrics initializes Prometheus metrics
func initializeMetrics(cfg *config.Config) metrics.Recorder {
	recorder := metrics.Init(cfg.MetricsEnabled)
	if cfg.MetricsEnabled {
		log.Println("Prometheus metrics initialized")
	} else {
		log.Println("Metrics disabled (using noop implementation)")
	}
	return recorder
}

// initializeTokenCache initializes the revocation cache holding refresh
// entries and the access token denylist.
func initializeTokenCache(
	ctx context.Context,
	cfg *config.Config,
) (cache.Cache[string], error) {
	switch cfg.CacheBackend {
	case config.CacheBackendRedis:
		c, err := cache.NewRedisCache[string](
			ctx,
			cfg.RedisAddr,
			cfg.RedisPassword,
			cfg.RedisDB,
			cfg.RedisPrefix,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis token cache: %w", err)
		}
		log.Printf("Token cache: redis (addr=%s, db=%d)", cfg.RedisAddr, cfg.RedisDB)
		return c, nil

	default: // memory
		log.Println("Token cache: memory (single instance only)")
		return cache.NewMemoryCache[string](), nil
	}
}
