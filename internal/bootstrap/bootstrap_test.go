package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-authgate/authd/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBootstrapConfig() *config.Config {
	return &config.Config{
		ServerAddr:             ":0",
		BaseURL:                "http://localhost:8080",
		JWTSecret:              "test-secret",
		AccessTokenExpiration:  time.Hour,
		RefreshTokenExpiration: 24 * time.Hour,
		DatabaseDriver:         "sqlite",
		DatabaseDSN:            ":memory:",
		SuperuserLogin:         "admin",
		CacheBackend:           config.CacheBackendMemory,
		Providers:              map[string]config.ProviderConfig{},
	}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, testBootstrapConfig().Validate())

	cfg := testBootstrapConfig()
	cfg.DatabaseDriver = "mysql"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid DATABASE_DRIVER")

	cfg = testBootstrapConfig()
	cfg.DatabaseDriver = "postgres"
	cfg.DatabaseDSN = ""
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_DSN is required")

	cfg = testBootstrapConfig()
	cfg.CacheBackend = "memcached"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid CACHE_BACKEND")

	cfg = testBootstrapConfig()
	cfg.IsProduction = true
	cfg.JWTSecret = "your-256-bit-secret-change-in-production"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestInitializeMetrics(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		m := initializeMetrics(&config.Config{MetricsEnabled: enabled})
		require.NotNil(t, m)
	}
}

func TestInitializeTokenCacheMemory(t *testing.T) {
	cfg := testBootstrapConfig()
	c, err := initializeTokenCache(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, c)
	t.Cleanup(func() { _ = c.Close() })

	assert.NoError(t, c.Health(context.Background()))
}

func TestInitializeDatabaseSeedsSuperuser(t *testing.T) {
	db, err := initializeDatabase(testBootstrapConfig())
	require.NoError(t, err)

	admin, err := db.GetUserByLogin("admin")
	require.NoError(t, err)
	assert.True(t, admin.IsSuperuser)
}

func TestRouterHealthAndRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testBootstrapConfig()
	cfg.MetricsEnabled = true

	app := &Application{Config: cfg}
	require.NoError(t, app.initializeInfrastructure(context.Background()))
	app.initializeBusinessLayer()
	app.initializeHTTPLayer()

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")

	w = httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// Guarded route rejects anonymous callers
	w = httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/history", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Unknown provider name on a public oauth route
	w = httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/oauth/unknown", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
