package bootstrap

import (
	"context"
	"log"
	"net/http"

	"github.com/go-authgate/authd/internal/cache"
	"github.com/go-authgate/authd/internal/config"
	"github.com/go-authgate/authd/internal/metrics"
	"github.com/go-authgate/authd/internal/services"
	"github.com/go-authgate/authd/internal/store"
	"github.com/go-authgate/authd/internal/token"

	"github.com/gin-gonic/gin"
)

// Application holds all initialized components
type Application struct {
	Config *config.Config

	// Core infrastructure
	DB              *store.Store
	MetricsRecorder metrics.Recorder
	TokenCache      cache.Cache[string]

	// Services
	TokenService *token.Service
	AuthService  *services.AuthService
	OAuthService *services.OAuthService
	RBACService  *services.RBACService

	// HTTP
	HandlerSet handlerSet
	Router     *gin.Engine
	Server     *http.Server
}

// Run initializes and starts the application
func Run(ctx context.Context, cfg *config.Config) error {
	app := &Application{Config: cfg}

	// Phase 1: Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Phase 2: Initialize infrastructure
	if err := app.initializeInfrastructure(ctx); err != nil {
		return err
	}

	// Phase 3: Initialize business layer
	app.initializeBusinessLayer()

	// Phase 4: Initialize HTTP layer
	app.initializeHTTPLayer()

	// Phase 5: Start server with graceful shutdown
	app.startWithGracefulShutdown()

	return nil
}

// initializeInfrastructure sets up database, metrics, and the token cache
func (app *Application) initializeInfrastructure(ctx context.Context) error {
	var err error

	app.DB, err = initializeDatabase(app.Config)
	if err != nil {
		return err
	}

	app.MetricsRecorder = initializeMetrics(app.Config)

	app.TokenCache, err = initializeTokenCache(ctx, app.Config)
	if err != nil {
		return err
	}

	return nil
}

// initializeBusinessLayer sets up the token service and business services
func (app *Application) initializeBusinessLayer() {
	app.TokenService = token.NewService(app.Config, app.TokenCache, app.DB)
	app.AuthService = services.NewAuthService(app.DB, app.TokenService, app.MetricsRecorder)
	app.RBACService = services.NewRBACService(app.DB)
}

// initializeHTTPLayer sets up OAuth providers, handlers, router, and server
func (app *Application) initializeHTTPLayer() {
	providers := initializeOAuthProviders(app.Config)
	app.OAuthService = services.NewOAuthService(
		app.DB,
		app.TokenService,
		providers,
		app.MetricsRecorder,
	)

	app.HandlerSet = initializeHandlers(
		app.AuthService,
		app.OAuthService,
		app.RBACService,
		app.TokenService,
		app.MetricsRecorder,
	)

	app.Router = setupRouter(
		app.Config,
		app.DB,
		app.HandlerSet,
		app.TokenService,
		app.MetricsRecorder,
	)

	app.Server = createHTTPServer(app.Config, app.Router)
}
