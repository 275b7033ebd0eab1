package bootstrap

import (
	"github.com/go-authgate/authd/internal/handlers"
	"github.com/go-authgate/authd/internal/metrics"
	"github.com/go-authgate/authd/internal/services"
	"github.com/go-authgate/authd/internal/token"
)

// handlerSet holds all HTTP handlers
type handlerSet struct {
	auth  *handlers.AuthHandler
	oauth *handlers.OAuthHandler
	roles *handlers.RolesHandler
	users *handlers.UsersHandler
}

// initializeHandlers creates all HTTP handlers
func initializeHandlers(
	authService *services.AuthService,
	oauthService *services.OAuthService,
	rbacService *services.RBACService,
	tokenService *token.Service,
	recorder metrics.Recorder,
) handlerSet {
	return handlerSet{
		auth:  handlers.NewAuthHandler(authService, tokenService, recorder),
		oauth: handlers.NewOAuthHandler(oauthService),
		roles: handlers.NewRolesHandler(rbacService),
		users: handlers.NewUsersHandler(rbacService),
	}
}
