package handlers

import (
	"errors"
	"net/http"

	"github.com/go-authgate/authd/internal/middleware"
	"github.com/go-authgate/authd/internal/oauth"
	"github.com/go-authgate/authd/internal/services"

	"github.com/gin-gonic/gin"
)

// OAuthHandler exposes the federated sign-in endpoints: authorize redirect
// (anonymous and authenticated "add provider" variants), the provider
// callback and explicit detach.
type OAuthHandler struct {
	oauth *services.OAuthService
}

func NewOAuthHandler(o *services.OAuthService) *OAuthHandler {
	return &OAuthHandler{oauth: o}
}

// Authorize starts the anonymous sign-in flow: redirect to the provider
// with an empty state.
func (h *OAuthHandler) Authorize(c *gin.Context) {
	h.redirect(c, "")
}

// Attach starts the authenticated "add provider" flow: the state encodes
// the caller's user id so the callback can tell the flows apart.
func (h *OAuthHandler) Attach(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorBody{Error: "authentication required"})
		return
	}
	h.redirect(c, services.StateForUser(claims.UserID))
}

func (h *OAuthHandler) redirect(c *gin.Context, state string) {
	provider := c.Param("provider")

	url, err := h.oauth.AuthorizeURL(provider, state)
	if err != nil {
		if errors.Is(err, oauth.ErrUnknownProvider) {
			c.JSON(http.StatusBadRequest, errorBody{
				Error: "unsupported provider name - " + provider,
			})
			return
		}
		internalError(c, "[OAuth] Authorize failed", err)
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, url)
}

// Callback is the redirect target for providers. Depending on the resolved
// branch it answers with a token pair (login, register) or an attach
// confirmation.
func (h *OAuthHandler) Callback(c *gin.Context) {
	provider := c.Param("provider")
	code := c.Query("code")
	state := c.Query("state")

	result, err := h.oauth.Callback(
		c.Request.Context(),
		provider,
		code,
		state,
		c.Request.UserAgent(),
	)
	if err != nil {
		switch {
		case errors.Is(err, oauth.ErrUnknownProvider):
			c.JSON(http.StatusBadRequest, errorBody{
				Error: "unsupported provider name - " + provider,
			})
		case errors.Is(err, services.ErrIdentityAttached):
			c.JSON(http.StatusConflict, errorBody{Error: provider + " already attached"})
		case errors.Is(err, services.ErrUserNotFound):
			c.JSON(http.StatusConflict, errorBody{Error: err.Error()})
		default:
			internalError(c, "[OAuth] Callback failed", err)
		}
		return
	}

	if result.Tokens != nil {
		c.JSON(http.StatusOK, result.Tokens)
		return
	}
	c.JSON(http.StatusOK, resultBody{
		Result: provider + " account successfully attached",
	})
}

// Detach unlinks the caller's account from the named provider.
func (h *OAuthHandler) Detach(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorBody{Error: "authentication required"})
		return
	}
	provider := c.Param("provider")

	if err := h.oauth.Detach(claims.UserID, provider); err != nil {
		switch {
		case errors.Is(err, oauth.ErrUnknownProvider):
			c.JSON(http.StatusBadRequest, errorBody{
				Error: "unsupported provider name - " + provider,
			})
		case errors.Is(err, services.ErrIdentityNotLinked):
			c.JSON(http.StatusConflict, errorBody{
				Error: "user does not have " + provider + " account",
			})
		default:
			internalError(c, "[OAuth] Detach failed", err)
		}
		return
	}

	c.JSON(http.StatusOK, resultBody{
		Result: provider + " account successfully detached",
	})
}
