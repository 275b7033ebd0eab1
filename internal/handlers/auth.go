package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-authgate/authd/internal/metrics"
	"github.com/go-authgate/authd/internal/middleware"
	"github.com/go-authgate/authd/internal/services"
	"github.com/go-authgate/authd/internal/token"
	"github.com/go-authgate/authd/internal/util"

	"github.com/gin-gonic/gin"
)

// AuthHandler exposes registration, login, credential change, history,
// refresh and logout.
type AuthHandler struct {
	auth    *services.AuthService
	tokens  *token.Service
	metrics metrics.Recorder
}

func NewAuthHandler(
	auth *services.AuthService,
	tokens *token.Service,
	m metrics.Recorder,
) *AuthHandler {
	return &AuthHandler{
		auth:    auth,
		tokens:  tokens,
		metrics: m,
	}
}

type credentialsRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Register creates a new user account.
func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
		case errors.Is(err, services.ErrLoginTaken):
			c.JSON(http.StatusConflict, errorBody{Error: err.Error()})
		default:
			internalError(c, "[Auth] Registration failed", err)
		}
		return
	}

	c.JSON(http.StatusCreated, newUserBody(user))
}

// Login exchanges credentials for a token pair, appending a login history
// record on the way.
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), req.Login, req.Password, c.Request.UserAgent())
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusConflict, errorBody{Error: err.Error()})
			return
		}
		internalError(c, "[Auth] Login failed", err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

// Change updates the caller's login and password.
func (h *AuthHandler) Change(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorBody{Error: "authentication required"})
		return
	}

	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	user, err := h.auth.ChangeCredentials(c.Request.Context(), claims.UserID, req.Login, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
		case errors.Is(err, services.ErrLoginTaken), errors.Is(err, services.ErrSamePassword):
			c.JSON(http.StatusConflict, errorBody{Error: err.Error()})
		default:
			internalError(c, "[Auth] Credential change failed", err)
		}
		return
	}

	c.JSON(http.StatusAccepted, newUserBody(user))
}

// History lists the caller's login history, newest first.
func (h *AuthHandler) History(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorBody{Error: "authentication required"})
		return
	}

	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 10)

	sessions, _, err := h.auth.History(c.Request.Context(), claims.UserID, page, pageSize)
	if err != nil {
		internalError(c, "[Auth] History lookup failed", err)
		return
	}

	items := make([]historyItem, 0, len(sessions))
	for _, session := range sessions {
		items = append(items, historyItem{
			UserAgent: session.UserAgent,
			AuthDate:  session.AuthDate,
		})
	}
	c.JSON(http.StatusOK, items)
}

// Refresh rotates a refresh token into a fresh pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	pair, err := h.tokens.Refresh(c.Request.Context(), req.RefreshToken, c.Request.UserAgent())
	if err != nil {
		h.metrics.RecordTokenRefresh(false)
		switch {
		case errors.Is(err, token.ErrRefreshMismatch),
			errors.Is(err, token.ErrInvalidToken),
			errors.Is(err, token.ErrExpiredToken),
			errors.Is(err, token.ErrUnknownUser):
			c.JSON(http.StatusConflict, errorBody{Error: "refresh token not valid"})
		default:
			internalError(c, "[Auth] Refresh failed", err)
		}
		return
	}

	h.metrics.RecordTokenRefresh(true)
	h.metrics.RecordTokenIssued()
	c.JSON(http.StatusOK, pair)
}

// Logout revokes the caller's access token and drops the device's refresh
// entry.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorBody{Error: "authentication required"})
		return
	}

	if err := h.tokens.Revoke(c.Request.Context(), claims, c.Request.UserAgent()); err != nil {
		internalError(c, "[Auth] Logout failed", err)
		return
	}

	h.metrics.RecordTokenRevoked()
	c.JSON(http.StatusOK, resultBody{Result: "user successfully logged out"})
}

// internalError logs the full error and returns a generic failure without
// leaking internals.
func internalError(c *gin.Context, tag string, err error) {
	log.Printf("%s: %v", tag, err)
	c.JSON(http.StatusInternalServerError, errorBody{Error: "internal server error"})
}

func queryInt(c *gin.Context, key string, defaultValue int) int {
	if value := c.Query(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
