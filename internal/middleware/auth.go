package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-authgate/authd/internal/metrics"
	"github.com/go-authgate/authd/internal/token"

	"github.com/gin-gonic/gin"
)

// RequireAuth validates the Bearer access token and stores its claims in
// the request context. A missing, invalid or revoked token aborts with 401
// before any business logic runs.
func RequireAuth(tokens *token.Service, rec metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing or malformed authorization header",
			})
			return
		}

		claims, err := tokens.Validate(c.Request.Context(), tokenString)
		if err != nil {
			rec.RecordTokenValidation(validationOutcome(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or revoked token",
			})
			return
		}

		rec.RecordTokenValidation("valid")
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

func validationOutcome(err error) string {
	switch {
	case errors.Is(err, token.ErrExpiredToken):
		return "expired"
	case errors.Is(err, token.ErrRevokedToken):
		return "revoked"
	default:
		return "invalid"
	}
}

// RequireRole gates an operation on a required role. The check is pure: it
// reads only the role snapshot embedded in the validated claims, and a set
// superuser flag overrides it. Must be used after RequireAuth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}

		if !claims.IsSuperuser && !claims.HasRole(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "insufficient permissions",
			})
			return
		}

		c.Next()
	}
}
