package middleware

import (
	"github.com/go-authgate/authd/internal/token"

	"github.com/gin-gonic/gin"
)

// ContextClaims is the gin context key holding the validated token claims.
const ContextClaims = "token_claims"

// ClaimsFromContext returns the validated claims set by RequireAuth.
func ClaimsFromContext(c *gin.Context) (*token.Claims, bool) {
	value, exists := c.Get(ContextClaims)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*token.Claims)
	return claims, ok
}
