// README: Auth middleware; verifies the bearer token and exposes the caller identity.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tripintake/internal/infra"
)

const (
	ctxCallerUID  = "caller_uid"
	ctxCallerRole = "caller_role"
)

// Auth rejects requests without a verifiable "Authorization: Bearer <token>".
func Auth(verifier infra.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		raw = strings.TrimSpace(raw)
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		token, err := verifier.VerifyIDToken(c.Request.Context(), raw)
		if err != nil || token == nil || token.UID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ctxCallerUID, token.UID)
		if role, ok := token.Claims["role"].(string); ok {
			c.Set(ctxCallerRole, role)
		}
		c.Next()
	}
}

// RequireRole lets only callers whose token carries the given role claim through.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CallerRole(c) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// CallerUID returns the verified uid, or "" outside Auth.
func CallerUID(c *gin.Context) string {
	return c.GetString(ctxCallerUID)
}

// CallerRole returns the role claim, or "" when the token has none.
func CallerRole(c *gin.Context) string {
	return c.GetString(ctxCallerRole)
}
