package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vidlink/api/internal/identity"
	"vidlink/api/internal/service"
)

const CurrentUserKey = "current_user"

// OptionalIdentity resolves the caller when a bearer token is present
// and lets the request through as a guest when it is not. An invalid
// token is rejected outright; a provider outage is surfaced as a
// dependency failure, never as "unauthenticated".
func OptionalIdentity(provider identity.Provider, auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "malformed_authorization_header"})
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")

		ident, err := provider.VerifyToken(c.Request.Context(), token)
		if err != nil {
			var provErr *identity.ProviderError
			if errors.As(err, &provErr) {
				c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "identity_provider_unavailable"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		user, err := auth.ResolveIdentity(c.Request.Context(), ident)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "resolve_user_failed"})
			return
		}

		c.Set(CurrentUserKey, user)
		c.Next()
	}
}
