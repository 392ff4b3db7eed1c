package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/startuphub/backend/internal/model"
	"github.com/startuphub/backend/internal/service"
)

const principalKey = "principal"

// AuthMiddleware resolves the opaque API token from the Authorization header
// and injects the principal into the request context. Both `Token <key>` and
// `Bearer <key>` schemes are accepted.
func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := TokenFromHeader(c.GetHeader("Authorization"))
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{Error: "authorization required"})
			return
		}

		principal, err := authService.PrincipalFromToken(c.Request.Context(), key)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{Error: "invalid token"})
			return
		}

		c.Set(principalKey, *principal)
		c.Next()
	}
}

// TokenFromHeader extracts the opaque key from an Authorization header value
func TokenFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	switch strings.ToLower(parts[0]) {
	case "token", "bearer":
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// Principal returns the authenticated user injected by AuthMiddleware
func Principal(c *gin.Context) model.UserRef {
	val, _ := c.Get(principalKey)
	principal, _ := val.(model.UserRef)
	return principal
}
