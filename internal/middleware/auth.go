package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/agendahub/booking-api/internal/gateway/identity"
	"github.com/agendahub/booking-api/pkg/httputil"
)

// Context keys set by the auth gate.
const (
	ContextExternalID = "externalID"
	ContextClaims     = "identityClaims"
)

type AuthMiddleware struct {
	identityGw identity.Gateway
}

func NewAuthMiddleware(identityGw identity.Gateway) *AuthMiddleware {
	return &AuthMiddleware{identityGw: identityGw}
}

// Authenticate verifies the bearer token with the identity provider and
// attaches the decoded claims to the request context. A missing header
// fails before any provider call.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				httputil.NewErrorResponse("missing authorization header"))
			return
		}

		token := strings.TrimSpace(authHeader)
		// Tolerate a doubled "Bearer " prefix from misbehaving clients.
		for strings.HasPrefix(token, "Bearer ") {
			token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				httputil.NewErrorResponse("invalid authorization format"))
			return
		}

		claims, err := m.identityGw.VerifyToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				httputil.NewErrorResponse("invalid token: "+err.Error()))
			return
		}

		c.Set(ContextExternalID, claims.ExternalID)
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// ExternalID returns the authenticated caller's external auth id, if
// the auth gate ran for this request.
func ExternalID(c *gin.Context) (string, bool) {
	id := c.GetString(ContextExternalID)
	return id, id != ""
}
