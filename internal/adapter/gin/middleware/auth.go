package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"user-account-service/pkg/logger"
	"user-account-service/pkg/response"
	"user-account-service/pkg/token"
)

// IdentityKey is the gin context key holding the verified *token.Claims.
const IdentityKey = "identity"

// AccessTokenHeader is accepted as an alternative to Authorization.
const AccessTokenHeader = "x-access-token"

// Authenticate rejects requests without a valid identity token.
func Authenticate(tokens token.Helper) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := extractToken(c)
		if raw == "" {
			response.Error(http.StatusUnauthorized, "unauthorized").Send(c)
			return
		}

		claims, err := tokens.Verify(raw)
		if err != nil {
			response.Error(http.StatusUnauthorized, "unauthorized").Send(c)
			return
		}

		c.Set(IdentityKey, claims)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.ID))
		c.Next()
	}
}

// IdentityFrom returns the claims stored by Authenticate.
func IdentityFrom(c *gin.Context) (*token.Claims, bool) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*token.Claims)
	return claims, ok && claims != nil
}

func extractToken(c *gin.Context) string {
	if h := strings.TrimSpace(c.GetHeader("Authorization")); h != "" {
		if scheme, rest, found := strings.Cut(h, " "); found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(rest)
		}
		return h
	}
	return strings.TrimSpace(c.GetHeader(AccessTokenHeader))
}
