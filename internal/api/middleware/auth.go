package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hasanRafi2002/asgn-12-server/internal/auth"
	"github.com/hasanRafi2002/asgn-12-server/internal/cache"
	"github.com/hasanRafi2002/asgn-12-server/internal/utils"
)

const (
	// ContextKeyClaims holds the validated *auth.Claims in Gin context.
	ContextKeyClaims = "claims"
	// ContextKeyUserEmail holds the caller's email in Gin context.
	ContextKeyUserEmail = "userEmail"
)

const (
	MsgNoToken      = "Authorization denied. No token provided."
	MsgTokenExpired = "Token expired. Please refresh your token."
	MsgInvalidToken = "Invalid token. Authentication failed."
)

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// AuthMiddleware creates a Gin middleware for JWT authentication.
// denylist may be nil, which disables revocation checks.
func AuthMiddleware(jwtSecret string, denylist cache.ITokenDenylist) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": MsgNoToken})
			return
		}

		tokenString, ok := BearerToken(authHeader)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": MsgInvalidToken})
			return
		}

		claims, err := auth.ValidateJWT(tokenString, jwtSecret)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": MsgTokenExpired})
				return
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": MsgInvalidToken})
			return
		}

		if denylist != nil && claims.RegisteredClaims.ID != "" {
			revoked, err := denylist.IsRevoked(c.Request.Context(), claims.RegisteredClaims.ID)
			if err != nil {
				// Redis outages do not lock everyone out.
				utils.Logger().Warn("token denylist lookup failed", zap.Error(err))
			} else if revoked {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": MsgInvalidToken})
				return
			}
		}

		c.Set(ContextKeyClaims, claims)
		c.Set(ContextKeyUserEmail, claims.Email)
		c.Next()
	}
}

// ClaimsFromContext returns the claims stored by AuthMiddleware.
func ClaimsFromContext(c *gin.Context) (*auth.Claims, bool) {
	v, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}
