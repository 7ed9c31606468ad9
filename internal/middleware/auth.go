package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"recipehub/internal/auth"
	"recipehub/internal/policy"
)

const contextKeyActor = "actor"

// AuthMiddleware validates the bearer access token and stores the resolved
// actor in the request context. Refresh tokens are rejected here; they are
// only accepted by the refresh and logout endpoints.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c, "invalid authorization format, expected: Bearer <token>")
			return
		}

		claims, err := auth.ParseToken(parts[1], secret)
		if err != nil || claims.TokenType != auth.TokenTypeAccess {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set(contextKeyActor, policy.Actor{
			ID:       claims.UserID,
			TenantID: claims.TenantID,
			Role:     claims.Role,
		})
		c.Next()
	}
}

func GetActor(c *gin.Context) policy.Actor {
	val, exists := c.Get(contextKeyActor)
	if !exists {
		return policy.Actor{}
	}
	actor, ok := val.(policy.Actor)
	if !ok {
		return policy.Actor{}
	}
	return actor
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"status":  "error",
		"message": "Authentication failed",
		"errors":  gin.H{"detail": msg},
	})
}
