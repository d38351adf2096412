package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"dns_manager/internal/auth"
	"dns_manager/internal/cache"
	"dns_manager/internal/httpx"
)

// AuthRequired is a middleware that validates the JWT token and rejects
// tokens revoked at logout.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httpx.FailErr(c, httpx.ErrUnauthorized("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			httpx.FailErr(c, httpx.ErrUnauthorized("invalid authorization header format"))
			c.Abort()
			return
		}

		claims, err := auth.ParseToken(parts[1])
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				httpx.FailErr(c, httpx.ErrTokenExpired("token expired"))
			} else {
				httpx.FailErr(c, httpx.ErrInvalidToken("invalid token"))
			}
			c.Abort()
			return
		}

		if claims.ID != "" && cache.Client != nil {
			revoked, err := cache.IsTokenRevoked(c.Request.Context(), claims.ID)
			if err == nil && revoked {
				httpx.FailErr(c, httpx.ErrInvalidToken("token revoked"))
				c.Abort()
				return
			}
		}

		c.Set("uid", claims.UID)
		c.Set("username", claims.Username)
		c.Set("role", claims.Role)
		c.Set("jti", claims.ID)
		if claims.ExpiresAt != nil {
			c.Set("token_expires", claims.ExpiresAt.Time)
		}

		c.Next()
	}
}
