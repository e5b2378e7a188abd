package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/armoryops/armoryd/cache"
	"github.com/armoryops/armoryd/config"
	"github.com/gin-gonic/gin"
)

const (
	AccountIDKey = "account_id"
	RoleKey      = "role"
)

// Auth validates the Bearer JWT and checks that the session is still live
// in the cache, so a logout or ban revokes tokens before they expire.
func Auth(sec config.SecurityConfig, c cache.Cache) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		tokenStr := strings.TrimPrefix(header, "Bearer ")

		claims, err := ParseToken(tokenStr, sec.JWTSecret)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		sessionKey := "session:" + tokenStr
		cacheCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()
		exists, err := c.Exists(cacheCtx, sessionKey)
		if err != nil || !exists {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			return
		}

		ctx.Set(AccountIDKey, claims.AccountID)
		ctx.Set(RoleKey, claims.Role)
		ctx.Next()
	}
}

// RequireRole gates a route to the listed roles. It must run after Auth.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(ctx *gin.Context) {
		if !allowed[GetRole(ctx)] {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}
		ctx.Next()
	}
}

// GetAccountID retrieves the authenticated account ID from the Gin context.
func GetAccountID(c *gin.Context) int64 {
	if v, exists := c.Get(AccountIDKey); exists {
		return v.(int64)
	}
	return 0
}

// GetRole retrieves the authenticated account's role from the Gin context.
func GetRole(c *gin.Context) string {
	if v, exists := c.Get(RoleKey); exists {
		return v.(string)
	}
	return ""
}
