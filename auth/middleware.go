package auth

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// The Telegram Mini App signature check happens upstream (the gateway
// validates initData against the bot token); by the time a request reaches
// this service the caller identity arrives as trusted headers. This package is
// the boundary to that identity collaborator.

const (
	callerIDKey       = "caller_tg_id"
	callerUsernameKey = "caller_username"
	callerFullNameKey = "caller_full_name"

	headerTelegramID       = "X-Telegram-Id"
	headerTelegramUsername = "X-Telegram-Username"
	headerTelegramFullName = "X-Telegram-Name"
	headerAdminToken       = "X-Admin-Token"
)

// IdentityMiddleware requires a verified Telegram caller id and stashes the
// identity in the gin context for handlers.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(headerTelegramID)
		if raw == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: missing Telegram identity"})
			c.Abort()
			return
		}

		tgID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || tgID <= 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: invalid Telegram identity"})
			c.Abort()
			return
		}

		c.Set(callerIDKey, tgID)
		c.Set(callerUsernameKey, c.GetHeader(headerTelegramUsername))
		c.Set(callerFullNameKey, c.GetHeader(headerTelegramFullName))
		c.Next()
	}
}

// RequireAdminToken gates admin routes with the shared ADMIN_TOKEN.
func RequireAdminToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" || c.GetHeader(headerAdminToken) != token {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: invalid admin token"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetCallerID returns the verified Telegram id set by IdentityMiddleware.
func GetCallerID(c *gin.Context) (int64, bool) {
	value, exists := c.Get(callerIDKey)
	if !exists {
		return 0, false
	}
	tgID, ok := value.(int64)
	return tgID, ok
}

// GetCallerProfile returns the optional display fields. Empty headers come
// back as nil so they map cleanly onto the nullable user columns.
func GetCallerProfile(c *gin.Context) (username, fullName *string) {
	if v := c.GetString(callerUsernameKey); v != "" {
		username = &v
	}
	if v := c.GetString(callerFullNameKey); v != "" {
		fullName = &v
	}
	return username, fullName
}
