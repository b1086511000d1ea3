package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/steamachieve/steamachieve-backend/internal/logger"
	"github.com/steamachieve/steamachieve-backend/internal/services"
)

const steamIDKey = "steam_id"

// RequireAuth validates the bearer token and stores the caller's steam
// id on the gin context for downstream handlers.
func RequireAuth(authService services.AuthService, log *logger.Logger) gin.HandlerFunc {
	mwLog := log.With("middleware", "RequireAuth")
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		steamID, err := authService.VerifyToken(token)
		if err != nil {
			mwLog.Warn("token verification failed", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(steamIDKey, steamID)
		c.Next()
	}
}

// SteamID returns the authenticated steam id set by RequireAuth, or ""
// on an unauthenticated request.
func SteamID(c *gin.Context) string {
	return c.GetString(steamIDKey)
}
