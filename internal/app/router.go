package app

import (
	"github.com/gin-gonic/gin"

	"github.com/steamachieve/steamachieve-backend/internal/logger"
	"github.com/steamachieve/steamachieve-backend/internal/server"
)

func wireRouter(handlerset Handlers, serviceset Services, log *logger.Logger) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		Log:                log,
		AuthService:        serviceset.Auth,
		HealthcheckHandler: handlerset.Healthcheck,
		AuthHandler:        handlerset.Auth,
		UserHandler:        handlerset.User,
		GamesHandler:       handlerset.Games,
		GuidesHandler:      handlerset.Guides,
		BookmarksHandler:   handlerset.Bookmarks,
		PreferencesHandler: handlerset.Preferences,
	})
}
