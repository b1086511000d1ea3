package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/steamachieve/steamachieve-backend/internal/handlers"
	"github.com/steamachieve/steamachieve-backend/internal/logger"
	"github.com/steamachieve/steamachieve-backend/internal/middleware"
	"github.com/steamachieve/steamachieve-backend/internal/services"
	"github.com/steamachieve/steamachieve-backend/internal/utils"
)

type RouterConfig struct {
	Log                *logger.Logger
	AuthService        services.AuthService
	HealthcheckHandler *handlers.HealthcheckHandler
	AuthHandler        *handlers.AuthHandler
	UserHandler        *handlers.UserHandler
	GamesHandler       *handlers.GamesHandler
	GuidesHandler      *handlers.GuidesHandler
	BookmarksHandler   *handlers.BookmarksHandler
	PreferencesHandler *handlers.PreferencesHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	allowedOrigin := utils.GetEnv("FRONTEND_ORIGIN", "http://localhost:3000", cfg.Log)
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{allowedOrigin, "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", cfg.HealthcheckHandler.Healthcheck)
	router.GET("/auth/login", cfg.AuthHandler.Login)
	router.GET("/auth/callback", cfg.AuthHandler.Callback)

	// ===============
	// || Protected ||
	// ===============
	api := router.Group("/api")
	api.Use(middleware.RequireAuth(cfg.AuthService, cfg.Log))
	// User
	api.GET("/user", cfg.UserHandler.Me)
	// Library
	api.GET("/games", cfg.GamesHandler.List)
	api.GET("/games/recent", cfg.GamesHandler.RecentlyPlayed)
	api.GET("/games/:appid/achievements", cfg.GamesHandler.Achievements)
	// Guides
	api.POST("/guides/search", cfg.GuidesHandler.Search)
	api.POST("/guides/aggregate", cfg.GuidesHandler.Aggregate)
	api.GET("/guides/cached/:appid/:achievement", cfg.GuidesHandler.Cached)
	api.GET("/guides/rate-limit", cfg.GuidesHandler.RateLimitStatus)
	// AI guides
	api.POST("/guides/ai/generate", cfg.GuidesHandler.GenerateAI)
	api.POST("/guides/ai/batch", cfg.GuidesHandler.BatchGenerateAI)
	api.GET("/guides/ai/:appid/:achievement", cfg.GuidesHandler.GetAI)
	api.POST("/guides/ai/rate", cfg.GuidesHandler.RateAI)
	// Bookmarks
	api.GET("/bookmarks", cfg.BookmarksHandler.List)
	api.POST("/bookmarks", cfg.BookmarksHandler.Create)
	api.DELETE("/bookmarks/:appid/:achievement", cfg.BookmarksHandler.Delete)
	// Preferences
	api.GET("/preferences", cfg.PreferencesHandler.Get)
	api.PUT("/preferences", cfg.PreferencesHandler.Update)

	return router
}
