package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/steamachieve/steamachieve-backend/internal/middleware"
	"github.com/steamachieve/steamachieve-backend/internal/services"
)

type GamesHandler struct {
	libraryService services.LibraryService
}

func NewGamesHandler(libraryService services.LibraryService) *GamesHandler {
	return &GamesHandler{libraryService: libraryService}
}

// List returns the user's owned games, cached for an hour unless
// ?refresh=true forces a fetch from Steam.
func (gh *GamesHandler) List(c *gin.Context) {
	steamID := middleware.SteamID(c)
	forceRefresh := c.Query("refresh") == "true"

	resp, err := gh.libraryService.GetOwnedGames(c.Request.Context(), steamID, forceRefresh)
	if err != nil {
		RespondError(c, http.StatusBadGateway, "games_fetch_failed", err)
		return
	}
	RespondOK(c, resp)
}

func (gh *GamesHandler) RecentlyPlayed(c *gin.Context) {
	steamID := middleware.SteamID(c)

	count, _ := strconv.Atoi(c.DefaultQuery("count", "5"))
	games, err := gh.libraryService.GetRecentlyPlayed(c.Request.Context(), steamID, count)
	if err != nil {
		RespondError(c, http.StatusBadGateway, "recent_games_fetch_failed", err)
		return
	}
	RespondOK(c, gin.H{"success": true, "games": games, "game_count": len(games)})
}

// Achievements returns merged achievement data for one game, locked
// achievements first.
func (gh *GamesHandler) Achievements(c *gin.Context) {
	steamID := middleware.SteamID(c)

	appID, err := strconv.Atoi(c.Param("appid"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_app_id", err)
		return
	}

	resp, err := gh.libraryService.GetAchievements(c.Request.Context(), steamID, appID)
	if err != nil {
		RespondError(c, http.StatusBadGateway, "achievements_fetch_failed", err)
		return
	}
	RespondOK(c, resp)
}
