package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/steamachieve/steamachieve-backend/internal/middleware"
	"github.com/steamachieve/steamachieve-backend/internal/services"
	"github.com/steamachieve/steamachieve-backend/internal/types"
)

type BookmarksHandler struct {
	profileService services.ProfileService
}

func NewBookmarksHandler(profileService services.ProfileService) *BookmarksHandler {
	return &BookmarksHandler{profileService: profileService}
}

func (bh *BookmarksHandler) List(c *gin.Context) {
	steamID := middleware.SteamID(c)

	bookmarks, err := bh.profileService.ListBookmarks(c.Request.Context(), steamID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "bookmarks_lookup_failed", err)
		return
	}
	RespondOK(c, gin.H{"success": true, "bookmarks": bookmarks})
}

func (bh *BookmarksHandler) Create(c *gin.Context) {
	var req struct {
		AppID           int    `json:"app_id" binding:"required"`
		AchievementName string `json:"achievement_name" binding:"required"`
		GuideURL        string `json:"guide_url" binding:"required"`
		GuideTitle      string `json:"guide_title"`
		GuideType       string `json:"guide_type"`
		Notes           string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	bookmark := &types.GuideBookmark{
		SteamID:         middleware.SteamID(c),
		AppID:           req.AppID,
		AchievementName: req.AchievementName,
		GuideURL:        req.GuideURL,
		GuideTitle:      req.GuideTitle,
		GuideType:       req.GuideType,
		Notes:           req.Notes,
	}
	if err := bh.profileService.SaveBookmark(c.Request.Context(), bookmark); err != nil {
		RespondError(c, http.StatusBadRequest, "bookmark_save_failed", err)
		return
	}
	RespondOK(c, gin.H{"success": true, "bookmark": bookmark})
}

func (bh *BookmarksHandler) Delete(c *gin.Context) {
	appID, err := strconv.Atoi(c.Param("appid"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_app_id", err)
		return
	}
	achievementName := c.Param("achievement")
	guideURL := c.Query("guide_url")

	steamID := middleware.SteamID(c)
	if err := bh.profileService.RemoveBookmark(c.Request.Context(), steamID, appID, achievementName, guideURL); err != nil {
		RespondError(c, http.StatusNotFound, "bookmark_delete_failed", err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}
