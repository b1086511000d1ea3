package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/steamachieve/steamachieve-backend/internal/middleware"
	"github.com/steamachieve/steamachieve-backend/internal/services"
)

type PreferencesHandler struct {
	profileService services.ProfileService
}

func NewPreferencesHandler(profileService services.ProfileService) *PreferencesHandler {
	return &PreferencesHandler{profileService: profileService}
}

func (ph *PreferencesHandler) Get(c *gin.Context) {
	steamID := middleware.SteamID(c)

	prefs, err := ph.profileService.GetPreferences(c.Request.Context(), steamID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "preferences_lookup_failed", err)
		return
	}
	RespondOK(c, gin.H{"success": true, "preferences": prefs})
}

func (ph *PreferencesHandler) Update(c *gin.Context) {
	var req struct {
		PreferAIGuides        *bool `json:"prefer_ai_guides"`
		PreferVideoGuides     *bool `json:"prefer_video_guides"`
		PreferTextGuides      *bool `json:"prefer_text_guides"`
		PreferCommunityGuides *bool `json:"prefer_community_guides"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	steamID := middleware.SteamID(c)

	// Start from current values so a partial body only changes what it
	// names.
	prefs, err := ph.profileService.GetPreferences(c.Request.Context(), steamID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "preferences_lookup_failed", err)
		return
	}
	prefs.SteamID = steamID
	if req.PreferAIGuides != nil {
		prefs.PreferAIGuides = *req.PreferAIGuides
	}
	if req.PreferVideoGuides != nil {
		prefs.PreferVideoGuides = *req.PreferVideoGuides
	}
	if req.PreferTextGuides != nil {
		prefs.PreferTextGuides = *req.PreferTextGuides
	}
	if req.PreferCommunityGuides != nil {
		prefs.PreferCommunityGuides = *req.PreferCommunityGuides
	}

	if err := ph.profileService.SavePreferences(c.Request.Context(), prefs); err != nil {
		RespondError(c, http.StatusInternalServerError, "preferences_save_failed", err)
		return
	}
	RespondOK(c, gin.H{"success": true, "preferences": prefs})
}
