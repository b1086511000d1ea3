package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/steamachieve/steamachieve-backend/internal/middleware"
	"github.com/steamachieve/steamachieve-backend/internal/services"
	"github.com/steamachieve/steamachieve-backend/internal/types"
)

type GuidesHandler struct {
	searchService     services.GuideSearchService
	aiService         services.AIGuideService
	aggregatorService services.GuideAggregatorService
	libraryService    services.LibraryService
}

func NewGuidesHandler(
	searchService services.GuideSearchService,
	aiService services.AIGuideService,
	aggregatorService services.GuideAggregatorService,
	libraryService services.LibraryService,
) *GuidesHandler {
	return &GuidesHandler{
		searchService:     searchService,
		aiService:         aiService,
		aggregatorService: aggregatorService,
		libraryService:    libraryService,
	}
}

type achievementRequest struct {
	AppID           int      `json:"app_id" binding:"required"`
	GameName        string   `json:"game_name"`
	AchievementName string   `json:"achievement_name" binding:"required"`
	Description     string   `json:"description"`
	GlobalPercent   *float64 `json:"global_percent"`
	MaxResults      int      `json:"max_results"`
}

func (r achievementRequest) ref() types.AchievementRef {
	return types.AchievementRef{
		AppID:           r.AppID,
		AchievementName: r.AchievementName,
		GameName:        r.GameName,
		Description:     r.Description,
		GlobalPercent:   r.GlobalPercent,
	}
}

// Search runs the web search pipeline for one achievement.
func (gh *GuidesHandler) Search(c *gin.Context) {
	var req achievementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	resp, err := gh.searchService.SearchAchievementGuides(c.Request.Context(),
		req.AppID, req.GameName, req.AchievementName, req.Description, req.MaxResults)
	if err != nil {
		if errors.Is(err, services.ErrDailyLimitReached) {
			RespondError(c, http.StatusTooManyRequests, "daily_limit_reached", err)
			return
		}
		RespondError(c, http.StatusBadGateway, "search_failed", err)
		return
	}
	RespondOK(c, resp)
}

// Aggregate fans out to every requested guide source and merges the
// results by quality.
func (gh *GuidesHandler) Aggregate(c *gin.Context) {
	var req struct {
		achievementRequest
		Sources []string `json:"sources"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	resp, err := gh.aggregatorService.Aggregate(c.Request.Context(), req.ref(), req.Sources, req.MaxResults)
	if err != nil {
		RespondError(c, http.StatusBadGateway, "aggregation_failed", err)
		return
	}
	RespondOK(c, resp)
}

// Cached serves previously aggregated guides without touching any
// upstream source.
func (gh *GuidesHandler) Cached(c *gin.Context) {
	appID, err := strconv.Atoi(c.Param("appid"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_app_id", err)
		return
	}
	achievementName := c.Param("achievement")

	items, err := gh.aggregatorService.GetCached(c.Request.Context(), appID, achievementName)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "cached_guides_failed", err)
		return
	}
	RespondOK(c, gin.H{"success": true, "guides": items, "total_found": len(items)})
}

// GenerateAI returns the stored AI guide, generating one on a miss or
// when force is set.
func (gh *GuidesHandler) GenerateAI(c *gin.Context) {
	var req struct {
		achievementRequest
		Force bool `json:"force"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	result, err := gh.aiService.Generate(c.Request.Context(), req.ref(), req.Force)
	if err != nil {
		if errors.Is(err, services.ErrAIDailyLimitReached) {
			RespondError(c, http.StatusTooManyRequests, "daily_limit_reached", err)
			return
		}
		RespondError(c, http.StatusBadGateway, "generation_failed", err)
		return
	}
	RespondOK(c, gin.H{"success": true, "guide": result.Guide, "from_cache": result.FromCache})
}

// BatchGenerateAI generates guides for a game's achievements until the
// daily budget runs out.
func (gh *GuidesHandler) BatchGenerateAI(c *gin.Context) {
	var req struct {
		AppID      int  `json:"app_id" binding:"required"`
		LockedOnly bool `json:"locked_only"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	steamID := middleware.SteamID(c)
	gameName, refs, err := gh.libraryService.GetAchievementRefs(c.Request.Context(), steamID, req.AppID, req.LockedOnly)
	if err != nil {
		RespondError(c, http.StatusBadGateway, "achievements_fetch_failed", err)
		return
	}

	result, err := gh.aiService.BatchGenerate(c.Request.Context(), gameName, req.AppID, refs)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "batch_generation_failed", err)
		return
	}
	RespondOK(c, gin.H{"success": true, "result": result})
}

// GetAI reads a stored AI guide and counts the view.
func (gh *GuidesHandler) GetAI(c *gin.Context) {
	appID, err := strconv.Atoi(c.Param("appid"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_app_id", err)
		return
	}
	achievementName := c.Param("achievement")

	guide, err := gh.aiService.Get(c.Request.Context(), appID, achievementName)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "guide_lookup_failed", err)
		return
	}
	if guide == nil {
		RespondError(c, http.StatusNotFound, "guide_not_found", errors.New("no AI guide for this achievement"))
		return
	}

	if err := gh.aiService.RecordView(c.Request.Context(), appID, achievementName); err == nil {
		guide.Views++
	}

	RespondOK(c, gin.H{"success": true, "guide": guide})
}

// RateAI records a 1-5 rating for a stored AI guide.
func (gh *GuidesHandler) RateAI(c *gin.Context) {
	var req struct {
		AppID           int    `json:"app_id" binding:"required"`
		AchievementName string `json:"achievement_name" binding:"required"`
		Rating          int    `json:"rating" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	if err := gh.aiService.RateGuide(c.Request.Context(), req.AppID, req.AchievementName, req.Rating); err != nil {
		RespondError(c, http.StatusBadRequest, "rating_failed", err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

// RateLimitStatus reports the remaining search and generation budgets.
func (gh *GuidesHandler) RateLimitStatus(c *gin.Context) {
	RespondOK(c, gin.H{
		"success": true,
		"search":  gh.searchService.LimiterStatus(),
		"ai":      gh.aiService.LimiterStatus(),
	})
}
