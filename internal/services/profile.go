package services

import (
	"context"
	"fmt"
	"time"

	"github.com/steamachieve/steamachieve-backend/internal/logger"
	"github.com/steamachieve/steamachieve-backend/internal/repos"
	"github.com/steamachieve/steamachieve-backend/internal/types"
)

// ProfileService covers the per-user settings surface: saved guide
// bookmarks and display preferences.
type ProfileService interface {
	ListBookmarks(ctx context.Context, steamID string) ([]*types.GuideBookmark, error)
	SaveBookmark(ctx context.Context, bookmark *types.GuideBookmark) error
	RemoveBookmark(ctx context.Context, steamID string, appID int, achievementName, guideURL string) error
	GetPreferences(ctx context.Context, steamID string) (*types.GuidePreferences, error)
	SavePreferences(ctx context.Context, prefs *types.GuidePreferences) error
}

type profileService struct {
	log          *logger.Logger
	bookmarkRepo repos.GuideBookmarkRepo
	prefsRepo    repos.GuidePreferencesRepo
}

func NewProfileService(
	bookmarkRepo repos.GuideBookmarkRepo,
	prefsRepo repos.GuidePreferencesRepo,
	baseLog *logger.Logger,
) ProfileService {
	return &profileService{
		log:          baseLog.With("service", "ProfileService"),
		bookmarkRepo: bookmarkRepo,
		prefsRepo:    prefsRepo,
	}
}

func (ps *profileService) ListBookmarks(ctx context.Context, steamID string) ([]*types.GuideBookmark, error) {
	return ps.bookmarkRepo.ListForUser(ctx, nil, steamID)
}

func (ps *profileService) SaveBookmark(ctx context.Context, bookmark *types.GuideBookmark) error {
	if bookmark.SteamID == "" || bookmark.AppID == 0 || bookmark.AchievementName == "" || bookmark.GuideURL == "" {
		return fmt.Errorf("steam_id, app_id, achievement_name and guide_url are required")
	}
	if bookmark.GuideType == "" {
		bookmark.GuideType = types.GuideKindExternal
	}
	if bookmark.BookmarkedAt.IsZero() {
		bookmark.BookmarkedAt = time.Now().UTC()
	}
	return ps.bookmarkRepo.Upsert(ctx, nil, bookmark)
}

func (ps *profileService) RemoveBookmark(ctx context.Context, steamID string, appID int, achievementName, guideURL string) error {
	deleted, err := ps.bookmarkRepo.Delete(ctx, nil, steamID, appID, achievementName, guideURL)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("bookmark not found")
	}
	return nil
}

// GetPreferences returns stored preferences, or the defaults when the
// user has never saved any.
func (ps *profileService) GetPreferences(ctx context.Context, steamID string) (*types.GuidePreferences, error) {
	prefs, err := ps.prefsRepo.Get(ctx, nil, steamID)
	if err != nil {
		return nil, err
	}
	if prefs == nil {
		return &types.GuidePreferences{
			SteamID:               steamID,
			PreferAIGuides:        true,
			PreferVideoGuides:     true,
			PreferTextGuides:      true,
			PreferCommunityGuides: true,
		}, nil
	}
	return prefs, nil
}

func (ps *profileService) SavePreferences(ctx context.Context, prefs *types.GuidePreferences) error {
	if prefs.SteamID == "" {
		return fmt.Errorf("steam_id is required")
	}
	return ps.prefsRepo.Upsert(ctx, nil, prefs)
}
