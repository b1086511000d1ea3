package app

import (
	"gorm.io/gorm"

	"github.com/steamachieve/steamachieve-backend/internal/logger"
	"github.com/steamachieve/steamachieve-backend/internal/repos"
)

type Repos struct {
	User             repos.UserRepo
	CachedGame       repos.CachedGameRepo
	AchievementGuide repos.AchievementGuideRepo
	SearchCache      repos.SearchCacheRepo
	AIGuide          repos.AIGuideRepo
	GuideBookmark    repos.GuideBookmarkRepo
	GuidePreferences repos.GuidePreferencesRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		User:             repos.NewUserRepo(db, log),
		CachedGame:       repos.NewCachedGameRepo(db, log),
		AchievementGuide: repos.NewAchievementGuideRepo(db, log),
		SearchCache:      repos.NewSearchCacheRepo(db, log),
		AIGuide:          repos.NewAIGuideRepo(db, log),
		GuideBookmark:    repos.NewGuideBookmarkRepo(db, log),
		GuidePreferences: repos.NewGuidePreferencesRepo(db, log),
	}
}
