package app

import (
	"github.com/steamachieve/steamachieve-backend/internal/logger"
	"github.com/steamachieve/steamachieve-backend/internal/ratelimit"
	"github.com/steamachieve/steamachieve-backend/internal/services"
)

type Services struct {
	Auth         services.AuthService
	Library      services.LibraryService
	GuideRank    services.GuideRankService
	GuideSearch  services.GuideSearchService
	AIGuide      services.AIGuideService
	Aggregator   services.GuideAggregatorService
	Profile      services.ProfileService
	CacheSweeper services.CacheSweeperService
}

func wireServices(cfg Config, clients Clients, reposet Repos, log *logger.Logger) (Services, error) {
	auth, err := services.NewAuthService(clients.Steam, reposet.User, log)
	if err != nil {
		return Services{}, err
	}

	searchLimiter := ratelimit.New(cfg.SearchPerMinute, cfg.SearchPerDay)
	aiLimiter := ratelimit.New(cfg.AIPerMinute, cfg.AIPerDay)

	ranker := services.NewGuideRankService(log)
	search := services.NewGuideSearchService(
		clients.DuckDuckGo, reposet.SearchCache, reposet.AchievementGuide,
		clients.SearchCache, searchLimiter, ranker, log)
	aiGuide := services.NewAIGuideService(clients.OpenRouter, reposet.AIGuide, aiLimiter, log)
	aggregator := services.NewGuideAggregatorService(
		search, aiGuide, clients.Webpage, reposet.AchievementGuide, log)

	return Services{
		Auth:         auth,
		Library:      services.NewLibraryService(clients.Steam, reposet.CachedGame, log),
		GuideRank:    ranker,
		GuideSearch:  search,
		AIGuide:      aiGuide,
		Aggregator:   aggregator,
		Profile:      services.NewProfileService(reposet.GuideBookmark, reposet.GuidePreferences, log),
		CacheSweeper: services.NewCacheSweeperService(reposet.SearchCache, reposet.AchievementGuide, reposet.CachedGame, log),
	}, nil
}
