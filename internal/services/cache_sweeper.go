package services

import (
	"context"
	"time"

	"github.com/steamachieve/steamachieve-backend/internal/logger"
	"github.com/steamachieve/steamachieve-backend/internal/repos"
)

const (
	sweepInterval     = time.Hour
	staleGuideAge     = 7 * 24 * time.Hour
	staleGameCacheAge = 24 * time.Hour
)

type CacheSweeperService interface {
	StartWorker(ctx context.Context)
	SweepOnce(ctx context.Context)
}

type cacheSweeperService struct {
	log             *logger.Logger
	searchCacheRepo repos.SearchCacheRepo
	guideRepo       repos.AchievementGuideRepo
	gameRepo        repos.CachedGameRepo
}

func NewCacheSweeperService(
	searchCacheRepo repos.SearchCacheRepo,
	guideRepo repos.AchievementGuideRepo,
	gameRepo repos.CachedGameRepo,
	baseLog *logger.Logger,
) CacheSweeperService {
	return &cacheSweeperService{
		log:             baseLog.With("service", "CacheSweeperService"),
		searchCacheRepo: searchCacheRepo,
		guideRepo:       guideRepo,
		gameRepo:        gameRepo,
	}
}

// StartWorker sweeps expired cache rows on an hourly ticker until the
// context is cancelled.
func (cs *cacheSweeperService) StartWorker(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()

		cs.SweepOnce(ctx)
		for {
			select {
			case <-ctx.Done():
				cs.log.Info("cache sweeper stopping")
				return
			case <-ticker.C:
				cs.SweepOnce(ctx)
			}
		}
	}()
}

func (cs *cacheSweeperService) SweepOnce(ctx context.Context) {
	if n, err := cs.searchCacheRepo.Sweep(ctx, nil); err != nil {
		cs.log.Warn("search cache sweep failed", "error", err)
	} else if n > 0 {
		cs.log.Info("swept expired search cache rows", "count", n)
	}

	if n, err := cs.guideRepo.Sweep(ctx, nil, staleGuideAge); err != nil {
		cs.log.Warn("guide sweep failed", "error", err)
	} else if n > 0 {
		cs.log.Info("swept stale guide rows", "count", n)
	}

	if n, err := cs.gameRepo.Sweep(ctx, nil, staleGameCacheAge); err != nil {
		cs.log.Warn("game cache sweep failed", "error", err)
	} else if n > 0 {
		cs.log.Info("swept stale game cache rows", "count", n)
	}
}
