package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/time/rate"
	"gorm.io/datatypes"

	"github.com/steamachieve/steamachieve-backend/internal/clients/duckduckgo"
	redisclient "github.com/steamachieve/steamachieve-backend/internal/clients/redis"
	"github.com/steamachieve/steamachieve-backend/internal/logger"
	"github.com/steamachieve/steamachieve-backend/internal/ratelimit"
	"github.com/steamachieve/steamachieve-backend/internal/repos"
	"github.com/steamachieve/steamachieve-backend/internal/types"
	"github.com/steamachieve/steamachieve-backend/internal/utils"
)

const searchCacheTTL = 7 * 24 * time.Hour

// scoreBase and scorePerRank turn a result's position into a quality
// score so web results can be merged with the other sources.
const (
	searchScoreBase    = 70
	searchScorePerRank = 5
)

type SearchResponse struct {
	Success   bool              `json:"success"`
	Guides    []types.GuideItem `json:"guides"`
	Query     string            `json:"query"`
	FromCache bool              `json:"from_cache"`
}

type GuideSearchService interface {
	Search(ctx context.Context, gameName, achievementName, description string, maxResults int) ([]types.GuideItem, bool, error)
	SearchAchievementGuides(ctx context.Context, appID int, gameName, achievementName, description string, maxResults int) (*SearchResponse, error)
	LimiterStatus() ratelimit.Status
}

type guideSearchService struct {
	log       *logger.Logger
	ddg       duckduckgo.Searcher
	cacheRepo repos.SearchCacheRepo
	guideRepo repos.AchievementGuideRepo
	hotCache  redisclient.SearchCache
	limiter   *ratelimit.Limiter
	throttle  *rate.Limiter
	ranker    GuideRankService
}

func NewGuideSearchService(
	ddg duckduckgo.Searcher,
	cacheRepo repos.SearchCacheRepo,
	guideRepo repos.AchievementGuideRepo,
	hotCache redisclient.SearchCache,
	limiter *ratelimit.Limiter,
	ranker GuideRankService,
	baseLog *logger.Logger,
) GuideSearchService {
	log := baseLog.With("service", "GuideSearchService")
	intervalSec := utils.GetEnvAsFloat("SEARCH_MIN_INTERVAL_SECONDS", 2.0, baseLog)
	var throttle *rate.Limiter
	if intervalSec > 0 {
		throttle = rate.NewLimiter(rate.Every(time.Duration(intervalSec*float64(time.Second))), 1)
	} else {
		throttle = rate.NewLimiter(rate.Inf, 1)
	}
	return &guideSearchService{
		log:       log,
		ddg:       ddg,
		cacheRepo: cacheRepo,
		guideRepo: guideRepo,
		hotCache:  hotCache,
		limiter:   limiter,
		throttle:  throttle,
		ranker:    ranker,
	}
}

func buildQueries(gameName, achievementName string) []string {
	return []string{
		fmt.Sprintf("%q %q achievement guide walkthrough", gameName, achievementName),
		fmt.Sprintf("%q %q how to unlock", gameName, achievementName),
		fmt.Sprintf("%q %q tips walkthrough", gameName, achievementName),
		fmt.Sprintf("%s %s achievement guide", gameName, achievementName),
		fmt.Sprintf("%s %s steam guide", gameName, achievementName),
	}
}

// Search runs the query ladder against the cache tiers and then the web.
// The bool result reports whether the guides came from a cache. Cache
// hits never consume rate-limit budget.
func (ss *guideSearchService) Search(ctx context.Context, gameName, achievementName, description string, maxResults int) ([]types.GuideItem, bool, error) {
	if maxResults <= 0 {
		maxResults = 5
	}

	queries := buildQueries(gameName, achievementName)

	for _, query := range queries {
		if items, ok := ss.cachedResults(ctx, query); ok {
			ss.log.Info("search cache hit", "query", query, "count", len(items))
			return markFromCache(truncateItems(items, maxResults)), true, nil
		}
	}

	for _, query := range queries {
		items, err := ss.searchWeb(ctx, query, gameName, achievementName, maxResults)
		if err != nil {
			if err == ErrDailyLimitReached {
				return nil, false, err
			}
			ss.log.Warn("web search failed", "query", query, "error", err)
			continue
		}
		if len(items) == 0 {
			continue
		}
		ss.persist(ctx, query, items)
		return truncateItems(items, maxResults), false, nil
	}

	return []types.GuideItem{}, false, nil
}

// ErrDailyLimitReached aborts a search run instead of blocking on a
// window that will not clear for hours.
var ErrDailyLimitReached = fmt.Errorf("daily search limit reached")

func (ss *guideSearchService) searchWeb(ctx context.Context, query, gameName, achievementName string, maxResults int) ([]types.GuideItem, error) {
	if ss.limiter.DailyExhausted() {
		return nil, ErrDailyLimitReached
	}
	if !ss.limiter.Allow() {
		wait := ss.limiter.TimeUntilAllowed()
		ss.log.Info("rate limited, waiting", "seconds", wait.Seconds())
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	if err := ss.throttle.Wait(ctx); err != nil {
		return nil, err
	}
	ss.limiter.Record()

	// Over-fetch so the ranker has room to drop junk.
	hits, err := ss.ddg.Search(ctx, query, maxResults*2)
	if err != nil {
		return nil, err
	}

	items := make([]types.GuideItem, 0, len(hits))
	for _, hit := range hits {
		u := hit.URL
		items = append(items, types.GuideItem{
			Source:  types.SourceSearch,
			Kind:    types.GuideKindExternal,
			Title:   hit.Title,
			Snippet: hit.Snippet,
			URL:     &u,
		})
	}

	// Score over the ranked order, not the raw hit order, so the best
	// result always carries the highest score into cross-source merges.
	ranked := ss.ranker.RankResults(items, gameName, achievementName)
	for i := range ranked {
		score := searchScoreBase - searchScorePerRank*i
		if score < 0 {
			score = 0
		}
		ranked[i].QualityScore = score
	}
	return ranked, nil
}

func (ss *guideSearchService) cachedResults(ctx context.Context, query string) ([]types.GuideItem, bool) {
	if items, ok := ss.hotCache.Get(ctx, query); ok {
		return items, true
	}

	entry, err := ss.cacheRepo.GetValid(ctx, nil, query)
	if err != nil {
		ss.log.Warn("search cache lookup failed", "error", err)
		return nil, false
	}
	if entry == nil {
		return nil, false
	}

	var items []types.GuideItem
	if err := json.Unmarshal(entry.ResultsJSON, &items); err != nil {
		ss.log.Warn("bad search cache entry", "query", query, "error", err)
		return nil, false
	}
	ss.hotCache.Set(ctx, query, items, time.Until(entry.ExpiresAt))
	return items, true
}

func (ss *guideSearchService) persist(ctx context.Context, query string, items []types.GuideItem) {
	raw, err := json.Marshal(items)
	if err != nil {
		ss.log.Warn("marshal search results failed", "error", err)
		return
	}

	now := time.Now().UTC()
	entry := &types.SearchCacheEntry{
		SearchQuery: query,
		ResultsJSON: datatypes.JSON(raw),
		ResultCount: len(items),
		SearchedAt:  now,
		ExpiresAt:   now.Add(searchCacheTTL),
	}
	if err := ss.cacheRepo.Upsert(ctx, nil, entry); err != nil {
		ss.log.Warn("persist search results failed", "error", err)
	}
	ss.hotCache.Set(ctx, query, items, searchCacheTTL)
}

// SearchAchievementGuides is the API-facing wrapper. It owns the
// per-achievement guide cache: fresh rows are served directly, and a
// successful search rewrites them. When every query comes up empty it
// still returns a usable pointer at the Steam community guide search
// for the game; that synthetic item is never cached.
func (ss *guideSearchService) SearchAchievementGuides(ctx context.Context, appID int, gameName, achievementName, description string, maxResults int) (*SearchResponse, error) {
	query := buildQueries(gameName, achievementName)[0]

	rows, err := ss.guideRepo.GetFresh(ctx, nil, appID, achievementName, staleGuideAge)
	if err != nil {
		ss.log.Warn("guide cache lookup failed", "app_id", appID, "error", err)
	}
	if len(rows) > 0 {
		items := make([]types.GuideItem, 0, len(rows))
		for _, row := range rows {
			u := row.GuideURL
			items = append(items, types.GuideItem{
				Source:    row.Source,
				Kind:      kindForSource(row.Source),
				Title:     row.GuideTitle,
				Snippet:   row.GuideSnippet,
				URL:       &u,
				Rank:      row.SearchRank,
				FromCache: true,
			})
		}
		return &SearchResponse{Success: true, Guides: items, Query: query, FromCache: true}, nil
	}

	items, fromCache, err := ss.Search(ctx, gameName, achievementName, description, maxResults)
	if err != nil {
		return nil, err
	}

	for i := range items {
		items[i].Rank = i + 1
	}
	if len(items) > 0 {
		ss.persistGuides(ctx, appID, achievementName, items)
	} else {
		fallbackURL := fmt.Sprintf("https://steamcommunity.com/app/%d/guides/?searchText=%s",
			appID, url.QueryEscape(achievementName))
		items = []types.GuideItem{{
			Source:  types.SourceSteamCommunity,
			Kind:    types.GuideKindCommunity,
			Title:   fmt.Sprintf("Search Steam Community guides for %q", achievementName),
			Snippet: fmt.Sprintf("Browse community guides for %s on Steam.", gameName),
			URL:     &fallbackURL,
			Rank:    1,
		}}
	}

	return &SearchResponse{
		Success:   true,
		Guides:    items,
		Query:     query,
		FromCache: fromCache,
	}, nil
}

func (ss *guideSearchService) persistGuides(ctx context.Context, appID int, achievementName string, items []types.GuideItem) {
	now := time.Now().UTC()
	rows := make([]*types.AchievementGuide, 0, len(items))
	for _, item := range items {
		if item.URL == nil {
			continue
		}
		rows = append(rows, &types.AchievementGuide{
			AppID:           appID,
			AchievementName: achievementName,
			GuideURL:        *item.URL,
			GuideTitle:      item.Title,
			GuideSnippet:    item.Snippet,
			Source:          item.Source,
			SearchRank:      item.Rank,
			CachedAt:        now,
		})
	}
	if len(rows) == 0 {
		return
	}
	if err := ss.guideRepo.ReplaceForAchievement(ctx, nil, appID, achievementName, rows); err != nil {
		ss.log.Warn("guide cache write failed", "app_id", appID, "error", err)
	}
}

func (ss *guideSearchService) LimiterStatus() ratelimit.Status {
	return ss.limiter.Status()
}

func markFromCache(items []types.GuideItem) []types.GuideItem {
	for i := range items {
		items[i].FromCache = true
	}
	return items
}

func truncateItems(items []types.GuideItem, max int) []types.GuideItem {
	if max > 0 && len(items) > max {
		return items[:max]
	}
	return items
}
