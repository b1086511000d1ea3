package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/steamachieve/steamachieve-backend/internal/clients/duckduckgo"
	redisclient "github.com/steamachieve/steamachieve-backend/internal/clients/redis"
	"github.com/steamachieve/steamachieve-backend/internal/logger"
	"github.com/steamachieve/steamachieve-backend/internal/ratelimit"
	"github.com/steamachieve/steamachieve-backend/internal/types"
)

type fakeSearcher struct {
	hitsByQuery map[string][]duckduckgo.Hit
	err         error
	calls       []string
}

func (f *fakeSearcher) Search(_ context.Context, query string, _ int) ([]duckduckgo.Hit, error) {
	f.calls = append(f.calls, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.hitsByQuery[query], nil
}

type fakeSearchCacheRepo struct {
	entries map[string]*types.SearchCacheEntry
}

func newFakeSearchCacheRepo() *fakeSearchCacheRepo {
	return &fakeSearchCacheRepo{entries: map[string]*types.SearchCacheEntry{}}
}

func (f *fakeSearchCacheRepo) GetValid(_ context.Context, _ *gorm.DB, query string) (*types.SearchCacheEntry, error) {
	entry, ok := f.entries[query]
	if !ok || entry.ExpiresAt.Before(time.Now()) {
		return nil, nil
	}
	return entry, nil
}

func (f *fakeSearchCacheRepo) Upsert(_ context.Context, _ *gorm.DB, entry *types.SearchCacheEntry) error {
	f.entries[entry.SearchQuery] = entry
	return nil
}

func (f *fakeSearchCacheRepo) Sweep(_ context.Context, _ *gorm.DB) (int64, error) {
	return 0, nil
}

func newSearchServiceForTest(t *testing.T, searcher *fakeSearcher, cacheRepo *fakeSearchCacheRepo, guideRepo *fakeAchievementGuideRepo, limiter *ratelimit.Limiter) GuideSearchService {
	t.Helper()
	t.Setenv("SEARCH_MIN_INTERVAL_SECONDS", "0")
	if guideRepo == nil {
		guideRepo = &fakeAchievementGuideRepo{}
	}
	log := logger.NewNop()
	return NewGuideSearchService(
		searcher, cacheRepo, guideRepo, redisclient.NewNoopSearchCache(),
		limiter, NewGuideRankService(log), log)
}

func TestSearchReturnsWebResultsAndPersists(t *testing.T) {
	primary := buildQueries("Portal 2", "Lunacy")[0]
	searcher := &fakeSearcher{hitsByQuery: map[string][]duckduckgo.Hit{
		primary: {
			{Title: "Lunacy achievement guide", URL: "https://example.com/lunacy", Snippet: "how to unlock"},
		},
	}}
	cacheRepo := newFakeSearchCacheRepo()
	svc := newSearchServiceForTest(t, searcher, cacheRepo, nil, ratelimit.New(100, 1000))

	items, fromCache, err := svc.Search(context.Background(), "Portal 2", "Lunacy", "", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if fromCache {
		t.Fatalf("Search: want fresh results, got from_cache")
	}
	if len(items) != 1 || items[0].Title != "Lunacy achievement guide" {
		t.Fatalf("Search: unexpected items %+v", items)
	}
	if items[0].Source != types.SourceSearch {
		t.Fatalf("Search: want source %q, got %q", types.SourceSearch, items[0].Source)
	}
	if _, ok := cacheRepo.entries[primary]; !ok {
		t.Fatalf("Search: results not persisted under producing query")
	}
}

func TestSearchServesFromCacheWithoutSpendingBudget(t *testing.T) {
	primary := buildQueries("Portal 2", "Lunacy")[0]
	cacheRepo := newFakeSearchCacheRepo()
	now := time.Now().UTC()
	cacheRepo.entries[primary] = &types.SearchCacheEntry{
		SearchQuery: primary,
		ResultsJSON: datatypes.JSON(`[{"source":"ddgs","type":"external","title":"cached","url":"https://example.com/c"}]`),
		ResultCount: 1,
		SearchedAt:  now,
		ExpiresAt:   now.Add(time.Hour),
	}

	searcher := &fakeSearcher{}
	limiter := ratelimit.New(1, 1)
	svc := newSearchServiceForTest(t, searcher, cacheRepo, nil, limiter)

	items, fromCache, err := svc.Search(context.Background(), "Portal 2", "Lunacy", "", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !fromCache {
		t.Fatalf("Search: want cache hit")
	}
	if len(items) != 1 || !items[0].FromCache {
		t.Fatalf("Search: cached items not marked, got %+v", items)
	}
	if len(searcher.calls) != 0 {
		t.Fatalf("Search: cache hit must not reach the web, got calls %v", searcher.calls)
	}
	if !limiter.Allow() {
		t.Fatalf("Search: cache hit consumed rate budget")
	}
}

func TestSearchFallsBackThroughQueryLadder(t *testing.T) {
	queries := buildQueries("Portal 2", "Lunacy")
	searcher := &fakeSearcher{hitsByQuery: map[string][]duckduckgo.Hit{
		queries[2]: {
			{Title: "tips walkthrough result", URL: "https://example.com/tips"},
		},
	}}
	svc := newSearchServiceForTest(t, searcher, newFakeSearchCacheRepo(), nil, ratelimit.New(100, 1000))

	items, _, err := svc.Search(context.Background(), "Portal 2", "Lunacy", "", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(items) != 1 || items[0].Title != "tips walkthrough result" {
		t.Fatalf("Search: want fallback query result, got %+v", items)
	}
	if len(searcher.calls) != 3 {
		t.Fatalf("Search: want 3 attempts before success, got %d", len(searcher.calls))
	}
}

func TestSearchDailyLimitAborts(t *testing.T) {
	limiter := ratelimit.New(100, 1)
	limiter.Record()

	searcher := &fakeSearcher{}
	svc := newSearchServiceForTest(t, searcher, newFakeSearchCacheRepo(), nil, limiter)

	_, _, err := svc.Search(context.Background(), "Portal 2", "Lunacy", "", 5)
	if err != ErrDailyLimitReached {
		t.Fatalf("Search: want ErrDailyLimitReached, got %v", err)
	}
	if len(searcher.calls) != 0 {
		t.Fatalf("Search: must not reach the web when the day budget is spent")
	}
}

func TestSearchFailSoftOnProviderErrors(t *testing.T) {
	searcher := &fakeSearcher{err: context.DeadlineExceeded}
	svc := newSearchServiceForTest(t, searcher, newFakeSearchCacheRepo(), nil, ratelimit.New(100, 1000))

	items, fromCache, err := svc.Search(context.Background(), "Portal 2", "Lunacy", "", 5)
	if err != nil {
		t.Fatalf("Search: want fail-soft nil error, got %v", err)
	}
	if fromCache || len(items) != 0 {
		t.Fatalf("Search: want empty result set, got %+v", items)
	}
}

func TestSearchAchievementGuidesSyntheticFallback(t *testing.T) {
	searcher := &fakeSearcher{}
	guideRepo := &fakeAchievementGuideRepo{}
	svc := newSearchServiceForTest(t, searcher, newFakeSearchCacheRepo(), guideRepo, ratelimit.New(100, 1000))

	resp, err := svc.SearchAchievementGuides(context.Background(), 620, "Portal 2", "Lunacy", "", 5)
	if err != nil {
		t.Fatalf("SearchAchievementGuides: %v", err)
	}
	if !resp.Success {
		t.Fatalf("SearchAchievementGuides: want success")
	}
	if len(resp.Guides) != 1 {
		t.Fatalf("SearchAchievementGuides: want the synthetic fallback item, got %d", len(resp.Guides))
	}
	item := resp.Guides[0]
	if item.URL == nil || !strings.Contains(*item.URL, "steamcommunity.com/app/620/guides") {
		t.Fatalf("SearchAchievementGuides: unexpected fallback URL %v", item.URL)
	}
	if item.Rank != 1 {
		t.Fatalf("SearchAchievementGuides: want rank 1, got %d", item.Rank)
	}
	if guideRepo.replaced != 0 {
		t.Fatalf("SearchAchievementGuides: synthetic item must not be cached, got %d writes", guideRepo.replaced)
	}
}

func TestSearchAchievementGuidesPersistsPerAchievement(t *testing.T) {
	primary := buildQueries("Portal 2", "Lunacy")[0]
	searcher := &fakeSearcher{hitsByQuery: map[string][]duckduckgo.Hit{
		primary: {
			{Title: "Lunacy achievement guide", URL: "https://example.com/lunacy", Snippet: "how to unlock"},
		},
	}}
	guideRepo := &fakeAchievementGuideRepo{}
	svc := newSearchServiceForTest(t, searcher, newFakeSearchCacheRepo(), guideRepo, ratelimit.New(100, 1000))

	resp, err := svc.SearchAchievementGuides(context.Background(), 620, "Portal 2", "Lunacy", "", 5)
	if err != nil {
		t.Fatalf("SearchAchievementGuides: %v", err)
	}
	if resp.FromCache {
		t.Fatalf("SearchAchievementGuides: want fresh results")
	}
	if guideRepo.replaced != 1 {
		t.Fatalf("SearchAchievementGuides: want one guide cache write, got %d", guideRepo.replaced)
	}
	if len(guideRepo.rows) != 1 {
		t.Fatalf("SearchAchievementGuides: want 1 cached row, got %d", len(guideRepo.rows))
	}
	row := guideRepo.rows[0]
	if row.AppID != 620 || row.AchievementName != "Lunacy" || row.SearchRank != 1 {
		t.Fatalf("SearchAchievementGuides: unexpected cached row %+v", row)
	}
}

func TestSearchAchievementGuidesServesCachedRows(t *testing.T) {
	guideRepo := &fakeAchievementGuideRepo{rows: []*types.AchievementGuide{{
		AppID:           620,
		AchievementName: "Lunacy",
		GuideURL:        "https://example.com/lunacy",
		GuideTitle:      "Lunacy achievement guide",
		Source:          types.SourceSearch,
		SearchRank:      1,
		CachedAt:        time.Now().UTC(),
	}}}
	searcher := &fakeSearcher{}
	svc := newSearchServiceForTest(t, searcher, newFakeSearchCacheRepo(), guideRepo, ratelimit.New(100, 1000))

	resp, err := svc.SearchAchievementGuides(context.Background(), 620, "Portal 2", "Lunacy", "", 5)
	if err != nil {
		t.Fatalf("SearchAchievementGuides: %v", err)
	}
	if !resp.FromCache {
		t.Fatalf("SearchAchievementGuides: want cached response")
	}
	if len(resp.Guides) != 1 || !resp.Guides[0].FromCache {
		t.Fatalf("SearchAchievementGuides: cached guides not marked, got %+v", resp.Guides)
	}
	if resp.Guides[0].Kind != types.GuideKindExternal {
		t.Fatalf("SearchAchievementGuides: want external kind for ddgs row, got %q", resp.Guides[0].Kind)
	}
	if len(searcher.calls) != 0 {
		t.Fatalf("SearchAchievementGuides: cached rows must not reach the web, got %v", searcher.calls)
	}
}

func TestSearchScoresRankedOrder(t *testing.T) {
	// The relevance ranker promotes the second hit; the per-rank score
	// must follow the ranked order, not the raw hit order.
	primary := buildQueries("Portal 2", "Lunacy")[0]
	searcher := &fakeSearcher{hitsByQuery: map[string][]duckduckgo.Hit{
		primary: {
			{Title: "random page", URL: "https://example.com/misc"},
			{Title: "Portal 2 Lunacy achievement guide", URL: "https://example.com/lunacy"},
		},
	}}
	svc := newSearchServiceForTest(t, searcher, newFakeSearchCacheRepo(), nil, ratelimit.New(100, 1000))

	items, _, err := svc.Search(context.Background(), "Portal 2", "Lunacy", "", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Search: want 2 items, got %d", len(items))
	}
	if items[0].Title != "Portal 2 Lunacy achievement guide" {
		t.Fatalf("Search: want relevance-promoted item first, got %q", items[0].Title)
	}
	if items[0].QualityScore != 70 || items[1].QualityScore != 65 {
		t.Fatalf("Search: want scores 70/65 over ranked order, got %d/%d",
			items[0].QualityScore, items[1].QualityScore)
	}
}
