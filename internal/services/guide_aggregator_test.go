package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/steamachieve/steamachieve-backend/internal/logger"
	"github.com/steamachieve/steamachieve-backend/internal/ratelimit"
	"github.com/steamachieve/steamachieve-backend/internal/types"
)

type fakeGuideSearch struct {
	items []types.GuideItem
	err   error
}

func (f *fakeGuideSearch) Search(context.Context, string, string, string, int) ([]types.GuideItem, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	return f.items, false, nil
}

func (f *fakeGuideSearch) SearchAchievementGuides(context.Context, int, string, string, string, int) (*SearchResponse, error) {
	return &SearchResponse{Success: true, Guides: f.items}, f.err
}

func (f *fakeGuideSearch) LimiterStatus() ratelimit.Status { return ratelimit.Status{} }

type fakeAIGuide struct {
	result *AIGuideResult
	err    error
}

func (f *fakeAIGuide) Generate(context.Context, types.AchievementRef, bool) (*AIGuideResult, error) {
	return f.result, f.err
}

func (f *fakeAIGuide) BatchGenerate(context.Context, string, int, []types.AchievementRef) (*BatchGenerateResult, error) {
	return &BatchGenerateResult{}, nil
}

func (f *fakeAIGuide) Get(context.Context, int, string) (*types.AIGuidePayload, error) {
	return nil, nil
}

func (f *fakeAIGuide) RecordView(context.Context, int, string) error     { return nil }
func (f *fakeAIGuide) RateGuide(context.Context, int, string, int) error { return nil }
func (f *fakeAIGuide) LimiterStatus() ratelimit.Status                   { return ratelimit.Status{} }

type fakeFetcher struct {
	pages map[string]string
}

func (f *fakeFetcher) Get(_ context.Context, pageURL string) ([]byte, error) {
	for prefix, body := range f.pages {
		if len(pageURL) >= len(prefix) && pageURL[:len(prefix)] == prefix {
			return []byte(body), nil
		}
	}
	return nil, errors.New("page unavailable")
}

type fakeAchievementGuideRepo struct {
	rows     []*types.AchievementGuide
	replaced int
}

func (f *fakeAchievementGuideRepo) GetFresh(_ context.Context, _ *gorm.DB, appID int, name string, _ time.Duration) ([]*types.AchievementGuide, error) {
	var out []*types.AchievementGuide
	for _, r := range f.rows {
		if r.AppID == appID && r.AchievementName == name {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAchievementGuideRepo) ReplaceForAchievement(_ context.Context, _ *gorm.DB, appID int, name string, guides []*types.AchievementGuide) error {
	f.replaced++
	f.rows = guides
	return nil
}

func (f *fakeAchievementGuideRepo) Sweep(context.Context, *gorm.DB, time.Duration) (int64, error) {
	return 0, nil
}

const communityPage = `<html><body>
<a class="workshopItemTitle" href="https://steamcommunity.com/sharedfiles/filedetails/?id=1">Lunacy achievement walkthrough</a>
<a class="workshopItemTitle" href="https://steamcommunity.com/sharedfiles/filedetails/?id=2">Unrelated mod showcase</a>
<a class="workshopItemTitle" href="https://steamcommunity.com/sharedfiles/filedetails/?id=3">All achievement roadmap</a>
</body></html>`

func aiTestResult() *AIGuideResult {
	return &AIGuideResult{Guide: types.AIGuidePayload{
		DifficultyRating: 6,
		EstimatedTime:    "1 hour",
		Strategies:       []string{"step one"},
		Tips:             []string{"tip"},
		Summary:          "Generated summary.",
	}}
}

func searchTestItems() []types.GuideItem {
	u := "https://example.com/guide"
	return []types.GuideItem{{
		Source:       types.SourceSearch,
		Kind:         types.GuideKindExternal,
		Title:        "Web guide",
		URL:          &u,
		QualityScore: 70,
	}}
}

func newAggregatorForTest(search GuideSearchService, ai AIGuideService, fetcher *fakeFetcher, repo *fakeAchievementGuideRepo) GuideAggregatorService {
	if fetcher == nil {
		fetcher = &fakeFetcher{pages: map[string]string{
			"https://steamcommunity.com/app/620/guides/": communityPage,
		}}
	}
	if repo == nil {
		repo = &fakeAchievementGuideRepo{}
	}
	return NewGuideAggregatorService(search, ai, fetcher, repo, logger.NewNop())
}

func TestAggregateDefaultSourcesAndOrdering(t *testing.T) {
	svc := newAggregatorForTest(
		&fakeGuideSearch{items: searchTestItems()},
		&fakeAIGuide{result: aiTestResult()},
		nil, nil)

	resp, err := svc.Aggregate(context.Background(), testRef(), nil, 10)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if !resp.Success {
		t.Fatalf("Aggregate: want success")
	}
	if _, ok := resp.SourcesUsed[types.SourceReddit]; ok {
		t.Fatalf("Aggregate: reddit must be opt-in, got %v", resp.SourcesUsed)
	}
	if _, ok := resp.SourcesUsed[types.SourcePCGamingWiki]; ok {
		t.Fatalf("Aggregate: wiki must be opt-in, got %v", resp.SourcesUsed)
	}

	if len(resp.Guides) == 0 {
		t.Fatalf("Aggregate: want guides")
	}
	if resp.Guides[0].Source != types.SourceAI {
		t.Fatalf("Aggregate: want AI guide first (score 85), got %q", resp.Guides[0].Source)
	}
	for i, g := range resp.Guides {
		if g.Rank != i+1 {
			t.Fatalf("Aggregate: rank at %d: want %d got %d", i, i+1, g.Rank)
		}
		if i > 0 && resp.Guides[i-1].QualityScore < g.QualityScore {
			t.Fatalf("Aggregate: not sorted by quality at %d", i)
		}
	}
}

func TestAggregateProviderFailureIsIsolated(t *testing.T) {
	svc := newAggregatorForTest(
		&fakeGuideSearch{err: errors.New("search down")},
		&fakeAIGuide{result: aiTestResult()},
		nil, nil)

	resp, err := svc.Aggregate(context.Background(), testRef(), nil, 10)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if resp.SourcesUsed[types.SourceSearch] != 0 {
		t.Fatalf("Aggregate: failed source must report 0, got %d", resp.SourcesUsed[types.SourceSearch])
	}
	if resp.SourcesUsed[types.SourceAI] != 1 {
		t.Fatalf("Aggregate: AI source must still contribute, got %d", resp.SourcesUsed[types.SourceAI])
	}
}

func TestAggregateSteamCommunityScrapeFiltering(t *testing.T) {
	svc := newAggregatorForTest(
		&fakeGuideSearch{},
		&fakeAIGuide{err: errors.New("ai down")},
		nil, nil)

	resp, err := svc.Aggregate(context.Background(), testRef(), []string{types.SourceSteamCommunity}, 10)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	// "Unrelated mod showcase" mentions neither the achievement nor the
	// word achievement.
	if resp.SourcesUsed[types.SourceSteamCommunity] != 2 {
		t.Fatalf("Aggregate: want 2 community guides kept, got %d", resp.SourcesUsed[types.SourceSteamCommunity])
	}
	for _, g := range resp.Guides {
		if g.Kind != types.GuideKindSteamGuide {
			t.Fatalf("Aggregate: want steam_guide kind, got %q", g.Kind)
		}
		if g.QualityScore != scoreSteamCommunity {
			t.Fatalf("Aggregate: want score %d, got %d", scoreSteamCommunity, g.QualityScore)
		}
	}
}

func TestAggregateMaxResultsAndTotal(t *testing.T) {
	items := make([]types.GuideItem, 0, 6)
	for i := 0; i < 6; i++ {
		u := fmt.Sprintf("https://example.com/g%d", i)
		items = append(items, types.GuideItem{
			Source:       types.SourceSearch,
			Kind:         types.GuideKindExternal,
			Title:        fmt.Sprintf("guide %d", i),
			URL:          &u,
			QualityScore: 70 - i,
		})
	}
	svc := newAggregatorForTest(
		&fakeGuideSearch{items: items},
		&fakeAIGuide{err: errors.New("ai down")},
		nil, nil)

	resp, err := svc.Aggregate(context.Background(), testRef(), []string{types.SourceSearch}, 3)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if resp.TotalFound != 6 {
		t.Fatalf("Aggregate: total_found want 6, got %d", resp.TotalFound)
	}
	if len(resp.Guides) != 3 {
		t.Fatalf("Aggregate: want 3 guides after truncation, got %d", len(resp.Guides))
	}
	if resp.FilteredCount != 3 {
		t.Fatalf("Aggregate: filtered_count must be the final list size, want 3 got %d", resp.FilteredCount)
	}
}

func TestAggregateUnknownSourceSkipped(t *testing.T) {
	svc := newAggregatorForTest(
		&fakeGuideSearch{items: searchTestItems()},
		&fakeAIGuide{result: aiTestResult()},
		nil, nil)

	resp, err := svc.Aggregate(context.Background(), testRef(), []string{types.SourceSearch, "myspace"}, 10)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if _, ok := resp.SourcesUsed["myspace"]; ok {
		t.Fatalf("Aggregate: unknown source must not run, got %v", resp.SourcesUsed)
	}
	if _, ok := resp.SourcesUsed[types.SourceAI]; ok {
		t.Fatalf("Aggregate: explicit source list must not include defaults")
	}
}

func TestAggregateNeverWritesGuideCache(t *testing.T) {
	repo := &fakeAchievementGuideRepo{}
	svc := newAggregatorForTest(
		&fakeGuideSearch{items: searchTestItems()},
		&fakeAIGuide{result: aiTestResult()},
		nil, repo)

	if _, err := svc.Aggregate(context.Background(), testRef(), nil, 10); err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if repo.replaced != 0 {
		t.Fatalf("Aggregate: must not persist, got %d writes", repo.replaced)
	}
}

func TestGetCachedServesStoredRows(t *testing.T) {
	ref := testRef()
	u := "https://example.com/guide"
	repo := &fakeAchievementGuideRepo{rows: []*types.AchievementGuide{{
		AppID:           ref.AppID,
		AchievementName: ref.AchievementName,
		GuideURL:        u,
		GuideTitle:      "Web guide",
		Source:          types.SourceSearch,
		SearchRank:      1,
		CachedAt:        time.Now().UTC(),
	}}}
	svc := newAggregatorForTest(&fakeGuideSearch{}, &fakeAIGuide{}, nil, repo)

	items, err := svc.GetCached(context.Background(), ref.AppID, ref.AchievementName)
	if err != nil {
		t.Fatalf("GetCached: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("GetCached: want 1 item, got %d", len(items))
	}
	if !items[0].FromCache {
		t.Fatalf("GetCached: items must be marked from_cache")
	}
	if items[0].Kind != types.GuideKindExternal {
		t.Fatalf("GetCached: want external kind for ddgs source, got %q", items[0].Kind)
	}
}

func TestYouTubeProviderEmitsSearchLink(t *testing.T) {
	p := &youtubeProvider{}
	items, err := p.Fetch(context.Background(), testRef())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Fetch: want 1 item, got %d", len(items))
	}
	if items[0].Kind != types.GuideKindVideo || items[0].QualityScore != scoreYouTube {
		t.Fatalf("Fetch: unexpected item %+v", items[0])
	}
}
