package services

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/steamachieve/steamachieve-backend/internal/clients/webpage"
	"github.com/steamachieve/steamachieve-backend/internal/logger"
	"github.com/steamachieve/steamachieve-backend/internal/repos"
	"github.com/steamachieve/steamachieve-backend/internal/types"
)

// Fixed quality scores per source. Web search results are scored by
// rank in the search service instead.
const (
	scoreAI             = 85
	scoreSteamCommunity = 80
	scorePCGamingWiki   = 75
	scoreYouTube        = 65
	scoreReddit         = 60
)

const maxSteamCommunityGuides = 5

// guideProvider is one source of guides for a single achievement.
// Providers fail independently; an error from one never aborts the run.
type guideProvider interface {
	Name() string
	Fetch(ctx context.Context, ref types.AchievementRef) ([]types.GuideItem, error)
}

type AggregateResponse struct {
	Success       bool              `json:"success"`
	Guides        []types.GuideItem `json:"guides"`
	TotalFound    int               `json:"total_found"`
	SourcesUsed   map[string]int    `json:"sources_used"`
	FilteredCount int               `json:"filtered_count"`
}

type GuideAggregatorService interface {
	Aggregate(ctx context.Context, ref types.AchievementRef, sources []string, maxResults int) (*AggregateResponse, error)
	GetCached(ctx context.Context, appID int, achievementName string) ([]types.GuideItem, error)
	DefaultSources() []string
}

type guideAggregatorService struct {
	log       *logger.Logger
	guideRepo repos.AchievementGuideRepo
	providers []guideProvider
	defaults  map[string]bool
}

func NewGuideAggregatorService(
	searchSvc GuideSearchService,
	aiSvc AIGuideService,
	fetcher webpage.Fetcher,
	guideRepo repos.AchievementGuideRepo,
	baseLog *logger.Logger,
) GuideAggregatorService {
	log := baseLog.With("service", "GuideAggregatorService")
	return &guideAggregatorService{
		log:       log,
		guideRepo: guideRepo,
		providers: []guideProvider{
			&aiProvider{svc: aiSvc},
			&searchProvider{svc: searchSvc},
			&steamCommunityProvider{fetcher: fetcher},
			&pcGamingWikiProvider{fetcher: fetcher},
			&youtubeProvider{},
			&redditProvider{},
		},
		defaults: map[string]bool{
			types.SourceAI:             true,
			types.SourceSearch:         true,
			types.SourceSteamCommunity: true,
			types.SourceYouTube:        true,
		},
	}
}

func (ag *guideAggregatorService) DefaultSources() []string {
	return []string{types.SourceAI, types.SourceSearch, types.SourceSteamCommunity, types.SourceYouTube}
}

// Aggregate fans out to the requested sources in a fixed order, merges
// the results by quality score and assigns final ranks. It reads and
// merges only; each provider owns whatever caching it does. An unknown
// source name is skipped rather than rejected.
func (ag *guideAggregatorService) Aggregate(ctx context.Context, ref types.AchievementRef, sources []string, maxResults int) (*AggregateResponse, error) {
	if maxResults <= 0 {
		maxResults = 10
	}

	wanted := ag.defaults
	if len(sources) > 0 {
		known := make(map[string]bool, len(ag.providers))
		for _, p := range ag.providers {
			known[p.Name()] = true
		}
		wanted = make(map[string]bool, len(sources))
		for _, s := range sources {
			s = strings.ToLower(strings.TrimSpace(s))
			if !known[s] {
				ag.log.Warn("unknown guide source requested", "source", s)
				continue
			}
			wanted[s] = true
		}
	}

	var all []types.GuideItem
	used := make(map[string]int)

	for _, provider := range ag.providers {
		if !wanted[provider.Name()] {
			continue
		}
		items, err := provider.Fetch(ctx, ref)
		if err != nil {
			ag.log.Warn("provider failed", "source", provider.Name(), "error", err)
			used[provider.Name()] = 0
			continue
		}
		used[provider.Name()] = len(items)
		all = append(all, items...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].QualityScore > all[j].QualityScore
	})

	total := len(all)
	if len(all) > maxResults {
		all = all[:maxResults]
	}
	for i := range all {
		all[i].Rank = i + 1
	}
	if all == nil {
		all = []types.GuideItem{}
	}

	return &AggregateResponse{
		Success:       true,
		Guides:        all,
		TotalFound:    total,
		SourcesUsed:   used,
		FilteredCount: len(all),
	}, nil
}

// GetCached reads previously cached guides straight from the guide
// table, in their stored rank order.
func (ag *guideAggregatorService) GetCached(ctx context.Context, appID int, achievementName string) ([]types.GuideItem, error) {
	rows, err := ag.guideRepo.GetFresh(ctx, nil, appID, achievementName, staleGuideAge)
	if err != nil {
		return nil, err
	}

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
	return items, nil
}

func kindForSource(source string) string {
	switch source {
	case types.SourceAI:
		return types.GuideKindAI
	case types.SourceSteamCommunity:
		return types.GuideKindSteamGuide
	case types.SourcePCGamingWiki:
		return types.GuideKindWiki
	case types.SourceYouTube:
		return types.GuideKindVideo
	case types.SourceReddit:
		return types.GuideKindCommunity
	default:
		return types.GuideKindExternal
	}
}

type aiProvider struct {
	svc AIGuideService
}

func (p *aiProvider) Name() string { return types.SourceAI }

func (p *aiProvider) Fetch(ctx context.Context, ref types.AchievementRef) ([]types.GuideItem, error) {
	result, err := p.svc.Generate(ctx, ref, false)
	if err != nil {
		return nil, err
	}
	guide := result.Guide
	return []types.GuideItem{{
		Source:        types.SourceAI,
		Kind:          types.GuideKindAI,
		Title:         fmt.Sprintf("AI Guide: %s", ref.AchievementName),
		Snippet:       guide.Summary,
		Content:       guide.Summary,
		Difficulty:    &guide.DifficultyRating,
		EstimatedTime: guide.EstimatedTime,
		Strategies:    guide.Strategies,
		Tips:          guide.Tips,
		QualityScore:  scoreAI,
		FromCache:     result.FromCache,
	}}, nil
}

type searchProvider struct {
	svc GuideSearchService
}

func (p *searchProvider) Name() string { return types.SourceSearch }

func (p *searchProvider) Fetch(ctx context.Context, ref types.AchievementRef) ([]types.GuideItem, error) {
	items, fromCache, err := p.svc.Search(ctx, ref.GameName, ref.AchievementName, ref.Description, 5)
	if err != nil {
		return nil, err
	}
	if fromCache {
		items = markFromCache(items)
	}
	return items, nil
}

// steamCommunityProvider scrapes the community guide search page and
// keeps the first few guides that mention the achievement.
type steamCommunityProvider struct {
	fetcher webpage.Fetcher
}

func (p *steamCommunityProvider) Name() string { return types.SourceSteamCommunity }

func (p *steamCommunityProvider) Fetch(ctx context.Context, ref types.AchievementRef) ([]types.GuideItem, error) {
	searchURL := fmt.Sprintf("https://steamcommunity.com/app/%d/guides/?searchText=%s&browsefilter=trend",
		ref.AppID, url.QueryEscape(ref.AchievementName))

	body, err := p.fetcher.Get(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parse community page: %w", err)
	}

	achLower := strings.ToLower(ref.AchievementName)
	var items []types.GuideItem

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(items) >= maxSteamCommunityGuides {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" && hasClass(n, "workshopItemTitle") {
			title := strings.TrimSpace(textContent(n))
			href := attr(n, "href")
			titleLower := strings.ToLower(title)
			if href != "" && (strings.Contains(titleLower, achLower) || strings.Contains(titleLower, "achievement")) {
				u := href
				items = append(items, types.GuideItem{
					Source:       types.SourceSteamCommunity,
					Kind:         types.GuideKindSteamGuide,
					Title:        title,
					Snippet:      fmt.Sprintf("Steam Community guide for %s", ref.GameName),
					URL:          &u,
					QualityScore: scoreSteamCommunity,
				})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return items, nil
}

// pcGamingWikiProvider links to the game's wiki page when it mentions
// achievements at all; the wiki has no per-achievement anchors worth
// scraping.
type pcGamingWikiProvider struct {
	fetcher webpage.Fetcher
}

func (p *pcGamingWikiProvider) Name() string { return types.SourcePCGamingWiki }

func (p *pcGamingWikiProvider) Fetch(ctx context.Context, ref types.AchievementRef) ([]types.GuideItem, error) {
	pageURL := fmt.Sprintf("https://www.pcgamingwiki.com/wiki/%s",
		url.PathEscape(strings.ReplaceAll(ref.GameName, " ", "_")))

	body, err := p.fetcher.Get(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	lower := strings.ToLower(string(body))
	if !strings.Contains(lower, "achievement") {
		return nil, nil
	}

	u := pageURL
	return []types.GuideItem{{
		Source:       types.SourcePCGamingWiki,
		Kind:         types.GuideKindWiki,
		Title:        fmt.Sprintf("%s - PCGamingWiki", ref.GameName),
		Snippet:      fmt.Sprintf("Technical details and achievement notes for %s.", ref.GameName),
		URL:          &u,
		QualityScore: scorePCGamingWiki,
	}}, nil
}

// youtubeProvider and redditProvider emit search links rather than
// scraping; both sites gate their content behind scripts and APIs.
type youtubeProvider struct{}

func (p *youtubeProvider) Name() string { return types.SourceYouTube }

func (p *youtubeProvider) Fetch(_ context.Context, ref types.AchievementRef) ([]types.GuideItem, error) {
	query := fmt.Sprintf("%s %s achievement guide", ref.GameName, ref.AchievementName)
	u := "https://www.youtube.com/results?search_query=" + url.QueryEscape(query)
	return []types.GuideItem{{
		Source:       types.SourceYouTube,
		Kind:         types.GuideKindVideo,
		Title:        fmt.Sprintf("Video guides for %q", ref.AchievementName),
		Snippet:      fmt.Sprintf("Search YouTube for %s achievement walkthroughs.", ref.GameName),
		URL:          &u,
		QualityScore: scoreYouTube,
	}}, nil
}

type redditProvider struct{}

func (p *redditProvider) Name() string { return types.SourceReddit }

func (p *redditProvider) Fetch(_ context.Context, ref types.AchievementRef) ([]types.GuideItem, error) {
	query := fmt.Sprintf("%s %s achievement", ref.GameName, ref.AchievementName)
	u := "https://www.reddit.com/search/?q=" + url.QueryEscape(query)
	return []types.GuideItem{{
		Source:       types.SourceReddit,
		Kind:         types.GuideKindCommunity,
		Title:        fmt.Sprintf("Reddit discussions for %q", ref.AchievementName),
		Snippet:      fmt.Sprintf("Community tips and discussion threads about %s.", ref.GameName),
		URL:          &u,
		QualityScore: scoreReddit,
	}}, nil
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" {
			for _, c := range strings.Fields(a.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
