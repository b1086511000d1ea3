package services

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/steamachieve/steamachieve-backend/internal/logger"
	"github.com/steamachieve/steamachieve-backend/internal/types"
)

// Source categories ordered by priority for tie-breaking equal scores.
const (
	categorySteam      = 1
	categoryWiki       = 2
	categoryYouTube    = 3
	categoryGamingSite = 4
	categoryReddit     = 5
	categoryArticle    = 6
	categoryUnknown    = 7
)

const snippetMaxLen = 200

var deniedURLParts = []string{"javascript:", "data:", "file:", "ftp:"}

var scoringKeywords = []string{"guide", "walkthrough", "how to", "unlock", "achievement", "tutorial"}

var gamingSiteHosts = []string{
	"trueachievements.com", "exophase.com", "steamhunters.com",
	"ign.com", "gamefaqs.gamespot.com", "powerpyx.com", "neoseeker.com",
}

var whitespaceRe = regexp.MustCompile(`\s+`)

type GuideRankService interface {
	RankResults(results []types.GuideItem, gameName, achievementName string) []types.GuideItem
	CleanSnippet(raw string) string
	ValidURL(rawURL string) bool
}

type guideRankService struct {
	log       *logger.Logger
	sanitizer *bluemonday.Policy
}

func NewGuideRankService(baseLog *logger.Logger) GuideRankService {
	return &guideRankService{
		log:       baseLog.With("service", "GuideRankService"),
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// RankResults filters out invalid results, scores the rest against the
// game and achievement names, and returns them best first. Duplicate
// URLs are removed after sorting so the best-scored occurrence wins.
func (gs *guideRankService) RankResults(results []types.GuideItem, gameName, achievementName string) []types.GuideItem {
	type scored struct {
		item     types.GuideItem
		score    int
		category int
	}

	kept := make([]scored, 0, len(results))
	for _, item := range results {
		if item.URL == nil || !gs.ValidURL(*item.URL) {
			continue
		}
		item.Snippet = gs.CleanSnippet(item.Snippet)
		kept = append(kept, scored{
			item:     item,
			score:    relevanceScore(item, gameName, achievementName),
			category: categorizeURL(*item.URL),
		})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].score != kept[j].score {
			return kept[i].score > kept[j].score
		}
		return kept[i].category < kept[j].category
	})

	seen := make(map[string]bool, len(kept))
	ranked := make([]types.GuideItem, 0, len(kept))
	for _, s := range kept {
		key := dedupeKey(*s.item.URL)
		if seen[key] {
			continue
		}
		seen[key] = true
		ranked = append(ranked, s.item)
	}
	return ranked
}

// ValidURL rejects empty, schemeless, and non-web URLs. The denied
// schemes are matched anywhere in the URL so they cannot hide in a
// redirect parameter.
func (gs *guideRankService) ValidURL(rawURL string) bool {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return false
	}
	lower := strings.ToLower(trimmed)
	for _, part := range deniedURLParts {
		if strings.Contains(lower, part) {
			return false
		}
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host != ""
}

// CleanSnippet strips markup, collapses whitespace and truncates to a
// word boundary. Truncation counts runes so multibyte text is never
// cut mid-character.
func (gs *guideRankService) CleanSnippet(raw string) string {
	clean := gs.sanitizer.Sanitize(raw)
	clean = strings.TrimSpace(whitespaceRe.ReplaceAllString(clean, " "))
	runes := []rune(clean)
	if len(runes) <= snippetMaxLen {
		return clean
	}
	cut := string(runes[:snippetMaxLen])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "..."
}

func dedupeKey(rawURL string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(rawURL)), "/")
}

func relevanceScore(item types.GuideItem, gameName, achievementName string) int {
	title := strings.ToLower(item.Title)
	snippet := strings.ToLower(item.Snippet)
	game := strings.ToLower(gameName)
	achievement := strings.ToLower(achievementName)

	score := 0

	gameInTitle := game != "" && strings.Contains(title, game)
	achInTitle := achievement != "" && strings.Contains(title, achievement)
	if gameInTitle {
		score += 10
	}
	if achInTitle {
		score += 10
	}
	if gameInTitle && achInTitle {
		score += 5
	}

	for _, kw := range scoringKeywords {
		if strings.Contains(title, kw) {
			score += 2
		}
	}

	if game != "" && strings.Contains(snippet, game) {
		score += 3
	}
	if achievement != "" && strings.Contains(snippet, achievement) {
		score += 3
	}

	if item.URL != nil && game != "" {
		// Strip separators from both sides so portal-2 and portal_2
		// paths both match "portal 2".
		gameNorm := strings.ReplaceAll(game, " ", "")
		urlNorm := urlSeparatorReplacer.Replace(strings.ToLower(*item.URL))
		if strings.Contains(urlNorm, gameNorm) {
			score += 2
		}
	}

	return score
}

var urlSeparatorReplacer = strings.NewReplacer("-", "", "_", "")

func categorizeURL(rawURL string) int {
	lower := strings.ToLower(rawURL)
	switch {
	case strings.Contains(lower, "steamcommunity.com"), strings.Contains(lower, "store.steampowered.com"):
		return categorySteam
	case strings.Contains(lower, "pcgamingwiki.com"), strings.Contains(lower, "fandom.com"), strings.Contains(lower, "wiki"):
		return categoryWiki
	case strings.Contains(lower, "youtube.com"), strings.Contains(lower, "youtu.be"):
		return categoryYouTube
	case isGamingSite(lower):
		return categoryGamingSite
	case strings.Contains(lower, "reddit.com"):
		return categoryReddit
	case strings.Contains(lower, "/guide"), strings.Contains(lower, "/article"), strings.Contains(lower, "/blog"):
		return categoryArticle
	default:
		return categoryUnknown
	}
}

func isGamingSite(lowerURL string) bool {
	for _, host := range gamingSiteHosts {
		if strings.Contains(lowerURL, host) {
			return true
		}
	}
	return false
}
