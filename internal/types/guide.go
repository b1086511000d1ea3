package types

import "time"

// Guide source tags. These are wire values: they appear in API payloads and
// in cached rows, so they must stay stable.
const (
	SourceAI             = "ai"
	SourceSearch         = "ddgs"
	SourceSteamCommunity = "steam_community"
	SourcePCGamingWiki   = "pcgamingwiki"
	SourceYouTube        = "youtube"
	SourceReddit         = "reddit"
)

// Guide kinds, the coarse category of an item.
const (
	GuideKindAI         = "ai"
	GuideKindExternal   = "external"
	GuideKindSteamGuide = "steam_guide"
	GuideKindWiki       = "wiki"
	GuideKindVideo      = "video"
	GuideKindCommunity  = "community"
)

// GuideItem is the normalized unit every provider produces, whatever its
// origin. URL is nil for AI-generated guides, which have no external page.
type GuideItem struct {
	Source        string   `json:"source"`
	Kind          string   `json:"type"`
	Title         string   `json:"title"`
	Snippet       string   `json:"snippet,omitempty"`
	Content       string   `json:"content,omitempty"`
	URL           *string  `json:"url"`
	Difficulty    *int     `json:"difficulty,omitempty"`
	EstimatedTime string   `json:"estimated_time,omitempty"`
	Strategies    []string `json:"strategies,omitempty"`
	Tips          []string `json:"tips,omitempty"`
	QualityScore  int      `json:"quality_score"`
	FromCache     bool     `json:"from_cache"`
	Rank          int      `json:"rank,omitempty"`
}

// AchievementRef identifies the subject of one guide lookup. Immutable for
// the duration of the request.
type AchievementRef struct {
	AppID           int
	AchievementName string
	GameName        string
	Description     string
	GlobalPercent   *float64
}

// AIGuidePayload is the structured body of a generated guide. Missing
// fields are defaulted at parse time, so consumers never see zero-value
// difficulty or a nil strategy list.
type AIGuidePayload struct {
	DifficultyRating int       `json:"difficulty_rating"`
	EstimatedTime    string    `json:"estimated_time"`
	Strategies       []string  `json:"strategies"`
	Tips             []string  `json:"tips"`
	Summary          string    `json:"summary"`
	ModelUsed        string    `json:"model_used,omitempty"`
	GeneratedAt      time.Time `json:"generated_at,omitempty"`
	Views            int       `json:"views,omitempty"`
	Rating           int       `json:"rating,omitempty"`
}
