package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/steamachieve/steamachieve-backend/internal/logger"
	"github.com/steamachieve/steamachieve-backend/internal/types"
)

func strPtr(s string) *string { return &s }

func TestValidURL(t *testing.T) {
	rs := NewGuideRankService(logger.NewNop())

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"https", "https://example.com/guide", true},
		{"http", "http://example.com/guide", true},
		{"empty", "", false},
		{"whitespace", "   ", false},
		{"javascript scheme", "javascript:alert(1)", false},
		{"data scheme", "data:text/html,hi", false},
		{"file scheme", "file:///etc/passwd", false},
		{"ftp scheme", "ftp://example.com/file", false},
		{"uppercase javascript", "JAVASCRIPT:alert(1)", false},
		{"javascript in query", "https://x.com/?redirect=javascript:alert(1)", false},
		{"data uri in fragment", "https://x.com/page#data:text/html,hi", false},
		{"no host", "https://", false},
		{"relative", "/guides/123", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rs.ValidURL(tt.url); got != tt.want {
				t.Fatalf("ValidURL(%q): want %v got %v", tt.url, tt.want, got)
			}
		})
	}
}

func TestCleanSnippet(t *testing.T) {
	rs := NewGuideRankService(logger.NewNop())

	t.Run("strips markup", func(t *testing.T) {
		got := rs.CleanSnippet("<b>Collect</b> all <script>x()</script>items")
		if strings.Contains(got, "<") || strings.Contains(got, "script") {
			t.Fatalf("CleanSnippet left markup: %q", got)
		}
	})

	t.Run("collapses whitespace", func(t *testing.T) {
		got := rs.CleanSnippet("step  one\n\t step two")
		if got != "step one step two" {
			t.Fatalf("CleanSnippet: want %q got %q", "step one step two", got)
		}
	})

	t.Run("truncates on word boundary", func(t *testing.T) {
		long := strings.Repeat("word ", 60)
		got := rs.CleanSnippet(long)
		if !strings.HasSuffix(got, "...") {
			t.Fatalf("CleanSnippet: want ellipsis suffix, got %q", got)
		}
		if len(got) > snippetMaxLen+3 {
			t.Fatalf("CleanSnippet: length %d exceeds limit", len(got))
		}
		if strings.HasSuffix(strings.TrimSuffix(got, "..."), " wor") {
			t.Fatalf("CleanSnippet: cut mid-word: %q", got)
		}
	})

	t.Run("short snippet untouched", func(t *testing.T) {
		if got := rs.CleanSnippet("short"); got != "short" {
			t.Fatalf("CleanSnippet: want %q got %q", "short", got)
		}
	})

	t.Run("multibyte text stays valid", func(t *testing.T) {
		long := strings.Repeat("héros ", 60)
		got := rs.CleanSnippet(long)
		if !utf8.ValidString(got) {
			t.Fatalf("CleanSnippet: produced invalid UTF-8: %q", got)
		}
		if !strings.HasSuffix(got, "...") {
			t.Fatalf("CleanSnippet: want ellipsis suffix, got %q", got)
		}
	})
}

func TestRankResultsScoringOrder(t *testing.T) {
	rs := NewGuideRankService(logger.NewNop())

	items := []types.GuideItem{
		{
			Title: "random page",
			URL:   strPtr("https://example.com/misc"),
		},
		{
			Title: "Portal 2 - Lunacy achievement guide walkthrough",
			URL:   strPtr("https://example.com/portal-2/lunacy"),
		},
		{
			Title:   "Lunacy guide",
			Snippet: "How to unlock Lunacy in Portal 2",
			URL:     strPtr("https://example.com/other"),
		},
	}

	ranked := rs.RankResults(items, "Portal 2", "Lunacy")
	if len(ranked) != 3 {
		t.Fatalf("RankResults: want 3 items, got %d", len(ranked))
	}
	if !strings.Contains(ranked[0].Title, "achievement guide walkthrough") {
		t.Fatalf("RankResults: want full-title match first, got %q", ranked[0].Title)
	}
	if ranked[2].Title != "random page" {
		t.Fatalf("RankResults: want unrelated page last, got %q", ranked[2].Title)
	}
}

func TestRankResultsDedupe(t *testing.T) {
	rs := NewGuideRankService(logger.NewNop())

	items := []types.GuideItem{
		{Title: "first", URL: strPtr("https://example.com/guide")},
		{Title: "second", URL: strPtr("https://example.com/guide/")},
		{Title: "third", URL: strPtr("HTTPS://EXAMPLE.COM/guide")},
	}

	ranked := rs.RankResults(items, "Game", "Ach")
	if len(ranked) != 1 {
		t.Fatalf("RankResults: want 1 after dedupe, got %d", len(ranked))
	}
	if ranked[0].Title != "first" {
		t.Fatalf("RankResults: want first occurrence kept, got %q", ranked[0].Title)
	}
}

func TestRankResultsDedupeKeepsBestScored(t *testing.T) {
	rs := NewGuideRankService(logger.NewNop())

	// Same URL twice; the later occurrence is far more relevant and
	// must survive the dedupe.
	items := []types.GuideItem{
		{Title: "misc page", URL: strPtr("https://example.com/guide")},
		{Title: "Portal 2 Lunacy achievement guide", URL: strPtr("https://example.com/guide/")},
	}

	ranked := rs.RankResults(items, "Portal 2", "Lunacy")
	if len(ranked) != 1 {
		t.Fatalf("RankResults: want 1 after dedupe, got %d", len(ranked))
	}
	if ranked[0].Title != "Portal 2 Lunacy achievement guide" {
		t.Fatalf("RankResults: want best-scored duplicate kept, got %q", ranked[0].Title)
	}
}

func TestRelevanceScoreURLSeparators(t *testing.T) {
	base := types.GuideItem{Title: "x"}

	dash := base
	dash.URL = strPtr("https://example.com/portal-2/lunacy")
	underscore := base
	underscore.URL = strPtr("https://example.com/portal_2/lunacy")
	other := base
	other.URL = strPtr("https://example.com/halflife/lunacy")

	dashScore := relevanceScore(dash, "Portal 2", "")
	underscoreScore := relevanceScore(underscore, "Portal 2", "")
	otherScore := relevanceScore(other, "Portal 2", "")

	if dashScore != underscoreScore {
		t.Fatalf("relevanceScore: dash %d and underscore %d paths must score alike", dashScore, underscoreScore)
	}
	if dashScore != otherScore+2 {
		t.Fatalf("relevanceScore: want +2 URL bonus, got %d vs %d", dashScore, otherScore)
	}
}

func TestRankResultsDropsInvalidURLs(t *testing.T) {
	rs := NewGuideRankService(logger.NewNop())

	items := []types.GuideItem{
		{Title: "bad", URL: strPtr("javascript:alert(1)")},
		{Title: "nil url"},
		{Title: "good", URL: strPtr("https://example.com/ok")},
	}

	ranked := rs.RankResults(items, "Game", "Ach")
	if len(ranked) != 1 || ranked[0].Title != "good" {
		t.Fatalf("RankResults: want only the valid URL kept, got %+v", ranked)
	}
}

func TestCategorizeURLTieBreak(t *testing.T) {
	rs := NewGuideRankService(logger.NewNop())

	// Equal relevance scores: the steam link must outrank reddit.
	items := []types.GuideItem{
		{Title: "x", URL: strPtr("https://www.reddit.com/r/gaming/post")},
		{Title: "x", URL: strPtr("https://steamcommunity.com/sharedfiles/1")},
	}

	ranked := rs.RankResults(items, "Game", "Ach")
	if !strings.Contains(*ranked[0].URL, "steamcommunity") {
		t.Fatalf("RankResults: want steam link first on tie, got %q", *ranked[0].URL)
	}
}
