package duckduckgo

import (
	"strings"
	"testing"
)

const resultsPage = `<html><body>
<div class="result">
  <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Flunacy-guide&amp;rut=abc">Lunacy Achievement Guide</a>
  <a class="result__snippet" href="#">How to <b>unlock</b> the Lunacy achievement.</a>
</div>
<div class="result">
  <a class="result__a" href="https://example.org/walkthrough">Full Walkthrough</a>
</div>
<div class="result">
  <a class="result__a" href="">broken</a>
</div>
</body></html>`

func TestParseResults(t *testing.T) {
	hits, err := parseResults(strings.NewReader(resultsPage))
	if err != nil {
		t.Fatalf("parseResults: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("parseResults: want 2 hits, got %d", len(hits))
	}

	if hits[0].Title != "Lunacy Achievement Guide" {
		t.Fatalf("title: got %q", hits[0].Title)
	}
	if hits[0].URL != "https://example.com/lunacy-guide" {
		t.Fatalf("redirect unwrap: got %q", hits[0].URL)
	}
	if !strings.Contains(hits[0].Snippet, "unlock the Lunacy achievement") {
		t.Fatalf("snippet: got %q", hits[0].Snippet)
	}

	if hits[1].URL != "https://example.org/walkthrough" {
		t.Fatalf("plain URL: got %q", hits[1].URL)
	}
	if hits[1].Snippet != "" {
		t.Fatalf("snippet: want empty for second hit, got %q", hits[1].Snippet)
	}
}

func TestResolveRedirect(t *testing.T) {
	tests := []struct {
		name string
		href string
		want string
	}{
		{"wrapped", "/l/?uddg=https%3A%2F%2Fexample.com%2Fpage", "https://example.com/page"},
		{"plain", "https://example.com/page", "https://example.com/page"},
		{"protocol relative", "//example.com/page", "https://example.com/page"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveRedirect(tt.href); got != tt.want {
				t.Fatalf("resolveRedirect(%q): want %q got %q", tt.href, tt.want, got)
			}
		})
	}
}
