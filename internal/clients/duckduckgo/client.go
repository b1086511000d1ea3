// Package duckduckgo implements web search against the DuckDuckGo HTML
// endpoint, which needs no API key. Results are parsed out of the returned
// markup.
package duckduckgo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/steamachieve/steamachieve-backend/internal/logger"
	"github.com/steamachieve/steamachieve-backend/internal/utils"
)

const endpoint = "https://html.duckduckgo.com/html/"

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Hit is one raw search result before ranking.
type Hit struct {
	Title   string
	URL     string
	Snippet string
}

// Searcher is the capability the guide search service depends on.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]Hit, error)
}

type client struct {
	log        *logger.Logger
	httpClient *http.Client
}

func NewClient(log *logger.Logger) Searcher {
	timeoutSec := utils.GetEnvAsInt("DDGS_TIMEOUT_SECONDS", 10, log)
	return &client{
		log:        log.With("client", "DuckDuckGoClient"),
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}
}

func (c *client) Search(ctx context.Context, query string, maxResults int) ([]Hit, error) {
	form := url.Values{}
	form.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("duckduckgo http %d: %s", resp.StatusCode, string(body))
	}

	hits, err := parseResults(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo parse: %w", err)
	}
	if maxResults > 0 && len(hits) > maxResults {
		hits = hits[:maxResults]
	}
	c.log.Debug("Search completed", "query", query, "hits", len(hits))
	return hits, nil
}

// parseResults walks the result markup looking for result anchors
// (class result__a) and their sibling snippets (class result__snippet).
func parseResults(r io.Reader) ([]Hit, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var hits []Hit
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" && hasClass(n, "result__a") {
			href := attr(n, "href")
			if u := resolveRedirect(href); u != "" {
				hits = append(hits, Hit{Title: textContent(n), URL: u})
			}
		}
		if n.Type == html.ElementNode && hasClass(n, "result__snippet") && len(hits) > 0 {
			if hits[len(hits)-1].Snippet == "" {
				hits[len(hits)-1].Snippet = textContent(n)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return hits, nil
}

// resolveRedirect unwraps DuckDuckGo's /l/?uddg= redirect wrapper. Plain
// URLs pass through unchanged.
func resolveRedirect(href string) string {
	if href == "" {
		return ""
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if strings.HasPrefix(parsed.Path, "/l/") || strings.Contains(href, "uddg=") {
		if target := parsed.Query().Get("uddg"); target != "" {
			return target
		}
	}
	if parsed.Scheme == "" {
		return "https:" + href
	}
	return href
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
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
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
