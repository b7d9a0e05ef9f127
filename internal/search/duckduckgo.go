// Package search answers queries through the DuckDuckGo Instant Answer API,
// which needs no API key. Results come back as a single formatted text block
// sized for chat messages.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"replybot/internal/metrics"
)

const (
	searchTimeout   = 15 * time.Second
	userAgentString = "ReplyBot/0.1"

	titleMaxLen = 80
	blockMaxLen = 1800
)

// ClientConfig configures the search client.
type ClientConfig struct {
	APIBase       string // override for tests
	MaxResults    int
	SummaryLength int
	Logger        *slog.Logger
}

// Client searches the web using the DuckDuckGo Instant Answer API.
type Client struct {
	apiBase       string
	maxResults    int
	summaryLength int
	client        *http.Client
	logger        *slog.Logger
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.APIBase == "" {
		cfg.APIBase = "https://api.duckduckgo.com"
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 3
	}
	if cfg.SummaryLength <= 0 {
		cfg.SummaryLength = 200
	}
	return &Client{
		apiBase:       strings.TrimSuffix(cfg.APIBase, "/"),
		maxResults:    cfg.MaxResults,
		summaryLength: cfg.SummaryLength,
		client:        &http.Client{Timeout: searchTimeout},
		logger:        cfg.Logger,
	}
}

// DuckDuckGo response types.
type ddgResponse struct {
	Abstract      string     `json:"Abstract"`
	AbstractURL   string     `json:"AbstractURL"`
	Heading       string     `json:"Heading"`
	Answer        string     `json:"Answer"`
	RelatedTopics []ddgTopic `json:"RelatedTopics"`
}

type ddgTopic struct {
	Text     string `json:"Text"`
	FirstURL string `json:"FirstURL"`
}

// result is one entry assembled from the instant-answer payload.
type result struct {
	title   string
	snippet string
}

// Search runs the query and returns a formatted result block. An empty block
// with a nil error means nothing was found.
func (c *Client) Search(ctx context.Context, query string) (string, error) {
	endpoint := fmt.Sprintf("%s/?q=%s&format=json&no_html=1&skip_disambig=1",
		c.apiBase, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgentString)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("duckduckgo returned %d", resp.StatusCode)
	}

	var ddg ddgResponse
	if err := json.NewDecoder(resp.Body).Decode(&ddg); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	metrics.SearchesTotal.Inc()

	results := c.collect(&ddg)
	c.logger.Debug("search completed", "query", query, "results", len(results))
	if len(results) == 0 {
		return "", nil
	}
	return c.format(query, results), nil
}

// collect flattens the instant-answer payload into at most maxResults entries,
// preferring the direct answer, then the abstract, then related topics.
func (c *Client) collect(ddg *ddgResponse) []result {
	var results []result

	if ddg.Answer != "" {
		results = append(results, result{title: "Answer", snippet: cleanText(ddg.Answer)})
	}
	if ddg.Abstract != "" {
		title := ddg.Heading
		if title == "" {
			title = "Summary"
		}
		results = append(results, result{title: cleanText(title), snippet: cleanText(ddg.Abstract)})
	}
	for _, topic := range ddg.RelatedTopics {
		if len(results) >= c.maxResults {
			break
		}
		if topic.Text == "" {
			continue
		}
		text := cleanText(topic.Text)
		results = append(results, result{title: text, snippet: text})
	}

	if len(results) > c.maxResults {
		results = results[:c.maxResults]
	}
	return results
}

func (c *Client) format(query string, results []result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🔍 Search results for '%s':\n\n", query)
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. %s\n%s...\n\n", i+1, truncate(r.title, titleMaxLen), truncate(r.snippet, c.summaryLength))
	}

	out := strings.TrimSpace(sb.String())
	if len(out) > blockMaxLen {
		out = truncate(out, blockMaxLen) + "...\n\n💡 Try more specific search terms for better results!"
	}
	return out
}

var (
	entityPattern = regexp.MustCompile(`&[a-zA-Z#0-9]+;`)
	spacePattern  = regexp.MustCompile(`\s+`)
)

// cleanText strips HTML tags and entities and collapses whitespace. The API
// is asked for no_html, but related-topic texts still slip fragments through.
func cleanText(s string) string {
	var sb strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			sb.WriteRune(r)
		}
	}
	out := entityPattern.ReplaceAllString(sb.String(), " ")
	out = spacePattern.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
