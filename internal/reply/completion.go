package reply

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"replybot/internal/domain"
	"replybot/internal/metrics"
)

// Token budgets per pipeline step. The analysis answer only needs a tag and a
// short rationale; the final answers are sized for chat messages.
const (
	analysisMaxTokens   = 100
	directMaxTokens     = 150
	contextualMaxTokens = 200
)

const directPrompt = `You are a helpful and friendly chat bot assistant.
Keep your responses concise (under 200 characters when possible) and engaging.
Be helpful, informative, and maintain a conversational tone.
If you don't know something, admit it honestly.`

const analysisPrompt = `You are an AI assistant that analyzes user questions to determine if they need web search for current information.

Questions that NEED web search:
- Current events, news, weather
- Recent developments, latest updates
- Current prices, stock market, live data
- Recent sports scores, match results
- Today's/recent information about anything

Questions that DON'T NEED web search:
- General knowledge questions
- Definitions, explanations of concepts
- Historical facts (unless asking for recent updates)
- Math calculations
- Personal advice or opinions
- Simple greetings, casual conversation

Respond with one of these tags:
- <search>YES</search> if web search is needed
- <search>NO</search> if web search is not needed

After the tag, briefly explain your reasoning and if search is needed, suggest a good search query.

Examples:
- "What's the weather today?" → <search>YES</search> Need current weather data. Search: "weather today"
- "What is Python programming?" → <search>NO</search> General knowledge question about programming.
- "How are you?" → <search>NO</search> Casual greeting, no search needed.`

const contextualPrompt = `You are a helpful chat bot assistant. The user asked a question and recent web search results have been gathered for you.

Use the search results to provide a helpful, accurate, and concise answer to the user's question.
Keep your response under 300 characters when possible.
If the search results don't fully answer the question, acknowledge what you found and suggest they search for more specific terms.`

var (
	searchTagPattern   = regexp.MustCompile(`(?i)<search>YES</search>`)
	searchQueryPattern = regexp.MustCompile(`(?i)Search:\s*["']?([^"'.\n]+)["']?`)
)

// Completion is the AI strategy: an optional search-analysis step, a
// contextual completion over search results when the model asks for one, and
// a direct completion otherwise. Analysis and search problems quietly degrade
// to the direct path; only a direct completion failure escapes to the caller.
type Completion struct {
	completer domain.Completer
	searcher  domain.Searcher // nil disables the search step
	logger    *slog.Logger
}

// CompletionConfig configures the AI strategy.
type CompletionConfig struct {
	Completer domain.Completer
	Searcher  domain.Searcher
	Logger    *slog.Logger
}

func NewCompletion(cfg CompletionConfig) *Completion {
	return &Completion{
		completer: cfg.Completer,
		searcher:  cfg.Searcher,
		logger:    cfg.Logger,
	}
}

func (c *Completion) Name() string {
	return "completion(" + c.completer.Name() + ")"
}

func (c *Completion) Reply(ctx context.Context, text string) (string, error) {
	if c.searcher != nil {
		if answer, ok := c.searchPath(ctx, text); ok {
			metrics.CompletionReplies.Inc()
			return answer, nil
		}
	}

	answer, err := c.direct(ctx, text)
	if err != nil {
		return "", err
	}
	metrics.CompletionReplies.Inc()
	return answer, nil
}

// searchPath runs the analysis step and, when the model asks for a search,
// answers over the results. ok is false on any problem so the caller falls
// through to the direct path.
func (c *Completion) searchPath(ctx context.Context, text string) (string, bool) {
	analysis, err := c.completer.Complete(ctx, domain.CompletionRequest{
		System:    analysisPrompt,
		User:      text,
		MaxTokens: analysisMaxTokens,
	})
	if err != nil {
		c.logger.Debug("search analysis failed", "error", err)
		return "", false
	}
	if !searchTagPattern.MatchString(analysis) {
		return "", false
	}

	query := extractQuery(analysis, text)
	c.logger.Info("search requested by analysis", "query", query)

	results, err := c.searcher.Search(ctx, query)
	if err != nil {
		c.logger.Warn("web search failed", "query", query, "error", err)
		return "", false
	}
	if results == "" {
		return "", false
	}

	answer, err := contextualize(ctx, c.completer, text, results)
	if err != nil {
		// The formatted results are still a useful reply on their own.
		c.logger.Warn("contextual completion failed, returning raw results", "error", err)
		return results, true
	}
	return answer, true
}

func (c *Completion) direct(ctx context.Context, text string) (string, error) {
	return c.completer.Complete(ctx, domain.CompletionRequest{
		System:    directPrompt,
		User:      text,
		MaxTokens: directMaxTokens,
	})
}

// contextualize asks the completer to answer a question over search results.
// Shared with the explicit search command.
func contextualize(ctx context.Context, completer domain.Completer, question, results string) (string, error) {
	return completer.Complete(ctx, domain.CompletionRequest{
		System: contextualPrompt,
		User: fmt.Sprintf("User question: %s\n\nSearch results:\n%s\n\nPlease provide a helpful response based on this information.",
			question, results),
		MaxTokens: contextualMaxTokens,
	})
}

// extractQuery pulls the model's suggested query out of the analysis answer,
// falling back to the original message.
func extractQuery(analysis, text string) string {
	if m := searchQueryPattern.FindStringSubmatch(analysis); len(m) > 1 {
		if q := strings.TrimSpace(m[1]); q != "" {
			return q
		}
	}
	return strings.TrimSpace(text)
}
