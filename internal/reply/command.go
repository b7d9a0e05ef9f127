package reply

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"replybot/internal/domain"
)

// searchPrefix marks an explicit search command, e.g. "search go 1.25 release".
const searchPrefix = "search "

// Command intercepts explicit commands before the reply strategy runs. Today
// that is only the search command; everything else passes through untouched.
type Command struct {
	next      domain.Replier
	searcher  domain.Searcher
	completer domain.Completer // optional, summarizes results when set
	logger    *slog.Logger
}

// CommandConfig configures the command layer.
type CommandConfig struct {
	Next      domain.Replier
	Searcher  domain.Searcher
	Completer domain.Completer
	Logger    *slog.Logger
}

func NewCommand(cfg CommandConfig) *Command {
	return &Command{
		next:      cfg.Next,
		searcher:  cfg.Searcher,
		completer: cfg.Completer,
		logger:    cfg.Logger,
	}
}

func (c *Command) Name() string { return c.next.Name() }

func (c *Command) Reply(ctx context.Context, text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) > len(searchPrefix) && strings.EqualFold(trimmed[:len(searchPrefix)], searchPrefix) {
		if query := strings.TrimSpace(trimmed[len(searchPrefix):]); query != "" {
			return c.search(ctx, trimmed, query), nil
		}
	}
	return c.next.Reply(ctx, text)
}

// search answers the explicit command. Failures map to fixed texts so the
// user always gets a reply.
func (c *Command) search(ctx context.Context, text, query string) string {
	c.logger.Info("search command", "query", query)

	results, err := c.searcher.Search(ctx, query)
	if err != nil {
		c.logger.Warn("search command failed", "query", query, "error", err)
		return fmt.Sprintf("Sorry, I encountered an error while searching for '%s'. Please try again later.", query)
	}
	if results == "" {
		return fmt.Sprintf("I couldn't find any results for '%s'. Try a different search term!", query)
	}

	if c.completer != nil {
		if answer, err := contextualize(ctx, c.completer, text, results); err == nil {
			return answer
		}
	}
	return results
}
