package reply

import (
	"log/slog"
	"time"

	"replybot/internal/config"
	"replybot/internal/domain"
	"replybot/internal/search"
)

// Build assembles the reply pipeline from configuration. The strategy is
// chosen once here: a configured completion key selects the AI strategy with
// keyword fallback, otherwise keyword matching serves everything. When search
// is enabled the explicit search command wraps whichever strategy is active.
func Build(cfg *config.Config, logger *slog.Logger) domain.Replier {
	keyword := NewKeyword(KeywordConfig{
		Rules:        cfg.Rules.Rules,
		DefaultReply: cfg.Rules.DefaultReply,
		Logger:       logger,
	})

	var searcher domain.Searcher
	if cfg.Search.Enabled {
		searcher = search.NewClient(search.ClientConfig{
			MaxResults:    cfg.Search.MaxResults,
			SummaryLength: cfg.Search.SummaryLength,
			Logger:        logger,
		})
	}

	completer := NewCompleter(cfg, logger)

	var replier domain.Replier = keyword
	if completer != nil {
		completion := NewCompletion(CompletionConfig{
			Completer: completer,
			Searcher:  searcher,
			Logger:    logger,
		})
		replier = NewFallback(completion, keyword, logger)
		logger.Info("reply strategy selected",
			"strategy", completion.Name(),
			"fallback", keyword.Name(),
		)
	} else {
		logger.Warn("no completion API key configured, replies limited to keyword matching")
	}

	if searcher != nil {
		replier = NewCommand(CommandConfig{
			Next:      replier,
			Searcher:  searcher,
			Completer: completer,
			Logger:    logger,
		})
	}
	return replier
}

// NewCompleter picks the completion backend from configured keys. OpenRouter
// wins when both are set; nil means no backend is configured.
func NewCompleter(cfg *config.Config, logger *slog.Logger) domain.Completer {
	cc := cfg.Completion
	timeout := time.Duration(cc.TimeoutSeconds) * time.Second
	switch {
	case cc.OpenRouterAPIKey != "":
		return NewOpenRouter(OpenRouterConfig{
			APIKey:  cc.OpenRouterAPIKey,
			APIBase: cc.OpenRouterAPIBase,
			Model:   cc.OpenRouterModel,
			Timeout: timeout,
			Logger:  logger,
		})
	case cc.AnthropicAPIKey != "":
		return NewAnthropic(AnthropicConfig{
			APIKey:  cc.AnthropicAPIKey,
			Model:   cc.AnthropicModel,
			Timeout: timeout,
		})
	default:
		return nil
	}
}
