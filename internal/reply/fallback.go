package reply

import (
	"context"
	"log/slog"

	"replybot/internal/domain"
	"replybot/internal/metrics"
)

// Fallback tries the primary strategy and falls back to the secondary when it
// fails. With keyword matching as the secondary this never surfaces an error
// to dispatch: AI failures downgrade instead of propagating.
type Fallback struct {
	primary   domain.Replier
	secondary domain.Replier
	logger    *slog.Logger
}

func NewFallback(primary, secondary domain.Replier, logger *slog.Logger) *Fallback {
	return &Fallback{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}
}

func (f *Fallback) Name() string {
	return "fallback(" + f.primary.Name() + "→" + f.secondary.Name() + ")"
}

func (f *Fallback) Reply(ctx context.Context, text string) (string, error) {
	out, err := f.primary.Reply(ctx, text)
	if err == nil {
		return out, nil
	}

	metrics.StrategyFallbacks.Inc()
	f.logger.Warn("primary strategy failed, falling back",
		"primary", f.primary.Name(),
		"fallback", f.secondary.Name(),
		"error", err,
	)
	return f.secondary.Reply(ctx, text)
}
