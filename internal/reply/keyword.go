package reply

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"replybot/internal/config"
	"replybot/internal/metrics"
)

const timeFormat = "2006-01-02 15:04:05"

// Keyword replies from an ordered table of trigger phrases. Matching is a
// case-insensitive substring check; the first matching rule wins and the
// default reply covers everything else. It never fails, which is what makes
// it the terminal strategy of the fallback chain.
type Keyword struct {
	rules        []rule
	defaultReply string
	now          func() time.Time
	logger       *slog.Logger
}

type rule struct {
	triggers []string // pre-lowered
	reply    string
}

// KeywordConfig configures the keyword strategy.
type KeywordConfig struct {
	Rules        []config.Rule
	DefaultReply string
	Logger       *slog.Logger
}

func NewKeyword(cfg KeywordConfig) *Keyword {
	rules := make([]rule, 0, len(cfg.Rules))
	for _, r := range cfg.Rules {
		lowered := make([]string, 0, len(r.Triggers))
		for _, t := range r.Triggers {
			lowered = append(lowered, strings.ToLower(t))
		}
		rules = append(rules, rule{triggers: lowered, reply: r.Reply})
	}
	return &Keyword{
		rules:        rules,
		defaultReply: cfg.DefaultReply,
		now:          time.Now,
		logger:       cfg.Logger,
	}
}

func (k *Keyword) Name() string { return "keyword" }

func (k *Keyword) Reply(ctx context.Context, text string) (string, error) {
	metrics.KeywordReplies.Inc()

	lowered := strings.ToLower(text)
	for _, r := range k.rules {
		for _, trigger := range r.triggers {
			if strings.Contains(lowered, trigger) {
				k.logger.Debug("keyword rule matched", "trigger", trigger)
				return k.render(r.reply, text), nil
			}
		}
	}
	return k.render(k.defaultReply, text), nil
}

// render fills the placeholders a reply may carry: {{time}} expands to the
// current local time, {{message}} to the inbound text.
func (k *Keyword) render(reply, text string) string {
	reply = strings.ReplaceAll(reply, "{{time}}", k.now().Format(timeFormat))
	reply = strings.ReplaceAll(reply, "{{message}}", text)
	return reply
}
