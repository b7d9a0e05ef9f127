package reply

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"replybot/internal/domain"
	"replybot/internal/metrics"
)

// Anthropic implements domain.Completer on the official Anthropic SDK.
type Anthropic struct {
	client *anthropic.Client
	apiKey string
	model  string
}

// AnthropicConfig configures the Anthropic completer.
type AnthropicConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

func NewAnthropic(cfg AnthropicConfig) *Anthropic {
	if cfg.Model == "" {
		cfg.Model = "claude-3-5-haiku-20241022"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	client := anthropic.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	)
	return &Anthropic{
		client: &client,
		apiKey: cfg.APIKey,
		model:  cfg.Model,
	}
}

func (a *Anthropic) Name() string { return "anthropic" }

func (a *Anthropic) Healthy(ctx context.Context) error {
	if a.apiKey == "" {
		return fmt.Errorf("anthropic: no API key configured")
	}
	return nil
}

// Complete issues one bounded message completion.
func (a *Anthropic) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	metrics.CompletionRequests.Inc()
	start := time.Now()
	defer func() {
		metrics.CompletionLatency.Observe(time.Since(start).Seconds())
	}()

	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = directMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.User)),
		},
		Temperature: anthropic.Float(defaultTemperature),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		metrics.CompletionFailures.Inc()
		return "", fmt.Errorf("anthropic request: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}
	content := strings.TrimSpace(sb.String())
	if content == "" {
		metrics.CompletionFailures.Inc()
		return "", fmt.Errorf("anthropic: empty completion")
	}
	return content, nil
}
