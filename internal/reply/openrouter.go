package reply

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"replybot/internal/domain"
	"replybot/internal/metrics"
)

const defaultTemperature = 0.7

// OpenRouter implements domain.Completer against the OpenRouter
// chat-completions API (OpenAI-compatible).
type OpenRouter struct {
	apiKey  string
	apiBase string
	model   string
	client  *http.Client
	logger  *slog.Logger
}

// OpenRouterConfig configures the OpenRouter completer.
type OpenRouterConfig struct {
	APIKey  string
	APIBase string
	Model   string
	Timeout time.Duration
	Logger  *slog.Logger
}

func NewOpenRouter(cfg OpenRouterConfig) *OpenRouter {
	if cfg.APIBase == "" {
		cfg.APIBase = "https://openrouter.ai/api/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "openai/gpt-3.5-turbo"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &OpenRouter{
		apiKey:  cfg.APIKey,
		apiBase: strings.TrimSuffix(cfg.APIBase, "/"),
		model:   cfg.Model,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  cfg.Logger,
	}
}

func (o *OpenRouter) Name() string { return "openrouter" }

func (o *OpenRouter) Healthy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", o.apiBase+"/models", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("openrouter not reachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("openrouter: invalid API key")
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("openrouter returned %d", resp.StatusCode)
	}
	return nil
}

type orRequest struct {
	Model       string      `json:"model"`
	Messages    []orMessage `json:"messages"`
	MaxTokens   int         `json:"max_tokens,omitempty"`
	Temperature *float64    `json:"temperature,omitempty"`
}

type orMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type orResponse struct {
	Choices []orChoice `json:"choices"`
}

type orChoice struct {
	Message      orMessage `json:"message"`
	FinishReason string    `json:"finish_reason"`
}

// Complete issues one bounded chat completion.
func (o *OpenRouter) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	metrics.CompletionRequests.Inc()
	start := time.Now()
	defer func() {
		metrics.CompletionLatency.Observe(time.Since(start).Seconds())
	}()

	temp := defaultTemperature
	body := orRequest{
		Model:       o.model,
		Temperature: &temp,
	}
	if req.System != "" {
		body.Messages = append(body.Messages, orMessage{Role: "system", Content: req.System})
	}
	body.Messages = append(body.Messages, orMessage{Role: "user", Content: req.User})
	if req.MaxTokens > 0 {
		body.MaxTokens = req.MaxTokens
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", o.apiBase+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	// OpenRouter uses these for app attribution on its dashboard.
	httpReq.Header.Set("HTTP-Referer", "https://replybot.example.com")
	httpReq.Header.Set("X-Title", "ReplyBot")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		metrics.CompletionFailures.Inc()
		return "", fmt.Errorf("openrouter request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.CompletionFailures.Inc()
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("openrouter %d: %s", resp.StatusCode, string(respBody))
	}

	var orResp orResponse
	if err := json.NewDecoder(resp.Body).Decode(&orResp); err != nil {
		metrics.CompletionFailures.Inc()
		return "", fmt.Errorf("decode: %w", err)
	}
	if len(orResp.Choices) == 0 {
		metrics.CompletionFailures.Inc()
		return "", fmt.Errorf("openrouter: empty choices")
	}
	content := strings.TrimSpace(orResp.Choices[0].Message.Content)
	if content == "" {
		metrics.CompletionFailures.Inc()
		return "", fmt.Errorf("openrouter: empty completion")
	}
	return content, nil
}
