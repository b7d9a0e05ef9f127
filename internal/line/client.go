package line

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
)

const (
	// The platform caps a text message at 2000 characters and a reply call
	// at five messages.
	maxMessageLen       = 2000
	maxMessagesPerReply = 5

	replyTimeout = 10 * time.Second
)

// ClientConfig configures the reply API client.
type ClientConfig struct {
	AccessToken string
	APIBase     string
	Logger      *slog.Logger
}

// Client posts replies through the platform's reply endpoint. A reply token
// is single-use: one call per token, carrying up to five messages.
type Client struct {
	accessToken string
	apiBase     string
	client      *http.Client
	logger      *slog.Logger
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.APIBase == "" {
		cfg.APIBase = "https://api.line.me"
	}
	return &Client{
		accessToken: cfg.AccessToken,
		apiBase:     strings.TrimSuffix(cfg.APIBase, "/"),
		client:      &http.Client{Timeout: replyTimeout},
		logger:      cfg.Logger,
	}
}

type replyRequest struct {
	ReplyToken string        `json:"replyToken"`
	Messages   []textMessage `json:"messages"`
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Reply sends text back for the given reply token. Text over the message
// limit is split into several messages; anything past the fifth is dropped.
func (c *Client) Reply(ctx context.Context, replyToken, text string) error {
	if replyToken == "" {
		return fmt.Errorf("empty reply token")
	}
	if text == "" {
		return fmt.Errorf("empty reply text")
	}

	chunks := splitMessage(text, maxMessageLen)
	if len(chunks) > maxMessagesPerReply {
		c.logger.Warn("reply too long, truncating",
			"chunks", len(chunks),
			"kept", maxMessagesPerReply,
		)
		chunks = chunks[:maxMessagesPerReply]
	}
	msgs := make([]textMessage, 0, len(chunks))
	for _, chunk := range chunks {
		msgs = append(msgs, textMessage{Type: "text", Text: chunk})
	}

	jsonBody, err := json.Marshal(replyRequest{ReplyToken: replyToken, Messages: msgs})
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiBase+"/v2/bot/message/reply", bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("reply request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("line reply %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// splitMessage splits a message into chunks that fit within the max length,
// trying to split on newlines when possible.
func splitMessage(msg string, maxLen int) []string {
	if len(msg) <= maxLen {
		return []string{msg}
	}

	var chunks []string
	for len(msg) > 0 {
		if len(msg) <= maxLen {
			chunks = append(chunks, msg)
			break
		}

		// Try to split on a newline.
		cut := maxLen
		if idx := strings.LastIndex(msg[:maxLen], "\n"); idx > maxLen/2 {
			cut = idx + 1
		}

		chunks = append(chunks, msg[:cut])
		msg = msg[cut:]
	}
	return chunks
}
