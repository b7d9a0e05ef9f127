package reply

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"replybot/internal/domain"
)

func openRouterServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *OpenRouter) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	o := NewOpenRouter(OpenRouterConfig{
		APIKey:  "test-key",
		APIBase: srv.URL,
		Model:   "openai/gpt-3.5-turbo",
		Logger:  testLogger(),
	})
	return srv, o
}

func TestOpenRouter_Complete(t *testing.T) {
	var got orRequest
	var auth string
	_, o := openRouterServer(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(orResponse{Choices: []orChoice{
			{Message: orMessage{Role: "assistant", Content: "  the answer  "}},
		}})
	})

	out, err := o.Complete(context.Background(), domain.CompletionRequest{
		System:    "be brief",
		User:      "hello",
		MaxTokens: 150,
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != "the answer" {
		t.Fatalf("expected trimmed answer, got %q", out)
	}
	if auth != "Bearer test-key" {
		t.Errorf("unexpected auth header: %s", auth)
	}
	if got.Model != "openai/gpt-3.5-turbo" {
		t.Errorf("unexpected model: %s", got.Model)
	}
	if got.MaxTokens != 150 {
		t.Errorf("expected max_tokens 150, got %d", got.MaxTokens)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "hello" {
		t.Errorf("unexpected messages: %+v", got.Messages)
	}
	if got.Temperature == nil || *got.Temperature != defaultTemperature {
		t.Errorf("expected temperature %v, got %v", defaultTemperature, got.Temperature)
	}
}

func TestOpenRouter_Complete_NoSystemPrompt(t *testing.T) {
	var got orRequest
	_, o := openRouterServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(orResponse{Choices: []orChoice{
			{Message: orMessage{Content: "ok"}},
		}})
	})

	if _, err := o.Complete(context.Background(), domain.CompletionRequest{User: "hi"}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" {
		t.Errorf("expected a single user message, got %+v", got.Messages)
	}
}

func TestOpenRouter_Complete_APIError(t *testing.T) {
	_, o := openRouterServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate limited"}`))
	})

	if _, err := o.Complete(context.Background(), domain.CompletionRequest{User: "hi"}); err == nil {
		t.Fatal("expected error for 429 response")
	}
}

func TestOpenRouter_Complete_EmptyChoices(t *testing.T) {
	_, o := openRouterServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(orResponse{})
	})

	if _, err := o.Complete(context.Background(), domain.CompletionRequest{User: "hi"}); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestOpenRouter_Complete_EmptyContent(t *testing.T) {
	_, o := openRouterServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(orResponse{Choices: []orChoice{{Message: orMessage{Content: "   "}}}})
	})

	if _, err := o.Complete(context.Background(), domain.CompletionRequest{User: "hi"}); err == nil {
		t.Fatal("expected error for blank completion")
	}
}

func TestOpenRouter_Healthy(t *testing.T) {
	_, o := openRouterServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	})

	if err := o.Healthy(context.Background()); err != nil {
		t.Fatalf("expected healthy, got: %v", err)
	}
}

func TestOpenRouter_Healthy_BadKey(t *testing.T) {
	_, o := openRouterServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	if err := o.Healthy(context.Background()); err == nil {
		t.Fatal("expected error for 401")
	}
}

func TestOpenRouter_Name(t *testing.T) {
	o := NewOpenRouter(OpenRouterConfig{APIKey: "k", Logger: testLogger()})
	if o.Name() != "openrouter" {
		t.Fatalf("expected 'openrouter', got %q", o.Name())
	}
}
