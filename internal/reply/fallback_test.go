package reply

import (
	"context"
	"errors"
	"testing"
)

// mockReplier implements domain.Replier for chain tests.
type mockReplier struct {
	name     string
	response string
	err      error
	calls    int
}

func (m *mockReplier) Name() string { return m.name }

func (m *mockReplier) Reply(ctx context.Context, text string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func TestFallback_PrimarySucceeds(t *testing.T) {
	primary := &mockReplier{name: "primary", response: "from-primary"}
	secondary := &mockReplier{name: "secondary", response: "from-secondary"}
	f := NewFallback(primary, secondary, testLogger())

	out, err := f.Reply(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "from-primary" {
		t.Fatalf("expected 'from-primary', got %q", out)
	}
	if secondary.calls != 0 {
		t.Fatal("secondary should not run when primary succeeds")
	}
}

func TestFallback_FallsBackOnError(t *testing.T) {
	primary := &mockReplier{name: "primary", err: errors.New("api error")}
	secondary := &mockReplier{name: "secondary", response: "from-secondary"}
	f := NewFallback(primary, secondary, testLogger())

	out, err := f.Reply(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "from-secondary" {
		t.Fatalf("expected 'from-secondary', got %q", out)
	}
}

func TestFallback_BothFail(t *testing.T) {
	primary := &mockReplier{name: "primary", err: errors.New("fail 1")}
	secondary := &mockReplier{name: "secondary", err: errors.New("fail 2")}
	f := NewFallback(primary, secondary, testLogger())

	if _, err := f.Reply(context.Background(), "hello"); err == nil {
		t.Fatal("expected error when both strategies fail")
	}
}

func TestFallback_Name(t *testing.T) {
	f := NewFallback(&mockReplier{name: "completion(mock)"}, &mockReplier{name: "keyword"}, testLogger())
	if f.Name() != "fallback(completion(mock)→keyword)" {
		t.Fatalf("unexpected name: %q", f.Name())
	}
}
