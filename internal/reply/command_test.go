package reply

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestCommand_SearchCommand(t *testing.T) {
	searcher := &mockSearcher{results: "formatted results"}
	next := &mockReplier{name: "keyword", response: "from-next"}
	c := NewCommand(CommandConfig{Next: next, Searcher: searcher, Logger: testLogger()})

	out, err := c.Reply(context.Background(), "search golang generics")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "formatted results" {
		t.Fatalf("expected raw results without a completer, got %q", out)
	}
	if len(searcher.queries) != 1 || searcher.queries[0] != "golang generics" {
		t.Fatalf("unexpected query: %v", searcher.queries)
	}
	if next.calls != 0 {
		t.Fatal("next strategy should not run for a search command")
	}
}

func TestCommand_CaseInsensitivePrefix(t *testing.T) {
	searcher := &mockSearcher{results: "results"}
	c := NewCommand(CommandConfig{Next: &mockReplier{name: "keyword"}, Searcher: searcher, Logger: testLogger()})

	if _, err := c.Reply(context.Background(), "Search golang"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(searcher.queries) != 1 || searcher.queries[0] != "golang" {
		t.Fatalf("expected query 'golang', got %v", searcher.queries)
	}
}

func TestCommand_ContextualizesResults(t *testing.T) {
	searcher := &mockSearcher{results: "formatted results"}
	completer := &mockCompleter{byPrompt: map[string]string{
		contextualPrompt: "summarized answer",
	}}
	c := NewCommand(CommandConfig{
		Next:      &mockReplier{name: "keyword"},
		Searcher:  searcher,
		Completer: completer,
		Logger:    testLogger(),
	})

	out, _ := c.Reply(context.Background(), "search go 1.25 release")
	if out != "summarized answer" {
		t.Fatalf("expected contextualized answer, got %q", out)
	}
}

func TestCommand_ContextualFailureReturnsResults(t *testing.T) {
	searcher := &mockSearcher{results: "formatted results"}
	completer := &mockCompleter{err: errors.New("overloaded")}
	c := NewCommand(CommandConfig{
		Next:      &mockReplier{name: "keyword"},
		Searcher:  searcher,
		Completer: completer,
		Logger:    testLogger(),
	})

	out, err := c.Reply(context.Background(), "search go 1.25 release")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "formatted results" {
		t.Fatalf("expected raw results, got %q", out)
	}
}

func TestCommand_SearchError(t *testing.T) {
	searcher := &mockSearcher{err: errors.New("timeout")}
	c := NewCommand(CommandConfig{Next: &mockReplier{name: "keyword"}, Searcher: searcher, Logger: testLogger()})

	out, err := c.Reply(context.Background(), "search something")
	if err != nil {
		t.Fatalf("search errors must map to a reply, got error: %v", err)
	}
	if !strings.Contains(out, "error while searching for 'something'") {
		t.Fatalf("unexpected error reply: %q", out)
	}
}

func TestCommand_NoResults(t *testing.T) {
	searcher := &mockSearcher{results: ""}
	c := NewCommand(CommandConfig{Next: &mockReplier{name: "keyword"}, Searcher: searcher, Logger: testLogger()})

	out, _ := c.Reply(context.Background(), "search xyzzy")
	if !strings.Contains(out, "couldn't find any results for 'xyzzy'") {
		t.Fatalf("unexpected no-results reply: %q", out)
	}
}

func TestCommand_PassThrough(t *testing.T) {
	searcher := &mockSearcher{results: "results"}
	next := &mockReplier{name: "keyword", response: "from-next"}
	c := NewCommand(CommandConfig{Next: next, Searcher: searcher, Logger: testLogger()})

	out, _ := c.Reply(context.Background(), "hello there")
	if out != "from-next" {
		t.Fatalf("expected pass-through, got %q", out)
	}
	if len(searcher.queries) != 0 {
		t.Fatal("searcher should not run for plain messages")
	}
}

func TestCommand_BareSearchWordPassesThrough(t *testing.T) {
	next := &mockReplier{name: "keyword", response: "from-next"}
	c := NewCommand(CommandConfig{Next: next, Searcher: &mockSearcher{}, Logger: testLogger()})

	for _, text := range []string{"search", "search   ", "searching for meaning"} {
		out, _ := c.Reply(context.Background(), text)
		if out != "from-next" {
			t.Fatalf("expected pass-through for %q, got %q", text, out)
		}
	}
}

func TestCommand_Name(t *testing.T) {
	c := NewCommand(CommandConfig{Next: &mockReplier{name: "keyword"}, Searcher: &mockSearcher{}, Logger: testLogger()})
	if c.Name() != "keyword" {
		t.Fatalf("command layer should keep the strategy name, got %q", c.Name())
	}
}
