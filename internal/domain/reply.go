package domain

import "context"

// Replier produces a reply for one inbound text message.
type Replier interface {
	Reply(ctx context.Context, text string) (string, error)
	Name() string
}

// Completer is a hosted language-model completion service.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	Name() string
	Healthy(ctx context.Context) error
}

// CompletionRequest is a single bounded completion call.
type CompletionRequest struct {
	System    string
	User      string
	MaxTokens int
}

// Searcher looks up a query on the web and returns a formatted result block.
// An empty block with a nil error means the search ran but found nothing.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// Sender posts a reply back through the messaging platform, addressed by the
// reply token of the event it answers.
type Sender interface {
	Reply(ctx context.Context, replyToken, text string) error
}
