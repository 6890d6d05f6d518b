// Package llm abstracts the text-generation backends behind a single
// completion interface. The pipeline treats the backend as optional: when no
// client is configured, analysis degrades to the keyword path.
package llm

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a completion request.
type Request struct {
	Model       string
	System      []string
	Messages    []Message
	MaxTokens   int32
	Temperature float32
}

// Response is the backend's completion.
type Response struct {
	Text       string
	StopReason string
}

// Client completes chat requests.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}
