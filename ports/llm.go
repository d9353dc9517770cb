package ports

import "context"

// ChatMessage is one role/content pair sent to the chat-completion API.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatClient interface for hosted chat-completion providers
type ChatClient interface {
	// ChatCompletion sends the messages and returns the first completion's
	// text content, or an error on non-2xx / network failure.
	ChatCompletion(ctx context.Context, messages []ChatMessage) (string, error)
}
