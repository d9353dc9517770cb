package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quizforge/ports"

	openai "github.com/sashabaranov/go-openai"
)

// Config holds chat-completion adapter configuration
type Config struct {
	APIKey      string        // provider API token
	BaseURL     string        // optional override (default: https://api.openai.com/v1)
	Model       string        // e.g. "Qwen/Qwen2.5-72B-Instruct"
	Temperature float32       // lower = more deterministic
	MaxTokens   int           // token budget per completion
	Timeout     time.Duration // request deadline
}

// ChatClientImpl implements ports.ChatClient over the OpenAI-compatible
// chat-completions API (the hosted router speaks the same protocol).
type ChatClientImpl struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
}

// NewChatClient creates a chat client from config
func NewChatClient(cfg Config) (*ChatClientImpl, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing API key")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("missing model")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(baseURL, "/")
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &ChatClientImpl{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
		timeout:     timeout,
	}, nil
}

func (c *ChatClientImpl) ChatCompletion(ctx context.Context, messages []ports.ChatMessage) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		reqMessages[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    reqMessages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion response missing choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// MockChatClient is a mock chat client for testing
type MockChatClient struct {
	Response     string // Set this for testing
	Error        error  // Set this to simulate errors
	LastMessages []ports.ChatMessage
}

func (m *MockChatClient) ChatCompletion(ctx context.Context, messages []ports.ChatMessage) (string, error) {
	m.LastMessages = messages
	if m.Error != nil {
		return "", m.Error
	}
	if m.Response != "" {
		return m.Response, nil
	}
	// Default mock response
	return `[
		{
			"question": "What does HTTP stand for?",
			"option_a": "HyperText Transfer Protocol",
			"option_b": "High Throughput Transfer Process",
			"option_c": "Hyperlink Text Parsing",
			"option_d": "Host Transfer Protocol",
			"correct_option": "A",
			"explanation": "HTTP is the HyperText Transfer Protocol."
		}
	]`, nil
}
