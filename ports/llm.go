package ports

import "context"

// ChatRequest is one system + user exchange with a chat completion model
type ChatRequest struct {
	Model       string
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// LLMClient interface for LLM providers
type LLMClient interface {
	ChatCompletion(ctx context.Context, req ChatRequest) (string, error)
}
