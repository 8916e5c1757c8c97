package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/MAKRANE-cpu/monographie/internal/errors"
	"github.com/MAKRANE-cpu/monographie/ports"

	"github.com/tidwall/gjson"
)

// Config holds the OpenAI connection settings
type Config struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
	Timeout      time.Duration
}

// NewClient creates an OpenAI chat completion client. It returns a
// CONFIG_INVALID error when no API key is configured.
func NewClient(config Config) (*OpenAIClient, error) {
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, errors.ConfigInvalid("missing OpenAI API key")
	}

	baseURL := strings.TrimSpace(config.BaseURL)
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := config.DefaultModel
	if model == "" {
		model = "gpt-4"
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Minute
	}

	return &OpenAIClient{
		apiKey:  config.APIKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// OpenAIClient implements ports.LLMClient over the chat completions API
type OpenAIClient struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
}

var _ ports.LLMClient = (*OpenAIClient)(nil)

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// ChatCompletion sends one optional system message and one user message and
// returns the content of the first choice.
func (c *OpenAIClient) ChatCompletion(ctx context.Context, req ports.ChatRequest) (string, error) {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = c.model
	}

	messages := make([]message, 0, 2)
	if req.System != "" {
		messages = append(messages, message{Role: "system", Content: req.System})
	}
	messages = append(messages, message{Role: "user", Content: req.Prompt})

	raw, err := json.Marshal(completionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", errors.ExternalServiceError("openai", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.ExternalServiceError("openai", fmt.Errorf("read response: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", errors.Unauthorized("openai", apiError(resp.StatusCode, body))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return "", errors.ExternalServiceError("openai", apiError(resp.StatusCode, body))
	}

	content := gjson.GetBytes(body, "choices.0.message.content")
	if !content.Exists() {
		return "", errors.ExternalServiceError("openai", fmt.Errorf("response missing choices"))
	}

	log.Printf("[OpenAIClient] %s completion in %v (%d prompt tokens, %d completion tokens)",
		model, time.Since(start),
		gjson.GetBytes(body, "usage.prompt_tokens").Int(),
		gjson.GetBytes(body, "usage.completion_tokens").Int())
	return content.String(), nil
}

func apiError(status int, body []byte) error {
	if msg := gjson.GetBytes(body, "error.message"); msg.Exists() {
		return fmt.Errorf("http %d: %s", status, msg.String())
	}
	return fmt.Errorf("http %d: %s", status, strings.TrimSpace(string(body)))
}
