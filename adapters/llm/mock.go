package llm

import (
	"context"
	"sync"

	"github.com/MAKRANE-cpu/monographie/ports"
)

// MockClient is a canned LLM client for tests and offline demos
type MockClient struct {
	Response string // Set this for testing
	Error    error  // Set this to simulate errors

	mu       sync.Mutex
	requests []ports.ChatRequest
}

func (m *MockClient) ChatCompletion(ctx context.Context, req ports.ChatRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.Error != nil {
		return "", m.Error
	}
	if m.Response != "" {
		return m.Response, nil
	}
	return "Réponse de démonstration : aucun modèle n'est connecté.", nil
}

// Requests returns every request received so far
func (m *MockClient) Requests() []ports.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ports.ChatRequest, len(m.requests))
	copy(out, m.requests)
	return out
}
