package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MAKRANE-cpu/monographie/internal/errors"
	"github.com/MAKRANE-cpu/monographie/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(Config{})
	assert.True(t, errors.Is(err, errors.CodeConfigInvalid))
}

func TestChatCompletion(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &captured))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"Bab Taza."}}],"usage":{"prompt_tokens":12,"completion_tokens":3}}`)
	}))
	defer srv.Close()

	client, err := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1/"})
	require.NoError(t, err)

	answer, err := client.ChatCompletion(context.Background(), ports.ChatRequest{
		System: "Vous êtes un expert.",
		Prompt: "Quelle commune ?",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bab Taza.", answer)

	assert.Equal(t, "gpt-4", captured["model"])
	// temperature 0 must be sent, not omitted
	assert.Equal(t, 0.0, captured["temperature"])
	messages := captured["messages"].([]interface{})
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]interface{})["role"])
	assert.Equal(t, "Quelle commune ?", messages[1].(map[string]interface{})["content"])
}

func TestChatCompletionErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, errors.CodeUnauthorized},
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`, errors.CodeExternalService},
		{"no choices", http.StatusOK, `{"choices":[]}`, errors.CodeExternalService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			client, err := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL})
			require.NoError(t, err)

			_, err = client.ChatCompletion(context.Background(), ports.ChatRequest{Prompt: "x"})
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.GetCode(err))
		})
	}
}
