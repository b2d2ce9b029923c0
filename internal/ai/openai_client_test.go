package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIClientGenerateUsesOutputText(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/responses" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&captured)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"model":"gpt-5-nano-2025-08-07",
			"output_text":"  4  ",
			"usage":{"input_tokens":9,"output_tokens":1,"total_tokens":10}
		}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(OpenAIClientConfig{
		APIKey:  "test-key",
		BaseURL: server.URL + "/",
		Timeout: 2 * time.Second,
	})
	result, err := client.Generate(context.Background(), GenerateRequest{
		Model:           "gpt-5-nano",
		Input:           "What's 2+2?",
		MaxOutputTokens: 1000,
	})
	require.NoError(t, err)

	assert.Equal(t, "  4  ", result.Text)
	assert.Equal(t, "gpt-5-nano-2025-08-07", result.ModelID)
	assert.Equal(t, 10, result.Usage.TotalTokens)
	assert.Equal(t, float64(1000), captured["max_output_tokens"])
	_, hasTemperature := captured["temperature"]
	assert.False(t, hasTemperature)
	_, hasInstructions := captured["instructions"]
	assert.False(t, hasInstructions)
}

func TestOpenAIClientCollectsMessageContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"model":"gpt-5",
			"output":[
				{"type":"reasoning","content":[{"type":"text","text":"hidden"}]},
				{"type":"message","role":"assistant","content":[{"type":"output_text","text":"part one"},{"type":"output_text","text":"part two"}]}
			]
		}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(OpenAIClientConfig{APIKey: "test-key", BaseURL: server.URL})
	result, err := client.Generate(context.Background(), GenerateRequest{Model: "gpt-5", Input: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "part one\npart two", result.Text)
}

func TestOpenAIClientSendsStructuredFormat(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"output_text":"{\"complexity\":\"high\",\"confidence\":0.8}"}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(OpenAIClientConfig{APIKey: "test-key", BaseURL: server.URL})
	_, err := client.Generate(context.Background(), GenerateRequest{
		Model:        "gpt-5-nano",
		Instructions: "Classify the prompt.",
		Input:        "Draft a merger agreement",
		Format: &OutputFormat{
			Name:   "classification",
			Schema: map[string]any{"type": "object"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Classify the prompt.", captured["instructions"])
	text, ok := captured["text"].(map[string]any)
	require.True(t, ok)
	format, ok := text["format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_schema", format["type"])
	assert.Equal(t, "classification", format["name"])
	assert.Equal(t, true, format["strict"])
}

func TestOpenAIClientSurfacesServerErrorWithoutRetry(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`upstream unavailable`))
	}))
	defer server.Close()

	client := NewOpenAIClient(OpenAIClientConfig{APIKey: "test-key", BaseURL: server.URL})
	_, err := client.Generate(context.Background(), GenerateRequest{Model: "gpt-5", Input: "hello"})
	require.Error(t, err)

	var providerErr *ProviderError
	require.True(t, errors.As(err, &providerErr))
	assert.Equal(t, http.StatusBadGateway, providerErr.StatusCode)
	assert.Equal(t, "upstream unavailable", providerErr.Message)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestOpenAIClientTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := NewOpenAIClient(OpenAIClientConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Timeout: 50 * time.Millisecond,
	})
	_, err := client.Generate(context.Background(), GenerateRequest{Model: "gpt-5", Input: "hello"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai timeout")
}

func TestOpenAIClientRejectsEmptyRequest(t *testing.T) {
	client := NewOpenAIClient(OpenAIClientConfig{APIKey: "test-key"})

	_, err := client.Generate(context.Background(), GenerateRequest{Input: "hello"})
	require.EqualError(t, err, "model is required")

	_, err = client.Generate(context.Background(), GenerateRequest{Model: "gpt-5", Input: "   "})
	require.EqualError(t, err, "input is required")
}

func TestOpenAIClientRefusalYieldsEmptyText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"model":"gpt-5-nano",
			"output":[{"type":"message","role":"assistant","content":[{"type":"refusal","refusal":"no"}]}]
		}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(OpenAIClientConfig{APIKey: "test-key", BaseURL: server.URL})
	result, err := client.Generate(context.Background(), GenerateRequest{Model: "gpt-5-nano", Input: "hello"})
	require.NoError(t, err)
	assert.Empty(t, result.Text)
	assert.Equal(t, "gpt-5-nano", result.ModelID)
}
