package routing

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iago/model-select/internal/ai"
)

func newTestClassifier(gen *fakeGenerator, logger zerolog.Logger) *Classifier {
	clock := &fakeClock{current: time.Unix(1_700_000_000, 0), step: 150 * time.Millisecond}
	return NewClassifier(ClassifierConfig{
		Model:  "gpt-5-nano",
		Client: gen,
		Logger: logger,
		Now:    clock.Now,
	})
}

func TestClassifyParsesStructuredOutput(t *testing.T) {
	gen := &fakeGenerator{classification: `{"complexity":"low","confidence":0.9}`}
	classifier := newTestClassifier(gen, zerolog.Nop())

	result, latency, err := classifier.Classify(context.Background(), "What's 2+2?")
	require.NoError(t, err)

	assert.Equal(t, ClassificationResult{Complexity: ComplexityLow, Confidence: 0.9}, result)
	assert.Equal(t, 150*time.Millisecond, latency)

	calls := gen.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "gpt-5-nano", calls[0].Model)
	assert.Equal(t, "What's 2+2?", calls[0].Input)
	assert.Equal(t, classifierInstructions, calls[0].Instructions)
	require.NotNil(t, calls[0].Format)
	assert.Equal(t, "prompt_classification", calls[0].Format.Name)
}

func TestClassifyFallsBackOnMalformedOutput(t *testing.T) {
	cases := map[string]string{
		"not json":           "I think this is a low complexity prompt",
		"empty":              "   ",
		"missing confidence": `{"complexity":"high"}`,
		"missing complexity": `{"confidence":0.7}`,
		"unknown level":      `{"complexity":"extreme","confidence":0.8}`,
		"wrong type":         `{"complexity":3,"confidence":0.8}`,
	}

	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			var logs bytes.Buffer
			gen := &fakeGenerator{classification: text}
			classifier := newTestClassifier(gen, zerolog.New(&logs))

			result, latency, err := classifier.Classify(context.Background(), "hello")
			require.NoError(t, err)
			assert.Equal(t, FallbackClassification, result)
			assert.GreaterOrEqual(t, latency, time.Duration(0))
			assert.Contains(t, logs.String(), "classification output malformed")
		})
	}
}

func TestClassifyAcceptsFencedAndMixedCaseOutput(t *testing.T) {
	gen := &fakeGenerator{classification: "```json\n{\"complexity\": \"Medium\", \"confidence\": 0.42}\n```"}
	classifier := newTestClassifier(gen, zerolog.Nop())

	result, _, err := classifier.Classify(context.Background(), "Summarize this article")
	require.NoError(t, err)
	assert.Equal(t, ClassificationResult{Complexity: ComplexityMedium, Confidence: 0.42}, result)
}

func TestClassifyClampsConfidence(t *testing.T) {
	gen := &fakeGenerator{classification: `{"complexity":"high","confidence":1.7}`}
	result, _, err := newTestClassifier(gen, zerolog.Nop()).Classify(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Confidence)

	gen.classification = `{"complexity":"high","confidence":-2}`
	result, _, err = newTestClassifier(gen, zerolog.Nop()).Classify(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Confidence)
}

func TestClassifyWrapsRemoteFailure(t *testing.T) {
	upstream := errors.New("connection refused")
	gen := &fakeGenerator{classifyErr: upstream}

	_, _, err := newTestClassifier(gen, zerolog.Nop()).Classify(context.Background(), "x")
	require.Error(t, err)

	var remote *RemoteCallError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, StageClassification, remote.Stage)
	assert.Equal(t, "gpt-5-nano", remote.Model)
	assert.ErrorIs(t, err, upstream)
	assert.Len(t, gen.calls(), 1)
}

func TestClassifyLatencyNeverNegative(t *testing.T) {
	clock := &fakeClock{current: time.Unix(1_700_000_000, 0), step: -time.Second}
	classifier := NewClassifier(ClassifierConfig{
		Model:  "gpt-5-nano",
		Client: &fakeGenerator{classification: `{"complexity":"low","confidence":1}`},
		Logger: zerolog.Nop(),
		Now:    clock.Now,
	})

	_, latency, err := classifier.Classify(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), latency)
}

func TestClassifyFallsBackWhenProviderReturnsNoText(t *testing.T) {
	bodies := map[string]string{
		"refusal": `{"model":"gpt-5-nano","output":[{"type":"message","role":"assistant","content":[{"type":"refusal","refusal":"I can't help with that."}]}]}`,
		"empty":   `{"model":"gpt-5-nano","output":[]}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(body))
			}))
			defer server.Close()

			var logs bytes.Buffer
			classifier := NewClassifier(ClassifierConfig{
				Model:  "gpt-5-nano",
				Client: ai.NewOpenAIClient(ai.OpenAIClientConfig{APIKey: "test-key", BaseURL: server.URL, Timeout: 2 * time.Second}),
				Logger: zerolog.New(&logs),
			})

			result, latency, err := classifier.Classify(context.Background(), "hello")
			require.NoError(t, err)
			assert.Equal(t, FallbackClassification, result)
			assert.GreaterOrEqual(t, latency, time.Duration(0))
			assert.Contains(t, logs.String(), "empty output")
		})
	}
}
