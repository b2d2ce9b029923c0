package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iago/model-select/internal/ai"
)

const classifierInstructions = `You are a prompt complexity classifier. Analyze the user's prompt and classify it into one of three complexity levels: low, medium, or high.

Classification criteria:
- "low": Simple queries, basic questions, casual requests with minimal stakes
- "medium": Moderate complexity tasks, general information requests, standard analysis
- "high": Complex reasoning, critical decision-making, high-stakes situations where errors are costly, creative/strategic work, code generation, medical/legal advice, financial decisions

Return ONLY valid JSON with this exact format:
{
    "complexity": "low" | "medium" | "high",
    "confidence": <float between 0.0 and 1.0>
}`

var classificationFormat = &ai.OutputFormat{
	Name: "prompt_classification",
	Schema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"complexity": map[string]any{
				"type": "string",
				"enum": []string{string(ComplexityLow), string(ComplexityMedium), string(ComplexityHigh)},
			},
			"confidence": map[string]any{
				"type": "number",
			},
		},
		"required":             []string{"complexity", "confidence"},
		"additionalProperties": false,
	},
}

type ClassifierConfig struct {
	Model  string
	Client ai.TextGenerator
	Logger zerolog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Classifier asks the auxiliary model for a complexity judgment.
type Classifier struct {
	model  string
	client ai.TextGenerator
	logger zerolog.Logger
	now    func() time.Time
}

func NewClassifier(cfg ClassifierConfig) *Classifier {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Classifier{
		model:  strings.TrimSpace(cfg.Model),
		client: cfg.Client,
		logger: cfg.Logger,
		now:    cfg.Now,
	}
}

// Classify makes exactly one remote call. Undecodable output degrades to
// FallbackClassification; only the call itself can fail.
func (c *Classifier) Classify(ctx context.Context, prompt string) (ClassificationResult, time.Duration, error) {
	start := c.now()

	if c.client == nil {
		return ClassificationResult{}, 0, &RemoteCallError{Stage: StageClassification, Model: c.model, Err: ai.ErrClientUnavailable}
	}
	response, err := c.client.Generate(ctx, ai.GenerateRequest{
		Model:        c.model,
		Instructions: classifierInstructions,
		Input:        prompt,
		Format:       classificationFormat,
	})
	if err != nil {
		return ClassificationResult{}, 0, &RemoteCallError{Stage: StageClassification, Model: c.model, Err: err}
	}

	decoded := decodeClassification(response.Text)
	latency := c.now().Sub(start)
	if latency < 0 {
		latency = 0
	}

	if decoded.Fallback {
		loggerFrom(ctx, c.logger).Warn().
			Str("model", c.model).
			Str("reason", decoded.Reason).
			Msg("classification output malformed, using defaults")
	}
	return decoded.Result, latency, nil
}

// classificationDecode is the outcome of reading classifier output: either
// the parsed result or the fallback plus why it was needed.
type classificationDecode struct {
	Result   ClassificationResult
	Fallback bool
	Reason   string
}

func decodeClassification(text string) classificationDecode {
	fallback := func(reason string) classificationDecode {
		return classificationDecode{Result: FallbackClassification, Fallback: true, Reason: reason}
	}

	trimmed := stripCodeFence(text)
	if trimmed == "" {
		return fallback("empty output")
	}

	var payload struct {
		Complexity *string  `json:"complexity"`
		Confidence *float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return fallback(fmt.Sprintf("invalid json: %v", err))
	}
	if payload.Complexity == nil {
		return fallback("missing complexity")
	}
	if payload.Confidence == nil {
		return fallback("missing confidence")
	}
	level, ok := ParseComplexity(*payload.Complexity)
	if !ok {
		return fallback(fmt.Sprintf("unrecognized complexity %q", *payload.Complexity))
	}

	return classificationDecode{
		Result: ClassificationResult{
			Complexity: level,
			Confidence: clampConfidence(*payload.Confidence),
		},
	}
}

func clampConfidence(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}

func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimPrefix(trimmed, "json")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
