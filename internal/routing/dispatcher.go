package routing

import (
	"context"

	"github.com/iago/model-select/internal/ai"
)

// Dispatcher runs the real prompt against the selected tier.
type Dispatcher struct {
	client          ai.TextGenerator
	maxOutputTokens int
}

func NewDispatcher(client ai.TextGenerator, maxOutputTokens int) *Dispatcher {
	return &Dispatcher{client: client, maxOutputTokens: maxOutputTokens}
}

// Execute returns the model output verbatim.
func (d *Dispatcher) Execute(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	if d.client == nil {
		return "", &RemoteCallError{Stage: StageGeneration, Model: string(tier), Err: ai.ErrClientUnavailable}
	}
	result, err := d.client.Generate(ctx, ai.GenerateRequest{
		Model:           string(tier),
		Input:           prompt,
		MaxOutputTokens: d.maxOutputTokens,
	})
	if err != nil {
		return "", &RemoteCallError{Stage: StageGeneration, Model: string(tier), Err: err}
	}
	return result.Text, nil
}
