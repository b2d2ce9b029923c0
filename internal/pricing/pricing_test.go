package pricing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 0, EstimateTokens("abc"))
	assert.Equal(t, 2, EstimateTokens("What's 2+2?"))
	assert.Equal(t, 1, EstimateTokens("éééé"))
}

func TestEstimateCheaperTierSaves(t *testing.T) {
	table := DefaultTable()
	estimate := table.Estimate(Request{
		Prompt:          strings.Repeat("a", 4000),
		Output:          strings.Repeat("b", 8000),
		SelectedModel:   "gpt-5-nano",
		ClassifierModel: "gpt-5-nano",
		BaselineModel:   "gpt-5",
	})

	require.True(t, estimate.Priced)
	assert.Equal(t, Usage{InputTokens: 1000, OutputTokens: 2000, ClassifierInputTokens: 1000}, estimate.Usage)
	// nano: 1000*0.05 + 2000*0.40 + classifier 1000*0.05 per 1M
	assert.InDelta(t, 0.0009, estimate.ActualUSD, 1e-12)
	// gpt-5: 2000*1.25 + 2000*10.00 per 1M
	assert.InDelta(t, 0.0225, estimate.BaselineUSD, 1e-12)
	assert.InDelta(t, 0.0216, estimate.SavingsUSD, 1e-12)
	assert.Equal(t, 96.0, estimate.SavingsPercent)
}

func TestEstimatePremiumCostsMoreThanBaseline(t *testing.T) {
	estimate := DefaultTable().Estimate(Request{
		Prompt:          strings.Repeat("a", 400),
		Output:          strings.Repeat("b", 400),
		SelectedModel:   "gpt-5",
		ClassifierModel: "gpt-5-nano",
		BaselineModel:   "gpt-5",
	})

	require.True(t, estimate.Priced)
	assert.Less(t, estimate.SavingsUSD, 0.0)
	assert.Less(t, estimate.SavingsPercent, 0.0)
}

func TestEstimateUnknownModel(t *testing.T) {
	estimate := DefaultTable().Estimate(Request{
		Prompt:          "hello world",
		Output:          "hi",
		SelectedModel:   "claude-sonnet",
		ClassifierModel: "gpt-5-nano",
		BaselineModel:   "gpt-5",
	})

	assert.False(t, estimate.Priced)
	assert.Zero(t, estimate.ActualUSD)
	assert.Equal(t, 2, estimate.Usage.InputTokens)
}

func TestMergeDoesNotMutate(t *testing.T) {
	base := DefaultTable()
	merged := base.Merge(Table{"gpt-5": {Input: 2, Output: 20}, "local": {}})

	assert.Equal(t, 1.25, base["gpt-5"].Input)
	assert.Equal(t, 2.0, merged["gpt-5"].Input)
	_, ok := merged.Lookup("local")
	assert.True(t, ok)
	assert.Len(t, base, 3)
}
