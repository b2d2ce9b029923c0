// Package pricing estimates what a routed request cost compared with always
// using the premium tier.
package pricing

import (
	"math"
	"unicode/utf8"
)

const tokensPerMillion = 1_000_000

// Price is USD per one million tokens.
type Price struct {
	Input  float64 `json:"input"`
	Output float64 `json:"output"`
}

// Table maps model identifiers to prices.
type Table map[string]Price

func DefaultTable() Table {
	return Table{
		"gpt-5-nano": {Input: 0.05, Output: 0.40},
		"gpt-5-mini": {Input: 0.25, Output: 0.60},
		"gpt-5":      {Input: 1.25, Output: 10.00},
	}
}

// Merge returns a copy of t with overrides applied on top.
func (t Table) Merge(overrides Table) Table {
	merged := make(Table, len(t)+len(overrides))
	for model, price := range t {
		merged[model] = price
	}
	for model, price := range overrides {
		merged[model] = price
	}
	return merged
}

func (t Table) Lookup(model string) (Price, bool) {
	price, ok := t[model]
	return price, ok
}

// EstimateTokens approximates token count as characters / 4.
func EstimateTokens(text string) int {
	return utf8.RuneCountInString(text) / 4
}

// Usage is the estimated token volume of one routed request.
type Usage struct {
	InputTokens           int `json:"input_tokens"`
	OutputTokens          int `json:"output_tokens"`
	ClassifierInputTokens int `json:"classifier_input_tokens"`
}

// Estimate is the cost of a routed request next to the premium-only baseline.
type Estimate struct {
	Usage          Usage   `json:"usage"`
	ActualUSD      float64 `json:"actual_usd"`
	BaselineUSD    float64 `json:"baseline_usd"`
	SavingsUSD     float64 `json:"savings_usd"`
	SavingsPercent float64 `json:"savings_percent"`
	// Priced is false when one of the models has no entry in the table.
	Priced bool `json:"priced"`
}

type Request struct {
	Prompt          string
	Output          string
	SelectedModel   string
	ClassifierModel string
	BaselineModel   string
}

// Estimate prices the selected model's input and output plus the classifier's
// input, against the baseline model serving every token including the ones
// the classifier read.
func (t Table) Estimate(req Request) Estimate {
	usage := Usage{
		InputTokens:           EstimateTokens(req.Prompt),
		OutputTokens:          EstimateTokens(req.Output),
		ClassifierInputTokens: EstimateTokens(req.Prompt),
	}
	estimate := Estimate{Usage: usage}

	selected, okSelected := t.Lookup(req.SelectedModel)
	classifier, okClassifier := t.Lookup(req.ClassifierModel)
	baseline, okBaseline := t.Lookup(req.BaselineModel)
	if !okSelected || !okClassifier || !okBaseline {
		return estimate
	}

	estimate.Priced = true
	estimate.ActualUSD = cost(usage.InputTokens, selected.Input) +
		cost(usage.OutputTokens, selected.Output) +
		cost(usage.ClassifierInputTokens, classifier.Input)
	estimate.BaselineUSD = cost(usage.InputTokens+usage.ClassifierInputTokens, baseline.Input) +
		cost(usage.OutputTokens, baseline.Output)
	estimate.SavingsUSD = estimate.BaselineUSD - estimate.ActualUSD
	if estimate.BaselineUSD > 0 {
		estimate.SavingsPercent = round(estimate.SavingsUSD/estimate.BaselineUSD*100, 2)
	}
	return estimate
}

func cost(tokens int, perMillion float64) float64 {
	return float64(tokens) / tokensPerMillion * perMillion
}

func round(value float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(value*scale) / scale
}
