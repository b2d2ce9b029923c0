package routing

import "strings"

// ComplexityLevel is the ordinal difficulty/stakes judgment for a prompt.
type ComplexityLevel string

const (
	ComplexityLow    ComplexityLevel = "low"
	ComplexityMedium ComplexityLevel = "medium"
	ComplexityHigh   ComplexityLevel = "high"
)

// Levels lists the complexity levels in ascending order.
var Levels = []ComplexityLevel{ComplexityLow, ComplexityMedium, ComplexityHigh}

func ParseComplexity(value string) (ComplexityLevel, bool) {
	level := ComplexityLevel(strings.ToLower(strings.TrimSpace(value)))
	if !level.Valid() {
		return "", false
	}
	return level, true
}

func (l ComplexityLevel) Valid() bool {
	return l.Rank() >= 0
}

// Rank orders levels low < medium < high. Unknown levels rank -1.
func (l ComplexityLevel) Rank() int {
	switch l {
	case ComplexityLow:
		return 0
	case ComplexityMedium:
		return 1
	case ComplexityHigh:
		return 2
	default:
		return -1
	}
}

// Next returns the level one step up. High is the ceiling.
func (l ComplexityLevel) Next() (ComplexityLevel, bool) {
	switch l {
	case ComplexityLow:
		return ComplexityMedium, true
	case ComplexityMedium:
		return ComplexityHigh, true
	default:
		return l, false
	}
}

// ClassificationResult is produced once per request by the Classifier.
type ClassificationResult struct {
	Complexity ComplexityLevel
	Confidence float64
}

// FallbackClassification is used whenever the classifier output cannot be
// decoded.
var FallbackClassification = ClassificationResult{
	Complexity: ComplexityMedium,
	Confidence: 0.5,
}
