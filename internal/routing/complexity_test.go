package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseComplexity(t *testing.T) {
	level, ok := ParseComplexity("  HIGH ")
	require.True(t, ok)
	assert.Equal(t, ComplexityHigh, level)

	_, ok = ParseComplexity("extreme")
	assert.False(t, ok)
	_, ok = ParseComplexity("")
	assert.False(t, ok)
}

func TestComplexityOrdering(t *testing.T) {
	assert.Less(t, ComplexityLow.Rank(), ComplexityMedium.Rank())
	assert.Less(t, ComplexityMedium.Rank(), ComplexityHigh.Rank())
	assert.Equal(t, -1, ComplexityLevel("extreme").Rank())

	next, ok := ComplexityLow.Next()
	assert.True(t, ok)
	assert.Equal(t, ComplexityMedium, next)

	next, ok = ComplexityHigh.Next()
	assert.False(t, ok)
	assert.Equal(t, ComplexityHigh, next)
}

func TestNewRoutingTableRejectsMissingEntries(t *testing.T) {
	_, err := NewRoutingTable(map[ComplexityLevel]ModelTier{
		ComplexityLow:    "a",
		ComplexityMedium: "b",
	}, "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "high")

	_, err = NewRoutingTable(map[ComplexityLevel]ModelTier{
		ComplexityLow:    "a",
		ComplexityMedium: "b",
		ComplexityHigh:   "c",
	}, "")
	require.Error(t, err)
}

func TestRoutingTableIsCopied(t *testing.T) {
	entries := map[ComplexityLevel]ModelTier{
		ComplexityLow:    "a",
		ComplexityMedium: "b",
		ComplexityHigh:   "c",
	}
	table, err := NewRoutingTable(entries, "b")
	require.NoError(t, err)

	entries[ComplexityLow] = "changed"
	assert.Equal(t, ModelTier("a"), table.Lookup(ComplexityLow))

	snapshot := table.Entries()
	snapshot[ComplexityHigh] = "changed"
	assert.Equal(t, ModelTier("c"), table.Lookup(ComplexityHigh))
}

func TestNewTieredTable(t *testing.T) {
	table, err := NewTieredTable(testTiers, "economy", "economy", "Premium")
	require.NoError(t, err)
	assert.Equal(t, ModelTier("gpt-5-nano"), table.Lookup(ComplexityMedium))
	assert.Equal(t, ModelTier("gpt-5"), table.Lookup(ComplexityHigh))
	assert.Equal(t, ModelTier("gpt-5-mini"), table.Fallback())

	_, err = NewTieredTable(testTiers, "economy", "gold", "premium")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gold")

	_, err = NewTieredTable(TierSet{Economy: "a", Standard: "b"}, "economy", "standard", "premium")
	require.Error(t, err)
}
