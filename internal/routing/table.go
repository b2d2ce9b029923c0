package routing

import (
	"errors"
	"fmt"
	"strings"
)

// ModelTier is the model identifier serving one cost/capability tier.
type ModelTier string

type TierName string

const (
	TierEconomy  TierName = "economy"
	TierStandard TierName = "standard"
	TierPremium  TierName = "premium"
)

// TierSet holds the three tier models, cheapest first.
type TierSet struct {
	Economy  ModelTier
	Standard ModelTier
	Premium  ModelTier
}

func (s TierSet) ByName(name string) (ModelTier, error) {
	var tier ModelTier
	switch TierName(strings.ToLower(strings.TrimSpace(name))) {
	case TierEconomy:
		tier = s.Economy
	case TierStandard:
		tier = s.Standard
	case TierPremium:
		tier = s.Premium
	default:
		return "", fmt.Errorf("unknown tier %q (want economy, standard or premium)", name)
	}
	if strings.TrimSpace(string(tier)) == "" {
		return "", fmt.Errorf("tier %q has no model configured", name)
	}
	return tier, nil
}

func (s TierSet) validate() error {
	for _, name := range []TierName{TierEconomy, TierStandard, TierPremium} {
		if _, err := s.ByName(string(name)); err != nil {
			return err
		}
	}
	return nil
}

// RoutingTable maps every complexity level to a tier. It is immutable once
// built.
type RoutingTable struct {
	entries  map[ComplexityLevel]ModelTier
	fallback ModelTier
}

// NewRoutingTable copies entries and rejects a table that misses a level.
// fallback serves unrecognized levels.
func NewRoutingTable(entries map[ComplexityLevel]ModelTier, fallback ModelTier) (RoutingTable, error) {
	copied := make(map[ComplexityLevel]ModelTier, len(Levels))
	for _, level := range Levels {
		tier, ok := entries[level]
		if !ok || strings.TrimSpace(string(tier)) == "" {
			return RoutingTable{}, fmt.Errorf("routing table has no entry for %q", level)
		}
		copied[level] = tier
	}
	if strings.TrimSpace(string(fallback)) == "" {
		return RoutingTable{}, errors.New("routing table fallback is empty")
	}
	return RoutingTable{entries: copied, fallback: fallback}, nil
}

// NewTieredTable builds the table from tier names per level.
func NewTieredTable(tiers TierSet, low, medium, high string) (RoutingTable, error) {
	if err := tiers.validate(); err != nil {
		return RoutingTable{}, err
	}
	entries := make(map[ComplexityLevel]ModelTier, len(Levels))
	for level, name := range map[ComplexityLevel]string{
		ComplexityLow:    low,
		ComplexityMedium: medium,
		ComplexityHigh:   high,
	} {
		tier, err := tiers.ByName(name)
		if err != nil {
			return RoutingTable{}, fmt.Errorf("route %s: %w", level, err)
		}
		entries[level] = tier
	}
	return NewRoutingTable(entries, tiers.Standard)
}

func (t RoutingTable) Lookup(level ComplexityLevel) ModelTier {
	if tier, ok := t.entries[level]; ok {
		return tier
	}
	return t.fallback
}

func (t RoutingTable) Fallback() ModelTier {
	return t.fallback
}

// Entries returns a copy of the table.
func (t RoutingTable) Entries() map[ComplexityLevel]ModelTier {
	copied := make(map[ComplexityLevel]ModelTier, len(t.entries))
	for level, tier := range t.entries {
		copied[level] = tier
	}
	return copied
}
