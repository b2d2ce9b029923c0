package routing

import (
	"context"
	"sync"
	"time"

	"github.com/iago/model-select/internal/ai"
)

type fakeGenerator struct {
	mu             sync.Mutex
	classification string
	classifyErr    error
	output         string
	generateErr    error
	requests       []ai.GenerateRequest
	onGenerate     func(ai.GenerateRequest)
}

func (f *fakeGenerator) Available() bool { return true }

func (f *fakeGenerator) Generate(_ context.Context, req ai.GenerateRequest) (ai.GenerateResult, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	hook := f.onGenerate
	f.mu.Unlock()

	if hook != nil {
		hook(req)
	}
	if req.Format != nil {
		if f.classifyErr != nil {
			return ai.GenerateResult{}, f.classifyErr
		}
		return ai.GenerateResult{Text: f.classification, ModelID: req.Model}, nil
	}
	if f.generateErr != nil {
		return ai.GenerateResult{}, f.generateErr
	}
	return ai.GenerateResult{Text: f.output, ModelID: req.Model}, nil
}

func (f *fakeGenerator) calls() []ai.GenerateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ai.GenerateRequest(nil), f.requests...)
}

// fakeClock advances by step on every reading.
type fakeClock struct {
	mu      sync.Mutex
	current time.Time
	step    time.Duration
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.current
	c.current = c.current.Add(c.step)
	return now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	c.mu.Unlock()
}

var testTiers = TierSet{Economy: "gpt-5-nano", Standard: "gpt-5-mini", Premium: "gpt-5"}

func testTable() RoutingTable {
	table, err := NewTieredTable(testTiers, "economy", "standard", "premium")
	if err != nil {
		panic(err)
	}
	return table
}
