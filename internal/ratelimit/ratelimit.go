// Package ratelimit admits or rejects requests per client key.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Rate is Limit requests per Window.
type Rate struct {
	Limit  int
	Window time.Duration
}

func (r Rate) String() string {
	return fmt.Sprintf("%d/%s", r.Limit, r.Window)
}

// ParseRate reads rates such as "10/minute", "5/second" or "100/hour".
func ParseRate(value string) (Rate, error) {
	count, unit, ok := strings.Cut(strings.TrimSpace(value), "/")
	if !ok {
		return Rate{}, fmt.Errorf("rate %q: want <count>/<unit>", value)
	}
	limit, err := strconv.Atoi(strings.TrimSpace(count))
	if err != nil || limit <= 0 {
		return Rate{}, fmt.Errorf("rate %q: count must be a positive integer", value)
	}

	var window time.Duration
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "s", "sec", "second", "seconds":
		window = time.Second
	case "m", "min", "minute", "minutes":
		window = time.Minute
	case "h", "hour", "hours":
		window = time.Hour
	case "d", "day", "days":
		window = 24 * time.Hour
	default:
		return Rate{}, fmt.Errorf("rate %q: unknown unit %q", value, unit)
	}
	return Rate{Limit: limit, Window: window}, nil
}

// Decision is the admission result for one request.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}
