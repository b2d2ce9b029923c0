package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/iago/model-select/internal/config"
)

// OverridesRepository returns configuration values that win over the
// environment.
type OverridesRepository interface {
	Load(ctx context.Context) (map[string]string, error)
	Upsert(ctx context.Context, key, value string) error
}

// MemoryOverridesRepository keeps overrides in memory for local development
// and tests.
type MemoryOverridesRepository struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryOverridesRepository() *MemoryOverridesRepository {
	return &MemoryOverridesRepository{values: make(map[string]string)}
}

func (r *MemoryOverridesRepository) Load(_ context.Context) (map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return filterOverrides(r.values), nil
}

func (r *MemoryOverridesRepository) Upsert(_ context.Context, key, value string) error {
	if err := validateOverrideKey(key); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[normalizeKey(key)] = value
	return nil
}

// filterOverrides keeps only recognized override keys with non-empty values.
func filterOverrides(values map[string]string) map[string]string {
	filtered := make(map[string]string, len(values))
	for key, value := range values {
		key = normalizeKey(key)
		if !isOverrideKey(key) || strings.TrimSpace(value) == "" {
			continue
		}
		filtered[key] = strings.TrimSpace(value)
	}
	return filtered
}

func normalizeKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}

func isOverrideKey(key string) bool {
	for _, allowed := range config.OverrideKeys {
		if key == allowed {
			return true
		}
	}
	return false
}

func validateOverrideKey(key string) error {
	if !isOverrideKey(normalizeKey(key)) {
		return &UnknownKeyError{Key: key}
	}
	return nil
}

type UnknownKeyError struct {
	Key string
}

func (e *UnknownKeyError) Error() string {
	return "unknown override key " + strings.TrimSpace(e.Key)
}
