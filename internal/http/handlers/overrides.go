package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/iago/model-select/internal/config"
	"github.com/iago/model-select/internal/ratelimit"
	"github.com/iago/model-select/internal/repository"
	"github.com/iago/model-select/internal/routing"
)

type overrideRequest struct {
	Value string `json:"value"`
}

type overrideEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type overridesResponse struct {
	Overrides []overrideEntry `json:"overrides"`
	// Stored overrides are read at startup only.
	AppliesOnRestart bool `json:"applies_on_restart"`
}

type overrideResponse struct {
	overrideEntry
	AppliesOnRestart bool `json:"applies_on_restart"`
}

func (api *API) ListOverrides(w http.ResponseWriter, r *http.Request) {
	if api.overrides == nil {
		writeError(w, r, http.StatusServiceUnavailable, "overrides_unavailable", "Overrides store not configured.")
		return
	}

	values, err := api.overrides.Load(context.WithoutCancel(r.Context()))
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal_error", "Failed to load overrides.")
		return
	}

	entries := make([]overrideEntry, 0, len(values))
	for key, value := range values {
		entries = append(entries, overrideEntry{Key: key, Value: value})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })

	writeJSON(w, http.StatusOK, overridesResponse{Overrides: entries, AppliesOnRestart: true})
}

func (api *API) PutOverride(w http.ResponseWriter, r *http.Request) {
	if api.overrides == nil {
		writeError(w, r, http.StatusServiceUnavailable, "overrides_unavailable", "Overrides store not configured.")
		return
	}

	key := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "key")))
	var payload overrideRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "Invalid JSON payload.")
		return
	}
	value := strings.TrimSpace(payload.Value)
	if value == "" {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "Override value is required.")
		return
	}
	if err := validateOverride(key, value); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "Invalid override: "+err.Error()+".")
		return
	}

	err := api.overrides.Upsert(context.WithoutCancel(r.Context()), key, value)
	var unknown *repository.UnknownKeyError
	switch {
	case errors.As(err, &unknown):
		writeError(w, r, http.StatusBadRequest, "invalid_request", fmt.Sprintf("Unknown override key %s.", key))
		return
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, "internal_error", "Failed to store override.")
		return
	}

	writeJSON(w, http.StatusOK, overrideResponse{
		overrideEntry:    overrideEntry{Key: key, Value: value},
		AppliesOnRestart: true,
	})
}

// validateOverride applies the startup parsing rules to a single value so a
// bad override is refused here instead of at the next boot.
func validateOverride(key, value string) error {
	cfg := config.Load(config.MapSource(map[string]string{key: value}))
	if bad, ok := cfg.InvalidValue(key); ok {
		return fmt.Errorf("%s must be a number, got %q", key, bad.Value)
	}
	if key == "RATE_LIMIT" {
		_, err := ratelimit.ParseRate(value)
		return err
	}
	_, err := routing.SettingsFromConfig(cfg)
	return err
}
