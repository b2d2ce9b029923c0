package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/iago/model-select/internal/http/middleware"
	"github.com/iago/model-select/internal/pricing"
	"github.com/iago/model-select/internal/repository"
	"github.com/iago/model-select/internal/routing"
)

const maxBodyBytes = 1 << 20

var errInvalidPayload = errors.New("invalid payload")

type API struct {
	appName   string
	service   *routing.Service
	settings  routing.Settings
	pricing   pricing.Table
	overrides repository.OverridesRepository
}

type APIConfig struct {
	AppName  string
	Service  *routing.Service
	Settings routing.Settings
	Pricing  pricing.Table
	// Overrides is optional; override endpoints answer 503 without it.
	Overrides repository.OverridesRepository
}

func NewAPI(cfg APIConfig) *API {
	table := cfg.Pricing
	if table == nil {
		table = pricing.DefaultTable()
	}
	return &API{
		appName:   cfg.AppName,
		service:   cfg.Service,
		settings:  cfg.Settings,
		pricing:   table,
		overrides: cfg.Overrides,
	}
}

type errorPayload struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	RequestID string `json:"request_id"`
}

func writeJSON(w http.ResponseWriter, statusCode int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string) {
	payload := errorPayload{RequestID: middleware.GetRequestID(r.Context())}
	payload.Error.Code = code
	payload.Error.Message = message
	writeJSON(w, statusCode, payload)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, value any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(value); err != nil {
		return errInvalidPayload
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errInvalidPayload
	}
	return nil
}
