package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/iago/model-select/internal/http/middleware"
	"github.com/iago/model-select/internal/pricing"
	"github.com/iago/model-select/internal/routing"
)

type selectModelRequest struct {
	Prompt string `json:"prompt"`
}

type selectModelResponse struct {
	Output                string           `json:"output"`
	Model                 string           `json:"model"`
	Complexity            string           `json:"complexity"`
	Confidence            float64          `json:"confidence"`
	ClassificationLatency float64          `json:"classification_latency"`
	RequestID             string           `json:"request_id"`
	Cost                  pricing.Estimate `json:"cost"`
}

func (api *API) SelectModel(w http.ResponseWriter, r *http.Request) {
	var request selectModelRequest
	if err := decodeJSON(w, r, &request); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON payload")
		return
	}

	// Client disconnects do not abort in-flight model calls; each call is
	// bounded by the provider client timeout.
	ctx := context.WithoutCancel(r.Context())
	outcome, err := api.service.RouteAndExecute(ctx, request.Prompt)
	if err != nil {
		api.writeRoutingError(w, r, err)
		return
	}

	cost := api.pricing.Estimate(pricing.Request{
		Prompt:          request.Prompt,
		Output:          outcome.Output,
		SelectedModel:   string(outcome.SelectedModel),
		ClassifierModel: api.settings.ClassifierModel,
		BaselineModel:   string(api.settings.Tiers.Premium),
	})

	writeJSON(w, http.StatusOK, selectModelResponse{
		Output:                outcome.Output,
		Model:                 string(outcome.SelectedModel),
		Complexity:            string(outcome.Complexity),
		Confidence:            outcome.Confidence,
		ClassificationLatency: outcome.ClassificationLatency.Seconds(),
		RequestID:             middleware.GetRequestID(r.Context()),
		Cost:                  cost,
	})
}

func (api *API) writeRoutingError(w http.ResponseWriter, r *http.Request, err error) {
	var remote *routing.RemoteCallError
	switch {
	case errors.Is(err, routing.ErrEmptyPrompt):
		writeError(w, r, http.StatusBadRequest, "invalid_request", "Empty prompt.")
	case errors.Is(err, routing.ErrPromptTooLong):
		writeError(w, r, http.StatusBadRequest, "invalid_request", "Prompt too long.")
	case errors.Is(err, routing.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.As(err, &remote):
		writeError(w, r, http.StatusBadGateway, "upstream_error", string(remote.Stage)+" request to the language model failed")
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("select model failed")
		writeError(w, r, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
