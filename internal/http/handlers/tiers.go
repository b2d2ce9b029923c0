package handlers

import (
	"net/http"

	"github.com/iago/model-select/internal/pricing"
	"github.com/iago/model-select/internal/routing"
)

type tiersResponse struct {
	AppName             string                   `json:"app_name"`
	ClassifierModel     string                   `json:"classifier_model"`
	Tiers               map[string]string        `json:"tiers"`
	Routes              map[string]string        `json:"routes"`
	EscalationThreshold float64                  `json:"escalation_threshold"`
	MaxPromptLength     int                      `json:"max_prompt_length"`
	MaxOutputTokens     int                      `json:"max_output_tokens"`
	Pricing             map[string]pricing.Price `json:"pricing"`
}

func (api *API) Tiers(w http.ResponseWriter, r *http.Request) {
	router := api.service.Router()
	routes := make(map[string]string, len(routing.Levels))
	for level, tier := range router.Table().Entries() {
		routes[string(level)] = string(tier)
	}

	writeJSON(w, http.StatusOK, tiersResponse{
		AppName:         api.appName,
		ClassifierModel: api.settings.ClassifierModel,
		Tiers: map[string]string{
			string(routing.TierEconomy):  string(api.settings.Tiers.Economy),
			string(routing.TierStandard): string(api.settings.Tiers.Standard),
			string(routing.TierPremium):  string(api.settings.Tiers.Premium),
		},
		Routes:              routes,
		EscalationThreshold: router.Threshold(),
		MaxPromptLength:     api.settings.MaxPromptLength,
		MaxOutputTokens:     api.settings.MaxOutputTokens,
		Pricing:             api.pricing,
	})
}
