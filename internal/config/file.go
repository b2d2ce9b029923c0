package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// File is the optional TOML configuration file. Its values sit below the
// process environment in precedence.
type File struct {
	Values  map[string]string
	Pricing map[string]Price
}

type fileDocument struct {
	Server struct {
		AppName        string   `toml:"app_name"`
		Port           string   `toml:"port"`
		LogLevel       string   `toml:"log_level"`
		RateLimit      string   `toml:"rate_limit"`
		AllowedOrigins []string `toml:"allowed_origins"`
	} `toml:"server"`
	Provider struct {
		Name          string `toml:"name"`
		OpenAIBaseURL string `toml:"openai_base_url"`
		OpenRouterURL string `toml:"openrouter_base_url"`
		AnthropicURL  string `toml:"anthropic_base_url"`
		TimeoutMS     *int   `toml:"timeout_ms"`
	} `toml:"provider"`
	Models struct {
		Classifier string `toml:"classifier"`
		Economy    string `toml:"economy"`
		Standard   string `toml:"standard"`
		Premium    string `toml:"premium"`
	} `toml:"models"`
	Routing struct {
		Low                 string   `toml:"low"`
		Medium              string   `toml:"medium"`
		High                string   `toml:"high"`
		EscalationThreshold *float64 `toml:"escalation_threshold"`
	} `toml:"routing"`
	Limits struct {
		ResponseMaxTokens *int `toml:"response_max_tokens"`
		MaxPromptLength   *int `toml:"max_prompt_length"`
	} `toml:"limits"`
	Pricing map[string]Price `toml:"pricing"`
}

// LoadFile decodes a TOML config file. An empty path yields an empty file.
func LoadFile(path string) (*File, error) {
	file := &File{Values: make(map[string]string)}
	if strings.TrimSpace(path) == "" {
		return file, nil
	}

	var doc fileDocument
	meta, err := toml.DecodeFile(path, &doc)
	if err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config file %s: unknown key %s", path, undecoded[0].String())
	}

	set := func(key, value string) {
		if strings.TrimSpace(value) != "" {
			file.Values[key] = strings.TrimSpace(value)
		}
	}
	setInt := func(key string, value *int) {
		if value != nil {
			file.Values[key] = strconv.Itoa(*value)
		}
	}

	set("APP_NAME", doc.Server.AppName)
	set("PORT", doc.Server.Port)
	set("LOG_LEVEL", doc.Server.LogLevel)
	set("RATE_LIMIT", doc.Server.RateLimit)
	if len(doc.Server.AllowedOrigins) > 0 {
		set("ALLOWED_ORIGINS", strings.Join(doc.Server.AllowedOrigins, ","))
	}

	set("LLM_PROVIDER", doc.Provider.Name)
	set("OPENAI_BASE_URL", doc.Provider.OpenAIBaseURL)
	set("OPENROUTER_BASE_URL", doc.Provider.OpenRouterURL)
	setInt("OPENAI_TIMEOUT_MS", doc.Provider.TimeoutMS)
	set("ANTHROPIC_BASE_URL", doc.Provider.AnthropicURL)
	setInt("OPENROUTER_TIMEOUT_MS", doc.Provider.TimeoutMS)
	setInt("ANTHROPIC_TIMEOUT_MS", doc.Provider.TimeoutMS)

	set("CLASSIFIER_MODEL", doc.Models.Classifier)
	set("MODEL_TIER_ECONOMY", doc.Models.Economy)
	set("MODEL_TIER_STANDARD", doc.Models.Standard)
	set("MODEL_TIER_PREMIUM", doc.Models.Premium)

	set("ROUTE_LOW", doc.Routing.Low)
	set("ROUTE_MEDIUM", doc.Routing.Medium)
	set("ROUTE_HIGH", doc.Routing.High)
	if doc.Routing.EscalationThreshold != nil {
		file.Values["ESCALATION_THRESHOLD"] = strconv.FormatFloat(*doc.Routing.EscalationThreshold, 'f', -1, 64)
	}

	setInt("RESPONSE_MAX_TOKENS", doc.Limits.ResponseMaxTokens)
	setInt("MAX_PROMPT_LENGTH", doc.Limits.MaxPromptLength)

	file.Pricing = doc.Pricing
	return file, nil
}

func (f *File) Source() Source {
	if f == nil {
		return nil
	}
	return MapSource(f.Values)
}
