package config

import (
	"os"
	"strconv"
	"strings"
)

// Source resolves a single configuration key. The first source that knows a
// key wins.
type Source func(key string) (string, bool)

func EnvSource() Source {
	return os.LookupEnv
}

func MapSource(values map[string]string) Source {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}

// Config centralizes runtime settings. It is loaded once at startup and
// passed by value to constructors.
type Config struct {
	AppName  string
	Port     string
	LogLevel string

	AuthToken string

	LLMProvider string

	OpenAIAPIKey    string
	OpenAIBaseURL   string
	OpenAITimeoutMS int

	AnthropicAPIKey    string
	AnthropicBaseURL   string
	AnthropicTimeoutMS int

	OpenRouterAPIKey    string
	OpenRouterBaseURL   string
	OpenRouterTimeoutMS int
	OpenRouterSiteURL   string
	OpenRouterAppName   string

	ClassifierModel   string
	ModelTierEconomy  string
	ModelTierStandard string
	ModelTierPremium  string

	RouteLow    string
	RouteMedium string
	RouteHigh   string

	EscalationThreshold float64
	ResponseMaxTokens   int
	MaxPromptLength     int

	RateLimit          string
	CORSAllowedOrigins []string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	DatabaseURL string

	Pricing map[string]Price

	// Invalid lists numeric values that failed to parse; their fields hold
	// the defaults instead.
	Invalid []InvalidValue
}

// InvalidValue is a raw setting that could not be parsed.
type InvalidValue struct {
	Key   string
	Value string
}

// InvalidValue reports whether key was set to an unparsable value.
func (c Config) InvalidValue(key string) (InvalidValue, bool) {
	for _, item := range c.Invalid {
		if item.Key == key {
			return item, true
		}
	}
	return InvalidValue{}, false
}

// Price is the USD cost per one million tokens for a model.
type Price struct {
	Input  float64 `toml:"input"`
	Output float64 `toml:"output"`
}

// Build layers DB overrides over the process environment over the optional
// config file.
func Build(file *File, overrides map[string]string) Config {
	sources := make([]Source, 0, 3)
	if len(overrides) > 0 {
		sources = append(sources, MapSource(overrides))
	}
	sources = append(sources, EnvSource())
	if file != nil {
		sources = append(sources, file.Source())
	}

	cfg := Load(sources...)
	if file != nil && len(file.Pricing) > 0 {
		cfg.Pricing = make(map[string]Price, len(file.Pricing))
		for model, price := range file.Pricing {
			cfg.Pricing[model] = price
		}
	}
	return cfg
}

func Load(sources ...Source) Config {
	if len(sources) == 0 {
		sources = []Source{EnvSource()}
	}
	l := &loader{sources: sources}

	cfg := Config{
		AppName:  l.getString("APP_NAME", "Model Select Tool"),
		Port:     l.getString("PORT", "8000"),
		LogLevel: l.getString("LOG_LEVEL", "info"),

		AuthToken: l.getString("API_AUTH_TOKEN", ""),

		LLMProvider: strings.ToLower(l.getString("LLM_PROVIDER", "openai")),

		OpenAIAPIKey:    l.getString("OPENAI_API_KEY", ""),
		OpenAIBaseURL:   l.getString("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAITimeoutMS: l.getInt("OPENAI_TIMEOUT_MS", 60000),

		AnthropicAPIKey:    l.getString("ANTHROPIC_API_KEY", ""),
		AnthropicBaseURL:   l.getString("ANTHROPIC_BASE_URL", ""),
		AnthropicTimeoutMS: l.getInt("ANTHROPIC_TIMEOUT_MS", 60000),

		OpenRouterAPIKey:    l.getString("OPENROUTER_API_KEY", ""),
		OpenRouterBaseURL:   l.getString("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		OpenRouterTimeoutMS: l.getInt("OPENROUTER_TIMEOUT_MS", 60000),
		OpenRouterSiteURL:   l.getString("OPENROUTER_SITE_URL", ""),
		OpenRouterAppName:   l.getString("OPENROUTER_APP_NAME", "Model Select Tool"),

		ClassifierModel:   l.getString("CLASSIFIER_MODEL", "gpt-5-nano"),
		ModelTierEconomy:  l.getString("MODEL_TIER_ECONOMY", "gpt-5-nano"),
		ModelTierStandard: l.getString("MODEL_TIER_STANDARD", "gpt-5-mini"),
		ModelTierPremium:  l.getString("MODEL_TIER_PREMIUM", "gpt-5"),

		RouteLow:    l.getString("ROUTE_LOW", "economy"),
		RouteMedium: l.getString("ROUTE_MEDIUM", "standard"),
		RouteHigh:   l.getString("ROUTE_HIGH", "premium"),

		EscalationThreshold: l.getFloat("ESCALATION_THRESHOLD", 0.0),
		ResponseMaxTokens:   l.getInt("RESPONSE_MAX_TOKENS", 1000),
		MaxPromptLength:     l.getInt("MAX_PROMPT_LENGTH", 1000),

		RateLimit:          l.getString("RATE_LIMIT", "10/minute"),
		CORSAllowedOrigins: l.getList("ALLOWED_ORIGINS", []string{"http://localhost:8000"}),

		RedisAddr:     l.getString("REDIS_ADDR", ""),
		RedisPassword: l.getString("REDIS_PASSWORD", ""),
		RedisDB:       l.getInt("REDIS_DB", 0),

		DatabaseURL: l.getString("DATABASE_URL", ""),
	}
	cfg.Invalid = l.invalid
	return cfg
}

// OverrideKeys lists the keys that may be stored in the overrides table.
// Connection settings are not overridable.
var OverrideKeys = []string{
	"CLASSIFIER_MODEL",
	"MODEL_TIER_ECONOMY",
	"MODEL_TIER_STANDARD",
	"MODEL_TIER_PREMIUM",
	"ROUTE_LOW",
	"ROUTE_MEDIUM",
	"ROUTE_HIGH",
	"ESCALATION_THRESHOLD",
	"RESPONSE_MAX_TOKENS",
	"MAX_PROMPT_LENGTH",
	"RATE_LIMIT",
}

type loader struct {
	sources []Source
	invalid []InvalidValue
}

func (l *loader) lookup(key string) (string, bool) {
	for _, source := range l.sources {
		if source == nil {
			continue
		}
		value, ok := source(key)
		if ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value), true
		}
	}
	return "", false
}

func (l *loader) getString(key, fallback string) string {
	value, ok := l.lookup(key)
	if !ok {
		return fallback
	}
	return value
}

func (l *loader) getInt(key string, fallback int) int {
	value, ok := l.lookup(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		l.invalid = append(l.invalid, InvalidValue{Key: key, Value: value})
		return fallback
	}
	return parsed
}

func (l *loader) getFloat(key string, fallback float64) float64 {
	value, ok := l.lookup(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		l.invalid = append(l.invalid, InvalidValue{Key: key, Value: value})
		return fallback
	}
	return parsed
}

func (l *loader) getList(key string, fallback []string) []string {
	value, ok := l.lookup(key)
	if !ok {
		return append([]string(nil), fallback...)
	}
	items := make([]string, 0)
	for _, raw := range strings.Split(value, ",") {
		item := strings.TrimSpace(raw)
		if item == "" {
			continue
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return append([]string(nil), fallback...)
	}
	return items
}
