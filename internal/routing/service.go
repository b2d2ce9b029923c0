package routing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/iago/model-select/internal/ai"
	"github.com/iago/model-select/internal/config"
	"github.com/iago/model-select/internal/redact"
)

// Settings is the immutable routing configuration resolved at startup.
type Settings struct {
	ClassifierModel     string
	Tiers               TierSet
	Table               RoutingTable
	EscalationThreshold float64
	MaxOutputTokens     int
	MaxPromptLength     int
}

func SettingsFromConfig(cfg config.Config) (Settings, error) {
	tiers := TierSet{
		Economy:  ModelTier(strings.TrimSpace(cfg.ModelTierEconomy)),
		Standard: ModelTier(strings.TrimSpace(cfg.ModelTierStandard)),
		Premium:  ModelTier(strings.TrimSpace(cfg.ModelTierPremium)),
	}
	table, err := NewTieredTable(tiers, cfg.RouteLow, cfg.RouteMedium, cfg.RouteHigh)
	if err != nil {
		return Settings{}, fmt.Errorf("build routing table: %w", err)
	}
	if strings.TrimSpace(cfg.ClassifierModel) == "" {
		return Settings{}, errors.New("classifier model is required")
	}
	if bad, ok := cfg.InvalidValue("ESCALATION_THRESHOLD"); ok {
		return Settings{}, fmt.Errorf("escalation threshold %q is not a number", bad.Value)
	}
	if cfg.EscalationThreshold < 0 || cfg.EscalationThreshold > 1 {
		return Settings{}, fmt.Errorf("escalation threshold %.3f outside [0, 1]", cfg.EscalationThreshold)
	}

	return Settings{
		ClassifierModel:     strings.TrimSpace(cfg.ClassifierModel),
		Tiers:               tiers,
		Table:               table,
		EscalationThreshold: cfg.EscalationThreshold,
		MaxOutputTokens:     cfg.ResponseMaxTokens,
		MaxPromptLength:     cfg.MaxPromptLength,
	}, nil
}

// RequestOutcome is what one routed request returns to the caller.
type RequestOutcome struct {
	Output                string
	SelectedModel         ModelTier
	Complexity            ComplexityLevel
	Confidence            float64
	ClassificationLatency time.Duration
}

type Dependencies struct {
	Classifier      *Classifier
	Router          *Router
	Dispatcher      *Dispatcher
	MaxPromptLength int
	Logger          zerolog.Logger
}

// Service classifies, routes and executes prompts. It holds no per-request
// state and is safe for concurrent use.
type Service struct {
	classifier      *Classifier
	router          *Router
	dispatcher      *Dispatcher
	maxPromptLength int
	logger          zerolog.Logger
}

func NewService(deps Dependencies) *Service {
	return &Service{
		classifier:      deps.Classifier,
		router:          deps.Router,
		dispatcher:      deps.Dispatcher,
		maxPromptLength: deps.MaxPromptLength,
		logger:          deps.Logger,
	}
}

// New wires the classifier, router and dispatcher from settings around one
// language model client.
func New(settings Settings, client ai.TextGenerator, logger zerolog.Logger) *Service {
	return NewService(Dependencies{
		Classifier: NewClassifier(ClassifierConfig{
			Model:  settings.ClassifierModel,
			Client: client,
			Logger: logger,
		}),
		Router:          NewRouter(settings.Table, settings.EscalationThreshold),
		Dispatcher:      NewDispatcher(client, settings.MaxOutputTokens),
		MaxPromptLength: settings.MaxPromptLength,
		Logger:          logger,
	})
}

// ValidatePrompt rejects whitespace-only prompts and prompts longer than
// maxLength characters. maxLength <= 0 disables the length check.
func ValidatePrompt(prompt string, maxLength int) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrEmptyPrompt
	}
	if maxLength > 0 {
		if length := utf8.RuneCountInString(prompt); length > maxLength {
			return fmt.Errorf("%w (%d > %d characters)", ErrPromptTooLong, length, maxLength)
		}
	}
	return nil
}

func (s *Service) Validate(prompt string) error {
	return ValidatePrompt(prompt, s.maxPromptLength)
}

// RouteAndExecute makes two sequential remote calls: classification, then
// generation with the original prompt on the routed tier.
func (s *Service) RouteAndExecute(ctx context.Context, prompt string) (RequestOutcome, error) {
	if err := s.Validate(prompt); err != nil {
		return RequestOutcome{}, err
	}
	logger := loggerFrom(ctx, s.logger)

	classification, latency, err := s.classifier.Classify(ctx, prompt)
	if err != nil {
		logger.Error().Err(err).Msg("classification failed")
		return RequestOutcome{}, err
	}

	selected := s.router.Route(classification)
	logger.Info().
		Str("complexity", string(classification.Complexity)).
		Float64("confidence", classification.Confidence).
		Str("selected_model", string(selected)).
		Dur("classification_latency", latency).
		Str("prompt_preview", redact.Preview(prompt, 80)).
		Msg("prompt routed")

	output, err := s.dispatcher.Execute(ctx, prompt, selected)
	if err != nil {
		logger.Error().Err(err).Str("selected_model", string(selected)).Msg("generation failed")
		return RequestOutcome{}, err
	}

	return RequestOutcome{
		Output:                output,
		SelectedModel:         selected,
		Complexity:            classification.Complexity,
		Confidence:            classification.Confidence,
		ClassificationLatency: latency,
	}, nil
}

func (s *Service) Router() *Router {
	return s.router
}

// loggerFrom prefers the request-scoped logger carried by ctx.
func loggerFrom(ctx context.Context, fallback zerolog.Logger) *zerolog.Logger {
	if logger := zerolog.Ctx(ctx); logger.GetLevel() != zerolog.Disabled {
		return logger
	}
	return &fallback
}
