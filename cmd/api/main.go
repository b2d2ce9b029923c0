package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/iago/model-select/internal/ai"
	"github.com/iago/model-select/internal/config"
	httpserver "github.com/iago/model-select/internal/http"
	"github.com/iago/model-select/internal/http/handlers"
	"github.com/iago/model-select/internal/logging"
	"github.com/iago/model-select/internal/pricing"
	"github.com/iago/model-select/internal/ratelimit"
	"github.com/iago/model-select/internal/repository"
	"github.com/iago/model-select/internal/routing"
)

func main() {
	dotenvErr := config.LoadDotEnvDir(".")

	configPath := os.Getenv("MODEL_SELECT_CONFIG")
	file, fileErr := config.LoadFile(configPath)

	cfg := config.Build(file, nil)
	logger := logging.New(cfg.LogLevel)
	if dotenvErr != nil {
		logger.Warn().Err(dotenvErr).Msg("failed loading .env files")
	}
	if fileErr != nil {
		logger.Fatal().Err(fileErr).Str("path", configPath).Msg("invalid config file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var overridesStore repository.OverridesRepository
	overridesRepo, overrides := openOverrides(ctx, cfg, logger)
	if overridesRepo != nil {
		defer overridesRepo.Close()
		overridesStore = overridesRepo
	}
	if len(overrides) > 0 {
		cfg = config.Build(file, overrides)
		logger.Info().Int("count", len(overrides)).Msg("configuration overrides applied")
	}
	for _, invalid := range cfg.Invalid {
		logger.Warn().Str("key", invalid.Key).Str("value", invalid.Value).Msg("unparsable setting ignored, using default")
	}

	settings, err := routing.SettingsFromConfig(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid routing configuration")
	}

	client, timeout := setupClient(cfg, logger)
	service := routing.New(settings, client, logger)

	limiter, limiterCloser := setupLimiter(ctx, cfg, logger)
	defer limiterCloser()

	api := handlers.NewAPI(handlers.APIConfig{
		AppName:   cfg.AppName,
		Service:   service,
		Settings:  settings,
		Pricing:   pricingTable(cfg),
		Overrides: overridesStore,
	})

	handler := httpserver.NewRouter(httpserver.RouterDependencies{
		API:         api,
		Logger:      logger,
		AuthToken:   cfg.AuthToken,
		CORSOrigins: cfg.CORSAllowedOrigins,
		Limiter:     limiter,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		// Two sequential model calls, each bounded by the client timeout.
		WriteTimeout: 2*timeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("provider", cfg.LLMProvider).
			Str("classifier_model", settings.ClassifierModel).
			Float64("escalation_threshold", settings.EscalationThreshold).
			Msg("api listening")
		errChan <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// openOverrides connects the overrides store and reads the stored values.
// The repository stays open to serve the overrides endpoints; it is nil when
// DATABASE_URL is unset or the store is unusable.
func openOverrides(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*repository.PostgresOverridesRepository, map[string]string) {
	if cfg.DatabaseURL == "" {
		return nil, nil
	}

	loadCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	repo, err := repository.NewPostgresOverridesRepository(loadCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Warn().Err(err).Msg("overrides store unavailable, using environment configuration")
		return nil, nil
	}

	if err := repo.Migrate(loadCtx); err != nil {
		repo.Close()
		logger.Warn().Err(err).Msg("overrides migration failed, using environment configuration")
		return nil, nil
	}
	overrides, err := repo.Load(loadCtx)
	if err != nil {
		logger.Warn().Err(err).Msg("failed loading overrides, using environment configuration")
		return repo, nil
	}
	return repo, overrides
}

func setupClient(cfg config.Config, logger zerolog.Logger) (ai.TextGenerator, time.Duration) {
	var (
		client  ai.TextGenerator
		timeout time.Duration
	)
	switch cfg.LLMProvider {
	case "anthropic":
		timeout = time.Duration(cfg.AnthropicTimeoutMS) * time.Millisecond
		client = ai.NewAnthropicClient(ai.AnthropicClientConfig{
			APIKey:  cfg.AnthropicAPIKey,
			BaseURL: cfg.AnthropicBaseURL,
			Timeout: timeout,
		})
	case "openrouter":
		timeout = time.Duration(cfg.OpenRouterTimeoutMS) * time.Millisecond
		client = ai.NewOpenRouterClient(ai.OpenRouterClientConfig{
			APIKey:  cfg.OpenRouterAPIKey,
			BaseURL: cfg.OpenRouterBaseURL,
			Timeout: timeout,
			SiteURL: cfg.OpenRouterSiteURL,
			AppName: cfg.OpenRouterAppName,
		})
	default:
		if cfg.LLMProvider != "openai" {
			logger.Warn().Str("provider", cfg.LLMProvider).Msg("unknown LLM_PROVIDER, using openai")
		}
		timeout = time.Duration(cfg.OpenAITimeoutMS) * time.Millisecond
		client = ai.NewOpenAIClient(ai.OpenAIClientConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Timeout: timeout,
		})
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	if !client.Available() {
		logger.Warn().Str("provider", cfg.LLMProvider).Msg("language model API key not configured, requests will fail")
	}
	return client, timeout
}

func setupLimiter(ctx context.Context, cfg config.Config, logger zerolog.Logger) (ratelimit.Limiter, func()) {
	rate, err := ratelimit.ParseRate(cfg.RateLimit)
	if err != nil {
		logger.Warn().Err(err).Msg("invalid RATE_LIMIT, rate limiting disabled")
		return nil, func() {}
	}

	if cfg.RedisAddr != "" {
		redisLimiter, err := ratelimit.NewRedisLimiter(ctx, ratelimit.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, rate)
		if err == nil {
			logger.Info().Str("rate", cfg.RateLimit).Msg("redis rate limiter initialized")
			return redisLimiter, func() { _ = redisLimiter.Close() }
		}
		logger.Warn().Err(err).Msg("failed to initialize redis rate limiter, fallback to memory")
	}

	memoryLimiter := ratelimit.NewMemoryLimiter(rate, ratelimit.MemoryOptions{})
	logger.Info().Str("rate", cfg.RateLimit).Msg("in-memory rate limiter initialized")
	return memoryLimiter, func() { _ = memoryLimiter.Close() }
}

func pricingTable(cfg config.Config) pricing.Table {
	overrides := make(pricing.Table, len(cfg.Pricing))
	for model, price := range cfg.Pricing {
		overrides[model] = pricing.Price{Input: price.Input, Output: price.Output}
	}
	return pricing.DefaultTable().Merge(overrides)
}
