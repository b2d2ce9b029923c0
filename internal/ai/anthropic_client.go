package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	sdkanthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicMaxTokens = 1024

type AnthropicClientConfig struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// AnthropicClient talks to the Anthropic Messages API through the official
// SDK with its built-in retries turned off.
type AnthropicClient struct {
	apiKey  string
	timeout time.Duration
	sdk     sdkanthropic.Client
}

func NewAnthropicClient(config AnthropicClientConfig) *AnthropicClient {
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}
	apiKey := strings.TrimSpace(config.APIKey)

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(config.Timeout),
	}
	if baseURL := strings.TrimSpace(config.BaseURL); baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if config.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(config.HTTPClient))
	}

	return &AnthropicClient{
		apiKey:  apiKey,
		timeout: config.Timeout,
		sdk:     sdkanthropic.NewClient(opts...),
	}
}

func (c *AnthropicClient) Available() bool {
	return c.apiKey != ""
}

func (c *AnthropicClient) Generate(ctx context.Context, request GenerateRequest) (GenerateResult, error) {
	if !c.Available() {
		return GenerateResult{}, ErrClientUnavailable
	}
	if err := validateRequest(request); err != nil {
		return GenerateResult{}, err
	}

	maxTokens := int64(request.MaxOutputTokens)
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}
	params := sdkanthropic.MessageNewParams{
		Model:     sdkanthropic.Model(request.Model),
		MaxTokens: maxTokens,
		Messages: []sdkanthropic.MessageParam{
			sdkanthropic.NewUserMessage(sdkanthropic.NewTextBlock(request.Input)),
		},
	}
	if instructions := strings.TrimSpace(request.Instructions); instructions != "" {
		params.System = []sdkanthropic.TextBlockParam{{Text: instructions}}
	}
	if request.Temperature > 0 {
		params.Temperature = sdkanthropic.Float(request.Temperature)
	}

	message, err := c.sdk.Messages.New(ctx, params)
	if err != nil {
		var apiErr *sdkanthropic.Error
		if errors.As(err, &apiErr) {
			return GenerateResult{}, &ProviderError{
				Provider:   "anthropic",
				StatusCode: apiErr.StatusCode,
				Message:    truncateMessage(apiErr.Error()),
			}
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return GenerateResult{}, fmt.Errorf("anthropic timeout: %w", err)
		}
		return GenerateResult{}, fmt.Errorf("anthropic transport error: %w", err)
	}

	var text strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return GenerateResult{
		Text:    text.String(),
		ModelID: firstNonEmpty(string(message.Model), request.Model),
		Usage: TokenUsage{
			InputTokens:  int(message.Usage.InputTokens),
			OutputTokens: int(message.Usage.OutputTokens),
			TotalTokens:  int(message.Usage.InputTokens + message.Usage.OutputTokens),
		},
	}, nil
}
