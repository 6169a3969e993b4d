// Package ai provides the text-generation provider behind the coaching
// assistant.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	// DefaultModel is the completion model used when none is configured
	DefaultModel = "gpt-4o-mini"
	// DefaultBaseURL is the default API base URL
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout bounds a single completion call
	DefaultTimeout = 30 * time.Second
	// MaxTokens caps the coaching message length (2-3 sentences)
	MaxTokens = 200
	// Temperature keeps messages varied but on-topic
	Temperature = 0.7
)

// ErrEmptyCompletion is returned when the provider responds without
// usable content. Callers must treat it as a generation failure, never
// cache it.
var ErrEmptyCompletion = errors.New("empty completion content")

// OpenAIGenerator generates coaching messages via an OpenAI-compatible
// chat completion endpoint.
type OpenAIGenerator struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

// NewOpenAIGenerator creates a generator. Empty model and baseURL fall
// back to the defaults.
func NewOpenAIGenerator(apiKey, baseURL, model string, logger *zap.Logger, debugMode bool) *OpenAIGenerator {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := &http.Client{Timeout: DefaultTimeout}
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
	)

	return &OpenAIGenerator{
		client:    client,
		model:     model,
		logger:    logger,
		debugMode: debugMode,
	}
}

// Generate sends the system prompt and user message and returns the
// completion text. Empty content is an error.
func (g *OpenAIGenerator) Generate(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	req := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userMessage),
		},
		MaxTokens:   openai.Int(MaxTokens),
		Temperature: openai.Float(Temperature),
	}

	if g.debugMode {
		g.logger.Debug("llm_api_request",
			zap.String("operation", "coaching_message"),
			zap.String("model", g.model),
			zap.Int("prompt_length", len(systemPrompt)),
			zap.Int("message_length", len(userMessage)),
		)
	}

	start := time.Now()
	resp, err := g.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)

	if err != nil {
		if g.debugMode {
			g.logger.Debug("llm_api_error",
				zap.String("operation", "coaching_message"),
				zap.String("model", g.model),
				zap.Error(err),
				zap.Int64("latency_ms", latency.Milliseconds()),
			)
		}
		return "", fmt.Errorf("failed to generate coaching message: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", ErrEmptyCompletion
	}

	if g.debugMode {
		g.logger.Debug("llm_api_response",
			zap.String("operation", "coaching_message"),
			zap.String("model", g.model),
			zap.Int("response_length", len(content)),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	return content, nil
}
