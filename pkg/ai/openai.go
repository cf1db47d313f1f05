package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "manara",
		Subsystem: "ai",
		Name:      "completion_duration_seconds",
		Help:      "Duration of assistant completion requests",
	}, []string{"model"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "manara",
		Subsystem: "ai",
		Name:      "completion_failures_total",
		Help:      "Number of assistant completion failures",
	}, []string{"model"})
)

// OpenAIConfig defines configuration options for the OpenAI completer.
type OpenAIConfig struct {
	APIKey        string
	Model         string
	FallbackModel string
	MaxTokens     int
	Temperature   float32
	Logger        zerolog.Logger
}

// OpenAIClient implements Completer against the OpenAI chat completion API,
// trying the primary model first and the fallback once on failure.
type OpenAIClient struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIClient builds a completer using the provided configuration.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}

	tracer := otel.Tracer("github.com/manara-platform/manara-api/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIClient{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// Complete sends the conversation to the primary model, falling back once to
// the configured secondary model when the primary attempt fails.
func (c *OpenAIClient) Complete(parent context.Context, messages []Message) (string, error) {
	content, err := c.complete(parent, c.cfg.Model, messages)
	if err == nil {
		return content, nil
	}

	if c.cfg.FallbackModel == "" || c.cfg.FallbackModel == c.cfg.Model {
		return "", err
	}

	c.logger.Warn().Err(err).Str("model", c.cfg.Model).Str("fallback", c.cfg.FallbackModel).Msg("primary completion failed, trying fallback")
	return c.complete(parent, c.cfg.FallbackModel, messages)
}

func (c *OpenAIClient) complete(parent context.Context, model string, messages []Message) (string, error) {
	ctx, span := c.tracer.Start(parent, "openai.complete", trace.WithAttributes(
		attribute.String("model", model),
	))
	defer span.End()

	request := openai.ChatCompletionRequest{
		Model:       model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Messages:    toChatMessages(messages),
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, request)
	aiDuration.WithLabelValues(model).Observe(time.Since(start).Seconds())
	if err != nil {
		aiFailures.WithLabelValues(model).Inc()
		classified := classifyError(err)
		span.RecordError(classified)
		span.SetStatus(codes.Error, classified.Error())
		return "", classified
	}

	if len(resp.Choices) == 0 {
		aiFailures.WithLabelValues(model).Inc()
		span.RecordError(ErrEmptyCompletion)
		span.SetStatus(codes.Error, ErrEmptyCompletion.Error())
		return "", ErrEmptyCompletion
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func toChatMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, message := range messages {
		out = append(out, openai.ChatCompletionMessage{
			Role:    message.Role,
			Content: message.Content,
		})
	}
	return out
}

// classifyError maps upstream API failures onto the fixed error taxonomy.
// Quota exhaustion wins over plain rate limiting because OpenAI reports it
// with the same 429 status.
func classifyError(err error) error {
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("openai complete: %w", err)
	}

	if code, ok := apiErr.Code.(string); ok && code == "insufficient_quota" {
		return fmt.Errorf("%w: %v", ErrQuotaExhausted, err)
	}

	switch apiErr.HTTPStatusCode {
	case 402:
		return fmt.Errorf("%w: %v", ErrQuotaExhausted, err)
	case 429:
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	default:
		return fmt.Errorf("openai complete: %w", err)
	}
}
