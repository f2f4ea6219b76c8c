// Package llm wraps the language-model provider behind the one contract the
// platform needs: prompt in, content plus token usage and cost out. The
// store records the cost rows; nothing here generates content on its own.
package llm

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/contentpulse/backend/internal/metrics"
	"github.com/contentpulse/backend/pkg/circuitbreaker"
	"github.com/contentpulse/backend/pkg/logger"
	"github.com/contentpulse/backend/pkg/retry"
)

// GenerationResult is what callers persist alongside their own artifacts.
type GenerationResult struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	CostUSD          float64
}

// perMillionUSD holds prompt/completion pricing per million tokens.
type perMillionUSD struct {
	prompt     float64
	completion float64
}

var modelPricing = map[string]perMillionUSD{
	"gpt-4o":      {2.50, 10.00},
	"gpt-4o-mini": {0.15, 0.60},
	"gpt-4-turbo": {10.00, 30.00},
}

type Client struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	cb          *circuitbreaker.CircuitBreaker
	retryCfg    retry.Config
}

func NewClient(apiKey, model string, temperature float32, maxTokens int, timeout time.Duration) *Client {
	cb := circuitbreaker.New("llm", circuitbreaker.Config{
		MaxRequests:      5,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	logger.Info("LLM client initialized", zap.String("model", model))

	return &Client{
		client:      openai.NewClient(apiKey),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		timeout:     timeout,
		cb:          cb,
		retryCfg: retry.Config{
			MaxAttempts:    3,
			InitialDelay:   500 * time.Millisecond,
			MaxDelay:       5 * time.Second,
			Multiplier:     2.0,
			JitterFraction: 0.1,
			Logger:         logger.GetLogger(),
		},
	}
}

// Model returns the configured model name, for cost attribution.
func (c *Client) Model() string {
	return c.model
}

// Generate runs one completion and prices its usage.
func (c *Client) Generate(ctx context.Context, prompt string) (*GenerationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var result *GenerationResult

	err := c.cb.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryCfg, func() error {
			resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
				Model: c.model,
				Messages: []openai.ChatCompletionMessage{
					{Role: openai.ChatMessageRoleUser, Content: prompt},
				},
				Temperature: c.temperature,
				MaxTokens:   c.maxTokens,
			})
			if err != nil {
				return fmt.Errorf("failed to create completion: %w", err)
			}

			if len(resp.Choices) == 0 {
				return fmt.Errorf("completion returned no choices")
			}

			result = &GenerationResult{
				Content:          resp.Choices[0].Message.Content,
				PromptTokens:     resp.Usage.PromptTokens,
				CompletionTokens: resp.Usage.CompletionTokens,
				TotalTokens:      resp.Usage.TotalTokens,
				CostUSD:          c.estimateCost(resp.Usage.PromptTokens, resp.Usage.CompletionTokens),
			}
			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	recordUsage(c.model, result)

	logger.Debug("Completion generated",
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("completion_tokens", result.CompletionTokens),
		zap.Float64("cost_usd", result.CostUSD),
	)

	return result, nil
}

func recordUsage(model string, result *GenerationResult) {
	metrics.LLMTokensUsed.WithLabelValues(model, "prompt").Add(float64(result.PromptTokens))
	metrics.LLMTokensUsed.WithLabelValues(model, "completion").Add(float64(result.CompletionTokens))
	metrics.LLMCost.WithLabelValues(model).Add(result.CostUSD)
}

// Summarize produces a short abstract of a reference document for the
// document table.
func (c *Client) Summarize(ctx context.Context, text string) (*GenerationResult, error) {
	if len(text) > 6000 {
		text = text[:6000]
	}

	prompt := fmt.Sprintf(
		"Summarize the following article in 2-3 sentences. Respond with the summary only.\n\n%s", text)

	return c.Generate(ctx, prompt)
}

func (c *Client) estimateCost(promptTokens, completionTokens int) float64 {
	pricing, ok := modelPricing[c.model]
	if !ok {
		return 0
	}
	return float64(promptTokens)/1e6*pricing.prompt + float64(completionTokens)/1e6*pricing.completion
}
