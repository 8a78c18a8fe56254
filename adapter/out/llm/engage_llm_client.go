// Package llm adapts the OpenAI-compatible chat completion API to the
// Generator port, behind a circuit breaker.
package llm

import (
	"context"
	"errors"
	"time"

	"engage_server/core/port/out"
	"engage_server/pkg/logger"
	"engage_server/pkg/metrics"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
)

const DefaultModel = "gpt-4o-mini"

// ClientConfig configures the generation client.
type ClientConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client implements out.Generator over an OpenAI-compatible endpoint.
type Client struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
}

var errEmptyCompletion = errors.New("empty completion")

// NewClient creates a generation client. The breaker opens after repeated
// upstream failures so a degraded provider fails fast instead of stalling
// every suggestion request.
func NewClient(cfg ClientConfig) *Client {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "generation",
		MaxRequests: 2,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	return &Client{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   model,
		timeout: timeout,
		breaker: breaker,
	}
}

var _ out.Generator = (*Client)(nil)

// Generate runs one chat completion. Model version is pinned per client,
// not per request; temperature and max tokens come from the tenant config.
func (c *Client) Generate(ctx context.Context, req *out.GenerationRequest) (string, error) {
	start := time.Now()
	defer func() { metrics.Observe("generation", time.Since(start)) }()

	result, err := c.breaker.Execute(func() (any, error) {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: req.SystemInstructions,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: req.Prompt,
				},
			},
			Temperature: float32(req.Temperature),
			MaxTokens:   req.MaxTokens,
		})
		if err != nil {
			return nil, err
		}
		if len(resp.Choices) == 0 {
			return nil, errEmptyCompletion
		}
		return resp.Choices[0].Message.Content, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}
