// Package anthropic adapts the Anthropic Messages API to the classifier,
// summarizer and assistant ports. Every call goes through one circuit breaker, so a failing
// upstream is short-circuited instead of slowing down postings.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	DefaultModel     = "claude-3-haiku-20240307"
	DefaultMaxTokens = 60

	defaultBreakerFailures  = 5
	defaultBreakerOpenDelay = 30 * time.Second
)

var (
	// ErrUnavailable is returned while the breaker is open.
	ErrUnavailable = errors.New("language model temporarily unavailable")
	ErrEmptyReply  = errors.New("empty reply from language model")
)

type Config struct {
	APIKey           string
	Model            string
	MaxTokens        int64
	BreakerFailures  uint32
	BreakerOpenDelay time.Duration
}

// Client is a breaker-guarded Messages API client shared by every adapter
// in this package.
type Client struct {
	messages  sdk.MessageService
	model     string
	maxTokens int64
	breaker   *gobreaker.CircuitBreaker
	logger    *zap.Logger
}

// NewClient builds a client. opts are appended after the API key, so tests
// can point it at a local server with option.WithBaseURL.
func NewClient(cfg Config, logger *zap.Logger, opts ...option.RequestOption) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = defaultBreakerFailures
	}
	if cfg.BreakerOpenDelay <= 0 {
		cfg.BreakerOpenDelay = defaultBreakerOpenDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := sdk.NewClient(append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, opts...)...)

	c := &Client{
		messages:  client.Messages,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "anthropic",
		Timeout: cfg.BreakerOpenDelay,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		// A caller giving up is not an upstream failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return c
}

// State reports the breaker state, for health output.
func (c *Client) State() string {
	return c.breaker.State().String()
}

type request struct {
	system      string
	prompt      string
	maxTokens   int64
	temperature float64
}

// complete sends one user message and returns the trimmed text of the reply.
func (c *Client) complete(ctx context.Context, req request) (string, error) {
	maxTokens := req.maxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	out, err := c.breaker.Execute(func() (any, error) {
		msg, err := c.messages.New(ctx, sdk.MessageNewParams{
			Model:       sdk.Model(c.model),
			MaxTokens:   maxTokens,
			Temperature: sdk.Float(req.temperature),
			System:      []sdk.TextBlockParam{{Text: req.system}},
			Messages: []sdk.MessageParam{
				sdk.NewUserMessage(sdk.NewTextBlock(req.prompt)),
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to call Anthropic API: %w", err)
		}

		var b strings.Builder
		for _, block := range msg.Content {
			if block.Type == "text" {
				b.WriteString(block.Text)
			}
		}
		text := strings.TrimSpace(b.String())
		if text == "" {
			return nil, ErrEmptyReply
		}
		return text, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return "", err
	}
	return out.(string), nil
}
