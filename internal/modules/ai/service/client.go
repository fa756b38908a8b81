package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"daily_trader/internal/modules/config"
	"daily_trader/pkg/tracing"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

var ErrNoAPIKey = errors.New("ai api key is not set")

// Client клиент chat/completions совместимого API.
type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
	log     *zap.Logger

	apiKey      string
	model       string
	temperature float64
	batchSize   int
}

func NewClient(cfg *config.Config, log *zap.Logger) *Client {
	ac := cfg.AI

	timeout := ac.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	model := ac.Model
	if model == "" {
		model = "gpt-4-turbo"
	}

	h := resty.New().
		SetBaseURL(strings.TrimSuffix(ac.BaseURL, "/")).
		SetTimeout(timeout).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal).
		SetHeader("Content-Type", "application/json")

	st := gobreaker.Settings{
		Name:     "ai",
		Interval: 60 * time.Second,
		Timeout:  60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("breaker state", zap.String("name", name), zap.Stringer("from", from), zap.Stringer("to", to))
		},
	}

	return &Client{
		http:        h,
		breaker:     gobreaker.NewCircuitBreaker(st),
		log:         log.Named("ai"),
		apiKey:      ac.APIKey,
		model:       model,
		temperature: ac.Temperature,
		batchSize:   ac.BatchSize,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Chat один запрос system+user, возвращает текст первого ответа.
func (c *Client) Chat(ctx context.Context, system, user string) (text string, err error) {
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}

	ctx, finish := tracing.StartSpan(ctx, "ai.chat")
	defer func() { finish(err) }()

	out, err := c.breaker.Execute(func() (any, error) {
		return c.chat(ctx, system, user)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

func (c *Client) chat(ctx context.Context, system, user string) (string, error) {
	var out chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetBody(chatRequest{
			Model: c.model,
			Messages: []chatMessage{
				{Role: "system", Content: system},
				{Role: "user", Content: user},
			},
			Temperature: c.temperature,
			MaxTokens:   4000,
		}).
		SetResult(&out).
		SetError(&out).
		Post("/chat/completions")
	if err != nil {
		return "", errors.Wrap(err, "chat do")
	}
	if resp.StatusCode() != http.StatusOK {
		msg := strings.TrimSpace(resp.String())
		if out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		return "", fmt.Errorf("chat: status %d: %s", resp.StatusCode(), msg)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("chat: empty choices")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
