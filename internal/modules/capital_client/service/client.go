package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"daily_trader/internal/models"
	"daily_trader/internal/modules/config"
	"daily_trader/pkg/tracing"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	headerAPIKey   = "X-CAP-API-KEY"
	headerCST      = "CST"
	headerSecurity = "X-SECURITY-TOKEN"
)

// Client REST клиент Capital.com. Сессия не хранится внутри клиента,
// её возвращает Login и она передаётся в каждый вызов.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	log     *zap.Logger

	apiKey     string
	identifier string
	password   string
}

func NewClient(cfg *config.Config, log *zap.Logger) *Client {
	cc := cfg.Capital
	base := strings.TrimSuffix(cc.BaseURL, "/")

	timeout := cc.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	limit := rate.Inf
	if cc.RequestsPerSecond > 0 {
		limit = rate.Limit(cc.RequestsPerSecond)
	}

	h := resty.New().
		SetBaseURL(base).
		SetTimeout(timeout).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(cc.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		AddRetryCondition(retryIdempotent)

	return &Client{
		http:       h,
		limiter:    rate.NewLimiter(limit, 1),
		log:        log.Named("capital"),
		apiKey:     cc.APIKey,
		identifier: cc.Identifier,
		password:   cc.Password,
	}
}

// retryIdempotent повторяет только GET: повтор POST /positions открыл бы вторую сделку.
func retryIdempotent(resp *resty.Response, err error) bool {
	if resp == nil || resp.Request == nil || resp.Request.Method != http.MethodGet {
		return false
	}
	if retryDisabled(resp.Request.Context()) {
		return false
	}
	if err != nil {
		return true
	}
	code := resp.StatusCode()
	return code == http.StatusTooManyRequests || code >= 500
}

// call общий путь запроса: span, лимитер, заголовки авторизации, проверка статуса.
func (c *Client) call(
	ctx context.Context,
	op string,
	sess *models.Session,
	send func(r *resty.Request) (*resty.Response, error),
) (resp *resty.Response, err error) {
	ctx, finish := tracing.StartSpan(ctx, "capital."+op)
	defer func() { finish(err) }()

	if err = c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrapf(err, "%s rate limit", op)
	}

	r := c.http.R().SetContext(ctx).SetHeader(headerAPIKey, c.apiKey)
	if sess != nil {
		r.SetHeader(headerCST, sess.CST).SetHeader(headerSecurity, sess.SecurityToken)
	}

	started := time.Now()
	resp, err = send(r)
	if err != nil {
		return nil, errors.Wrapf(err, "%s do", op)
	}

	c.log.Debug("request",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("took", time.Since(started)),
	)

	if err = checkStatus(op, resp); err != nil {
		return resp, err
	}
	return resp, nil
}
