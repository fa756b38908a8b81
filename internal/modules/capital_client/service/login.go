package service

import (
	"context"

	"daily_trader/internal/models"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// Login открывает сессию POST /session и достаёт токены из заголовков ответа.
func (c *Client) Login(ctx context.Context) (models.Session, error) {
	if c.apiKey == "" || c.identifier == "" || c.password == "" {
		return models.Session{}, errors.New("Login: capital credentials are not configured")
	}

	body := map[string]any{
		"identifier":        c.identifier,
		"password":          c.password,
		"encryptedPassword": false,
	}

	resp, err := c.call(ctx, "Login", nil, func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(body).Post("/session")
	})
	if err != nil {
		return models.Session{}, err
	}

	sess := models.Session{
		CST:           resp.Header().Get(headerCST),
		SecurityToken: resp.Header().Get(headerSecurity),
	}
	if !sess.Valid() {
		return models.Session{}, errors.Errorf("Login: tokens missing in response headers, status %d", resp.StatusCode())
	}
	return sess, nil
}
