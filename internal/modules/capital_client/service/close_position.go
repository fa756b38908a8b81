package service

import (
	"context"

	"daily_trader/internal/helper"
	"daily_trader/internal/models"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// ClosePosition закрывает позицию встречным рыночным ордером того же объёма.
func (c *Client) ClosePosition(ctx context.Context, sess models.Session, pos models.ObservedPosition) error {
	if pos.DealID == "" {
		return errors.New("ClosePosition: empty dealId")
	}
	if pos.Size <= 0 {
		return errors.New("ClosePosition: size <= 0")
	}

	body := map[string]any{
		"dealId":    pos.DealID,
		"direction": helper.Opposite(pos.Direction),
		"size":      pos.Size,
		"orderType": "MARKET",
	}

	_, err := c.call(ctx, "ClosePosition", &sess, func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(body).Post("/positions/otc")
	})
	return err
}
