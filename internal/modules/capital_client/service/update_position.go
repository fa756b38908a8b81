package service

import (
	"context"
	"net/url"

	"daily_trader/internal/models"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// UpdatePosition PUT /positions/{dealId}. В тело попадают только заданные уровни.
func (c *Client) UpdatePosition(ctx context.Context, sess models.Session, dealID string, upd models.LevelUpdate) error {
	if dealID == "" {
		return errors.New("UpdatePosition: empty dealId")
	}
	if upd.Empty() {
		return errors.New("UpdatePosition: nothing to update")
	}

	_, err := c.call(ctx, "UpdatePosition", &sess, func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(upd).Put("/positions/" + url.PathEscape(dealID))
	})
	return err
}
