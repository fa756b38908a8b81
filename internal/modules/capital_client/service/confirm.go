package service

import (
	"context"
	"net/url"

	"daily_trader/internal/models"

	"github.com/go-resty/resty/v2"
)

type confirmResponse struct {
	DealReference string  `json:"dealReference"`
	DealID        string  `json:"dealId"`
	DealStatus    string  `json:"dealStatus"`
	Status        string  `json:"status"`
	Reason        string  `json:"reason"`
	Level         float64 `json:"level"`
	AffectedDeals []struct {
		DealID string `json:"dealId"`
		Status string `json:"status"`
	} `json:"affectedDeals"`
}

// Confirm GET /confirms/{dealReference}. dealId позиции берём из affectedDeals,
// если он там есть: dealId в корне ответа относится к ордеру.
func (c *Client) Confirm(ctx context.Context, sess models.Session, dealReference string) (models.DealConfirmation, error) {
	var out confirmResponse

	_, err := c.call(ctx, "Confirm", &sess, func(r *resty.Request) (*resty.Response, error) {
		return r.SetResult(&out).Get("/confirms/" + url.PathEscape(dealReference))
	})
	if err != nil {
		return models.DealConfirmation{}, err
	}

	dealID := out.DealID
	for _, d := range out.AffectedDeals {
		if d.Status == "OPENED" && d.DealID != "" {
			dealID = d.DealID
			break
		}
	}

	return models.DealConfirmation{
		DealReference: out.DealReference,
		DealID:        dealID,
		DealStatus:    out.DealStatus,
		Status:        out.Status,
		Reason:        out.Reason,
		Level:         out.Level,
	}, nil
}
