package service

import (
	"context"
	"strings"

	"daily_trader/internal/models"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

type openPositionRequest struct {
	Epic        string   `json:"epic"`
	Direction   string   `json:"direction"`
	Size        float64  `json:"size"`
	OrderType   string   `json:"orderType"`
	StopLevel   *float64 `json:"stopLevel,omitempty"`
	ProfitLevel *float64 `json:"profitLevel,omitempty"`
}

// OpenPosition рыночный ордер POST /positions. Уровни могут быть nil,
// тогда их выставляет reconcile.
func (c *Client) OpenPosition(ctx context.Context, sess models.Session, in models.PositionIntent) (string, error) {
	dir := strings.ToUpper(in.Direction)
	if dir != models.DirectionBuy && dir != models.DirectionSell {
		return "", errors.Errorf("OpenPosition: unsupported direction=%q", in.Direction)
	}
	if in.Size <= 0 {
		return "", errors.New("OpenPosition: size <= 0")
	}
	if in.Epic == "" {
		return "", errors.New("OpenPosition: empty epic")
	}

	body := openPositionRequest{
		Epic:        in.Epic,
		Direction:   dir,
		Size:        in.Size,
		OrderType:   "MARKET",
		StopLevel:   in.StopLevel,
		ProfitLevel: in.TakeLevel,
	}

	var out struct {
		DealReference string `json:"dealReference"`
	}
	_, err := c.call(ctx, "OpenPosition", &sess, func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(body).SetResult(&out).Post("/positions")
	})
	if err != nil {
		return "", err
	}
	if out.DealReference == "" {
		return "", errors.New("OpenPosition: empty dealReference")
	}
	return out.DealReference, nil
}
