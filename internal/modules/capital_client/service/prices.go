package service

import (
	"context"
	"net/url"
	"strconv"

	"daily_trader/internal/models"

	"github.com/go-resty/resty/v2"
)

// Prices дневные свечи GET /prices/{epic}, от старых к новым.
func (c *Client) Prices(ctx context.Context, sess models.Session, epic string, max int) ([]models.Candle, error) {
	var out pricesResponse

	_, err := c.call(ctx, "Prices", &sess, func(r *resty.Request) (*resty.Response, error) {
		return r.
			SetQueryParam("resolution", "DAY").
			SetQueryParam("max", strconv.Itoa(max)).
			SetResult(&out).
			Get("/prices/" + url.PathEscape(epic))
	})
	if err != nil {
		return nil, err
	}

	candles := make([]models.Candle, 0, len(out.Prices))
	for _, p := range out.Prices {
		ts := p.SnapshotTimeUTC
		if ts == "" {
			ts = p.SnapshotTime
		}
		candles = append(candles, models.Candle{
			Time:   parseTime(ts),
			Open:   p.OpenPrice.mid(),
			High:   p.HighPrice.mid(),
			Low:    p.LowPrice.mid(),
			Close:  p.ClosePrice.mid(),
			Volume: p.LastTradedVolume,
		})
	}
	return candles, nil
}
