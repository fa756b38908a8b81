package service

import (
	"context"

	"daily_trader/internal/models"

	"github.com/go-resty/resty/v2"
)

// OpenPositions полный снапшот GET /positions.
func (c *Client) OpenPositions(ctx context.Context, sess models.Session) ([]models.ObservedPosition, error) {
	var out positionsResponse

	_, err := c.call(ctx, "OpenPositions", &sess, func(r *resty.Request) (*resty.Response, error) {
		return r.SetResult(&out).Get("/positions")
	})
	if err != nil {
		return nil, err
	}

	res := make([]models.ObservedPosition, 0, len(out.Positions))
	for _, p := range out.Positions {
		created := p.Position.CreatedDateUTC
		if created == "" {
			created = p.Position.CreatedDate
		}
		res = append(res, models.ObservedPosition{
			DealID:         p.Position.DealID,
			DealReference:  p.Position.DealReference,
			Direction:      p.Position.Direction,
			Size:           p.Position.Size,
			EntryLevel:     p.Position.Level,
			StopLevel:      p.Position.StopLevel,
			TakeLevel:      p.Position.ProfitLevel,
			UPL:            p.Position.UPL,
			CreatedAt:      parseTime(created),
			Epic:           p.Market.Epic,
			Symbol:         p.Market.Symbol,
			InstrumentName: p.Market.InstrumentName,
			Bid:            p.Market.Bid,
			Offer:          p.Market.Offer,
		})
	}
	return res, nil
}
