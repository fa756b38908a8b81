package service

import (
	"context"
	"net/url"
	"strings"

	"daily_trader/internal/models"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// Markets GET /markets. searchTerm пустой = весь список, доступный аккаунту.
func (c *Client) Markets(ctx context.Context, sess models.Session, searchTerm string) ([]models.Market, error) {
	var out struct {
		Markets []marketNode `json:"markets"`
	}

	_, err := c.call(ctx, "Markets", &sess, func(r *resty.Request) (*resty.Response, error) {
		if searchTerm != "" {
			r.SetQueryParam("searchTerm", searchTerm)
		}
		return r.SetResult(&out).Get("/markets")
	})
	if err != nil {
		return nil, err
	}

	res := make([]models.Market, 0, len(out.Markets))
	for _, m := range out.Markets {
		res = append(res, m.toModel())
	}
	return res, nil
}

// MarketDetails GET /markets/{epic}, нужен ради минимальной дистанции SL/TP.
func (c *Client) MarketDetails(ctx context.Context, sess models.Session, epic string) (models.Market, error) {
	var out struct {
		Instrument struct {
			Epic   string `json:"epic"`
			Symbol string `json:"symbol"`
			Name   string `json:"name"`
			Type   string `json:"type"`
		} `json:"instrument"`
		DealingRules struct {
			MinStopOrProfitDistance struct {
				Unit  string  `json:"unit"`
				Value float64 `json:"value"`
			} `json:"minStopOrProfitDistance"`
		} `json:"dealingRules"`
		Snapshot struct {
			MarketStatus string  `json:"marketStatus"`
			Bid          float64 `json:"bid"`
			Offer        float64 `json:"offer"`
		} `json:"snapshot"`
	}

	_, err := c.call(ctx, "MarketDetails", &sess, func(r *resty.Request) (*resty.Response, error) {
		return r.SetResult(&out).Get("/markets/" + url.PathEscape(epic))
	})
	if err != nil {
		return models.Market{}, err
	}
	if out.Instrument.Epic == "" {
		return models.Market{}, errors.Errorf("MarketDetails: empty instrument for %s", epic)
	}

	m := models.Market{
		Epic:           out.Instrument.Epic,
		Symbol:         out.Instrument.Symbol,
		InstrumentName: out.Instrument.Name,
		InstrumentType: out.Instrument.Type,
		MarketStatus:   out.Snapshot.MarketStatus,
		Bid:            out.Snapshot.Bid,
		Offer:          out.Snapshot.Offer,
	}
	rule := out.DealingRules.MinStopOrProfitDistance
	switch strings.ToUpper(rule.Unit) {
	case "PERCENTAGE":
		m.MinStopOrLimitDistance = m.Offer * rule.Value / 100
	default:
		m.MinStopOrLimitDistance = rule.Value
	}
	return m, nil
}

// SharesBySymbol индекс SHARES рынков по тикеру. Первый встреченный выигрывает.
func SharesBySymbol(markets []models.Market) map[string]models.Market {
	idx := make(map[string]models.Market, len(markets))
	for _, m := range markets {
		if m.InstrumentType != models.InstrumentShares || m.Symbol == "" {
			continue
		}
		if _, ok := idx[m.Symbol]; !ok {
			idx[m.Symbol] = m
		}
	}
	return idx
}
