package steps

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"daily_trader/internal/models"
	capital "daily_trader/internal/modules/capital_client/service"
	"daily_trader/internal/modules/config"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

type MarketSource interface {
	Markets(ctx context.Context, sess models.Session, searchTerm string) ([]models.Market, error)
}

type UniverseStats struct {
	Total        int `json:"total"`
	NoMarket     int `json:"no_market"`
	PriceOut     int `json:"price_filtered"`
	TradeableOut int `json:"tradeable_filtered"`
	Passed       int `json:"passed"`
}

// Universe список S&P 500 с Википедии, обогащённый рынками брокера.
type Universe struct {
	http    *resty.Client
	markets MarketSource
	cfg     config.Screen
	log     *zap.Logger
}

func NewUniverse(cfg *config.Config, markets MarketSource, log *zap.Logger) *Universe {
	h := resty.New().
		SetTimeout(10 * time.Second).
		SetHeader("User-Agent", "Mozilla/5.0")
	return &Universe{http: h, markets: markets, cfg: cfg.Screen, log: log.Named("universe")}
}

func (u *Universe) Run(ctx context.Context, sess models.Session) ([]models.Stock, UniverseStats, error) {
	var stats UniverseStats

	resp, err := u.http.R().SetContext(ctx).Get(u.cfg.UniverseURL)
	if err != nil {
		return nil, stats, fmt.Errorf("fetch universe: %w", err)
	}
	if resp.IsError() {
		return nil, stats, fmt.Errorf("fetch universe: status %d", resp.StatusCode())
	}
	tickers, err := ParseConstituents(resp.Body())
	if err != nil {
		return nil, stats, err
	}
	u.log.Info("constituents loaded", zap.Int("tickers", len(tickers)))

	markets, err := u.markets.Markets(ctx, sess, "")
	if err != nil {
		return nil, stats, fmt.Errorf("load markets: %w", err)
	}

	out, stats := Enrich(tickers, capital.SharesBySymbol(markets), u.cfg)
	u.log.Info("universe filtered",
		zap.Int("total", stats.Total),
		zap.Int("no_market", stats.NoMarket),
		zap.Int("price_filtered", stats.PriceOut),
		zap.Int("tradeable_filtered", stats.TradeableOut),
		zap.Int("passed", stats.Passed),
	)
	return out, stats, nil
}

// ParseConstituents тикер и название из table#constituents.
func ParseConstituents(html []byte) ([]models.Stock, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse universe html: %w", err)
	}
	table := doc.Find("table#constituents")
	if table.Length() == 0 {
		return nil, fmt.Errorf("parse universe html: table#constituents not found")
	}

	var out []models.Stock
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cols := row.Find("td")
		if cols.Length() < 2 {
			return
		}
		ticker := strings.TrimSpace(cols.Eq(0).Text())
		if ticker == "" {
			return
		}
		out = append(out, models.Stock{
			Ticker: ticker,
			Name:   strings.TrimSpace(cols.Eq(1).Text()),
		})
	})
	return out, nil
}

// Enrich подставляет epic, offer и статус рынка и применяет фильтры.
// Тикеры без рынка у брокера выпадают.
func Enrich(tickers []models.Stock, shares map[string]models.Market, cfg config.Screen) ([]models.Stock, UniverseStats) {
	stats := UniverseStats{Total: len(tickers)}
	out := make([]models.Stock, 0, len(tickers))

	for _, s := range tickers {
		m, ok := shares[strings.ToUpper(s.Ticker)]
		if !ok {
			stats.NoMarket++
			continue
		}
		s.Epic = m.Epic
		s.Price = m.Offer
		s.Status = m.MarketStatus

		if cfg.MinPrice > 0 && s.Price <= cfg.MinPrice {
			stats.PriceOut++
			continue
		}
		if cfg.TradeableOnly && !m.Tradeable() {
			stats.TradeableOut++
			continue
		}
		out = append(out, s)
	}
	stats.Passed = len(out)
	return out, stats
}
