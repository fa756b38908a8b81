package service

import (
	"strings"
	"time"

	"daily_trader/internal/models"
)

type marketNode struct {
	Epic           string  `json:"epic"`
	Symbol         string  `json:"symbol"`
	InstrumentName string  `json:"instrumentName"`
	InstrumentType string  `json:"instrumentType"`
	MarketStatus   string  `json:"marketStatus"`
	Bid            float64 `json:"bid"`
	Offer          float64 `json:"offer"`
}

func (m marketNode) toModel() models.Market {
	return models.Market{
		Epic:           m.Epic,
		Symbol:         m.Symbol,
		InstrumentName: m.InstrumentName,
		InstrumentType: m.InstrumentType,
		MarketStatus:   m.MarketStatus,
		Bid:            m.Bid,
		Offer:          m.Offer,
	}
}

type positionNode struct {
	DealID         string   `json:"dealId"`
	DealReference  string   `json:"dealReference"`
	Direction      string   `json:"direction"`
	Size           float64  `json:"size"`
	Level          float64  `json:"level"`
	StopLevel      *float64 `json:"stopLevel"`
	ProfitLevel    *float64 `json:"profitLevel"`
	UPL            *float64 `json:"upl"`
	CreatedDate    string   `json:"createdDate"`
	CreatedDateUTC string   `json:"createdDateUTC"`
}

type positionsResponse struct {
	Positions []struct {
		Position positionNode `json:"position"`
		Market   marketNode   `json:"market"`
	} `json:"positions"`
}

type priceNode struct {
	Bid float64 `json:"bid"`
	Ask float64 `json:"ask"`
}

func (p priceNode) mid() float64 {
	switch {
	case p.Bid > 0 && p.Ask > 0:
		return (p.Bid + p.Ask) / 2
	case p.Ask > 0:
		return p.Ask
	default:
		return p.Bid
	}
}

type pricesResponse struct {
	Prices []struct {
		SnapshotTime     string    `json:"snapshotTime"`
		SnapshotTimeUTC  string    `json:"snapshotTimeUTC"`
		OpenPrice        priceNode `json:"openPrice"`
		ClosePrice       priceNode `json:"closePrice"`
		HighPrice        priceNode `json:"highPrice"`
		LowPrice         priceNode `json:"lowPrice"`
		LastTradedVolume float64   `json:"lastTradedVolume"`
	} `json:"prices"`
}

// формат брокера без зоны, например 2024-03-18T14:03:10.128
var timeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006/01/02 15:04:05",
	time.RFC3339,
}

func parseTime(raw string) time.Time {
	s := strings.TrimSpace(raw)
	if i := strings.IndexByte(s, '.'); i > 0 {
		s = s[:i]
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t
		}
	}
	return time.Time{}
}
