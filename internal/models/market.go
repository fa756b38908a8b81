package models

import "time"

const (
	InstrumentShares = "SHARES"
	MarketTradeable  = "TRADEABLE"
)

type Market struct {
	Epic                   string
	Symbol                 string
	InstrumentName         string
	InstrumentType         string
	MarketStatus           string
	Bid                    float64
	Offer                  float64
	MinStopOrLimitDistance float64
}

func (m Market) Tradeable() bool { return m.MarketStatus == MarketTradeable }

// Candle дневная свеча, цены уже усреднены между bid и ask.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

type Account struct {
	AccountID  string
	Currency   string
	Preferred  bool
	Balance    float64
	Deposit    float64
	ProfitLoss float64
	Available  float64
}

// Quote тик из стрима котировок.
type Quote struct {
	Epic string
	Bid  float64
	Ofr  float64
	Time time.Time
}
