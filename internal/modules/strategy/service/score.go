package service

import (
	"math"

	"daily_trader/internal/helper"
	"daily_trader/internal/modules/config"
)

const (
	RecommendStrongBuy = "Strong Buy"
	RecommendBuy       = "Buy"
	RecommendHold      = "Hold / Avoid"
)

const (
	rsiWeight  = 0.3
	macdWeight = 0.4
	emaWeight  = 0.3
)

func EvaluateRSI(rsi float64) float64 {
	switch {
	case rsi < 30 || rsi > 70:
		return 0
	case rsi >= 40 && rsi <= 60:
		return 1
	default:
		return 0.7
	}
}

func EvaluateMACD(macd, signal float64) float64 {
	switch {
	case macd > signal:
		return 1
	case macd < signal:
		return 0
	default:
		return 0.5
	}
}

func EvaluateEMA(price, ema float64) float64 {
	if price > ema {
		return 1
	}
	return 0
}

// BuyScore взвешенная сумма оценок RSI/MACD/EMA, 3 знака.
func BuyScore(ind Indicators) float64 {
	s := rsiWeight*EvaluateRSI(ind.RSI) +
		macdWeight*EvaluateMACD(ind.MACD, ind.MACDSignal) +
		emaWeight*EvaluateEMA(ind.Price, ind.EMA20)
	return helper.Round(s, 3)
}

func Classify(score float64) string {
	switch {
	case score >= 0.7:
		return RecommendStrongBuy
	case score >= 0.4:
		return RecommendBuy
	default:
		return RecommendHold
	}
}

const (
	RejectVolume  = "volume"
	RejectPercent = "percent_change"
	RejectRSI     = "rsi"
)

// Filter пороги технического фильтра.
type Filter struct {
	MinVolume        float64
	MinPercentChange float64
	RSIMin           float64
	RSIMax           float64
}

func NewFilter(cfg *config.Config) Filter {
	s := cfg.Screen
	f := Filter{
		MinVolume:        s.MinVolume,
		MinPercentChange: s.MinPercentChange,
		RSIMin:           s.RSIMin,
		RSIMax:           s.RSIMax,
	}
	if f.RSIMax == 0 {
		f.RSIMin, f.RSIMax = 30, 70
	}
	return f
}

// Reject возвращает причину отсева или "" если акция проходит.
func (f Filter) Reject(ind Indicators) string {
	if ind.Volume < f.MinVolume {
		return RejectVolume
	}
	if math.Abs(ind.PercentChange) < f.MinPercentChange {
		return RejectPercent
	}
	if ind.RSI < f.RSIMin || ind.RSI > f.RSIMax {
		return RejectRSI
	}
	return ""
}
