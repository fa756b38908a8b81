package service

import (
	"errors"
	"fmt"

	"daily_trader/internal/helper"
	"daily_trader/internal/models"

	"github.com/markcheno/go-talib"
)

const (
	RSIPeriod  = 14
	EMAPeriod  = 20
	MACDFast   = 12
	MACDSlow   = 26
	MACDSignal = 9
)

// MinCandles минимум дневных свечей, чтобы MACD сигнал был определён.
const MinCandles = MACDSlow + MACDSignal

var ErrNotEnoughData = errors.New("not enough candles")

type Indicators struct {
	Price         float64
	RSI           float64
	MACD          float64
	MACDSignal    float64
	EMA20         float64
	Volume        float64
	PercentChange float64 // в процентах к предыдущему закрытию
	Momentum      float64 // доля за весь период, 0.1 = +10%
}

// Compute считает индикаторы по дневным свечам (старые первыми). price = 0
// значит брать последнее закрытие.
func Compute(candles []models.Candle, price float64) (Indicators, error) {
	if len(candles) < MinCandles {
		return Indicators{}, fmt.Errorf("%w: need %d got %d", ErrNotEnoughData, MinCandles, len(candles))
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	last := closes[len(closes)-1]
	prev := closes[len(closes)-2]
	if price <= 0 {
		price = last
	}

	rsi := talib.Rsi(closes, RSIPeriod)
	ema := talib.Ema(closes, EMAPeriod)
	macd, signal, _ := talib.Macd(closes, MACDFast, MACDSlow, MACDSignal)

	ind := Indicators{
		Price:      price,
		RSI:        helper.Round(rsi[len(rsi)-1], 2),
		MACD:       helper.Round(macd[len(macd)-1], 4),
		MACDSignal: helper.Round(signal[len(signal)-1], 4),
		EMA20:      helper.Round(ema[len(ema)-1], 2),
		Volume:     candles[len(candles)-1].Volume,
	}
	if prev > 0 {
		ind.PercentChange = helper.Round((price-prev)/prev*100, 2)
	}
	if first := closes[0]; first > 0 {
		ind.Momentum = helper.Round((last-first)/first, 4)
	}
	return ind, nil
}
