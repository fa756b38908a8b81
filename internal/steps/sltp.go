package steps

import (
	"daily_trader/internal/models"
	"daily_trader/internal/modules/config"

	"github.com/shopspring/decimal"
)

var (
	tpRSILow    = decimal.RequireFromString("1.05")
	tpRSIHigh   = decimal.RequireFromString("1.03")
	tpMomStrong = decimal.RequireFromString("1.07")
	tpMomMid    = decimal.RequireFromString("1.05")
	tpMomWeak   = decimal.RequireFromString("1.03")
	two         = decimal.NewFromInt(2)
)

// ComputeSLTP уровни для лонга. Невалидная цена оставляет запись без уровней.
func ComputeSLTP(s models.Stock, cfg config.SLTP) models.Stock {
	if s.Price <= 0 {
		return s
	}
	emaBuf := decimal.NewFromFloat(orFloat(cfg.EMABuffer, 0.98))
	priceBuf := decimal.NewFromFloat(orFloat(cfg.PriceBuffer, 0.97))
	notional := decimal.NewFromFloat(orFloat(cfg.NotionalRef, 10))

	price := decimal.NewFromFloat(s.Price)
	sl := decimal.Max(decimal.NewFromFloat(s.EMA20).Mul(emaBuf), price.Mul(priceBuf))

	tpRSI := price.Mul(tpRSILow)
	if s.RSI >= 70 {
		tpRSI = price.Mul(tpRSIHigh)
	}
	var tpMom decimal.Decimal
	switch {
	case s.Momentum > 0.30:
		tpMom = price.Mul(tpMomStrong)
	case s.Momentum > 0.10:
		tpMom = price.Mul(tpMomMid)
	default:
		tpMom = price.Mul(tpMomWeak)
	}
	tp := tpRSI.Add(tpMom).Div(two)

	fraction := notional.Div(price)
	s.SL, _ = sl.Round(2).Float64()
	s.TP, _ = tp.Round(2).Float64()
	s.SL10, _ = sl.Mul(fraction).Round(2).Float64()
	s.TP10, _ = tp.Mul(fraction).Round(2).Float64()
	return s
}

func ApplySLTP(stocks []models.Stock, cfg config.SLTP) []models.Stock {
	out := make([]models.Stock, len(stocks))
	for i, s := range stocks {
		out[i] = ComputeSLTP(s, cfg)
	}
	return out
}

func orFloat(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}
