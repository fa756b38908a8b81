package steps

import (
	"daily_trader/internal/models"
	"daily_trader/internal/modules/config"

	"github.com/shopspring/decimal"
)

// TargetNotional сумма на одну позицию: balance*leverage/max_positions.
func TargetNotional(cfg config.Normalize) decimal.Decimal {
	maxPos := cfg.MaxPositions
	if maxPos <= 0 {
		maxPos = 50
	}
	return decimal.NewFromFloat(orFloat(cfg.Balance, 5000)).
		Mul(decimal.NewFromFloat(orFloat(cfg.Leverage, 5))).
		Div(decimal.NewFromInt(int64(maxPos)))
}

// ApplyNormalize ставит Normalize = round1(target/price). Без цены фактор не ставится.
func ApplyNormalize(stocks []models.Stock, cfg config.Normalize) []models.Stock {
	target := TargetNotional(cfg)
	out := make([]models.Stock, len(stocks))
	for i, s := range stocks {
		if s.Price > 0 {
			f, _ := target.Div(decimal.NewFromFloat(s.Price)).Round(1).Float64()
			s.Factor = &f
		}
		out[i] = s
	}
	return out
}
