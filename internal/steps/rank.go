package steps

import (
	"slices"
	"sort"

	"daily_trader/internal/helper"
	"daily_trader/internal/models"
)

const (
	weightBuy     = 0.5
	weightPercent = 0.3
	weightVolume  = 0.2

	weightSentiment = 0.5
	weightMentions  = 0.2
)

// MinMax нормализация в [0,1]. Все значения равны = 0.5.
func MinMax(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	lo, hi := slices.Min(values), slices.Max(values)
	for i, v := range values {
		if hi == lo {
			out[i] = 0.5
			continue
		}
		out[i] = (v - lo) / (hi - lo)
	}
	return out
}

// Rank считает score, сортирует по убыванию и оставляет topX (0 = без лимита).
// Если у строк есть сентимент: 0.5 сентимент, 0.3 изменение цены, 0.2 упоминания.
// Иначе: 0.5 buy score, 0.3 изменение цены, 0.2 объём.
func Rank(stocks []models.Stock, topX int) []models.Stock {
	withSentiment := slices.ContainsFunc(stocks, func(s models.Stock) bool {
		return s.CombinedSentiment != 0 || s.TotalMentions > 0
	})

	first := make([]float64, len(stocks))
	pct := make([]float64, len(stocks))
	third := make([]float64, len(stocks))
	for i, s := range stocks {
		pct[i] = s.PercentChange
		if withSentiment {
			first[i], third[i] = s.CombinedSentiment, float64(s.TotalMentions)
		} else {
			first[i], third[i] = s.BuyScore, s.Volume
		}
	}
	nf, np, nt := MinMax(first), MinMax(pct), MinMax(third)

	wFirst, wThird := weightBuy, weightVolume
	if withSentiment {
		wFirst, wThird = weightSentiment, weightMentions
	}

	out := slices.Clone(stocks)
	for i := range out {
		out[i].Score = helper.Round(wFirst*nf[i]+weightPercent*np[i]+wThird*nt[i], 3)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })

	if topX > 0 && len(out) > topX {
		out = out[:topX]
	}
	return out
}
