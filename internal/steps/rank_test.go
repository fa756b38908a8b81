package steps

import (
	"testing"

	"daily_trader/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinMax(t *testing.T) {
	assert.Equal(t, []float64{0, 0.5, 1}, MinMax([]float64{1, 2, 3}))
	assert.Equal(t, []float64{0.5, 0.5}, MinMax([]float64{7, 7}))
	assert.Empty(t, MinMax(nil))
}

func TestRank(t *testing.T) {
	in := []models.Stock{
		{Ticker: "LOW", BuyScore: 0.3, PercentChange: 0.6, Volume: 100},
		{Ticker: "TOP", BuyScore: 1.0, PercentChange: 3.0, Volume: 900},
		{Ticker: "MID", BuyScore: 0.7, PercentChange: 1.0, Volume: 500},
	}
	out := Rank(in, 2)
	require.Len(t, out, 2)
	assert.Equal(t, "TOP", out[0].Ticker)
	assert.Equal(t, 1.0, out[0].Score)
	assert.Equal(t, "MID", out[1].Ticker)
	assert.Equal(t, 0.0, in[0].Score, "input is not modified")

	// 0.5*(0.4/0.7) + 0.3*(0.4/2.4) + 0.2*(400/800)
	assert.Equal(t, 0.436, out[1].Score)
}

func TestRankAllEqual(t *testing.T) {
	out := Rank([]models.Stock{{Ticker: "A", BuyScore: 1}, {Ticker: "B", BuyScore: 1}}, 0)
	require.Len(t, out, 2)
	assert.Equal(t, 0.5, out[0].Score)
	assert.Equal(t, 0.5, out[1].Score)
}

func TestRankUsesSentimentWhenPresent(t *testing.T) {
	in := []models.Stock{
		{Ticker: "A", CombinedSentiment: 0.8, PercentChange: 1.0, TotalMentions: 10, BuyScore: 0.1},
		{Ticker: "B", CombinedSentiment: 0.2, PercentChange: 3.0, TotalMentions: 4, BuyScore: 1.0},
		{Ticker: "C", PercentChange: 2.0, BuyScore: 0.9},
	}
	out := Rank(in, 0)
	require.Len(t, out, 3)

	assert.Equal(t, []string{"A", "B", "C"}, []string{out[0].Ticker, out[1].Ticker, out[2].Ticker})
	assert.Equal(t, 0.7, out[0].Score)
	// 0.5*0.25 + 0.3*1 + 0.2*0.4
	assert.Equal(t, 0.505, out[1].Score)
	assert.Equal(t, 0.15, out[2].Score)
}
