package steps

import (
	"testing"

	"daily_trader/internal/models"
	"daily_trader/internal/modules/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeSLTP(t *testing.T) {
	cfg := config.SLTP{EMABuffer: 0.98, PriceBuffer: 0.97, NotionalRef: 10}

	t.Run("ema above price buffer", func(t *testing.T) {
		s := ComputeSLTP(models.Stock{Price: 100, EMA20: 99.5, RSI: 55, Momentum: 0.2}, cfg)
		// SL = max(97.51, 97); TP = (105 + 105) / 2
		assert.Equal(t, 97.51, s.SL)
		assert.Equal(t, 105.0, s.TP)
		assert.Equal(t, 9.75, s.SL10)
		assert.Equal(t, 10.5, s.TP10)
	})

	t.Run("overbought weak momentum", func(t *testing.T) {
		s := ComputeSLTP(models.Stock{Price: 200, EMA20: 180, RSI: 72, Momentum: 0.05}, cfg)
		assert.Equal(t, 194.0, s.SL)
		assert.Equal(t, 206.0, s.TP)
	})

	t.Run("strong momentum", func(t *testing.T) {
		s := ComputeSLTP(models.Stock{Price: 50, EMA20: 40, RSI: 60, Momentum: 0.35}, cfg)
		// (52.5 + 53.5) / 2
		assert.Equal(t, 53.0, s.TP)
	})

	t.Run("no price", func(t *testing.T) {
		s := ComputeSLTP(models.Stock{Ticker: "X"}, cfg)
		assert.Zero(t, s.SL)
		assert.Zero(t, s.TP)
	})
}

func TestApplyNormalize(t *testing.T) {
	cfg := config.Normalize{Balance: 5000, Leverage: 5, MaxPositions: 50}
	assert.Equal(t, "500", TargetNotional(cfg).String())

	out := ApplyNormalize([]models.Stock{{Ticker: "A", Price: 190}, {Ticker: "B"}, {Ticker: "C", Price: 1000}}, cfg)
	require.NotNil(t, out[0].Factor)
	assert.Equal(t, 2.6, *out[0].Factor)
	assert.Nil(t, out[1].Factor)
	assert.Equal(t, 0.5, *out[2].Factor)
}
