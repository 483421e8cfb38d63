package market

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipDistance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		symbol string
		a, b   float64
		want   float64
	}{
		{"eurusd_10_pips", "EUR/USD", 1.10000, 1.09900, 10},
		{"eurusd_order_independent", "EUR/USD", 1.09900, 1.10000, 10},
		{"usdjpy_10_pips", "USD/JPY", 150.000, 150.100, 10},
		{"eurjpy_uses_jpy_scale", "EUR/JPY", 160.50, 160.00, 50},
		{"gold_uses_default_scale", "XAU/USD", 2000.00, 2000.10, 1000},
		{"btc_uses_default_scale", "BTC/USD", 60000, 60001, 10000},
		{"zero", "GBP/USD", 1.25, 1.25, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := PipDistanceSymbol(tt.a, tt.b, tt.symbol)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-6)
		})
	}
}

func TestPipDistanceMatchesScaleExactly(t *testing.T) {
	t.Parallel()

	for key, inst := range Instruments {
		a, b := 1.23456, 1.20001
		got := PipDistance(a, b, inst)
		if inst.Class == JPYQuote {
			assert.Equal(t, math.Abs(a-b)*100, got, key)
		} else {
			assert.Equal(t, math.Abs(a-b)*10000, got, key)
		}
	}
}

func TestPipDistanceNaNPropagates(t *testing.T) {
	t.Parallel()

	inst, err := Lookup("EUR/USD")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(PipDistance(math.NaN(), 1.1, inst)))
}

func TestPipDistanceUnknownInstrument(t *testing.T) {
	t.Parallel()

	_, err := PipDistanceSymbol(1, 2, "FOO/BAR")
	assert.True(t, errors.Is(err, ErrUnknownInstrument))
}

func TestPlannerPipDistance(t *testing.T) {
	t.Parallel()

	gold, err := Lookup("XAUUSD")
	require.NoError(t, err)
	assert.InDelta(t, 50.0, PlannerPipDistance(2000, 1995, gold), 1e-9)

	jpy, err := Lookup("USD_JPY")
	require.NoError(t, err)
	assert.InDelta(t, 50.0, PlannerPipDistance(150.0, 149.5, jpy), 1e-9)
}
