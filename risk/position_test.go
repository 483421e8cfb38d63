package risk

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/misterpips/market"
)

func TestSizePosition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       SizingInput
		stopPips float64
		pvpl     float64
		lots     float64
		margin   float64
	}{
		{
			name:     "usd_quote",
			in:       SizingInput{Capital: 10000, RiskPct: 1, EntryPrice: 1.2000, StopPrice: 1.1900, Instrument: "EUR/USD"},
			stopPips: 100, pvpl: 10, lots: 0.1, margin: 120,
		},
		{
			name:     "jpy_quote",
			in:       SizingInput{Capital: 5000, RiskPct: 2, EntryPrice: 150.00, StopPrice: 149.50, Instrument: "USD/JPY"},
			stopPips: 50, pvpl: 1000.0 / 150, lots: 0.3, margin: 45000,
		},
		{
			name:     "gold_tenth_pips",
			in:       SizingInput{Capital: 1000, RiskPct: 1, EntryPrice: 2000, StopPrice: 1995, Instrument: "XAUUSD"},
			stopPips: 50, pvpl: 10, lots: 0.02, margin: 0.02 * 100000 * 2000 * 0.01,
		},
		{
			name:     "cross",
			in:       SizingInput{Capital: 1000, RiskPct: 1, EntryPrice: 0.85, StopPrice: 0.845, Instrument: "EUR/GBP"},
			stopPips: 50, pvpl: 8.5, lots: 10.0 / 425, margin: 10.0 / 425 * 100000 * 0.85 * 0.01,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := SizePosition(tt.in)
			require.NoError(t, err)

			assert.InDelta(t, tt.in.Capital*tt.in.RiskPct/100, got.RiskAmount, 1e-9)
			assert.InDelta(t, tt.stopPips, got.StopPips, 1e-6)
			assert.InDelta(t, tt.pvpl, got.PipValuePerLot, 1e-9)
			assert.InDelta(t, tt.lots, got.Lots, 1e-6)
			assert.InDelta(t, tt.margin, got.Margin, 1e-4)
			assert.InDelta(t, tt.in.Capital/got.Margin, got.Leverage, 1e-9)

			// losing the stop distance at the sized position costs the risk amount
			assert.InDelta(t, got.RiskAmount, got.PipValue*got.StopPips, 1e-6)
		})
	}
}

func TestSizePosition_DegenerateStop(t *testing.T) {
	t.Parallel()

	_, err := SizePosition(SizingInput{Capital: 1000, RiskPct: 1, EntryPrice: 1.1, StopPrice: 1.1, Instrument: "EURUSD"})
	assert.True(t, errors.Is(err, market.ErrDegenerateStopLoss))
}

func TestSizePosition_InvalidInput(t *testing.T) {
	t.Parallel()

	base := SizingInput{Capital: 1000, RiskPct: 1, EntryPrice: 1.1, StopPrice: 1.09, Instrument: "EURUSD"}

	for name, mut := range map[string]func(*SizingInput){
		"capital":  func(in *SizingInput) { in.Capital = 0 },
		"risk_pct": func(in *SizingInput) { in.RiskPct = 150 },
		"entry":    func(in *SizingInput) { in.EntryPrice = math.NaN() },
		"stop":     func(in *SizingInput) { in.StopPrice = -1 },
	} {
		in := base
		mut(&in)
		_, err := SizePosition(in)
		require.Error(t, err, name)
		var ie *market.InputError
		require.True(t, errors.As(err, &ie), name)
		assert.Equal(t, name, ie.Field)
	}

	in := base
	in.Instrument = "NOPE"
	_, err := SizePosition(in)
	assert.True(t, errors.Is(err, market.ErrUnknownInstrument))
}

func TestPipValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		symbol string
		lots   float64
		pips   float64
		perPip float64
	}{
		{"EUR/USD", 1, 20, 10},
		{"XAU/USD", 0.5, 10, 5},
		{"USD/JPY", 1, 10, 0.01 / 149.50 * 100000},
		{"EUR/GBP", 2, 5, 2 * 10 * 1.0850},
	}

	for _, tt := range tests {
		got, err := PipValue(tt.lots, tt.pips, tt.symbol)
		require.NoError(t, err, tt.symbol)
		assert.InDelta(t, tt.perPip, got.PerPip, 1e-9, tt.symbol)
		assert.InDelta(t, tt.perPip*tt.pips, got.Total, 1e-9, tt.symbol)
	}

	v, err := PipValue(1, 50, "EURUSD")
	require.NoError(t, err)
	assert.InDelta(t, 0.005, v.PriceMove, 1e-12)
	assert.InDelta(t, 0.5, v.PercentMove, 1e-12)

	_, err = PipValue(0, 10, "EURUSD")
	assert.True(t, errors.Is(err, market.ErrInvalidNumericInput))
}

func TestRR(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 2.0, RR(1.1, 1.099, 1.102), 1e-6)
	assert.InDelta(t, 2.0, RR(150, 150.1, 149.8), 1e-6)
	assert.Equal(t, 0.0, RR(1.1, 1.1, 1.2))
}

func TestRiskPct(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 2.0, RiskPct(20, 1000), 1e-12)
	assert.True(t, math.IsInf(RiskPct(20, 0), 1))
}
