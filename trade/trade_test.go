package trade

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

func TestNewNormalizesSymbol(t *testing.T) {
	t.Parallel()

	s := eurusdBuy()
	s.Instrument = "eurusd"
	tr, err := New(s, t0)
	require.NoError(t, err)
	assert.Equal(t, "EUR/USD", tr.Instrument)
	assert.Equal(t, Open, tr.Status)
	assert.NotEmpty(t, tr.ID)
	assert.Nil(t, tr.Outcome)
}

func TestCloseBindsExitPrice(t *testing.T) {
	t.Parallel()

	acct := Account{Capital: 1000, RiskPerTrade: 2}

	tests := []struct {
		reason Reason
		manual float64
		status Status
		exit   float64
		pnl    float64
	}{
		{TakeProfit, 0, ClosedTP, 1.10200, 40},
		{StopLoss, 0, ClosedSL, 1.09900, -20},
		{BreakEven, 0, ClosedBE, 1.10000, 0},
		{Manual, 1.10050, ClosedManual, 1.10050, 10},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.reason), func(t *testing.T) {
			t.Parallel()
			tr, err := New(eurusdBuy(), t0)
			require.NoError(t, err)

			out, err := tr.Close(tt.reason, acct, tt.manual, t0.Add(time.Hour))
			require.NoError(t, err)
			assert.Equal(t, tt.status, tr.Status)
			assert.Equal(t, tt.exit, out.ExitPrice)
			assert.InDelta(t, tt.pnl, out.PnL, 1e-6)
			assert.Equal(t, tt.reason, out.Reason)
			require.NotNil(t, tr.Outcome)
			assert.Equal(t, out, *tr.Outcome)
			assert.InDelta(t, tt.pnl, tr.PnL(), 1e-6)
		})
	}
}

func TestBreakEvenIsAlwaysZero(t *testing.T) {
	t.Parallel()

	for _, s := range []Spec{eurusdBuy(), usdjpySell()} {
		for _, acct := range []Account{{Capital: 1, RiskPerTrade: 100}, {Capital: 1e6, RiskPerTrade: 0.1}, {}} {
			tr, err := New(s, t0)
			require.NoError(t, err)
			out, err := tr.Close(BreakEven, acct, 0, t0)
			require.NoError(t, err)
			assert.Equal(t, 0.0, out.PnL)
			assert.Equal(t, s.Entry, out.ExitPrice)
		}
	}
}

func TestTerminalStatesAreImmutable(t *testing.T) {
	t.Parallel()

	acct := Account{Capital: 1000, RiskPerTrade: 2}

	tr, err := New(eurusdBuy(), t0)
	require.NoError(t, err)
	first, err := tr.Close(TakeProfit, acct, 0, t0)
	require.NoError(t, err)

	_, err = tr.Close(StopLoss, acct, 0, t0)
	assert.True(t, errors.Is(err, ErrTradeNotOpen))
	assert.True(t, errors.Is(tr.Delete(), ErrTradeNotOpen))
	_, err = tr.Preview(Manual, acct, 1.2, t0)
	assert.True(t, errors.Is(err, ErrTradeNotOpen))

	assert.Equal(t, ClosedTP, tr.Status)
	assert.Equal(t, first, *tr.Outcome)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	tr, err := New(usdjpySell(), t0)
	require.NoError(t, err)
	require.NoError(t, tr.Delete())
	assert.Equal(t, Deleted, tr.Status)
	assert.Nil(t, tr.Outcome)
	assert.True(t, tr.Status.Terminal())
	assert.False(t, tr.Status.Closed())

	_, err = tr.Close(BreakEven, Account{}, 0, t0)
	assert.True(t, errors.Is(err, ErrTradeNotOpen))
}

func TestPreviewDoesNotMutate(t *testing.T) {
	t.Parallel()

	tr, err := New(eurusdBuy(), t0)
	require.NoError(t, err)

	out, err := tr.Preview(TakeProfit, Account{Capital: 1000, RiskPerTrade: 2}, 0, t0)
	require.NoError(t, err)
	assert.InDelta(t, 40.0, out.PnL, 1e-6)
	assert.Equal(t, Open, tr.Status)
	assert.Nil(t, tr.Outcome)
}

func TestCloseRejectsBadInput(t *testing.T) {
	t.Parallel()

	tr, err := New(eurusdBuy(), t0)
	require.NoError(t, err)

	_, err = tr.Close(ReasonDeleted, Account{Capital: 1000, RiskPerTrade: 2}, 0, t0)
	assert.True(t, errors.Is(err, ErrInvalidReason))

	_, err = tr.Close(Manual, Account{Capital: 1000, RiskPerTrade: 2}, 0, t0)
	require.Error(t, err)

	_, err = tr.Close(TakeProfit, Account{Capital: -5, RiskPerTrade: 2}, 0, t0)
	require.Error(t, err)

	assert.Equal(t, Open, tr.Status, "failed closures leave the trade open")
}

func TestParseReason(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Reason{"tp": TakeProfit, "SL": StopLoss, "be": BreakEven, "manual": Manual, "take_profit": TakeProfit} {
		got, err := ParseReason(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseReason("maybe")
	assert.True(t, errors.Is(err, ErrInvalidReason))
}

func TestRiskReward(t *testing.T) {
	t.Parallel()

	tr, err := New(eurusdBuy(), t0)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, tr.RiskReward(), 1e-6)
}
