package trade

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/misterpips/market"
)

func TestTriggered(t *testing.T) {
	t.Parallel()

	long := Spec{Instrument: "EUR/USD", Direction: market.Buy, Entry: 1.1000, StopLoss: 1.0990, TakeProfit: 1.1020, LotSize: 0.1}
	short := Spec{Instrument: "USD/JPY", Direction: market.Sell, Entry: 150.00, StopLoss: 151.00, TakeProfit: 148.00, LotSize: 1}

	tests := []struct {
		name   string
		spec   Spec
		quote  market.Quote
		reason Reason
		hit    bool
	}{
		{"long_between", long, market.Quote{Instrument: "EURUSD", Bid: 1.1005, Ask: 1.1007}, "", false},
		{"long_tp_on_bid", long, market.Quote{Instrument: "EURUSD", Bid: 1.1020, Ask: 1.1022}, TakeProfit, true},
		{"long_ask_at_tp_not_enough", long, market.Quote{Instrument: "EURUSD", Bid: 1.1018, Ask: 1.1020}, "", false},
		{"long_sl", long, market.Quote{Instrument: "EURUSD", Bid: 1.0985, Ask: 1.0987}, StopLoss, true},
		{"short_tp_on_ask", short, market.Quote{Instrument: "USD/JPY", Bid: 147.97, Ask: 148.00}, TakeProfit, true},
		{"short_sl", short, market.Quote{Instrument: "USD/JPY", Bid: 150.99, Ask: 151.01}, StopLoss, true},
		{"other_pair", long, market.Quote{Instrument: "GBPUSD", Bid: 2, Ask: 2}, "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tr, err := New(tt.spec, time.Now())
			require.NoError(t, err)
			r, hit := tr.Triggered(tt.quote)
			assert.Equal(t, tt.hit, hit)
			assert.Equal(t, tt.reason, r)
		})
	}
}

func TestTriggeredIgnoresClosedTrades(t *testing.T) {
	t.Parallel()

	tr, err := New(Spec{Instrument: "EUR/USD", Direction: market.Buy, Entry: 1.1, StopLoss: 1.099, TakeProfit: 1.102, LotSize: 0.1}, time.Now())
	require.NoError(t, err)
	require.NoError(t, tr.Delete())
	_, hit := tr.Triggered(market.Quote{Instrument: "EURUSD", Bid: 1.2, Ask: 1.2})
	assert.False(t, hit)
}

func TestUnrealized(t *testing.T) {
	t.Parallel()

	acct := Account{Capital: 1000, RiskPerTrade: 2}
	tr, err := New(Spec{Instrument: "EUR/USD", Direction: market.Buy, Entry: 1.1, StopLoss: 1.099, TakeProfit: 1.102, LotSize: 0.1}, time.Now())
	require.NoError(t, err)

	// long marks at the bid: 5 pips at $2/pip
	pnl, err := tr.Unrealized(acct, market.Quote{Instrument: "EUR/USD", Bid: 1.1005, Ask: 1.1008})
	require.NoError(t, err)
	assert.InDelta(t, 10.0, pnl, 1e-6)

	_, err = tr.Unrealized(acct, market.Quote{Instrument: "USD/JPY", Bid: 150, Ask: 150})
	assert.Error(t, err)

	_, err = tr.Close(TakeProfit, acct, 0, time.Now())
	require.NoError(t, err)
	_, err = tr.Unrealized(acct, market.Quote{Instrument: "EUR/USD", Bid: 1.1, Ask: 1.1})
	assert.True(t, errors.Is(err, ErrTradeNotOpen))
}
