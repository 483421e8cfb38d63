package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/misterpips/market"
	"github.com/rustyeddy/misterpips/trade"
)

func TestMarkToMarket(t *testing.T) {
	t.Parallel()

	svc, j := newService(t)
	ctx := context.Background()

	hit, _, err := svc.OpenTrade(ctx, "ivy", eurusd())
	require.NoError(t, err)
	jpy := trade.Spec{Instrument: "USD/JPY", Direction: market.Sell, Entry: 150, StopLoss: 151, TakeProfit: 148, LotSize: 1}
	held, _, err := svc.OpenTrade(ctx, "ivy", jpy)
	require.NoError(t, err)

	board := market.NewQuoteBoard()

	// no quotes: nothing valued, nothing closed
	m, err := svc.MarkToMarket(ctx, "ivy", board)
	require.NoError(t, err)
	assert.Empty(t, m.Closed)
	require.Len(t, m.Open, 2)
	assert.Nil(t, m.Open[0].Quote)

	require.NoError(t, board.Set(market.Quote{Instrument: "EURUSD", Bid: 1.1025, Ask: 1.1027}))
	require.NoError(t, board.Set(market.Quote{Instrument: "USDJPY", Bid: 149.48, Ask: 149.50}))

	m, err = svc.MarkToMarket(ctx, "ivy", board)
	require.NoError(t, err)
	require.Len(t, m.Closed, 1)
	assert.Equal(t, hit.ID, m.Closed[0].ID)
	assert.Equal(t, trade.ClosedTP, m.Closed[0].Status)
	assert.InDelta(t, 1.102, m.Closed[0].Outcome.ExitPrice, 1e-12, "closes at the target, not the quote")
	assert.InDelta(t, 40.0, m.Closed[0].Outcome.PnL, 1e-6)

	require.Len(t, m.Open, 1)
	assert.Equal(t, held.ID, m.Open[0].Trade.ID)
	// short marks at the ask: 50 pips at $0.20/pip
	assert.InDelta(t, 10.0, m.Open[0].Unrealized, 1e-6)
	assert.InDelta(t, 10.0, m.Unrealized, 1e-6)
	assert.InDelta(t, 1050.0, m.Equity, 1e-6)

	require.Len(t, j.trades, 1)
	assert.Equal(t, hit.ID, j.trades[0].TradeID)

	d, err := svc.Load(ctx, "ivy")
	require.NoError(t, err)
	assert.Len(t, d.OpenTrades(), 1)

	// a second mark with the same quotes closes nothing more
	m, err = svc.MarkToMarket(ctx, "ivy", board)
	require.NoError(t, err)
	assert.Empty(t, m.Closed)
	assert.Len(t, j.trades, 1)
}
