package journal

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/misterpips/market"
	"github.com/rustyeddy/misterpips/trade"
)

func TestFormatTradeOrg(t *testing.T) {
	t.Parallel()

	closeT := time.Date(2024, 3, 15, 14, 20, 30, 0, time.UTC)
	rec := sampleRecord("01HV5ZT3K8M2N4P6Q8R0S2T4V6", "alice", closeT, 40)

	out := FormatTradeOrg(rec)
	lines := strings.Split(out, "\n")

	assert.True(t, strings.HasPrefix(lines[0], "** BUY EUR/USD +40.00 ("))
	assert.True(t, strings.HasSuffix(lines[0], "R0S2T4V6)"))
	assert.Contains(t, out, ":ID: 01HV5ZT3K8M2N4P6Q8R0S2T4V6\n")
	assert.Contains(t, out, ":USER: alice\n")
	assert.Contains(t, out, ":STOP_LOSS: 1.09900\n")
	assert.Contains(t, out, ":CLOSE_TIME: 2024-03-15T14:20:30Z\n")
	assert.Contains(t, out, ":REALIZED_PL: 40.00\n")
	assert.Contains(t, out, ":REASON: TAKE_PROFIT\n")
	assert.Contains(t, out, "*** Review\n")
}

func TestFormatTradesOrg(t *testing.T) {
	t.Parallel()

	now := time.Now()
	out := FormatTradesOrg([]TradeRecord{sampleRecord("a", "u", now, 1), sampleRecord("b", "u", now, -1)})
	assert.Equal(t, 2, strings.Count(out, ":PROPERTIES:"))
	assert.Contains(t, out, "-1.00 (b)")
	assert.Empty(t, FormatTradesOrg(nil))
}

func TestFromTrade(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	tr, err := trade.New(trade.Spec{
		Instrument: "EUR/USD", Direction: market.Buy,
		Entry: 1.1, StopLoss: 1.099, TakeProfit: 1.102, LotSize: 0.2,
	}, at)
	require.NoError(t, err)

	_, err = FromTrade("alice", tr)
	assert.True(t, errors.Is(err, trade.ErrTradeNotOpen))

	_, err = tr.Close(trade.TakeProfit, trade.Account{Capital: 1000, RiskPerTrade: 2}, 0, at.Add(time.Hour))
	require.NoError(t, err)

	rec, err := FromTrade("alice", tr)
	require.NoError(t, err)
	assert.Equal(t, tr.ID, rec.TradeID)
	assert.Equal(t, "alice", rec.User)
	assert.Equal(t, "BUY", rec.Direction)
	assert.Equal(t, 1.102, rec.ExitPrice)
	assert.InDelta(t, 40.0, rec.RealizedPL, 1e-6)
	assert.Equal(t, "TAKE_PROFIT", rec.Reason)
	assert.True(t, at.Equal(rec.OpenTime))
}

func TestWriteTradesCSV(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	open, err := trade.New(trade.Spec{
		Instrument: "USD/JPY", Direction: market.Sell,
		Entry: 150, StopLoss: 150.1, TakeProfit: 149.8, LotSize: 0.5,
	}, at)
	require.NoError(t, err)
	closed, err := trade.New(trade.Spec{
		Instrument: "EUR/USD", Direction: market.Buy,
		Entry: 1.1, StopLoss: 1.099, TakeProfit: 1.102, LotSize: 0.1,
	}, at.Add(24*time.Hour))
	require.NoError(t, err)
	_, err = closed.Close(trade.StopLoss, trade.Account{Capital: 1000, RiskPerTrade: 2}, 0, at.Add(25*time.Hour))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteTradesCSV(&buf, []trade.Trade{*open, *closed}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, ExportHeader, rows[0])
	assert.Equal(t, []string{"2025-01-06", "USD/JPY", "SELL", "150", "", "150.1", "149.8", "0.5", "", "OPEN"}, rows[1])
	assert.Equal(t, []string{"2025-01-07", "EUR/USD", "BUY", "1.1", "1.099", "1.099", "1.102", "0.1", "-20.00", "CLOSED_SL"}, rows[2])
}
