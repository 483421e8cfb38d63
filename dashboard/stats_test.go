package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/misterpips/trade"
)

func closedTrade(t *testing.T, opened, closed time.Time, reason trade.Reason) trade.Trade {
	t.Helper()
	tr, err := trade.New(eurusd(), opened)
	require.NoError(t, err)
	_, err = tr.Close(reason, trade.Account{Capital: 1000, RiskPerTrade: 2}, 0, closed)
	require.NoError(t, err)
	return *tr
}

func TestComputeStats(t *testing.T) {
	t.Parallel()

	d := New("alice")
	open, err := trade.New(eurusd(), now)
	require.NoError(t, err)

	d.Trades = []trade.Trade{
		closedTrade(t, now.Add(-2*time.Hour), now.Add(-time.Hour), trade.TakeProfit),     // +40 today
		closedTrade(t, now.AddDate(0, 0, -3), now.AddDate(0, 0, -3), trade.StopLoss),     // -20 this week
		closedTrade(t, now.AddDate(0, 0, -10), now.AddDate(0, 0, -10), trade.TakeProfit), // +40 this month, not recent
		closedTrade(t, now.AddDate(0, -2, 0), now.AddDate(0, -2, 0), trade.BreakEven),    // 0 this year
		*open,
	}

	s := ComputeStats(d, now)
	assert.Equal(t, 5, s.TotalTrades)
	assert.Equal(t, 1, s.OpenTrades)
	assert.Equal(t, 4, s.ClosedTrades)
	assert.Equal(t, 2, s.Wins)
	assert.Equal(t, 1, s.Losses)
	assert.Equal(t, "60", s.TotalPnL.String())
	assert.Equal(t, 50.0, s.WinRate)
	assert.Equal(t, 50.0, s.RecentWinRate)
	assert.Equal(t, "1000", s.InitialCapital.String())
	assert.Equal(t, "1060", s.CurrentCapital.String())
	assert.Equal(t, 6.0, s.CapitalChangePct)

	require.Len(t, s.Plan, 4)
	byPeriod := map[string]PlanProgress{}
	for _, p := range s.Plan {
		byPeriod[p.Period] = p
	}

	// daily: +40 against a $10 target is capped
	assert.Equal(t, "10", byPeriod["daily"].Target.String())
	assert.Equal(t, "40", byPeriod["daily"].PnL.String())
	assert.Equal(t, 100.0, byPeriod["daily"].Progress)

	// weekly: +40 -20 against $30
	assert.Equal(t, "20", byPeriod["weekly"].PnL.String())
	assert.Equal(t, 66.7, byPeriod["weekly"].Progress)

	// monthly: +60 against $150
	assert.Equal(t, "60", byPeriod["monthly"].PnL.String())
	assert.Equal(t, 40.0, byPeriod["monthly"].Progress)

	// yearly: +60 against $2000
	assert.Equal(t, 3.0, byPeriod["yearly"].Progress)
}

func TestComputeStatsEmpty(t *testing.T) {
	t.Parallel()

	s := ComputeStats(New("nobody"), now)
	assert.Zero(t, s.TotalTrades)
	assert.Zero(t, s.WinRate)
	assert.True(t, s.TotalPnL.IsZero())
	assert.Equal(t, "1000", s.CurrentCapital.String())
	for _, p := range s.Plan {
		assert.Zero(t, p.Progress, p.Period)
	}
}

func TestComputeStatsUsesCurrentAccountCapital(t *testing.T) {
	t.Parallel()

	d := New("alice")
	d.CurrentAccount = "compte2"
	d.Trades = []trade.Trade{closedTrade(t, now, now, trade.StopLoss)}

	s := ComputeStats(d, now)
	assert.Equal(t, "500", s.InitialCapital.String())
	assert.Equal(t, "480", s.CurrentCapital.String())
	assert.Equal(t, -4.0, s.CapitalChangePct)
}

func TestDayRealized(t *testing.T) {
	t.Parallel()

	d := New("alice")
	d.Trades = []trade.Trade{
		closedTrade(t, now, now.Add(-time.Hour), trade.StopLoss),
		closedTrade(t, now, now.AddDate(0, 0, -1), trade.StopLoss),
	}
	assert.InDelta(t, -20.0, DayRealized(d, now), 1e-9)
}
