package dashboard

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/misterpips/trade"
)

var hundred = decimal.NewFromInt(100)

// PlanProgress compares realized P&L over a period with its target.
type PlanProgress struct {
	Period    string          `json:"period"`
	TargetPct float64         `json:"targetPct"`
	Target    decimal.Decimal `json:"target"`
	PnL       decimal.Decimal `json:"pnl"`
	Progress  float64         `json:"progress"` // percent, capped at 100
}

type Stats struct {
	TotalTrades      int             `json:"totalTrades"`
	OpenTrades       int             `json:"openTrades"`
	ClosedTrades     int             `json:"closedTrades"`
	Wins             int             `json:"wins"`
	Losses           int             `json:"losses"`
	TotalPnL         decimal.Decimal `json:"totalPnl"`
	WinRate          float64         `json:"winRate"`
	RecentWinRate    float64         `json:"recentWinRate"`
	InitialCapital   decimal.Decimal `json:"initialCapital"`
	CurrentCapital   decimal.Decimal `json:"currentCapital"`
	CapitalChangePct float64         `json:"capitalChangePct"`
	Plan             []PlanProgress  `json:"plan"`
}

// ComputeStats summarizes d as of now. Money is summed in decimal and
// rounded to cents. The recent win rate covers trades opened in the last
// seven days.
func ComputeStats(d Dashboard, now time.Time) Stats {
	var s Stats
	total := decimal.Zero
	weekAgo := now.AddDate(0, 0, -7)
	recent, recentWins := 0, 0

	for _, t := range d.Trades {
		s.TotalTrades++
		if t.Status == trade.Open {
			s.OpenTrades++
			continue
		}
		if !t.Status.Closed() {
			continue
		}
		s.ClosedTrades++
		pnl := t.PnL()
		total = total.Add(decimal.NewFromFloat(pnl))
		switch {
		case pnl > 0:
			s.Wins++
		case pnl < 0:
			s.Losses++
		}
		if !t.OpenedAt.Before(weekAgo) {
			recent++
			if pnl > 0 {
				recentWins++
			}
		}
	}

	s.TotalPnL = total.Round(2)
	s.WinRate = percent(s.Wins, s.ClosedTrades)
	s.RecentWinRate = percent(recentWins, recent)

	initial := decimal.NewFromFloat(d.InitialCapital())
	s.InitialCapital = initial.Round(2)
	s.CurrentCapital = initial.Add(total).Round(2)
	if initial.IsPositive() {
		s.CapitalChangePct = total.Div(initial).Mul(hundred).Round(1).InexactFloat64()
	}

	s.Plan = planProgress(d, now)
	return s
}

func percent(n, of int) float64 {
	if of == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(n)).Div(decimal.NewFromInt(int64(of))).Mul(hundred).Round(1).InexactFloat64()
}

// planProgress measures each target against P&L closed in its own window:
// today, the last 7 days, this month and this year, in now's location.
func planProgress(d Dashboard, now time.Time) []PlanProgress {
	y, m, day := now.Date()
	loc := now.Location()
	windows := []struct {
		period string
		pct    float64
		start  time.Time
	}{
		{"daily", d.Settings.DailyTarget, time.Date(y, m, day, 0, 0, 0, 0, loc)},
		{"weekly", d.Settings.WeeklyTarget, now.AddDate(0, 0, -7)},
		{"monthly", d.Settings.MonthlyTarget, time.Date(y, m, 1, 0, 0, 0, 0, loc)},
		{"yearly", d.Settings.YearlyTarget, time.Date(y, 1, 1, 0, 0, 0, 0, loc)},
	}

	capital := decimal.NewFromFloat(d.Settings.Capital)
	out := make([]PlanProgress, 0, len(windows))
	for _, w := range windows {
		pnl := realizedSince(d.Trades, w.start, now)
		target := capital.Mul(decimal.NewFromFloat(w.pct)).Div(hundred)

		p := PlanProgress{
			Period:    w.period,
			TargetPct: w.pct,
			Target:    target.Round(2),
			PnL:       pnl.Round(2),
		}
		if target.IsPositive() {
			prog := pnl.Div(target).Mul(hundred)
			if prog.GreaterThan(hundred) {
				prog = hundred
			}
			p.Progress = prog.Round(1).InexactFloat64()
		}
		out = append(out, p)
	}
	return out
}

func realizedSince(trades []trade.Trade, start, end time.Time) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range trades {
		if !t.Status.Closed() || t.Outcome == nil {
			continue
		}
		at := t.Outcome.ClosedAt
		if at.Before(start) || at.After(end) {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(t.Outcome.PnL))
	}
	return sum
}

// DayRealized is today's closed P&L, used by the daily loss check.
func DayRealized(d Dashboard, now time.Time) float64 {
	y, m, day := now.Date()
	start := time.Date(y, m, day, 0, 0, 0, 0, now.Location())
	return realizedSince(d.Trades, start, now).InexactFloat64()
}
