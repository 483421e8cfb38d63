package risk

import (
	"fmt"
	"strings"
)

type Violation struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

type Decision struct {
	Allowed    bool        `json:"allowed"`
	Violations []Violation `json:"violations,omitempty"`

	PlannedRiskUSD float64 `json:"plannedRiskUsd"`
	PlannedRiskPct float64 `json:"plannedRiskPct"`
	PlannedRR      float64 `json:"plannedRr"`
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

// Codes joins the violation codes for logging.
func (d Decision) Codes() string {
	codes := make([]string, len(d.Violations))
	for i, v := range d.Violations {
		codes[i] = v.Code
	}
	return strings.Join(codes, ",")
}

// Evaluate checks intent against p. A zero limit in p disables that check.
func Evaluate(p Policy, intent Intent, book Book) Decision {
	d := Decision{Allowed: true}

	if intent.Stop == 0 || intent.Entry == 0 {
		d.add("NO_STOP_OR_ENTRY", "entry/stop must be set")
		return d
	}

	d.PlannedRiskUSD = book.Capital * intent.RiskPct / 100
	d.PlannedRiskPct = intent.RiskPct
	d.PlannedRR = RR(intent.Entry, intent.Stop, intent.TakeProfit)

	if p.MaxRiskPct > 0 && d.PlannedRiskPct > p.MaxRiskPct {
		d.add("RISK_TOO_HIGH",
			fmt.Sprintf("planned risk %.2f%% exceeds max %.2f%%", d.PlannedRiskPct, p.MaxRiskPct))
	}
	if p.MinRR > 0 && d.PlannedRR < p.MinRR {
		d.add("RR_TOO_LOW",
			fmt.Sprintf("RR %.2f below minimum %.2f", d.PlannedRR, p.MinRR))
	}
	if p.MaxOpenTrades > 0 && book.OpenTrades >= p.MaxOpenTrades {
		d.add("TOO_MANY_OPEN_TRADES",
			fmt.Sprintf("open trades %d >= max %d", book.OpenTrades, p.MaxOpenTrades))
	}
	if p.MaxDailyLossPct > 0 {
		limit := -p.MaxDailyLossPct / 100 * book.Capital
		if book.DayRealized <= limit {
			d.add("DAILY_LOSS_LIMIT",
				fmt.Sprintf("day realized %.2f <= limit %.2f", book.DayRealized, limit))
		}
	}

	return d
}
