package trade

import (
	"github.com/rustyeddy/misterpips/market"
)

// Breakdown carries every intermediate figure of a P&L computation.
type Breakdown struct {
	RiskAmount   float64 `json:"riskAmount"`
	SLDistance   float64 `json:"slDistance"`
	ValuePerPip  float64 `json:"valuePerPip"`
	ExitDistance float64 `json:"exitDistance"`
	Direction    int     `json:"direction"`
	PnL          float64 `json:"pnl"`

	// Degenerate is set when the stop sits on the entry. ValuePerPip is
	// then 1 instead of riskAmount/slDistance.
	Degenerate bool `json:"degenerate"`
}

// Calculate values a position exited at exit. The pip value is derived from
// the account's risk budget and the stop distance, not from the lot size.
func Calculate(s Spec, a Account, exit float64) (Breakdown, error) {
	inst, err := s.Validate()
	if err != nil {
		return Breakdown{}, err
	}
	if err := a.Validate(); err != nil {
		return Breakdown{}, err
	}
	if err := market.Positive("exit", exit); err != nil {
		return Breakdown{}, err
	}
	return calculate(s, inst, a, exit), nil
}

func calculate(s Spec, inst market.Instrument, a Account, exit float64) Breakdown {
	b := Breakdown{RiskAmount: a.RiskAmount()}

	b.SLDistance = market.PipDistance(s.Entry, s.StopLoss, inst)
	if b.SLDistance > 0 {
		b.ValuePerPip = b.RiskAmount / b.SLDistance
	} else {
		b.ValuePerPip = 1
		b.Degenerate = true
	}

	b.ExitDistance = market.PipDistance(exit, s.Entry, inst)

	b.Direction = -1
	switch s.Direction {
	case market.Buy:
		if exit > s.Entry {
			b.Direction = 1
		}
	case market.Sell:
		if exit < s.Entry {
			b.Direction = 1
		}
	}

	if b.ExitDistance == 0 {
		// avoid -0 for a flat exit
		b.PnL = 0
		return b
	}
	b.PnL = b.ExitDistance * b.ValuePerPip * float64(b.Direction)
	return b
}

// PnL returns the signed USD result of exiting s at exit.
func PnL(s Spec, a Account, exit float64) (float64, error) {
	b, err := Calculate(s, a, exit)
	if err != nil {
		return 0, err
	}
	return b.PnL, nil
}
