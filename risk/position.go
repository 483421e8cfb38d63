package risk

import (
	"github.com/rustyeddy/misterpips/market"
)

// SizingInput is what the position sizer needs. RiskPct is in percent.
type SizingInput struct {
	Capital    float64 `json:"capital"`
	RiskPct    float64 `json:"riskPct"`
	EntryPrice float64 `json:"entryPrice"`
	StopPrice  float64 `json:"stopPrice"`
	Instrument string  `json:"instrument"`
}

// Sizing is the sizer's answer plus the figures behind it.
type Sizing struct {
	Instrument     string  `json:"instrument"`
	Class          string  `json:"class"`
	RiskAmount     float64 `json:"riskAmount"`
	StopPips       float64 `json:"stopPips"`
	PipValuePerLot float64 `json:"pipValuePerLot"`
	Lots           float64 `json:"lots"`
	PipValue       float64 `json:"pipValue"` // USD per pip for Lots
	Margin         float64 `json:"margin"`
	Leverage       float64 `json:"leverage"`
}

func (in SizingInput) validate() (market.Instrument, error) {
	inst, err := market.Lookup(in.Instrument)
	if err != nil {
		return market.Instrument{}, err
	}
	if err := market.Positive("capital", in.Capital); err != nil {
		return market.Instrument{}, err
	}
	if err := market.Positive("risk_pct", in.RiskPct); err != nil {
		return market.Instrument{}, err
	}
	if in.RiskPct > 100 {
		return market.Instrument{}, &market.InputError{Field: "risk_pct", Value: in.RiskPct}
	}
	if err := market.Positive("entry", in.EntryPrice); err != nil {
		return market.Instrument{}, err
	}
	if err := market.Positive("stop", in.StopPrice); err != nil {
		return market.Instrument{}, err
	}
	return inst, nil
}

// SizePosition returns the lot size that loses exactly RiskPct of Capital
// if the stop is hit. Distances use the planner pip scale, so gold is
// counted in 0.1 pips here.
func SizePosition(in SizingInput) (Sizing, error) {
	inst, err := in.validate()
	if err != nil {
		return Sizing{}, err
	}

	stopPips := market.PlannerPipDistance(in.EntryPrice, in.StopPrice, inst)
	if stopPips == 0 {
		return Sizing{}, market.ErrDegenerateStopLoss
	}

	out := Sizing{
		Instrument:     inst.Symbol,
		Class:          inst.Class.String(),
		RiskAmount:     in.Capital * (in.RiskPct / 100),
		StopPips:       stopPips,
		PipValuePerLot: inst.PipValuePerLot(in.EntryPrice),
	}
	out.Lots = out.RiskAmount / (stopPips * out.PipValuePerLot)
	out.PipValue = out.PipValuePerLot * out.Lots
	out.Margin = out.Lots * market.StandardLot * in.EntryPrice * inst.MarginRate
	out.Leverage = in.Capital / out.Margin
	return out, nil
}
