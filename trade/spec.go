package trade

import (
	"fmt"

	"github.com/rustyeddy/misterpips/market"
)

// Spec describes a trade as it is opened. It does not change afterwards.
type Spec struct {
	Instrument string           `json:"instrument" yaml:"instrument"`
	Direction  market.Direction `json:"direction" yaml:"direction"`
	Entry      float64          `json:"entry" yaml:"entry"`
	StopLoss   float64          `json:"stopLoss" yaml:"stop_loss"`
	TakeProfit float64          `json:"takeProfit" yaml:"take_profit"`
	LotSize    float64          `json:"lotSize" yaml:"lot_size"`
}

// Validate checks every field and returns the resolved instrument.
func (s Spec) Validate() (market.Instrument, error) {
	inst, err := market.Lookup(s.Instrument)
	if err != nil {
		return market.Instrument{}, err
	}
	if !s.Direction.Valid() {
		return market.Instrument{}, fmt.Errorf("%w: %q", market.ErrInvalidDirection, s.Direction)
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"entry", s.Entry},
		{"stop_loss", s.StopLoss},
		{"take_profit", s.TakeProfit},
		{"lot_size", s.LotSize},
	} {
		if err := market.Positive(f.name, f.v); err != nil {
			return market.Instrument{}, err
		}
	}
	return inst, nil
}

// Account is the equity baseline and risk budget used to value pips.
type Account struct {
	Capital      float64 `json:"capital" yaml:"capital"`
	RiskPerTrade float64 `json:"riskPerTrade" yaml:"risk_per_trade"` // percent, (0, 100]
}

func (a Account) Validate() error {
	if err := market.Positive("capital", a.Capital); err != nil {
		return err
	}
	if err := market.Positive("risk_per_trade", a.RiskPerTrade); err != nil {
		return err
	}
	if a.RiskPerTrade > 100 {
		return &market.InputError{Field: "risk_per_trade", Value: a.RiskPerTrade}
	}
	return nil
}

// RiskAmount is the USD lost when a trade hits its stop.
func (a Account) RiskAmount() float64 {
	return a.Capital * (a.RiskPerTrade / 100)
}
