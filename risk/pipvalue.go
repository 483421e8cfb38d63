package risk

import (
	"math"

	"github.com/rustyeddy/misterpips/market"
)

type PipValuation struct {
	Instrument  string  `json:"instrument"`
	Lots        float64 `json:"lots"`
	Pips        float64 `json:"pips"`
	PerPip      float64 `json:"perPip"`
	Total       float64 `json:"total"`
	PriceMove   float64 `json:"priceMove"`
	PercentMove float64 `json:"percentMove"`
}

// PipValue values pips on a position of lots. Prices are not supplied, so
// JPY-quoted and cross instruments use the instrument's reference rate.
func PipValue(lots, pips float64, symbol string) (PipValuation, error) {
	inst, err := market.Lookup(symbol)
	if err != nil {
		return PipValuation{}, err
	}
	if err := market.Positive("lots", lots); err != nil {
		return PipValuation{}, err
	}
	if err := market.Positive("pips", pips); err != nil {
		return PipValuation{}, err
	}

	perPip := inst.PipValuePerLot(inst.ReferenceRate) * lots
	if math.IsInf(perPip, 0) || math.IsNaN(perPip) {
		return PipValuation{}, &market.InputError{Field: "reference_rate", Value: inst.ReferenceRate}
	}

	return PipValuation{
		Instrument:  inst.Symbol,
		Lots:        lots,
		Pips:        pips,
		PerPip:      perPip,
		Total:       perPip * pips,
		PriceMove:   pips / inst.PlannerPipsPerUnit(),
		PercentMove: pips / 10000 * 100,
	}, nil
}
