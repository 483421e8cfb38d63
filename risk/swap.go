package risk

import (
	"github.com/rustyeddy/misterpips/market"
)

// SwapRate is an annual financing rate in percent for each side.
type SwapRate struct {
	Long  float64
	Short float64
}

// SwapRates is keyed by market.Key. Known instruments missing here carry
// no swap.
var SwapRates = map[string]SwapRate{
	"EURUSD": {Long: -8.5, Short: 4.2},
	"GBPUSD": {Long: -6.8, Short: 2.3},
	"USDJPY": {Long: 15.2, Short: -18.6},
	"AUDUSD": {Long: -4.3, Short: 1.1},
	"USDCAD": {Long: 2.8, Short: -5.4},
}

type SwapEstimate struct {
	Instrument string           `json:"instrument"`
	Direction  market.Direction `json:"direction"`
	Lots       float64          `json:"lots"`
	Nights     int              `json:"nights"`
	AnnualPct  float64          `json:"annualPct"`
	Nightly    float64          `json:"nightly"`
	Total      float64          `json:"total"`
	ImpactPct  float64          `json:"impactPct"`
}

// EstimateSwap projects the carrying cost (negative) or credit of holding
// lots for nights.
func EstimateSwap(symbol string, dir market.Direction, lots float64, nights int) (SwapEstimate, error) {
	inst, err := market.Lookup(symbol)
	if err != nil {
		return SwapEstimate{}, err
	}
	if !dir.Valid() {
		return SwapEstimate{}, market.ErrInvalidDirection
	}
	if err := market.Positive("lots", lots); err != nil {
		return SwapEstimate{}, err
	}
	if nights < 0 {
		return SwapEstimate{}, &market.InputError{Field: "nights", Value: float64(nights)}
	}

	rate := SwapRates[market.Key(inst.Symbol)]
	annual := rate.Long
	if dir == market.Sell {
		annual = rate.Short
	}

	notional := lots * market.StandardLot
	e := SwapEstimate{
		Instrument: inst.Symbol,
		Direction:  dir,
		Lots:       lots,
		Nights:     nights,
		AnnualPct:  annual,
		Nightly:    notional * annual / 365 / 100,
	}
	e.Total = e.Nightly * float64(nights)
	e.ImpactPct = e.Total / notional * 100
	return e, nil
}
