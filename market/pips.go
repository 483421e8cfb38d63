package market

import "math"

// PipDistance returns the absolute distance between two prices in pips on
// the P&L scale. It does not validate its inputs: NaN in, NaN out.
func PipDistance(a, b float64, inst Instrument) float64 {
	return math.Abs(a-b) * inst.PipsPerUnit()
}

// PipDistanceSymbol is PipDistance for a symbol looked up in Instruments.
func PipDistanceSymbol(a, b float64, symbol string) (float64, error) {
	inst, err := Lookup(symbol)
	if err != nil {
		return 0, err
	}
	return PipDistance(a, b, inst), nil
}

// PlannerPipDistance is PipDistance on the planning-tool scale.
func PlannerPipDistance(a, b float64, inst Instrument) float64 {
	return math.Abs(a-b) * inst.PlannerPipsPerUnit()
}
