package risk

import "math"

// RR is the reward:risk ratio of a plan, 0 when the stop sits on the entry.
func RR(entry, stop, takeProfit float64) float64 {
	risk := math.Abs(entry - stop)
	reward := math.Abs(takeProfit - entry)
	if risk == 0 {
		return 0
	}
	return reward / risk
}

// RiskPct expresses an amount as a percentage of capital.
func RiskPct(amount, capital float64) float64 {
	if capital <= 0 {
		return math.Inf(1)
	}
	return amount / capital * 100
}
