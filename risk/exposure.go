package risk

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rustyeddy/misterpips/market"
)

var ErrInvalidCorrelation = errors.New("invalid correlation")

// Correlation buckets how much open trades move together.
type Correlation string

const (
	LowCorrelation    Correlation = "low"
	MediumCorrelation Correlation = "medium"
	HighCorrelation   Correlation = "high"
)

func ParseCorrelation(s string) (Correlation, error) {
	switch c := Correlation(strings.ToLower(strings.TrimSpace(s))); c {
	case LowCorrelation, MediumCorrelation, HighCorrelation:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCorrelation, s)
}

// Multiplier scales aggregate risk for correlated exposure.
func (c Correlation) Multiplier() float64 {
	switch c {
	case MediumCorrelation:
		return 1.2
	case HighCorrelation:
		return 1.5
	}
	return 1.0
}

type Level string

const (
	LevelLow      Level = "Low"
	LevelModerate Level = "Moderate"
	LevelHigh     Level = "High"
)

// Thresholds on adjusted risk, percent of capital.
const (
	HighRiskAbove     = 10.0
	ModerateRiskAbove = 5.0
)

func ClassifyRisk(adjustedPct float64) Level {
	switch {
	case adjustedPct > HighRiskAbove:
		return LevelHigh
	case adjustedPct > ModerateRiskAbove:
		return LevelModerate
	}
	return LevelLow
}

func (l Level) Recommendation() string {
	switch l {
	case LevelHigh:
		return "reduce your positions"
	case LevelModerate:
		return "monitor your positions"
	}
	return "acceptable risk"
}

type Exposure struct {
	OpenTrades     int         `json:"openTrades"`
	AvgRiskPct     float64     `json:"avgRiskPct"`
	Correlation    Correlation `json:"correlation"`
	TotalRiskPct   float64     `json:"totalRiskPct"`
	Multiplier     float64     `json:"multiplier"`
	AdjustedPct    float64     `json:"adjustedPct"`
	Amount         float64     `json:"amount"`
	Level          Level       `json:"level"`
	Recommendation string      `json:"recommendation"`
}

// AggregateRisk sums the risk of the open trades and scales it by the
// correlation multiplier.
func AggregateRisk(capital float64, openTrades int, avgRiskPct float64, corr Correlation) (Exposure, error) {
	if err := market.Positive("capital", capital); err != nil {
		return Exposure{}, err
	}
	if openTrades < 0 {
		return Exposure{}, &market.InputError{Field: "open_trades", Value: float64(openTrades)}
	}
	if math.IsNaN(avgRiskPct) || math.IsInf(avgRiskPct, 0) || avgRiskPct < 0 {
		return Exposure{}, &market.InputError{Field: "avg_risk_pct", Value: avgRiskPct}
	}
	if _, err := ParseCorrelation(string(corr)); err != nil {
		return Exposure{}, err
	}

	e := Exposure{
		OpenTrades:   openTrades,
		AvgRiskPct:   avgRiskPct,
		Correlation:  corr,
		TotalRiskPct: float64(openTrades) * avgRiskPct,
		Multiplier:   corr.Multiplier(),
	}
	e.AdjustedPct = e.TotalRiskPct * e.Multiplier
	e.Amount = capital * (e.AdjustedPct / 100)
	e.Level = ClassifyRisk(e.AdjustedPct)
	e.Recommendation = e.Level.Recommendation()
	return e, nil
}
