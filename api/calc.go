package api

import (
	"github.com/gin-gonic/gin"

	"github.com/rustyeddy/misterpips/market"
	"github.com/rustyeddy/misterpips/risk"
	"github.com/rustyeddy/misterpips/trade"
)

type instrumentView struct {
	Symbol     string  `json:"symbol"`
	Base       string  `json:"base"`
	Quote      string  `json:"quote"`
	Class      string  `json:"class"`
	PipSize    float64 `json:"pipSize"`
	MarginRate float64 `json:"marginRate"`
}

// GET /api/v1/instruments
func listInstruments(c *gin.Context) {
	out := make([]instrumentView, 0, len(market.Instruments))
	for _, sym := range market.Symbols() {
		inst, _ := market.Lookup(sym)
		out = append(out, instrumentView{
			Symbol:     inst.Symbol,
			Base:       inst.BaseCurrency,
			Quote:      inst.QuoteCurrency,
			Class:      inst.Class.String(),
			PipSize:    inst.PipSize(),
			MarginRate: inst.MarginRate,
		})
	}
	success(c, out)
}

type pnlRequest struct {
	trade.Spec
	trade.Account
	Exit float64 `json:"exit"`
}

// POST /api/v1/calc/pnl
func calcPnL(c *gin.Context) {
	var req pnlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	b, err := trade.Calculate(req.Spec, req.Account, req.Exit)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, b)
}

// POST /api/v1/calc/position
func calcPosition(c *gin.Context) {
	var req risk.SizingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	out, err := risk.SizePosition(req)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, out)
}

// POST /api/v1/calc/pip-value
func calcPipValue(c *gin.Context) {
	var req struct {
		Instrument string  `json:"instrument"`
		Lots       float64 `json:"lots"`
		Pips       float64 `json:"pips"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	out, err := risk.PipValue(req.Lots, req.Pips, req.Instrument)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, out)
}

// POST /api/v1/calc/risk
func calcRisk(c *gin.Context) {
	var req struct {
		Capital     float64 `json:"capital"`
		OpenTrades  int     `json:"openTrades"`
		AvgRiskPct  float64 `json:"avgRiskPct"`
		Correlation string  `json:"correlation"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	corr, err := risk.ParseCorrelation(req.Correlation)
	if err != nil {
		fail(c, err)
		return
	}
	out, err := risk.AggregateRisk(req.Capital, req.OpenTrades, req.AvgRiskPct, corr)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, out)
}

// POST /api/v1/calc/swap
func calcSwap(c *gin.Context) {
	var req struct {
		Instrument string           `json:"instrument"`
		Direction  market.Direction `json:"direction"`
		Lots       float64          `json:"lots"`
		Nights     int              `json:"nights"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	out, err := risk.EstimateSwap(req.Instrument, req.Direction, req.Lots, req.Nights)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, out)
}
