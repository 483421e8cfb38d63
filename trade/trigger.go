package trade

import (
	"fmt"

	"github.com/rustyeddy/misterpips/market"
)

// exitPrice is the side of q a position closes against: longs sell at the
// bid, shorts buy back at the ask.
func (t *Trade) exitPrice(q market.Quote) float64 {
	if t.Direction == market.Sell {
		return q.Ask
	}
	return q.Bid
}

// Triggered reports whether q reaches the stop-loss or take-profit of an
// open trade. The stop wins when a gap crosses both.
func (t *Trade) Triggered(q market.Quote) (Reason, bool) {
	if t.Status != Open || market.Key(q.Instrument) != market.Key(t.Instrument) {
		return "", false
	}
	px := t.exitPrice(q)
	if t.Direction == market.Sell {
		switch {
		case px >= t.StopLoss:
			return StopLoss, true
		case px <= t.TakeProfit:
			return TakeProfit, true
		}
		return "", false
	}
	switch {
	case px <= t.StopLoss:
		return StopLoss, true
	case px >= t.TakeProfit:
		return TakeProfit, true
	}
	return "", false
}

// Unrealized values an open trade as if it were closed manually at q.
func (t *Trade) Unrealized(a Account, q market.Quote) (float64, error) {
	if t.Status != Open {
		return 0, fmt.Errorf("%w: %s is %s", ErrTradeNotOpen, t.ID, t.Status)
	}
	if market.Key(q.Instrument) != market.Key(t.Instrument) {
		return 0, fmt.Errorf("quote for %s cannot value %s", q.Instrument, t.Instrument)
	}
	return PnL(t.Spec, a, t.exitPrice(q))
}
