package trade

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/misterpips/market"
	"github.com/rustyeddy/misterpips/pkg/id"
	"github.com/rustyeddy/misterpips/risk"
)

var (
	ErrTradeNotOpen  = errors.New("trade is not open")
	ErrTradeNotFound = errors.New("trade not found")
	ErrInvalidReason = errors.New("invalid closure reason")
)

type Status string

const (
	Open         Status = "OPEN"
	ClosedTP     Status = "CLOSED_TP"
	ClosedSL     Status = "CLOSED_SL"
	ClosedBE     Status = "CLOSED_BE"
	ClosedManual Status = "CLOSED_MANUAL"
	Deleted      Status = "DELETED"
)

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s != Open
}

// Closed reports whether the trade was closed with a recorded outcome.
func (s Status) Closed() bool {
	switch s {
	case ClosedTP, ClosedSL, ClosedBE, ClosedManual:
		return true
	}
	return false
}

type Reason string

const (
	TakeProfit    Reason = "TAKE_PROFIT"
	StopLoss      Reason = "STOP_LOSS"
	BreakEven     Reason = "BREAK_EVEN"
	Manual        Reason = "MANUAL"
	ReasonDeleted Reason = "DELETED"
)

// ParseReason accepts the full names and the tp/sl/be short forms.
func ParseReason(s string) (Reason, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TAKE_PROFIT", "TP":
		return TakeProfit, nil
	case "STOP_LOSS", "SL":
		return StopLoss, nil
	case "BREAK_EVEN", "BE":
		return BreakEven, nil
	case "MANUAL":
		return Manual, nil
	case "DELETED":
		return ReasonDeleted, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidReason, s)
}

func (r Reason) status() (Status, error) {
	switch r {
	case TakeProfit:
		return ClosedTP, nil
	case StopLoss:
		return ClosedSL, nil
	case BreakEven:
		return ClosedBE, nil
	case Manual:
		return ClosedManual, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidReason, r)
}

// Outcome is what a closure records.
type Outcome struct {
	ExitPrice float64   `json:"exitPrice"`
	PnL       float64   `json:"pnl"`
	Reason    Reason    `json:"reason"`
	ClosedAt  time.Time `json:"closedAt"`
}

type Trade struct {
	ID string `json:"id"`
	Spec
	Status   Status    `json:"status"`
	OpenedAt time.Time `json:"openedAt"`
	Outcome  *Outcome  `json:"outcome,omitempty"`
}

// New validates s and returns an OPEN trade.
func New(s Spec, now time.Time) (*Trade, error) {
	inst, err := s.Validate()
	if err != nil {
		return nil, err
	}
	s.Instrument = inst.Symbol
	return &Trade{
		ID:       id.New(),
		Spec:     s,
		Status:   Open,
		OpenedAt: now.UTC(),
	}, nil
}

// Preview computes the outcome of closing t for reason without changing t.
// manualExit is only read for Manual closures.
func (t *Trade) Preview(reason Reason, a Account, manualExit float64, now time.Time) (Outcome, error) {
	if t.Status.Terminal() {
		return Outcome{}, fmt.Errorf("%w: %s is %s", ErrTradeNotOpen, t.ID, t.Status)
	}
	if _, err := reason.status(); err != nil {
		return Outcome{}, err
	}

	out := Outcome{Reason: reason, ClosedAt: now.UTC()}
	switch reason {
	case TakeProfit:
		out.ExitPrice = t.TakeProfit
	case StopLoss:
		out.ExitPrice = t.StopLoss
	case BreakEven:
		// zero by convention, never computed
		out.ExitPrice = t.Entry
		if _, err := t.Spec.Validate(); err != nil {
			return Outcome{}, err
		}
		return out, nil
	case Manual:
		out.ExitPrice = manualExit
	}

	pnl, err := PnL(t.Spec, a, out.ExitPrice)
	if err != nil {
		return Outcome{}, err
	}
	out.PnL = pnl
	return out, nil
}

// Close moves an OPEN trade to the terminal status matching reason.
func (t *Trade) Close(reason Reason, a Account, manualExit float64, now time.Time) (Outcome, error) {
	out, err := t.Preview(reason, a, manualExit, now)
	if err != nil {
		return Outcome{}, err
	}
	st, _ := reason.status()
	t.Status = st
	t.Outcome = &out
	return out, nil
}

// Delete discards an OPEN trade. Nothing is recorded.
func (t *Trade) Delete() error {
	if t.Status.Terminal() {
		return fmt.Errorf("%w: %s is %s", ErrTradeNotOpen, t.ID, t.Status)
	}
	t.Status = Deleted
	t.Outcome = nil
	return nil
}

// RiskReward is the planned reward:risk ratio from entry, stop and target.
func (t *Trade) RiskReward() float64 {
	return risk.RR(t.Entry, t.StopLoss, t.TakeProfit)
}

// PnL returns the recorded result, zero while the trade is open.
func (t *Trade) PnL() float64 {
	if t.Outcome == nil {
		return 0
	}
	return t.Outcome.PnL
}

// Market resolves the trade's instrument.
func (t *Trade) Market() (market.Instrument, error) {
	return market.Lookup(t.Instrument)
}
