// journal/journal.go
package journal

import (
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/misterpips/trade"
)

var ErrNotFound = errors.New("journal record not found")

// TradeRecord is a closed trade as it is written to the journal.
type TradeRecord struct {
	TradeID    string
	User       string
	Instrument string
	Direction  string
	LotSize    float64
	EntryPrice float64
	StopLoss   float64
	TakeProfit float64
	ExitPrice  float64
	OpenTime   time.Time
	CloseTime  time.Time
	RealizedPL float64
	Reason     string
}

// EquitySnapshot is the account after a closure.
type EquitySnapshot struct {
	Time       time.Time
	User       string
	Capital    float64 // configured baseline
	Equity     float64 // capital plus realized P&L
	RealizedPL float64 // total closed P&L
	OpenTrades int
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// FromTrade builds the record for a closed trade.
func FromTrade(user string, t *trade.Trade) (TradeRecord, error) {
	if !t.Status.Closed() || t.Outcome == nil {
		return TradeRecord{}, fmt.Errorf("%w: %s is %s", trade.ErrTradeNotOpen, t.ID, t.Status)
	}
	return TradeRecord{
		TradeID:    t.ID,
		User:       user,
		Instrument: t.Instrument,
		Direction:  string(t.Direction),
		LotSize:    t.LotSize,
		EntryPrice: t.Entry,
		StopLoss:   t.StopLoss,
		TakeProfit: t.TakeProfit,
		ExitPrice:  t.Outcome.ExitPrice,
		OpenTime:   t.OpenedAt.UTC(),
		CloseTime:  t.Outcome.ClosedAt.UTC(),
		RealizedPL: t.Outcome.PnL,
		Reason:     string(t.Outcome.Reason),
	}, nil
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordTrade(TradeRecord) error     { return nil }
func (Nop) RecordEquity(EquitySnapshot) error { return nil }
func (Nop) Close() error                      { return nil }

type Options struct {
	Type       string // none | csv | sqlite
	TradesFile string
	EquityFile string
	DBPath     string
}

// Open returns the journal named by opts.Type.
func Open(opts Options) (Journal, error) {
	switch opts.Type {
	case "", "none":
		return Nop{}, nil
	case "csv":
		return NewCSV(opts.TradesFile, opts.EquityFile)
	case "sqlite":
		return NewSQLite(opts.DBPath)
	}
	return nil, fmt.Errorf("unknown journal type %q", opts.Type)
}
