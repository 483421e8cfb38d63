package market

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

var ErrNoQuote = errors.New("no quote")

// Quote is a two-sided price. A one-sided price has Bid == Ask.
type Quote struct {
	Instrument string    `json:"instrument"`
	Bid        float64   `json:"bid"`
	Ask        float64   `json:"ask"`
	Time       time.Time `json:"time"`
}

func (q Quote) Mid() float64 {
	return (q.Bid + q.Ask) / 2
}

// SpreadPips is the spread on the instrument's pip scale.
func (q Quote) SpreadPips() (float64, error) {
	inst, err := Lookup(q.Instrument)
	if err != nil {
		return 0, err
	}
	return PipDistance(q.Ask, q.Bid, inst), nil
}

func (q Quote) Validate() error {
	if _, err := Lookup(q.Instrument); err != nil {
		return err
	}
	if err := Positive("bid", q.Bid); err != nil {
		return err
	}
	if err := Positive("ask", q.Ask); err != nil {
		return err
	}
	if q.Ask < q.Bid {
		return fmt.Errorf("%w: ask %v below bid %v", ErrInvalidNumericInput, q.Ask, q.Bid)
	}
	return nil
}

// QuoteBoard keeps the latest quote per instrument. It is safe for
// concurrent use.
type QuoteBoard struct {
	mu     sync.RWMutex
	quotes map[string]Quote
}

func NewQuoteBoard() *QuoteBoard {
	return &QuoteBoard{quotes: make(map[string]Quote)}
}

// Set validates q and stores it under its normalized symbol.
func (b *QuoteBoard) Set(q Quote) error {
	if err := q.Validate(); err != nil {
		return err
	}
	inst, _ := Lookup(q.Instrument)
	q.Instrument = inst.Symbol

	b.mu.Lock()
	defer b.mu.Unlock()
	b.quotes[Key(q.Instrument)] = q
	return nil
}

func (b *QuoteBoard) Get(symbol string) (Quote, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	q, ok := b.quotes[Key(symbol)]
	if !ok {
		return Quote{}, fmt.Errorf("%w for %s", ErrNoQuote, symbol)
	}
	return q, nil
}

// All returns the stored quotes sorted by symbol.
func (b *QuoteBoard) All() []Quote {
	b.mu.RLock()
	out := make([]Quote, 0, len(b.quotes))
	for _, q := range b.quotes {
		out = append(out, q)
	}
	b.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Instrument < out[j].Instrument })
	return out
}

// Mids returns the mid price of every stored quote keyed by symbol.
func (b *QuoteBoard) Mids() map[string]float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]float64, len(b.quotes))
	for _, q := range b.quotes {
		out[q.Instrument] = q.Mid()
	}
	return out
}
