// market/instruments.go
package market

import (
	"fmt"
	"sort"
	"strings"
)

// Class groups instruments by how their pips are valued. The classification
// is explicit per instrument and never inferred from the symbol text.
type Class int

const (
	// USDQuote: USD is the quote currency (EUR/USD, GBP/USD, ...).
	USDQuote Class = iota
	// JPYQuote: JPY is the quote currency (USD/JPY, EUR/JPY, ...).
	JPYQuote
	// Gold: spot gold quoted in USD.
	Gold
	// Cross: everything else, valued through the pair's own rate.
	Cross
)

func (c Class) String() string {
	switch c {
	case USDQuote:
		return "usd-quote"
	case JPYQuote:
		return "jpy-quote"
	case Gold:
		return "gold"
	case Cross:
		return "cross"
	}
	return fmt.Sprintf("class(%d)", int(c))
}

// StandardLot is the contract size of one lot, in base units.
const StandardLot = 100_000.0

type Instrument struct {
	Symbol        string // display form, "EUR/USD"
	BaseCurrency  string
	QuoteCurrency string
	Class         Class
	MarginRate    float64

	// ReferenceRate stands in for a live quote when valuing pips of
	// JPY-quoted and cross instruments.
	ReferenceRate float64
}

var Instruments = map[string]Instrument{
	"EURUSD": {Symbol: "EUR/USD", BaseCurrency: "EUR", QuoteCurrency: "USD", Class: USDQuote, MarginRate: 0.01},
	"GBPUSD": {Symbol: "GBP/USD", BaseCurrency: "GBP", QuoteCurrency: "USD", Class: USDQuote, MarginRate: 0.01},
	"AUDUSD": {Symbol: "AUD/USD", BaseCurrency: "AUD", QuoteCurrency: "USD", Class: USDQuote, MarginRate: 0.01},
	"NZDUSD": {Symbol: "NZD/USD", BaseCurrency: "NZD", QuoteCurrency: "USD", Class: USDQuote, MarginRate: 0.01},
	"BTCUSD": {Symbol: "BTC/USD", BaseCurrency: "BTC", QuoteCurrency: "USD", Class: USDQuote, MarginRate: 0.01},

	"USDJPY": {Symbol: "USD/JPY", BaseCurrency: "USD", QuoteCurrency: "JPY", Class: JPYQuote, MarginRate: 0.01, ReferenceRate: 149.50},
	"EURJPY": {Symbol: "EUR/JPY", BaseCurrency: "EUR", QuoteCurrency: "JPY", Class: JPYQuote, MarginRate: 0.01, ReferenceRate: 149.50},
	"GBPJPY": {Symbol: "GBP/JPY", BaseCurrency: "GBP", QuoteCurrency: "JPY", Class: JPYQuote, MarginRate: 0.01, ReferenceRate: 149.50},

	"XAUUSD": {Symbol: "XAU/USD", BaseCurrency: "XAU", QuoteCurrency: "USD", Class: Gold, MarginRate: 0.01},

	"USDCAD": {Symbol: "USD/CAD", BaseCurrency: "USD", QuoteCurrency: "CAD", Class: Cross, MarginRate: 0.01, ReferenceRate: 1.0850},
	"USDCHF": {Symbol: "USD/CHF", BaseCurrency: "USD", QuoteCurrency: "CHF", Class: Cross, MarginRate: 0.01, ReferenceRate: 1.0850},
	"EURGBP": {Symbol: "EUR/GBP", BaseCurrency: "EUR", QuoteCurrency: "GBP", Class: Cross, MarginRate: 0.01, ReferenceRate: 1.0850},
}

// Key normalizes a symbol to its table key: "eur/usd", "EUR_USD" and
// "EURUSD" all map to "EURUSD".
func Key(symbol string) string {
	r := strings.NewReplacer("/", "", "_", "", "-", "", " ", "")
	return strings.ToUpper(r.Replace(symbol))
}

// Lookup returns the instrument for any accepted spelling of symbol.
func Lookup(symbol string) (Instrument, error) {
	inst, ok := Instruments[Key(symbol)]
	if !ok {
		return Instrument{}, fmt.Errorf("%w: %q", ErrUnknownInstrument, symbol)
	}
	return inst, nil
}

// Symbols lists the display symbols of every known instrument, sorted.
func Symbols() []string {
	out := make([]string, 0, len(Instruments))
	for _, inst := range Instruments {
		out = append(out, inst.Symbol)
	}
	sort.Strings(out)
	return out
}

// PipsPerUnit is the multiplier that turns a price difference into pips for
// trade P&L: 100 for JPY-quoted instruments, 10000 for everything else.
// Gold is deliberately on the 10000 scale here.
func (i Instrument) PipsPerUnit() float64 {
	if i.Class == JPYQuote {
		return 100
	}
	return 10000
}

// PipSize is the price increment of one pip on the P&L scale.
func (i Instrument) PipSize() float64 {
	return 1 / i.PipsPerUnit()
}

// PlannerPipsPerUnit is the pip multiplier used by the planning tools. It
// differs from PipsPerUnit only for gold, where one pip is 0.1.
func (i Instrument) PlannerPipsPerUnit() float64 {
	switch i.Class {
	case JPYQuote:
		return 100
	case Gold:
		return 10
	}
	return 10000
}

// PipValuePerLot is the USD value of one planner pip on one standard lot,
// given the current (or reference) price of the instrument.
func (i Instrument) PipValuePerLot(price float64) float64 {
	switch i.Class {
	case JPYQuote:
		return 1000 / price
	case USDQuote, Gold:
		return 10
	}
	return 10 * price
}
