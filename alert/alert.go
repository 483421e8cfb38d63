// Package alert implements price alerts that fire when a quote crosses a
// level.
package alert

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rustyeddy/misterpips/market"
)

var (
	ErrAlertNotFound    = errors.New("alert not found")
	ErrInvalidCondition = errors.New("invalid alert condition")
)

type Condition string

const (
	Above  Condition = "above"
	Below  Condition = "below"
	Equals Condition = "equals"
)

// EqualsTolerance is how close a price must be to fire an equals alert.
const EqualsTolerance = 0.0001

func ParseCondition(s string) (Condition, error) {
	switch c := Condition(strings.ToLower(strings.TrimSpace(s))); c {
	case Above, Below, Equals:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCondition, s)
}

type Alert struct {
	ID          string     `json:"id"`
	Pair        string     `json:"pair"`
	Condition   Condition  `json:"condition"`
	Price       float64    `json:"price"`
	Message     string     `json:"message,omitempty"`
	Active      bool       `json:"active"`
	LastPrice   *float64   `json:"lastPrice,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	TriggeredAt *time.Time `json:"triggeredAt,omitempty"`
}

func (a Alert) Validate() error {
	if _, err := market.Lookup(a.Pair); err != nil {
		return err
	}
	if _, err := ParseCondition(string(a.Condition)); err != nil {
		return err
	}
	return market.Positive("price", a.Price)
}

// Check feeds a new quote to the alert and reports whether it fired. The
// first quote is only remembered. Above and below fire when the quote
// crosses the level; equals fires when the quote arrives within
// EqualsTolerance after being farther away. A fired alert is deactivated.
func (a *Alert) Check(price float64, now time.Time) bool {
	if !a.Active || market.Positive("price", price) != nil {
		return false
	}
	if a.LastPrice == nil {
		a.LastPrice = &price
		return false
	}

	last := *a.LastPrice
	var fired bool
	switch a.Condition {
	case Above:
		fired = last < a.Price && price > a.Price
	case Below:
		fired = last > a.Price && price < a.Price
	case Equals:
		fired = math.Abs(price-a.Price) <= EqualsTolerance && math.Abs(last-a.Price) > EqualsTolerance
	}

	a.LastPrice = &price
	if fired {
		a.Active = false
		at := now.UTC()
		a.TriggeredAt = &at
	}
	return fired
}
