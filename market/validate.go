package market

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrUnknownInstrument   = errors.New("unknown instrument")
	ErrInvalidNumericInput = errors.New("invalid numeric input")
	ErrDegenerateStopLoss  = errors.New("stop-loss distance is zero")
	ErrInvalidDirection    = errors.New("invalid direction")
)

// InputError reports which field carried a bad number. It matches
// ErrInvalidNumericInput with errors.Is.
type InputError struct {
	Field string
	Value float64
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s must be a finite positive number, got %v",
		ErrInvalidNumericInput, e.Field, e.Value)
}

func (e *InputError) Unwrap() error {
	return ErrInvalidNumericInput
}

// Positive returns an *InputError unless v is finite and strictly positive.
func Positive(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return &InputError{Field: field, Value: v}
	}
	return nil
}

// Direction is the side of a trade.
type Direction string

const (
	Buy  Direction = "BUY"
	Sell Direction = "SELL"
)

// ParseDirection accepts BUY/SELL and the long/short aliases used by the
// planning tools, in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY", "LONG":
		return Buy, nil
	case "SELL", "SHORT":
		return Sell, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// UnmarshalText lets JSON and YAML documents use any spelling
// ParseDirection accepts.
func (d *Direction) UnmarshalText(b []byte) error {
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func (d Direction) Valid() bool {
	return d == Buy || d == Sell
}
