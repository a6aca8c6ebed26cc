// Package core holds the domain types shared by storage, services and the
// HTTP layer: transactions, users, calendar dates and fixed-point amounts.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a fixed-point monetary value with two-decimal precision.
// All arithmetic stays in decimal space; only the amount sort comparator
// converts to float64 (see sort.go).
type Amount struct {
	d decimal.Decimal
}

// ZeroAmount is the additive identity.
var ZeroAmount = Amount{d: decimal.Zero}

// ParseAmount parses a decimal string such as "12.34". It accepts a comma
// decimal separator, rounds to two decimals and rejects negative values;
// by convention amounts are non-negative.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return Amount{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, ErrInvalidAmount
	}
	if d.IsNegative() {
		return Amount{}, ErrInvalidAmount
	}
	return Amount{d: d.Round(2)}, nil
}

// AmountFromFloat converts a float, rounding to two decimals. Used by tests
// and by callers that already validated their input.
func AmountFromFloat(f float64) Amount {
	return Amount{d: decimal.NewFromFloat(f).Round(2)}
}

func (a Amount) Add(b Amount) Amount { return Amount{d: a.d.Add(b.d)} }
func (a Amount) Sub(b Amount) Amount { return Amount{d: a.d.Sub(b.d)} }
func (a Amount) Equal(b Amount) bool { return a.d.Equal(b.d) }
func (a Amount) IsZero() bool        { return a.d.IsZero() }

// Float64 is the lossy float view used only for amount sorting.
func (a Amount) Float64() float64 {
	f, _ := a.d.Float64()
	return f
}

// String renders the canonical storage form, e.g. "12.34".
func (a Amount) String() string {
	return a.d.StringFixed(2)
}

// MarshalJSON renders the amount as a fixed two-decimal JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.d.StringFixed(2)), nil
}

// UnmarshalJSON accepts both numbers and strings.
func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
