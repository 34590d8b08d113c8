// Package core holds the domain model: entity shapes, validation and
// fixed-point money. All monetary values are stored as integer kopecks
// (minor units) so that summation never accumulates floating-point
// rounding error.
package core

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Money is a fixed-point currency amount in minor units.
type Money struct {
	Cents int64
}

var centsFactor = decimal.NewFromInt(100)

// ParseMoney converts a decimal string to Money with half-up rounding
// on the third decimal place. Both dot and comma separators are
// accepted. Negative and zero amounts are rejected: entity amounts are
// always positive, direction is carried by the flow type.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(normalizeDecimal(s))
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return moneyFromDecimal(d)
}

// ParseMoneyNonNeg is ParseMoney for balance fields where zero is
// legal, such as a fully repaid debt's outstanding amount.
func ParseMoneyNonNeg(s string) (Money, error) {
	d, err := decimal.NewFromString(normalizeDecimal(s))
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Mul(centsFactor).Round(0)
	if cents.Sign() < 0 || !cents.BigInt().IsInt64() {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents.BigInt().Int64()}, nil
}

// MoneyFromFloat converts a float amount (as decoded from JSON) to
// Money. Non-finite and non-positive values are rejected.
func MoneyFromFloat(f float64) (Money, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Money{}, ErrInvalidAmount
	}
	return moneyFromDecimal(decimal.NewFromFloat(f))
}

func moneyFromDecimal(d decimal.Decimal) (Money, error) {
	cents := d.Mul(centsFactor).Round(0)
	if cents.Sign() <= 0 || !cents.BigInt().IsInt64() {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents.BigInt().Int64()}, nil
}

func normalizeDecimal(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case ',':
			out = append(out, '.')
		case ' ', '\t':
			// ignore spacing
		default:
			out = append(out, c)
		}
	}
	return string(out)
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Sub returns m - other; the result may be negative.
func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

// Units returns the major-unit value as a float64 for display only.
// Calculations stay in cents.
func (m Money) Units() float64 {
	return float64(m.Cents) / 100.0
}

// Decimal returns the amount as an exact decimal value.
func (m Money) Decimal() decimal.Decimal {
	return decimal.NewFromInt(m.Cents).Div(centsFactor)
}

func (m Money) String() string {
	neg := ""
	cents := m.Cents
	if cents < 0 {
		neg = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", neg, cents/100, cents%100)
}
