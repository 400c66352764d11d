package statement

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money represents a monetary value.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

// M returns value in currency.
func M[T number](value T, currency string) Money { return Money{value: toDecimal(value), cur: currency} }

// fraction returns the number of minor unit digits of the currency, 2 when unknown.
func fraction(currency string) int32 {
	if c := money.GetCurrency(currency); c != nil {
		return int32(c.Fraction)
	}
	return 2
}

// String returns the string representation of the money value.
func (m Money) String() string {
	c := money.GetCurrency(m.cur)
	if c == nil {
		return m.value.StringFixed(2) + " " + m.cur
	}
	dec := m.value.Shift(int32(c.Fraction))
	return c.Formatter().Format(dec.IntPart())
}

// Simple wrapper around decimal.Decimal

func (m Money) Currency() string       { return m.cur }
func (m Money) Value() decimal.Decimal { return m.value }
func (m Money) Equal(n Money) bool     { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool           { return m.value.IsZero() }
func (m Money) IsPositive() bool       { return m.value.IsPositive() }
func (m Money) IsNegative() bool       { return m.value.IsNegative() }
func (m Money) Neg() Money             { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Abs() Money             { return Money{value: m.value.Abs(), cur: m.cur} }
func (m Money) Add(n Money) Money      { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }
func (m Money) Sub(n Money) Money      { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }
func (m Money) Round() Money           { return Money{value: m.value.Round(fraction(m.cur)), cur: m.cur} }
func (m Money) StringFixed() string    { return m.value.StringFixed(fraction(m.cur)) }

// makes the "" currency totally weak.
func cur(A, B Money) string {
	if A.cur == "" {
		return B.cur
	}
	if B.cur == "" {
		return A.cur
	}
	if A.cur != B.cur {
		panic("currency mismatch" + A.cur + "!=" + B.cur)
	}
	return A.cur
}

// Tolerance returns the smallest amount representable in the currency (one minor unit).
func Tolerance(currency string) decimal.Decimal {
	return decimal.New(1, -fraction(currency))
}

// CloseTo reports whether m and n are in the same currency and differ by at most one minor unit.
func (m Money) CloseTo(n Money) bool {
	if m.cur != n.cur {
		return false
	}
	return m.value.Sub(n.value).Abs().LessThanOrEqual(Tolerance(m.cur))
}
