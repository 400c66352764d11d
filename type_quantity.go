package statement

import "github.com/shopspring/decimal"

// number is what M and Q accept: literals in tests, decimals in extractors.
type number interface {
	float64 | int | decimal.Decimal
}

func toDecimal[T number](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case decimal.Decimal:
		return v
	}
	panic("unreachable")
}

// Quantity is a number of shares, as printed on the statement (fractions allowed).
type Quantity struct {
	value decimal.Decimal
}

// Q returns the quantity of value shares.
func Q[T number](value T) Quantity { return Quantity{value: toDecimal(value)} }

func (q Quantity) IsZero() bool           { return q.value.IsZero() }
func (q Quantity) Value() decimal.Decimal { return q.value }
func (q Quantity) String() string         { return q.value.String() }

// MarshalJSON writes the number of shares without trailing zeros.
func (q Quantity) MarshalJSON() ([]byte, error) { return []byte(q.value.String()), nil }
