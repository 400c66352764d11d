package statement

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// localNumberRegex accepts the unsigned German notation: '.' groups thousands, ',' separates decimals.
var localNumberRegex = regexp.MustCompile(`^[0-9]{1,3}(?:\.?[0-9]{3})*(?:,[0-9]+)?$`)

// conversionPrecision is the number of decimal digits kept when dividing by an exchange rate.
const conversionPrecision = 10

// ParseAmount parses a number printed on a statement, like "1.930,17", "0,00" or "500,00-".
//
// A trailing minus ("123,45-") or a leading one negates the value. The result is exact.
func ParseAmount(s string) (decimal.Decimal, error) {
	str := strings.TrimSpace(s)
	negative := false
	switch {
	case strings.HasSuffix(str, "-"):
		negative, str = true, strings.TrimSuffix(str, "-")
	case strings.HasPrefix(str, "-"):
		negative, str = true, strings.TrimPrefix(str, "-")
	}
	if !localNumberRegex.MatchString(str) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidNumericLiteral, s)
	}
	str = strings.ReplaceAll(str, ".", "")
	str = strings.Replace(str, ",", ".", 1)
	d, err := decimal.NewFromString(str)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q: %v", ErrInvalidNumericLiteral, s, err)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// ParseShares parses a number of shares, "16,000" is sixteen shares.
func ParseShares(s string) (Quantity, error) {
	d, err := ParseAmount(s)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{value: d}, nil
}

// ParseExchangeRate parses a strictly positive exchange rate like "1,24495".
func ParseExchangeRate(s string) (decimal.Decimal, error) {
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: exchange rate must be positive, got %q", ErrInvalidNumericLiteral, s)
	}
	return d, nil
}

// ParseCurrency returns the canonical ISO 4217 code.
func ParseCurrency(code string) (string, error) {
	c := money.GetCurrency(strings.TrimSpace(code))
	if c == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrencyCode, code)
	}
	return c.Code, nil
}

// ParseMoney combines ParseAmount and ParseCurrency.
func ParseMoney(amount, currency string) (Money, error) {
	cur, err := ParseCurrency(currency)
	if err != nil {
		return Money{}, err
	}
	value, err := ParseAmount(amount)
	if err != nil {
		return Money{}, err
	}
	return Money{value: value, cur: cur}, nil
}

// FormatAmount prints d the way statements do, with 'places' decimals: 1234.5 is "1.234,50" and
// -2 is "2,00-".
func FormatAmount(d decimal.Decimal, places int32) string {
	rounded := d.Round(places)
	intPart, frac, _ := strings.Cut(rounded.Abs().StringFixed(places), ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte(',')
		b.WriteString(frac)
	}
	if rounded.IsNegative() {
		b.WriteByte('-')
	}
	return b.String()
}

// ConvertAmount converts m into the target currency using a rate quoted as "1 target = rate m.Currency()".
//
// Statements print pairs like "EUR/USD 1,24495": a USD amount divided by the rate is the EUR amount.
// The result is rounded to the target's minor unit.
func ConvertAmount(m Money, rate decimal.Decimal, target string) Money {
	return Money{value: m.value.DivRound(rate, conversionPrecision), cur: target}.Round()
}
