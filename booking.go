package statement

import (
	"fmt"
	"strings"
)

// ConflictPolicy decides what happens when the same tax or fee kind is booked twice with
// different amounts.
type ConflictPolicy int

const (
	// FirstWins keeps the first amount and reports a warning on the item.
	FirstWins ConflictPolicy = iota
	// Sum adds both amounts and reports a warning on the item.
	Sum
	// Reject fails the block occurrence booking the second amount.
	Reject
)

// ParseConflictPolicy parses "first", "sum" or "reject".
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first", "first-wins":
		return FirstWins, nil
	case "sum":
		return Sum, nil
	case "reject":
		return Reject, nil
	}
	return FirstWins, fmt.Errorf("unknown conflict policy %q, want first, sum or reject", s)
}

func (p ConflictPolicy) String() string {
	switch p {
	case Sum:
		return "sum"
	case Reject:
		return "reject"
	default:
		return "first"
	}
}

// Booking accumulates tax or fee entries of a transaction by kind ("Kapitalertragsteuer",
// "Orderentgelt", ...). Its zero value is not usable, see newTaxBooking and newFeeBooking.
type Booking struct {
	conflict error // sentinel reported on conflicts
	entries  []booked
	warnings []error
}

type booked struct {
	kind   string
	amount Money
}

func newTaxBooking() Booking { return Booking{conflict: ErrConflictingTaxEntry} }
func newFeeBooking() Booking { return Booking{conflict: ErrConflictingFeeEntry} }

// Book records m under kind.
//
// When currency, the transaction currency, is known and differs from m's, m is converted with the
// exchange rate stored in ctx. Amounts are kept as positive magnitudes rounded to the minor unit.
func (b *Booking) Book(kind string, m Money, currency string, ctx *Context) error {
	m = m.Abs()
	if currency != "" && m.Currency() != currency {
		converted, err := Convert(m, currency, ctx)
		if err != nil {
			return fmt.Errorf("cannot book %s %s: %w", kind, m, err)
		}
		m = converted
	}
	m = m.Round()

	for i, e := range b.entries {
		if e.kind != kind {
			continue
		}
		if e.amount.CloseTo(m) {
			// same entry printed twice on the statement.
			return nil
		}
		conflict := fmt.Errorf("%w: %s booked with %s, then with %s", b.conflict, kind, e.amount, m)
		switch ctx.ConflictPolicy() {
		case Reject:
			return conflict
		case Sum:
			if e.amount.Currency() == m.Currency() {
				b.entries[i].amount = e.amount.Add(m)
				ctx.Logger().Warn("summing conflicting entries", "kind", kind, "first", e.amount, "second", m)
				break
			}
			// amounts in two currencies cannot be added without a rate.
			ctx.Logger().Warn("ignoring conflicting entry", "kind", kind, "kept", e.amount, "ignored", m)
		default:
			ctx.Logger().Warn("ignoring conflicting entry", "kind", kind, "kept", e.amount, "ignored", m)
		}
		b.warnings = append(b.warnings, conflict)
		return nil
	}
	b.entries = append(b.entries, booked{kind: kind, amount: m})
	return nil
}

// Has reports whether kind was booked.
func (b *Booking) Has(kind string) bool {
	for _, e := range b.entries {
		if e.kind == kind {
			return true
		}
	}
	return false
}

// Total sums the entries in currency.
//
// Entries booked before the transaction currency was known are converted now. Those that cannot
// be converted are left out and reported in the returned warnings.
func (b *Booking) Total(currency string, ctx *Context) (Money, []error) {
	total := Money{cur: currency}
	warnings := append([]error(nil), b.warnings...)
	for _, e := range b.entries {
		amount := e.amount
		if amount.Currency() != currency {
			converted, err := Convert(amount, currency, ctx)
			if err != nil {
				warnings = append(warnings, fmt.Errorf("%s %s left out: %w", e.kind, amount, err))
				continue
			}
			amount = converted
		}
		total = total.Add(amount)
	}
	return total, warnings
}

// Convert converts m into target with the exchange rate stored in ctx.
//
// Statements print the pair as "BASE/TERM rate", meaning 1 BASE = rate TERM. A term amount is
// divided by the rate, a base amount is multiplied. When the pair is unknown, m is assumed to be
// in the term currency.
func Convert(m Money, target string, ctx *Context) (Money, error) {
	if m.Currency() == target {
		return m, nil
	}
	rate, ok := ctx.Decimal(KeyExchangeRate)
	if !ok {
		return Money{}, fmt.Errorf("%w: from %s to %s", ErrMissingExchangeRate, m.Currency(), target)
	}
	base, _ := ctx.Get(KeyExchangeBase)
	term, _ := ctx.Get(KeyExchangeTerm)
	switch {
	case base == "" && term == "":
		return ConvertAmount(m, rate, target), nil
	case m.Currency() == term && target == base:
		return ConvertAmount(m, rate, target), nil
	case m.Currency() == base && target == term:
		return Money{value: m.value.Mul(rate), cur: target}.Round(), nil
	}
	return Money{}, fmt.Errorf("%w: from %s to %s, statement only prints %s/%s", ErrMissingExchangeRate, m.Currency(), target, base, term)
}
