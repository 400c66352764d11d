package statement

import (
	"time"

	"github.com/etnz/statement/date"
	"github.com/shopspring/decimal"
)

// Kind is the transaction type of an Item.
type Kind string

const (
	Buy       Kind = "buy"
	Sell      Kind = "sell"
	Dividend  Kind = "dividend"
	TaxRefund Kind = "tax-refund"
)

// ParseKind parses one of the known kinds.
func ParseKind(s string) (Kind, bool) {
	switch k := Kind(s); k {
	case Buy, Sell, Dividend, TaxRefund:
		return k, true
	}
	return "", false
}

// Item is a finalized transaction. It is immutable.
type Item struct {
	kind     Kind
	security Security
	shares   Quantity
	when     time.Time
	amount   Money // positive magnitude, the kind conveys the direction
	rate     decimal.NullDecimal
	foreign  Money
	tax      Money
	fee      Money
	source   string
	warnings []error
}

func (it *Item) Kind() Kind                        { return it.kind }
func (it *Item) Security() Security                { return it.security }
func (it *Item) Shares() Quantity                  { return it.shares }
func (it *Item) Time() time.Time                   { return it.when }
func (it *Item) Date() date.Date                   { return date.Of(it.when) }
func (it *Item) Amount() Money                     { return it.amount }
func (it *Item) ExchangeRate() decimal.NullDecimal { return it.rate }
func (it *Item) ForeignAmount() Money              { return it.foreign }
func (it *Item) Tax() Money                        { return it.tax }
func (it *Item) Fee() Money                        { return it.fee }

// Source returns the label of the extractor that produced the item.
func (it *Item) Source() string { return it.source }

// Warnings returns the data quality problems met while booking taxes and fees.
func (it *Item) Warnings() []error { return it.warnings }

// hasClock reports whether the statement printed a time of day.
func (it *Item) hasClock() bool {
	h, m, s := it.when.Clock()
	return h != 0 || m != 0 || s != 0
}

// MarshalJSON implements the json.Marshaler interface for Item.
func (it *Item) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("kind", it.kind)
	if !it.when.IsZero() {
		w.Append("date", it.Date())
		if it.hasClock() {
			w.Append("time", it.when.Format(time.TimeOnly))
		}
	}
	if !it.security.IsZero() {
		w.Append("security", it.security)
	}
	if !it.shares.IsZero() {
		w.Append("shares", it.shares)
	}
	w.Number("amount", it.amount.StringFixed())
	w.Append("currency", it.amount.Currency())
	if it.rate.Valid {
		w.Number("exchangeRate", it.rate.Decimal.String())
	}
	if it.foreign.Currency() != "" {
		w.Number("foreignAmount", it.foreign.StringFixed())
		w.Append("foreignCurrency", it.foreign.Currency())
	}
	if !it.tax.IsZero() {
		w.Number("tax", it.tax.StringFixed())
	}
	if !it.fee.IsZero() {
		w.Number("fee", it.fee.StringFixed())
	}
	w.Optional("source", it.source)
	if len(it.warnings) > 0 {
		msgs := make([]string, len(it.warnings))
		for i, err := range it.warnings {
			msgs[i] = err.Error()
		}
		w.Append("warnings", msgs)
	}
	return w.MarshalJSON()
}
