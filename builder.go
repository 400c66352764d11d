package statement

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Builder is the in-progress transaction populated by sections. Every setter overwrites the
// previous value.
//
// The two implementations are BuySellEntry and AccountTransaction.
type Builder interface {
	Kind() Kind
	SetKind(Kind) error
	SetSecurity(Security)
	SetShares(Quantity)
	SetDateTime(time.Time)
	SetAmount(decimal.Decimal)
	SetCurrency(string)
	SetExchangeRate(decimal.Decimal)
	SetForeignAmount(Money)
	Security() Security
	Amount() decimal.Decimal
	Currency() string
	Money() Money
	// BookTax and BookFee record an entry of the given kind, see Booking.
	BookTax(kind string, m Money, ctx *Context) error
	BookFee(kind string, m Money, ctx *Context) error

	build(ctx *Context) *Item
}

// entry holds the fields shared by all builders.
type entry struct {
	kind     Kind
	security Security
	shares   Quantity
	when     time.Time
	amount   decimal.Decimal
	currency string
	rate     decimal.NullDecimal
	foreign  Money
	taxes    Booking
	fees     Booking
}

func newEntry(kind Kind) entry {
	return entry{kind: kind, taxes: newTaxBooking(), fees: newFeeBooking()}
}

func (e *entry) Kind() Kind                        { return e.kind }
func (e *entry) SetSecurity(s Security)            { e.security = s }
func (e *entry) SetShares(q Quantity)              { e.shares = q }
func (e *entry) SetDateTime(t time.Time)           { e.when = t }
func (e *entry) SetAmount(d decimal.Decimal)       { e.amount = d.Abs() }
func (e *entry) SetCurrency(c string)              { e.currency = c }
func (e *entry) SetExchangeRate(r decimal.Decimal) { e.rate = decimal.NewNullDecimal(r) }
func (e *entry) SetForeignAmount(m Money)          { e.foreign = m.Abs() }
func (e *entry) Security() Security                { return e.security }
func (e *entry) Amount() decimal.Decimal           { return e.amount }
func (e *entry) Currency() string                  { return e.currency }
func (e *entry) Money() Money                      { return Money{value: e.amount, cur: e.currency} }

func (e *entry) BookTax(kind string, m Money, ctx *Context) error {
	return e.taxes.Book(kind, m, e.currency, ctx)
}

func (e *entry) BookFee(kind string, m Money, ctx *Context) error {
	return e.fees.Book(kind, m, e.currency, ctx)
}

func (e *entry) build(ctx *Context) *Item {
	tax, taxWarnings := e.taxes.Total(e.currency, ctx)
	fee, feeWarnings := e.fees.Total(e.currency, ctx)
	return &Item{
		kind:     e.kind,
		security: e.security,
		shares:   e.shares,
		when:     e.when,
		amount:   e.Money().Round(),
		rate:     e.rate,
		foreign:  e.foreign,
		tax:      tax.Round(),
		fee:      fee.Round(),
		warnings: append(taxWarnings, feeWarnings...),
	}
}

// BuySellEntry builds a buy or a sell.
type BuySellEntry struct{ entry }

// NewBuySellEntry returns a buy, sections may turn it into a sell.
func NewBuySellEntry() *BuySellEntry { return &BuySellEntry{newEntry(Buy)} }

// SetKind accepts Buy and Sell.
func (b *BuySellEntry) SetKind(k Kind) error {
	if k != Buy && k != Sell {
		return fmt.Errorf("a buy/sell entry cannot be a %q", k)
	}
	b.kind = k
	return nil
}

// AccountTransaction builds a dividend or a tax refund.
type AccountTransaction struct{ entry }

// NewAccountTransaction returns an account transaction of the given kind. It panics on kinds
// other than Dividend and TaxRefund.
func NewAccountTransaction(k Kind) *AccountTransaction {
	a := &AccountTransaction{newEntry(Dividend)}
	if err := a.SetKind(k); err != nil {
		panic(err)
	}
	return a
}

// SetKind accepts Dividend and TaxRefund.
func (a *AccountTransaction) SetKind(k Kind) error {
	if k != Dividend && k != TaxRefund {
		return fmt.Errorf("an account transaction cannot be a %q", k)
	}
	a.kind = k
	return nil
}

var (
	_ Builder = (*BuySellEntry)(nil)
	_ Builder = (*AccountTransaction)(nil)
)
