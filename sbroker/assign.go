package sbroker

import (
	"github.com/etnz/statement"
	"github.com/etnz/statement/date"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

func security[T statement.Builder](r statement.SecurityResolver) func(T, values, *statement.Context) error {
	return func(t T, v values, _ *statement.Context) error {
		sec, err := r.Resolve(v.Get("name"), v.Get("isin"), v.Get("wkn"))
		if err != nil {
			return err
		}
		t.SetSecurity(sec)
		return nil
	}
}

func shares[T statement.Builder](t T, v values, _ *statement.Context) error {
	q, err := statement.ParseShares(v.Get("shares"))
	if err != nil {
		return err
	}
	t.SetShares(q)
	return nil
}

func dateTime[T statement.Builder](t T, v values, _ *statement.Context) error {
	when, err := date.ParseDateTime(v.Get("date"), v.Get("time"))
	if err != nil {
		return err
	}
	t.SetDateTime(when)
	return nil
}

func amount[T statement.Builder](t T, v values, _ *statement.Context) error {
	m, err := statement.ParseMoney(v.Get("amount"), v.Get("currency"))
	if err != nil {
		return err
	}
	t.SetAmount(m.Value())
	t.SetCurrency(m.Currency())
	return nil
}

// exchangeRate stores the rate for the tax and fee sections. A dividend paid in the term currency
// is converted, and its original amount kept as the foreign amount.
func exchangeRate[T statement.Builder](t T, v values, ctx *statement.Context) error {
	rate, err := statement.ParseExchangeRate(v.Get("exchangeRate"))
	if err != nil {
		return err
	}
	base, err := statement.ParseCurrency(v.Get("base"))
	if err != nil {
		return err
	}
	term, err := statement.ParseCurrency(v.Get("term"))
	if err != nil {
		return err
	}
	ctx.PutDecimal(statement.KeyExchangeRate, rate)
	ctx.Put(statement.KeyExchangeBase, base)
	ctx.Put(statement.KeyExchangeTerm, term)
	t.SetExchangeRate(rate)

	if t.Currency() == term && term != base {
		foreign := t.Money()
		converted := statement.ConvertAmount(foreign, rate, base)
		t.SetForeignAmount(foreign)
		t.SetAmount(converted.Value())
		t.SetCurrency(base)
	}
	return nil
}

// bookTax books the "tax" capture, unless the block reports a refund.
func bookTax[T statement.Builder](kind string) func(T, values, *statement.Context) error {
	return func(t T, v values, ctx *statement.Context) error {
		if ctx.Has(statement.KeyNegative) {
			ctx.Logger().Debug("tax refund, tax not booked", "kind", kind)
			return nil
		}
		m, err := statement.ParseMoney(v.Get("tax"), v.Get("currency"))
		if err != nil {
			return err
		}
		return t.BookTax(kind, m, ctx)
	}
}

func bookFee[T statement.Builder](kind string) func(T, values, *statement.Context) error {
	return func(t T, v values, ctx *statement.Context) error {
		m, err := statement.ParseMoney(v.Get("fee"), v.Get("currency"))
		if err != nil {
			return err
		}
		return t.BookFee(kind, m, ctx)
	}
}

// issueFee books the front load of a fund issue, net of the rebate granted on it.
//
//	Kurswert 509,71- EUR
//	Kundenbonifikation 40 % vom Ausgabeaufschlag 9,71 EUR
//	Ausgabeaufschlag pro Anteil 5,00 %
func issueFee[T statement.Builder](t T, v values, ctx *statement.Context) error {
	value, err := statement.ParseMoney(v.Get("amountFx"), v.Get("currency"))
	if err != nil {
		return err
	}
	load, err := statement.ParseAmount(v.Get("feeFx"))
	if err != nil {
		return err
	}
	rebate, err := statement.ParseAmount(v.Get("feeFy"))
	if err != nil {
		return err
	}
	fee := IssueFee(value.Value().Abs(), load, rebate)
	return t.BookFee("Ausgabeaufschlag", statement.M(fee, value.Currency()), ctx)
}

// IssueFee returns the front load included in value, a price including a load of 'load' percent,
// reduced by a rebate of 'rebate' percent of that load.
func IssueFee(value, load, rebate decimal.Decimal) decimal.Decimal {
	net := value.Div(decimal.NewFromInt(1).Add(load.Div(hundred)))
	fee := net.Mul(load).Div(hundred)
	return fee.Sub(fee.Mul(rebate).Div(hundred))
}

func taxSections[T statement.Builder]() []statement.Section[T] {
	tax := func(name, kind, pattern string) statement.Section[T] {
		return statement.Section[T]{Name: name, Optional: true, Patterns: []string{pattern}, Assign: bookTax[T](kind)}
	}
	return []statement.Section[T]{
		{
			Name:     "negative",
			Optional: true,
			Patterns: []string{`zu versteuern \(negativ\) (?P<n>.*)`},
			Assign: func(_ T, _ values, ctx *statement.Context) error {
				ctx.Put(statement.KeyNegative, "X")
				return nil
			},
		},
		// einbehaltene Kapitalertragsteuer EUR 7,03
		tax("withheld capital gains tax", "Kapitalertragsteuer", `einbehaltene Kapitalertragsteuer (?P<currency>\w{3}) (?P<tax>[.,\d]+)`),
		// Kapitalertragsteuer EUR 70,16
		tax("capital gains tax", "Kapitalertragsteuer", `Kapitalertragsteuer (?P<currency>\w{3}) (?P<tax>[.,\d]+)`),
		// einbehaltener Solidaritätszuschlag EUR 0,38
		tax("withheld solidarity surcharge", "Solidaritätszuschlag", `einbehaltener Solidarit.tszuschlag (?P<currency>\w{3}) (?P<tax>[.,\d]+)`),
		// Solidaritätszuschlag EUR 3,86
		tax("solidarity surcharge", "Solidaritätszuschlag", `Solidarit.tszuschlag (?P<currency>\w{3}) (?P<tax>[.,\d]+)`),
		// einbehaltener Kirchensteuer EUR 1,00
		tax("withheld church tax", "Kirchensteuer", `einbehaltener Kirchensteuer (?P<currency>\w{3}) (?P<tax>[.,\d]+)`),
		// Kirchensteuer EUR 1,00
		tax("church tax", "Kirchensteuer", `Kirchensteuer (?P<currency>\w{3}) (?P<tax>[.,\d]+)`),
		// davon anrechenbare US-Quellensteuer 15% USD 13,13
		tax("US withholding tax", "US-Quellensteuer", `davon anrechenbare US-Quellensteuer [.,\d]+% (?P<currency>\w{3}) (?P<tax>[.,\d]+)`),
	}
}

func feeSections[T statement.Builder]() []statement.Section[T] {
	fee := func(name, kind string, patterns ...string) statement.Section[T] {
		return statement.Section[T]{Name: name, Optional: true, Patterns: patterns, Assign: bookFee[T](kind)}
	}
	return []statement.Section[T]{
		// Handelszeit 09:02 Orderentgelt                EUR 10,90-
		fee("order fee", "Orderentgelt", `.* Orderentgelt\W+(?P<currency>\w{3}) (?P<fee>[.,\d]+)-`),
		// Orderentgelt
		// EUR 0,71-
		fee("order fee on two lines", "Orderentgelt", `Orderentgelt`, `(?P<currency>\w{3}) (?P<fee>[.,\d]+)-`),
		// Börse Stuttgart Börsengebühr EUR 2,29-
		fee("exchange fee", "Börsengebühr", `.* B.rsengeb.hr (?P<currency>\w{3}) (?P<fee>[.,\d]+)-`),
		{
			Name:     "issue fee",
			Optional: true,
			Patterns: []string{
				`Kurswert (?P<amountFx>[.,\d]+)-? (?P<currency>\w{3})`,
				`Kundenbonifikation (?P<feeFy>[.,\d]+) % vom Ausgabeaufschlag [.,\d]+ \w{3}`,
				`Ausgabeaufschlag pro Anteil (?P<feeFx>[.,\d]+) %`,
			},
			Assign: issueFee[T],
		},
		// Kurswert
		// EUR 14,40-
		fee("fee below price", "Kurswert", `Kurswert`, `(?P<currency>\w{3}) (?P<fee>[.,\d]+)-`),
	}
}
