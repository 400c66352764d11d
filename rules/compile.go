package rules

import (
	"errors"
	"fmt"

	"github.com/etnz/statement"
	"github.com/etnz/statement/date"
)

// Compile builds the extractor described by f. Securities are resolved with r.
func (f *File) Compile(r statement.SecurityResolver, opts ...statement.Option) (*statement.Extractor, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	e := statement.NewExtractor(f.Label, opts...).AddBankIdentifier(f.BankIdentifiers...)
	var errs []error
	for _, dts := range f.DocumentTypes {
		dt, err := statement.CompileDocumentType(dts.Name, dts.Signature)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for i, bs := range dts.Blocks {
			b, err := bs.compile(r)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s block %d: %w", dts.Name, i, err))
				continue
			}
			dt.AddBlock(b)
		}
		e.AddDocumentType(dt)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return e, nil
}

func (b Block) compile(r statement.SecurityResolver) (*statement.Block, error) {
	kind, _ := statement.ParseKind(b.Transaction)
	var p statement.Pipeline
	var err error
	switch kind {
	case statement.Buy, statement.Sell:
		p, err = pipeline(b, r, func() *statement.BuySellEntry {
			e := statement.NewBuySellEntry()
			_ = e.SetKind(kind)
			return e
		}, statement.WrapBuySell)
	default:
		p, err = pipeline(b, r, func() *statement.AccountTransaction {
			return statement.NewAccountTransaction(kind)
		}, statement.WrapAccountTransaction)
	}
	if err != nil {
		return nil, err
	}

	block, err := statement.CompileBlock(b.Start, p)
	if err != nil {
		return nil, err
	}
	if b.End != "" {
		if err := block.SetEnd(b.End); err != nil {
			return nil, err
		}
	}
	return block.WithMaxLines(b.MaxLines), nil
}

func pipeline[T statement.Builder](b Block, r statement.SecurityResolver, newT func() T, wrap func(T, *statement.Context) (*statement.Item, error)) (statement.Pipeline, error) {
	if b.DiscardZero {
		wrap = statement.WrapNonZero[T]
	}
	// rates and the flags raised by the block belong to one occurrence.
	scoped := []string{statement.KeyExchangeRate, statement.KeyExchangeBase, statement.KeyExchangeTerm}
	for _, s := range b.Sections {
		if s.SetFlag != "" {
			scoped = append(scoped, s.SetFlag)
		}
	}
	scoped = append(scoped, b.ClearFlags...)
	subject := func(ctx *statement.Context) T {
		for _, key := range scoped {
			ctx.Remove(key)
		}
		return newT()
	}
	tx := statement.NewTransaction(subject, wrap)
	for _, s := range b.Sections {
		err := tx.AddSection(statement.Section[T]{
			Name:     s.Name,
			Optional: s.Optional,
			Patterns: s.Patterns,
			Assign:   assign[T](s, r),
		})
		if err != nil {
			return nil, err
		}
	}
	return tx, nil
}

// assign parses every capture first, and mutates the builder and the context only when they are
// all valid.
func assign[T statement.Builder](s Section, r statement.SecurityResolver) func(T, statement.Values, *statement.Context) error {
	return func(t T, v statement.Values, ctx *statement.Context) error {
		if s.UnlessFlag != "" && ctx.Has(s.UnlessFlag) {
			ctx.Logger().Debug("section disabled by flag", "section", s.Name, "flag", s.UnlessFlag)
			return nil
		}

		var updates []func()
		for _, field := range s.Fields {
			u, err := parseField(field, t, v, r, ctx)
			if err != nil {
				return fmt.Errorf("field %s: %w", field, err)
			}
			updates = append(updates, u)
		}
		kind, setKind := s.Kind[v.Get("type")]
		var booking func() error
		switch {
		case s.Tax != "":
			m, err := statement.ParseMoney(v.Get("tax"), v.Get("currency"))
			if err != nil {
				return err
			}
			booking = func() error { return t.BookTax(s.Tax, m, ctx) }
		case s.Fee != "":
			m, err := statement.ParseMoney(v.Get("fee"), v.Get("currency"))
			if err != nil {
				return err
			}
			booking = func() error { return t.BookFee(s.Fee, m, ctx) }
		}

		// a booking either fails or books, so it goes first.
		if booking != nil {
			if err := booking(); err != nil {
				return err
			}
		}
		if setKind {
			// validated against the block transaction when loading.
			k, _ := statement.ParseKind(kind)
			_ = t.SetKind(k)
		}
		for _, u := range updates {
			u()
		}
		if s.SetFlag != "" {
			ctx.Put(s.SetFlag, "X")
		}
		return nil
	}
}

func parseField[T statement.Builder](field string, t T, v statement.Values, r statement.SecurityResolver, ctx *statement.Context) (func(), error) {
	switch field {
	case "security":
		sec, err := r.Resolve(v.Get("name"), v.Get("isin"), v.Get("wkn"))
		if err != nil {
			return nil, err
		}
		return func() { t.SetSecurity(sec) }, nil
	case "shares":
		q, err := statement.ParseShares(v.Get("shares"))
		if err != nil {
			return nil, err
		}
		return func() { t.SetShares(q) }, nil
	case "date":
		when, err := date.ParseDateTime(v.Get("date"), v.Get("time"))
		if err != nil {
			return nil, err
		}
		return func() { t.SetDateTime(when) }, nil
	case "amount":
		d, err := statement.ParseAmount(v.Get("amount"))
		if err != nil {
			return nil, err
		}
		return func() { t.SetAmount(d) }, nil
	case "currency":
		c, err := statement.ParseCurrency(v.Get("currency"))
		if err != nil {
			return nil, err
		}
		return func() { t.SetCurrency(c) }, nil
	case "exchange_rate":
		rate, err := statement.ParseExchangeRate(v.Get("exchangeRate"))
		if err != nil {
			return nil, err
		}
		var base, term string
		if v.Get("base") != "" || v.Get("term") != "" {
			if base, err = statement.ParseCurrency(v.Get("base")); err != nil {
				return nil, err
			}
			if term, err = statement.ParseCurrency(v.Get("term")); err != nil {
				return nil, err
			}
		}
		return func() {
			t.SetExchangeRate(rate)
			ctx.PutDecimal(statement.KeyExchangeRate, rate)
			if term == "" {
				return
			}
			ctx.Put(statement.KeyExchangeBase, base)
			ctx.Put(statement.KeyExchangeTerm, term)
			// an amount read in the term currency is converted to the base one.
			if t.Currency() == term && term != base {
				foreign := t.Money()
				t.SetForeignAmount(foreign)
				t.SetAmount(statement.ConvertAmount(foreign, rate, base).Value())
				t.SetCurrency(base)
			}
		}, nil
	}
	return nil, fmt.Errorf("unknown field %q", field)
}
