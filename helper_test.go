package statement

import "strings"

// EUR is a helper for test to create euro money from const
func EUR(v float64) Money { return M(v, "EUR") }

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// doc builds a document from lines.
func doc(lines ...string) *RawDocument {
	return NewRawDocument("test.txt", strings.Join(lines, "\n"))
}

// testExtractor is a small "Test Bank AG" rule set: a Kauf/Verkauf block with an amount, a
// refund flag and a tax.
func testExtractor(opts ...Option) *Extractor {
	tx := NewTransaction(func(*Context) *BuySellEntry { return NewBuySellEntry() }, WrapBuySell).Section(
		Section[*BuySellEntry]{
			Name:     "type",
			Optional: true,
			Patterns: []string{`(?P<type>Kauf|Verkauf)`},
			Assign: func(b *BuySellEntry, v Values, ctx *Context) error {
				ctx.Remove(KeyNegative)
				if v.Get("type") == "Verkauf" {
					return b.SetKind(Sell)
				}
				return nil
			},
		},
		Section[*BuySellEntry]{
			Name:     "amount",
			Patterns: []string{`Betrag (?P<amount>[.,\d]+)-? (?P<currency>\w{3})`},
			Assign: func(b *BuySellEntry, v Values, ctx *Context) error {
				m, err := ParseMoney(v.Get("amount"), v.Get("currency"))
				if err != nil {
					return err
				}
				b.SetAmount(m.Value())
				b.SetCurrency(m.Currency())
				return nil
			},
		},
		Section[*BuySellEntry]{
			Name:     "refund",
			Optional: true,
			Patterns: []string{`Erstattung`},
			Assign: func(_ *BuySellEntry, _ Values, ctx *Context) error {
				ctx.Put(KeyNegative, "X")
				return nil
			},
		},
		Section[*BuySellEntry]{
			Name:     "tax",
			Optional: true,
			Patterns: []string{`Steuer (?P<currency>\w{3}) (?P<tax>[.,\d]+)`},
			Assign: func(b *BuySellEntry, v Values, ctx *Context) error {
				if ctx.Has(KeyNegative) {
					return nil
				}
				m, err := ParseMoney(v.Get("tax"), v.Get("currency"))
				if err != nil {
					return err
				}
				return b.BookTax("Steuer", m, ctx)
			},
		},
	)
	return NewExtractor("Test Bank", opts...).
		AddBankIdentifier("Test Bank AG").
		AddDocumentType(NewDocumentType("buy/sell", "Kauf|Verkauf").AddBlock(NewBlock(`^(Kauf|Verkauf)$`, tx)))
}
