// Package sbroker extracts transactions from the statements of S Broker AG & Co. KG and of the
// Sparkassen using it as their broker.
package sbroker

import (
	"github.com/etnz/statement"
	"github.com/etnz/statement/date"
)

// Label is the source reported on extracted items.
const Label = "S Broker AG & Co. KG / Sparkasse"

// BankIdentifiers are the strings identifying an S Broker statement.
var BankIdentifiers = []string{"S Broker AG & Co. KG", "Sparkasse"}

// Document type names, as reported by Extractor.Identify.
const (
	BuySellType  = "buy/sell"
	DividendType = "dividend"
)

const buySellStart = `^(Kauf.*|Verkauf.*|Wertpapier Abrechnung Ausgabe Investmentfonds)$`

type (
	buySell = *statement.BuySellEntry
	account = *statement.AccountTransaction
	values  = statement.Values
)

// New returns the S Broker extractor. Securities are resolved with r.
func New(r statement.SecurityResolver, opts ...statement.Option) *statement.Extractor {
	return statement.NewExtractor(Label, opts...).
		AddBankIdentifier(BankIdentifiers...).
		AddDocumentType(buySellDocument(r), dividendDocument(r))
}

func buySellDocument(r statement.SecurityResolver) *statement.DocumentType {
	tx := statement.NewTransaction(func(*statement.Context) buySell { return statement.NewBuySellEntry() }, statement.WrapBuySell).
		Section(
			statement.Section[buySell]{
				Name:     "type",
				Optional: true,
				Patterns: []string{`(?P<type>Kauf|Verkauf|Wertpapier Abrechnung Ausgabe Investmentfonds)(.*)?`},
				Assign: func(t buySell, v values, ctx *statement.Context) error {
					if v.Get("type") == "Verkauf" {
						if err := t.SetKind(statement.Sell); err != nil {
							return err
						}
					}
					// a previous occurrence may have been a refund.
					ctx.Remove(statement.KeyNegative)
					return nil
				},
			},
			// Gattungsbezeichnung ISIN
			// iS.EO G.B.C.1.5-10.5y.U.ETF DE Inhaber-Anteile DE000A0H0785
			statement.Section[buySell]{
				Name:     "isin",
				Optional: true,
				Patterns: []string{`Gattungsbezeichnung ISIN`, `(?P<name>.*) (?P<isin>\w{12})`},
				Assign:   security[buySell](r),
			},
			// Nominale Wertpapierbezeichnung ISIN (WKN)
			// Stück 7,1535 BGF - WORLD TECHNOLOGY FUND LU0171310443 (A0BMAN)
			statement.Section[buySell]{
				Name:     "shares and isin",
				Optional: true,
				Patterns: []string{
					`Nominale Wertpapierbezeichnung ISIN \(WKN\)`,
					`St.ck (?P<shares>[.,\d]+) (?P<name>.*) (?P<isin>\w{12}) \((?P<wkn>.*)\)`,
				},
				Assign: func(t buySell, v values, ctx *statement.Context) error {
					shares, err := statement.ParseShares(v.Get("shares"))
					if err != nil {
						return err
					}
					if err := security[buySell](r)(t, v, ctx); err != nil {
						return err
					}
					t.SetShares(shares)
					return nil
				},
			},
			// STK 16,000 EUR 120,4000
			statement.Section[buySell]{
				Name:     "shares",
				Optional: true,
				Patterns: []string{`STK (?P<shares>[.,\d]+) .*`},
				Assign:   shares[buySell],
			},
			// Auftrag vom 27.02.2021 01:31:42 Uhr
			statement.Section[buySell]{
				Name:     "order date",
				Optional: true,
				Patterns: []string{`Auftrag vom (?P<date>\d+.\d+.\d{4}) (?P<time>\d+:\d+:\d+).*`},
				Assign:   dateTime[buySell],
			},
			// Handelstag 05.05.2021 EUR 498,20-
			// Handelszeit 09:04
			statement.Section[buySell]{
				Name:     "trade date",
				Optional: true,
				Patterns: []string{`Handelstag (?P<date>\d+.\d+.\d{4}) .*`, `Handelszeit (?P<time>\d+:\d+)(.*)?`},
				Assign:   dateTime[buySell],
			},
			// Ausmachender Betrag 500,00- EUR
			statement.Section[buySell]{
				Name:     "amount",
				Optional: true,
				Patterns: []string{`Ausmachender Betrag (?P<amount>[.,\d]+)-? (?P<currency>\w{3})`},
				Assign:   amount[buySell],
			},
			// Wert Konto-Nr. Betrag zu Ihren Lasten
			// 01.10.2014 10/0000/000 EUR 1.930,17
			statement.Section[buySell]{
				Name:     "settlement",
				Optional: true,
				Patterns: []string{
					`Wert Konto-Nr\. Betrag zu Ihren (Gunsten|Lasten).*`,
					`\d+.\d+.\d{4} [/\d]+ (?P<currency>\w{3}) (?P<amount>[.,\d]+)`,
				},
				Assign: amount[buySell],
			},
		).
		Section(taxSections[buySell]()...).
		Section(feeSections[buySell]()...)

	return statement.NewDocumentType(BuySellType, `Kauf(.*)?|Verkauf(.*)?|Wertpapier Abrechnung Ausgabe Investmentfonds`).
		AddBlock(statement.NewBlock(buySellStart, tx)).
		AddBlock(statement.NewBlock(buySellStart, taxRefund(r)))
}

// taxRefund reads the refund printed below a buy or a sell, there is none when the amount is zero.
func taxRefund(r statement.SecurityResolver) statement.Pipeline {
	return statement.NewTransaction(
		func(*statement.Context) account { return statement.NewAccountTransaction(statement.TaxRefund) },
		statement.WrapNonZero[account],
	).Section(
		statement.Section[account]{
			Name:     "isin",
			Optional: true,
			Patterns: []string{`Gattungsbezeichnung ISIN`, `(?P<name>.*) (?P<isin>\w{12})`},
			Assign:   security[account](r),
		},
		// Wert Konto-Nr. Abrechnungs-Nr. Betrag zu Ihren Gunsten
		// 03.06.2015 10/3874/009 87966195 EUR 11,48
		statement.Section[account]{
			Name:     "refund",
			Optional: true,
			Patterns: []string{
				`Wert Konto-Nr\. Abrechnungs-Nr\. Betrag zu Ihren Gunsten`,
				`(?P<date>\d+.\d+.\d{4}) [/\d]+ \d+ (?P<currency>\w{3}) (?P<amount>[.,\d]+)`,
			},
			Assign: func(t account, v values, ctx *statement.Context) error {
				when, err := date.ParseDateTime(v.Get("date"), "")
				if err != nil {
					return err
				}
				if err := amount(t, v, ctx); err != nil {
					return err
				}
				t.SetDateTime(when)
				return nil
			},
		},
	)
}

func dividendDocument(r statement.SecurityResolver) *statement.DocumentType {
	subject := func(ctx *statement.Context) account {
		// flags and rates belong to the previous occurrence.
		ctx.Remove(statement.KeyNegative)
		ctx.Remove(statement.KeyExchangeRate)
		ctx.Remove(statement.KeyExchangeBase)
		ctx.Remove(statement.KeyExchangeTerm)
		return statement.NewAccountTransaction(statement.Dividend)
	}
	tx := statement.NewTransaction(subject, statement.WrapAccountTransaction).
		Section(
			// Gattungsbezeichnung ISIN
			// iS.EO G.B.C.1.5-10.5y.U.ETF DE Inhaber-Anteile DE000A0H0785
			statement.Section[account]{
				Name:     "isin",
				Patterns: []string{`Gattungsbezeichnung ISIN`, `(?P<name>.*) (?P<isin>\w{12})`},
				Assign:   security[account](r),
			},
			// STK 16,000 17.11.2014 17.11.2014 EUR 0,793806
			statement.Section[account]{
				Name:     "shares and date",
				Patterns: []string{`STK (?P<shares>\d+,\d+) (?P<date>\d+.\d+.\d{4}) .*`},
				Assign: func(t account, v values, ctx *statement.Context) error {
					when, err := date.ParseDateTime(v.Get("date"), "")
					if err != nil {
						return err
					}
					if err := shares(t, v, ctx); err != nil {
						return err
					}
					t.SetDateTime(when)
					return nil
				},
			},
			statement.Section[account]{
				Name:     "interest",
				Optional: true,
				Patterns: []string{`Zinsanteil \(Aussch.ttung\) (?P<currency>\w{3}) (?P<amount>[.,\d]+)`},
				Assign:   amount[account],
			},
			statement.Section[account]{
				Name:     "foreign dividend",
				Optional: true,
				Patterns: []string{`ausl.ndische Dividende (?P<currency>\w{3}) (?P<amount>[.,\d]+)`},
				Assign:   amount[account],
			},
			// 15.12.2014 12/3456/789 EUR/USD 1,24495 EUR 52,36
			statement.Section[account]{
				Name:     "exchange rate",
				Optional: true,
				Patterns: []string{`.* (?P<base>\w{3})/(?P<term>\w{3}) (?P<exchangeRate>[.,\d]+) \w{3} [.,\d]+`},
				Assign:   exchangeRate[account],
			},
		).
		Section(taxSections[account]()...).
		Section(feeSections[account]()...)

	return statement.NewDocumentType(DividendType, `Dividendengutschrift|Aussch.ttung`).
		AddBlock(statement.NewBlock(`^(Dividendengutschrift|Aussch.ttung f.r).*$`, tx))
}
