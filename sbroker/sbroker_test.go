package sbroker

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/etnz/statement"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

// summary is a comparable view of an item.
type summary struct {
	Kind     statement.Kind
	ISIN     string
	Date     string
	Shares   string
	Amount   string
	Currency string
	Tax      string
	Fee      string
}

func summarize(items []*statement.Item) []summary {
	var got []summary
	for _, it := range items {
		s := summary{
			Kind:     it.Kind(),
			ISIN:     it.Security().ISIN(),
			Shares:   it.Shares().String(),
			Amount:   it.Amount().StringFixed(),
			Currency: it.Amount().Currency(),
			Tax:      it.Tax().StringFixed(),
			Fee:      it.Fee().StringFixed(),
		}
		if !it.Time().IsZero() {
			s.Date = it.Time().Format(time.DateTime)
		}
		got = append(got, s)
	}
	return got
}

func extract(t *testing.T, lines ...string) *statement.Result {
	t.Helper()
	doc := statement.NewRawDocument("test.txt", strings.Join(lines, "\n"))
	res, err := New(statement.NewSecurities()).Extract(doc)
	if err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}
	return res
}

func TestBuySell(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  []summary
	}{
		{
			name: "sell",
			lines: []string{
				"S Broker AG & Co. KG",
				"Verkauf",
				"Gattungsbezeichnung ISIN",
				"ACME CORP DE000A0H0785",
				"Ausmachender Betrag 500,00- EUR",
			},
			want: []summary{{Kind: statement.Sell, ISIN: "DE000A0H0785", Shares: "0", Amount: "500.00", Currency: "EUR", Tax: "0.00", Fee: "0.00"}},
		},
		{
			name: "buy",
			lines: []string{
				"S Broker AG & Co. KG",
				"Kauf",
				"Gattungsbezeichnung ISIN",
				"ACME CORP DE000A0H0785",
				"Ausmachender Betrag 500,00- EUR",
			},
			want: []summary{{Kind: statement.Buy, ISIN: "DE000A0H0785", Shares: "0", Amount: "500.00", Currency: "EUR", Tax: "0.00", Fee: "0.00"}},
		},
		{
			name: "buy with fees and trade time",
			lines: []string{
				"Sparkasse Musterstadt",
				"Kauf",
				"Nominale Wertpapierbezeichnung ISIN (WKN)",
				"Stück 7,1535 BGF - WORLD TECHNOLOGY FUND LU0171310443 (A0BMAN)",
				"Auftrag vom 27.02.2021 01:31:42 Uhr",
				"Handelstag 05.05.2021 EUR 498,20-",
				"Handelszeit 09:02 Orderentgelt                EUR 10,90-",
				"Börse Stuttgart Börsengebühr EUR 2,29-",
				"Wert Konto-Nr. Betrag zu Ihren Lasten",
				"01.10.2014 10/0000/000 EUR 1.930,17",
			},
			want: []summary{{
				Kind: statement.Buy, ISIN: "LU0171310443", Date: "2021-05-05 09:02:00", Shares: "7.1535",
				Amount: "1930.17", Currency: "EUR", Tax: "0.00", Fee: "13.19",
			}},
		},
		{
			name: "order date only",
			lines: []string{
				"S Broker AG & Co. KG",
				"Verkauf",
				"STK 16,000 EUR 120,4000",
				"Auftrag vom 27.02.2021 01:31:42 Uhr",
				"Ausmachender Betrag 1.926,40 EUR",
			},
			want: []summary{{Kind: statement.Sell, Date: "2021-02-27 01:31:42", Shares: "16", Amount: "1926.40", Currency: "EUR", Tax: "0.00", Fee: "0.00"}},
		},
		{
			name: "dots replaced in dates",
			lines: []string{
				"S Broker AG & Co. KG",
				"Verkauf",
				"STK 16,000 EUR 120,4000",
				"Auftrag vom 27/02/2021 01:31:42 Uhr",
				"Ausmachender Betrag 1.926,40 EUR",
			},
			want: []summary{{Kind: statement.Sell, Date: "2021-02-27 01:31:42", Shares: "16", Amount: "1926.40", Currency: "EUR", Tax: "0.00", Fee: "0.00"}},
		},
		{
			name: "fund issue with rebated front load",
			lines: []string{
				"S Broker AG & Co. KG",
				"Wertpapier Abrechnung Ausgabe Investmentfonds",
				"Nominale Wertpapierbezeichnung ISIN (WKN)",
				"Stück 7,1535 BGF - WORLD TECHNOLOGY FUND LU0171310443 (A0BMAN)",
				"Kurswert 509,71- EUR",
				"Kundenbonifikation 40 % vom Ausgabeaufschlag 9,71 EUR",
				"Ausgabeaufschlag pro Anteil 5,00 %",
				"Ausmachender Betrag 500,00- EUR",
			},
			want: []summary{{Kind: statement.Buy, ISIN: "LU0171310443", Shares: "7.1535", Amount: "500.00", Currency: "EUR", Tax: "0.00", Fee: "14.56"}},
		},
		{
			name: "taxes printed twice are booked once",
			lines: []string{
				"S Broker AG & Co. KG",
				"Verkauf",
				"Gattungsbezeichnung ISIN",
				"ACME CORP DE000A0H0785",
				"Kapitalertragsteuer EUR 70,16",
				"Solidaritätszuschlag EUR 3,86",
				"einbehaltene Kapitalertragsteuer EUR 70,16",
				"Ausmachender Betrag 1.426,00 EUR",
			},
			want: []summary{{Kind: statement.Sell, ISIN: "DE000A0H0785", Shares: "0", Amount: "1426.00", Currency: "EUR", Tax: "74.02", Fee: "0.00"}},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := extract(t, tc.lines...)
			if diff := cmp.Diff(tc.want, summarize(res.Items)); diff != "" {
				t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuySell_RefundFlagDoesNotLeak(t *testing.T) {
	res := extract(t,
		"S Broker AG & Co. KG",
		"Verkauf",
		"Gattungsbezeichnung ISIN",
		"ACME CORP DE000A0H0785",
		"zu versteuern (negativ) EUR 20,00",
		"Kapitalertragsteuer EUR 5,00",
		"Ausmachender Betrag 500,00- EUR",
		"Kauf",
		"Gattungsbezeichnung ISIN",
		"ACME CORP DE000A0H0785",
		"Kapitalertragsteuer EUR 7,03",
		"Ausmachender Betrag 300,00 EUR",
	)
	want := []summary{
		{Kind: statement.Sell, ISIN: "DE000A0H0785", Shares: "0", Amount: "500.00", Currency: "EUR", Tax: "0.00", Fee: "0.00"},
		{Kind: statement.Buy, ISIN: "DE000A0H0785", Shares: "0", Amount: "300.00", Currency: "EUR", Tax: "7.03", Fee: "0.00"},
	}
	if diff := cmp.Diff(want, summarize(res.Items)); diff != "" {
		t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
	}
	if res.Items[0].Security().ID() != res.Items[1].Security().ID() {
		t.Errorf("same ISIN resolved to two securities")
	}
}

func TestTaxRefund(t *testing.T) {
	t.Run("refund", func(t *testing.T) {
		res := extract(t,
			"S Broker AG & Co. KG",
			"Verkauf",
			"Gattungsbezeichnung ISIN",
			"ACME CORP DE000A0H0785",
			"Ausmachender Betrag 500,00- EUR",
			"Wert Konto-Nr. Abrechnungs-Nr. Betrag zu Ihren Gunsten",
			"03.06.2015 10/3874/009 87966195 EUR 11,48",
		)
		want := []summary{
			{Kind: statement.Sell, ISIN: "DE000A0H0785", Shares: "0", Amount: "500.00", Currency: "EUR", Tax: "0.00", Fee: "0.00"},
			{Kind: statement.TaxRefund, ISIN: "DE000A0H0785", Date: "2015-06-03 00:00:00", Shares: "0", Amount: "11.48", Currency: "EUR", Tax: "0.00", Fee: "0.00"},
		}
		if diff := cmp.Diff(want, summarize(res.Items)); diff != "" {
			t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("zero refund is discarded", func(t *testing.T) {
		res := extract(t,
			"S Broker AG & Co. KG",
			"Kauf",
			"Ausmachender Betrag 500,00- EUR",
			"Wert Konto-Nr. Abrechnungs-Nr. Betrag zu Ihren Gunsten",
			"03.06.2015 10/3874/009 87966195 EUR 0,00",
		)
		if len(res.Items) != 1 || res.Items[0].Kind() != statement.Buy {
			t.Errorf("got %v, want a single buy", summarize(res.Items))
		}
		if len(res.Failures) != 0 {
			t.Errorf("got failures %v, want none", res.Failures)
		}
	})
}

func TestDividend(t *testing.T) {
	t.Run("foreign dividend", func(t *testing.T) {
		res := extract(t,
			"Sparkasse",
			"Dividendengutschrift",
			"Gattungsbezeichnung ISIN",
			"APPLE INC. US0378331005",
			"STK 16,000 17.11.2014 17.11.2014 USD 0,47",
			"ausländische Dividende USD 52,36",
			"davon anrechenbare US-Quellensteuer 15% USD 7,85",
			"15.12.2014 12/3456/789 EUR/USD 1,24495 EUR 35,75",
		)
		want := []summary{{
			Kind: statement.Dividend, ISIN: "US0378331005", Date: "2014-11-17 00:00:00", Shares: "16",
			Amount: "42.06", Currency: "EUR", Tax: "6.31", Fee: "0.00",
		}}
		if diff := cmp.Diff(want, summarize(res.Items)); diff != "" {
			t.Fatalf("Extract() mismatch (-want +got):\n%s", diff)
		}
		it := res.Items[0]
		if got, want := it.ForeignAmount().StringFixed(), "52.36"; got != want {
			t.Errorf("ForeignAmount() = %q, want %q", got, want)
		}
		if got, want := it.ExchangeRate().Decimal, decimal.RequireFromString("1.24495"); !got.Equal(want) {
			t.Errorf("ExchangeRate() = %v, want %v", got, want)
		}
	})

	t.Run("refund flag and rate end with their occurrence", func(t *testing.T) {
		res := extract(t,
			"Sparkasse",
			"Dividendengutschrift",
			"Gattungsbezeichnung ISIN",
			"APPLE INC. US0378331005",
			"STK 16,000 17.11.2014 17.11.2014 USD 0,47",
			"ausländische Dividende USD 52,36",
			"zu versteuern (negativ) EUR 6,31",
			"Kapitalertragsteuer EUR 5,00",
			"15.12.2014 12/3456/789 EUR/USD 1,24495 EUR 35,75",
			"Dividendengutschrift",
			"Gattungsbezeichnung ISIN",
			"APPLE INC. US0378331005",
			"STK 10,000 16.02.2015 16.02.2015 EUR 2,00",
			"ausländische Dividende EUR 20,00",
			"Kapitalertragsteuer EUR 3,00",
			"Solidaritätszuschlag USD 1,00",
		)
		want := []summary{
			{
				Kind: statement.Dividend, ISIN: "US0378331005", Date: "2014-11-17 00:00:00", Shares: "16",
				Amount: "42.06", Currency: "EUR", Tax: "0.00", Fee: "0.00",
			},
			{
				// the USD surcharge has no rate to be converted with.
				Kind: statement.Dividend, ISIN: "US0378331005", Date: "2015-02-16 00:00:00", Shares: "10",
				Amount: "20.00", Currency: "EUR", Tax: "3.00", Fee: "0.00",
			},
		}
		if diff := cmp.Diff(want, summarize(res.Items)); diff != "" {
			t.Fatalf("Extract() mismatch (-want +got):\n%s", diff)
		}
		if rate := res.Items[1].ExchangeRate(); rate.Valid {
			t.Errorf("ExchangeRate() = %v, want none", rate.Decimal)
		}
	})

	t.Run("decomposed umlauts", func(t *testing.T) {
		// "Ausschüttung" with u + combining diaeresis.
		res := extract(t,
			"Sparkasse",
			"Ausschu\u0308ttung fu\u0308r",
			"Gattungsbezeichnung ISIN",
			"iS.EO G.B.C.1.5-10.5y.U.ETF DE Inhaber-Anteile DE000A0H0785",
			"STK 16,000 17.11.2014 17.11.2014 EUR 0,793806",
			"Zinsanteil (Ausschu\u0308ttung) EUR 12,70",
		)
		if len(res.Items) != 1 {
			t.Fatalf("got %d items, want 1 (failures: %v)", len(res.Items), res.Failures)
		}
		if got, want := res.Items[0].Amount().StringFixed(), "12.70"; got != want {
			t.Errorf("Amount() = %q, want %q", got, want)
		}
	})

	t.Run("missing shares yields no item", func(t *testing.T) {
		res := extract(t,
			"Sparkasse",
			"Dividendengutschrift",
			"Gattungsbezeichnung ISIN",
			"APPLE INC. US0378331005",
			"ausländische Dividende USD 52,36",
		)
		if len(res.Items) != 0 {
			t.Errorf("got %v, want no item", summarize(res.Items))
		}
		if len(res.Failures) != 1 || !errors.Is(res.Failures[0], statement.ErrMandatorySectionUnmatched) {
			t.Errorf("got failures %v, want one ErrMandatorySectionUnmatched", res.Failures)
		}
	})
}

func TestIssueFee(t *testing.T) {
	got := IssueFee(decimal.RequireFromString("509.71"), decimal.NewFromInt(5), decimal.NewFromInt(40)).Round(2)
	if want := decimal.RequireFromString("14.56"); !got.Equal(want) {
		t.Errorf("IssueFee() = %v, want %v", got, want)
	}
}

func TestUnrecognized(t *testing.T) {
	doc := statement.NewRawDocument("other.txt", "Comdirect Bank\nKauf\nAusmachender Betrag 500,00- EUR")
	if _, err := New(statement.NewSecurities()).Extract(doc); !errors.Is(err, statement.ErrUnrecognizedDocument) {
		t.Errorf("Extract() error = %v, want ErrUnrecognizedDocument", err)
	}
}
