package renderer

import (
	"fmt"
	"time"

	"github.com/etnz/statement"
)

// Report is the markdown view of a statement.Result.
type Report struct {
	Source   string
	Items    []Row
	Warnings []string
	Failures []string
}

// Row is one item of a Report. Zero values are left blank.
type Row struct {
	Kind     string
	Date     string
	Security string
	Shares   string
	Amount   string
	Tax      string
	Fee      string
}

// NewReport builds the view of res.
func NewReport(res *statement.Result) *Report {
	r := &Report{Source: res.Source}
	for _, it := range res.Items {
		row := Row{
			Kind:     string(it.Kind()),
			Date:     formatTime(it.Time()),
			Security: formatSecurity(it.Security()),
			Amount:   formatMoney(it.Amount()),
			Tax:      formatMoney(it.Tax()),
			Fee:      formatMoney(it.Fee()),
		}
		if !it.Shares().IsZero() {
			row.Shares = it.Shares().String()
		}
		r.Items = append(r.Items, row)
		for _, w := range it.Warnings() {
			r.Warnings = append(r.Warnings, fmt.Sprintf("%s %s: %v", row.Kind, row.Date, w))
		}
	}
	for _, err := range res.Failures {
		r.Failures = append(r.Failures, err.Error())
	}
	if res.Err != nil {
		r.Failures = append(r.Failures, res.Err.Error())
	}
	return r
}

func formatTime(t time.Time) string {
	switch {
	case t.IsZero():
		return ""
	case t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0:
		return t.Format(time.DateOnly)
	default:
		return t.Format("2006-01-02 15:04")
	}
}

func formatSecurity(s statement.Security) string {
	switch {
	case s.IsZero():
		return ""
	case s.Name() == "":
		return s.String()
	case s.ISIN() == "" && s.WKN() == "":
		return s.Name()
	default:
		return fmt.Sprintf("%s (%s)", s.Name(), s)
	}
}

func formatMoney(m statement.Money) string {
	if m.IsZero() {
		return ""
	}
	return m.StringFixed() + " " + m.Currency()
}
