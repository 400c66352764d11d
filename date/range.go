package date

import (
	"fmt"
	"time"
)

// Range represents a range of dates.
type Range struct{ From, To Date }

// NewRange return a well known period
func NewRange(d Date, period Period) Range {
	return Range{From: d.StartOf(period), To: d.EndOf(period)}
}

// ParseRange returns the range from start to end when start is set, otherwise the period
// containing end. An empty end means today.
func ParseRange(period, start, end string) (Range, error) {
	to := Today()
	if end != "" {
		var err error
		if to, err = Parse(end); err != nil {
			return Range{}, fmt.Errorf("invalid end date: %w", err)
		}
	}
	if start != "" {
		from, err := Parse(start)
		if err != nil {
			return Range{}, fmt.Errorf("invalid start date: %w", err)
		}
		if from.After(to) {
			return Range{}, fmt.Errorf("start date %s is after end date %s", from, to)
		}
		return Range{From: from, To: to}, nil
	}
	p, err := ParsePeriod(period)
	if err != nil {
		return Range{}, err
	}
	return NewRange(to, p), nil
}

// Today returns the current date.
func Today() Date { return New(time.Now().Date()) }

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool { return (!date.Before(r.From) && !date.After(r.To)) }

// return the period of this range if it's a standard one.
func (r Range) Period() (p Period, ok bool) {
	for _, p := range []Period{Daily, Weekly, Monthly, Quarterly, Yearly} {
		if NewRange(r.From, p) == r {
			return p, true
		}
	}
	return Daily, false
}

// Identifier compute a unique identifier for the Range.
// If the period is defined, use a short insighful name
func (r Range) Identifier() string {
	p, ok := r.Period()
	if !ok {
		return fmt.Sprintf("%s_%s", r.From, r.To)
	}

	switch p {
	case Weekly:
		year, week := r.From.Time().ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case Monthly:
		return fmt.Sprintf("%d-%02d", r.From.Year(), r.From.Month())
	case Quarterly:
		return fmt.Sprintf("%d-Q%d", r.From.Year(), (r.From.Month()-1)/3+1)
	case Yearly:
		return fmt.Sprintf("%d", r.From.Year())
	default:
		return r.From.String()
	}
}
