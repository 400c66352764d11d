package date

import (
	"fmt"
	"strings"
	"time"
)

// Period is a calendar period used to select transactions by date.
type Period int

func (p Period) String() string {
	switch p {
	case Daily:
		return "daily"
	case Weekly:
		return "weekly"
	case Monthly:
		return "monthly"
	case Quarterly:
		return "quarterly"
	case Yearly:
		return "yearly"
	default:
		panic(fmt.Sprintf("unknown period %d", p))
	}
}

const (
	Daily Period = iota
	Weekly
	Monthly
	Quarterly
	Yearly
)

// ParsePeriod accepts the period names and their singular nouns ("month" for "monthly").
func ParsePeriod(p string) (Period, error) {
	p = strings.ToLower(p)
	switch p {
	case "daily", "day":
		return Daily, nil
	case "weekly", "week":
		return Weekly, nil
	case "monthly", "month":
		return Monthly, nil
	case "quarterly", "quarter":
		return Quarterly, nil
	case "yearly", "year":
		return Yearly, nil
	default:
		return Daily, fmt.Errorf("unknown period %s", p)
	}
}

// StartOf returns the first day of the period containing d. Weeks start on Monday.
func (d Date) StartOf(period Period) Date {
	switch period {
	case Daily:
		return d
	case Weekly:
		back := (int(d.Time().Weekday()) + 6) % 7 // days since Monday
		return New(d.y, d.m, d.d-back)
	case Monthly:
		return New(d.y, d.m, 1)
	case Quarterly:
		return New(d.y, (d.m-1)/3*3+1, 1)
	case Yearly:
		return New(d.y, time.January, 1)
	default:
		panic(fmt.Sprintf("unknown period %d", period))
	}
}

// EndOf returns the last day of the period containing d.
func (d Date) EndOf(period Period) Date {
	if period == Daily {
		return d
	}
	if period == Weekly {
		start := d.StartOf(Weekly)
		return New(start.y, start.m, start.d+6)
	}
	// day 0 of a month is the last day of the previous one.
	switch start := d.StartOf(period); period {
	case Monthly:
		return New(start.y, start.m+1, 0)
	case Quarterly:
		return New(start.y, start.m+3, 0)
	default:
		return New(start.y+1, time.January, 0)
	}
}
