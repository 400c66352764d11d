package date

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const readDateFormat = "2006-1-2" // Permissive read date format (allows single-digit month/day).

// DateFormat is the format used to represent dates as strings in ISO-8601 format.
const DateFormat = "2006-01-02" // write date format

// statements print days as d.m.yyyy, but text extraction sometimes replaces the dots.
var localDateRegex = regexp.MustCompile(`^(\d{1,2})\D(\d{1,2})\D(\d{4})$`)

// clockRegex accepts hh:mm and hh:mm:ss.
var clockRegex = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)

// Date represent a date with no lower than day granularity.
type Date struct {
	y int
	m time.Month
	d int
}

// Month returns the month of the date.
func (d Date) Month() time.Month { return d.m }

// Year returns current year.
func (d Date) Year() int { return d.y }

// Day returns current day of the month.
func (d Date) Day() int { return d.d }

// Time returns a time.Time that is a canonical representation of that day (at midnight UTC).
func (d Date) Time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d == Date{} }

// New returns a normalized Date for the given year, month, and day.
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.Time().Date()
	return d
}

// Of returns the day of t, in t's location.
func Of(t time.Time) Date { return New(t.Date()) }

// Before reports whether the day d is before x.
func (d Date) Before(x Date) bool { return d.Time().Before(x.Time()) }

// After reports whether the day d is after x.
func (d Date) After(x Date) bool { return d.Time().After(x.Time()) }

// String format the date in its standard format.
func (d Date) String() string { return d.Time().Format(DateFormat) }

// At returns the instant of that day at the wall clock "hh:mm" or "hh:mm:ss" (UTC).
func (d Date) At(clock string) (time.Time, error) {
	m := clockRegex.FindStringSubmatch(clock)
	if m == nil {
		return time.Time{}, fmt.Errorf("invalid time %q want format hh:mm[:ss]", clock)
	}
	h, _ := strconv.Atoi(m[1])
	mi, _ := strconv.Atoi(m[2])
	s := 0
	if m[3] != "" {
		s, _ = strconv.Atoi(m[3])
	}
	if h > 23 || mi > 59 || s > 59 {
		return time.Time{}, fmt.Errorf("invalid time %q: out of range", clock)
	}
	return time.Date(d.y, d.m, d.d, h, mi, s, 0, time.UTC), nil
}

// Parse parses a Date from a string. It is lenient and accepts ISO formats like "2025-7-1"
// and the day first format printed on statements, like "01.07.2025".
func Parse(str string) (Date, error) {
	if m := localDateRegex.FindStringSubmatch(str); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if month < 1 || month > 12 || day < 1 || day > 31 {
			return Date{}, fmt.Errorf("invalid date %q: out of range", str)
		}
		d := New(year, time.Month(month), day)
		if d.d != day {
			// New normalizes 31.02 into march.
			return Date{}, fmt.Errorf("invalid date %q: no such day", str)
		}
		return d, nil
	}
	on, err := time.Parse(readDateFormat, str)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q want format %q or dd.mm.yyyy: %w", str, readDateFormat, err)
	}
	return New(on.Date()), nil
}

// MustParse is like Parse but panics on error.
func MustParse(str string) Date {
	d, err := Parse(str)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// ParseDateTime parses a statement day and an optional wall clock into an instant.
// An empty clock means midnight.
func ParseDateTime(day, clock string) (time.Time, error) {
	d, err := Parse(day)
	if err != nil {
		return time.Time{}, err
	}
	if clock == "" {
		return d.Time(), nil
	}
	return d.At(clock)
}

// UnmarshalJSON implements the json specific way to unmarshall a date from a json string.
func (j *Date) UnmarshalJSON(bytes []byte) error {
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	d, err := Parse(str)
	if err != nil {
		return err
	}
	*j = d
	return nil
}

func (j Date) MarshalJSON() ([]byte, error) {
	str := j.String()
	return json.Marshal(&str)
}

// check that a Date pointer is a valid json marshall/unmarshaller type.
var _ json.Marshaler = (*Date)(nil)
var _ json.Unmarshaler = (*Date)(nil)
