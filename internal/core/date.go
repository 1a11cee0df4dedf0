package core

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the zero-padded calendar date format used by every stored
// date. Lexicographic order on this format equals chronological order.
const DateLayout = "2006-01-02"

// Date is a calendar date in YYYY-MM-DD form.
type Date string

var (
	ErrInvalidDate = errors.New("invalid date")
	ErrEmptyDate   = errors.New("date cannot be empty")
)

// ParseDate validates s and returns it as a Date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", ErrInvalidDate
	}
	return Date(s), nil
}

// NewDate creates a Date from year, month, day. Out of range values are
// normalized the way time.Date does.
func NewDate(year, month, day int) Date {
	return Date(time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Format(DateLayout))
}

func (d Date) String() string {
	return string(d)
}

func (d Date) Validate() error {
	if d == "" {
		return ErrEmptyDate
	}
	if _, err := time.Parse(DateLayout, string(d)); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// Time returns the date at UTC midnight.
func (d Date) Time() (time.Time, bool) {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// YearMonth reads the first two dash-separated components. Components that
// are missing or not numeric come back as 0.
func (d Date) YearMonth() (year, month int) {
	parts := strings.SplitN(string(d), "-", 3)
	if len(parts) > 0 {
		year, _ = strconv.Atoi(parts[0])
	}
	if len(parts) > 1 {
		month, _ = strconv.Atoi(parts[1])
	}
	return year, month
}

// AddMonthsClamped moves the date n months forward, clamping the day to the
// last day of the target month (Jan 31 + 1 month = Feb 28/29).
func (d Date) AddMonthsClamped(n int) (Date, bool) {
	t, ok := d.Time()
	if !ok {
		return d, false
	}
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	lastDay := time.Date(first.Year(), first.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return Date(time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC).Format(DateLayout)), true
}

// ToDateString renders t as YYYY-MM-DD in the local time zone.
func ToDateString(t time.Time) Date {
	return Date(t.In(time.Local).Format(DateLayout))
}

// FormatDate re-renders YYYY-MM-DD as DD.MM.YYYY. Input is not validated;
// missing components render as empty strings.
func FormatDate(d Date) string {
	parts := strings.SplitN(string(d), "-", 3)
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	return parts[2] + "." + parts[1] + "." + parts[0]
}

// FormatDateRange returns a single formatted date when start equals end.
func FormatDateRange(start, end Date) string {
	if start == end {
		return FormatDate(start)
	}
	return FormatDate(start) + " - " + FormatDate(end)
}
