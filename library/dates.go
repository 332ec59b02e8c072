package library

import (
	"fmt"
	"time"
)

// DateLayout is the ISO calendar date format used in loan records.
const DateLayout = "2006-01-02"

const displayLayout = "January 2, 2006"

// ParseDate parses an ISO calendar date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// DateOf truncates t to its calendar day, expressed as midnight UTC, so it
// compares directly with values from ParseDate.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders an ISO date for display. Unparseable input is returned as is.
func FormatDate(iso string) string {
	t, err := ParseDate(iso)
	if err != nil {
		return iso
	}
	return t.Format(displayLayout)
}

// ReturnDateFor is the planned return date duration days after borrowDate.
func ReturnDateFor(borrowDate string, duration int) (string, error) {
	t, err := ParseDate(borrowDate)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, duration).Format(DateLayout), nil
}

// DurationBetween is the whole number of days from borrowDate to returnDate,
// never less than 1.
func DurationBetween(borrowDate, returnDate string) (int, error) {
	from, err := ParseDate(borrowDate)
	if err != nil {
		return 0, err
	}
	to, err := ParseDate(returnDate)
	if err != nil {
		return 0, err
	}
	days := int(to.Sub(from).Hours() / 24)
	if days < 1 {
		return 1, nil
	}
	return days, nil
}

// DefaultBorrowWindow is the prefilled borrow form: today through a week later.
func DefaultBorrowWindow(today time.Time) (borrowDate, returnDate string, duration int) {
	const days = 7
	day := DateOf(today)
	return day.Format(DateLayout), day.AddDate(0, 0, days).Format(DateLayout), days
}
