package reporting

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidGranularity = errors.New("period must be one of daily, weekly, monthly, yearly")

// Granularity is the width of a reporting period
type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
	Yearly  Granularity = "yearly"
)

// Valid reports whether g is a supported granularity
func (g Granularity) Valid() bool {
	switch g {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

// ParseGranularity converts user input into a Granularity
func ParseGranularity(s string) (Granularity, error) {
	g := Granularity(s)
	if !g.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidGranularity, s)
	}
	return g, nil
}

// PeriodKey returns the sortable key of the period containing t. Keys are
// computed in t's own location.
//
// Weeks start on Sunday. Days before the first Sunday of the year fall in
// week 00, so keys run from YYYY-W00 to YYYY-W53.
//
// PeriodKey panics on an invalid granularity.
func PeriodKey(t time.Time, g Granularity) string {
	switch g {
	case Daily:
		return t.Format("2006-01-02")
	case Weekly:
		return fmt.Sprintf("%04d-W%02d", t.Year(), sundayWeek(t))
	case Monthly:
		return t.Format("2006-01")
	case Yearly:
		return t.Format("2006")
	}
	panic(fmt.Sprintf("reporting: invalid granularity %q", string(g)))
}

func sundayWeek(t time.Time) int {
	yearDay := t.YearDay() - 1
	return (yearDay + 7 - int(t.Weekday())) / 7
}
