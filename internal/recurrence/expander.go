package recurrence

import (
	"errors"
	"time"
)

// DateLayout is the civil date format used throughout the booking domain.
// Dates carry no time zone; they are compared and stepped in wall-clock terms.
const DateLayout = "2006-01-02"

// MaxIterations bounds enumeration regardless of the requested end date,
// protecting the backing store from unbounded query load. 730 steps cover
// two years of daily occurrences.
const MaxIterations = 730

// RepeatType identifies the cadence applied to a seed booking.
type RepeatType string

const (
	// RepeatNone marks a booking that does not repeat. Generated occurrences
	// always carry this type so they never recurse.
	RepeatNone RepeatType = "no_repeat"
	// RepeatDaily steps one day at a time and applies the holiday exclusion.
	RepeatDaily RepeatType = "daily"
	// RepeatWeekly steps seven days at a time.
	RepeatWeekly RepeatType = "weekly"
	// RepeatMonthly advances one calendar month, preserving the seed's
	// day-of-month clamped to the last valid day of the target month.
	RepeatMonthly RepeatType = "monthly"
	// RepeatCustom steps one day at a time without the holiday exclusion.
	RepeatCustom RepeatType = "custom"
)

// Known reports whether the value is one of the supported repeat types.
func (t RepeatType) Known() bool {
	switch t {
	case RepeatNone, RepeatDaily, RepeatWeekly, RepeatMonthly, RepeatCustom:
		return true
	}
	return false
}

// Repeats reports whether the type produces occurrences beyond the seed.
func (t RepeatType) Repeats() bool {
	return t.Known() && t != RepeatNone
}

// HolidayCalendar vetoes candidate dates independent of conflict checking.
// Implementations substitute alternate regional calendars without touching
// the enumeration loop.
type HolidayCalendar interface {
	IsExcluded(date time.Time) bool
}

// RegionalCalendar is the fixed holiday calendar applied to daily cadences:
// every Friday is excluded, as are the first, third and fourth Saturdays of
// the month. The second Saturday (day-of-month 8 through 14) is a working day.
type RegionalCalendar struct{}

// IsExcluded implements HolidayCalendar.
func (RegionalCalendar) IsExcluded(date time.Time) bool {
	switch date.Weekday() {
	case time.Friday:
		return true
	case time.Saturday:
		day := date.Day()
		return day <= 7 || (day > 14 && day <= 28)
	}
	return false
}

// Candidate is a single enumerated occurrence date. Excluded candidates were
// vetoed by the holiday calendar and must not be conflict-checked or emitted.
type Candidate struct {
	Date     time.Time
	Excluded bool
}

// ErrUnknownRepeatType indicates enumeration was requested for a repeat type
// without a step rule. Callers validate the type at the boundary; the
// enumerator keeps this as a defensive stop.
var ErrUnknownRepeatType = errors.New("recurrence: unknown repeat type")

// Enumerate produces the ordered candidate dates for a seed booking date.
//
// The walk starts at seedDate (the seed's own date is always the first
// candidate; callers filter the seed duplicate after emission) and advances
// per the repeat type's step rule. It stops when the inclusive endDate is
// passed, or unconditionally after MaxIterations steps when endDate is nil
// or far in the future. The holiday calendar is consulted only for the
// daily cadence; weekly, monthly and custom cadences are never filtered.
//
// Enumeration is deterministic and pure: the same inputs always yield the
// same candidate sequence.
func Enumerate(seedDate time.Time, repeatType RepeatType, endDate *time.Time, calendar HolidayCalendar) ([]Candidate, error) {
	if !repeatType.Repeats() {
		return nil, ErrUnknownRepeatType
	}

	seedDate = truncateToDay(seedDate)
	var until time.Time
	if endDate != nil {
		until = truncateToDay(*endDate)
	}

	seedDay := seedDate.Day()
	current := seedDate
	candidates := make([]Candidate, 0)

	for iteration := 0; iteration < MaxIterations; iteration++ {
		if endDate != nil && current.After(until) {
			break
		}

		excluded := repeatType == RepeatDaily && calendar != nil && calendar.IsExcluded(current)
		candidates = append(candidates, Candidate{Date: current, Excluded: excluded})

		next, err := step(current, repeatType, seedDay)
		if err != nil {
			return candidates, err
		}
		current = next
	}

	return candidates, nil
}

func step(current time.Time, repeatType RepeatType, seedDay int) (time.Time, error) {
	switch repeatType {
	case RepeatDaily, RepeatCustom:
		return current.AddDate(0, 0, 1), nil
	case RepeatWeekly:
		return current.AddDate(0, 0, 7), nil
	case RepeatMonthly:
		return nextMonthClamped(current, seedDay), nil
	default:
		return time.Time{}, ErrUnknownRepeatType
	}
}

// nextMonthClamped advances one calendar month from current, landing on the
// seed's original day-of-month clamped to the last valid day of the target
// month. Stepping from a clamped date recovers the original day when the
// target month allows it (Jan 31 -> Feb 29 -> Mar 31).
func nextMonthClamped(current time.Time, seedDay int) time.Time {
	firstOfNext := time.Date(current.Year(), current.Month(), 1, 0, 0, 0, 0, current.Location()).AddDate(0, 1, 0)
	day := seedDay
	if last := daysInMonth(firstOfNext.Year(), firstOfNext.Month()); day > last {
		day = last
	}
	return time.Date(firstOfNext.Year(), firstOfNext.Month(), day, 0, 0, 0, 0, current.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseDate parses a civil date string in DateLayout.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}

// FormatDate renders a civil date string in DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
