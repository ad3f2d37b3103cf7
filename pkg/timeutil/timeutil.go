// Package timeutil provides day-granularity time utilities for the progress
// engine. Streaks, daily quotas and the daily word sampler all hinge on the
// same definition of "calendar day", so it lives here and nowhere else.
// No external dependencies - uses only standard library.
package timeutil

import (
	"math"
	"time"
)

// Location is the product timezone used for day boundaries. Learners are
// treated as living in a single product timezone; per-learner timezones are
// a product decision that has not been made yet.
var Location = time.UTC

// Now returns the current time in the product timezone.
func Now() time.Time {
	return time.Now().In(Location)
}

// In converts a time to the product timezone.
func In(t time.Time) time.Time {
	return t.In(Location)
}

// StartOfDay returns the start of the day (00:00:00) in the product timezone.
func StartOfDay(t time.Time) time.Time {
	local := In(t)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, Location)
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	la, lb := In(a), In(b)
	return la.Year() == lb.Year() && la.YearDay() == lb.YearDay()
}

// DayDiff returns the number of calendar days from a to b (positive when b
// is after a). Time-of-day is stripped before comparing, so 23:59 on Monday
// and 00:01 on Tuesday differ by exactly one day. Rounding absorbs DST
// shifts, where adjacent day starts sit 23 or 25 hours apart.
func DayDiff(a, b time.Time) int {
	sa := StartOfDay(a)
	sb := StartOfDay(b)
	return int(math.Round(sb.Sub(sa).Hours() / 24))
}

// IsToday reports whether t falls on the current calendar day.
func IsToday(t time.Time) bool {
	return SameDay(t, Now())
}

// IsYesterday reports whether t falls on the calendar day before today.
func IsYesterday(t time.Time) bool {
	return SameDay(t, Now().AddDate(0, 0, -1))
}

// DayIndex returns the number of whole days between the Unix epoch and t in
// the product timezone. Every learner resolves the same index for the same
// calendar day, which is what makes the daily sampler ordering shared.
func DayIndex(t time.Time) int64 {
	start := StartOfDay(t)
	return start.Unix() / (24 * 60 * 60)
}

// AddDays returns t shifted by the given number of calendar days.
func AddDays(t time.Time, days int) time.Time {
	return In(t).AddDate(0, 0, days)
}

// Common date/time formats.
const (
	// FormatDate is the standard date format (YYYY-MM-DD).
	FormatDate = "2006-01-02"
	// FormatDateTime is the standard datetime format.
	FormatDateTime = "2006-01-02 15:04"
)

// FormatDateStr formats a time as a date string (YYYY-MM-DD) in the product
// timezone.
func FormatDateStr(t time.Time) string {
	return In(t).Format(FormatDate)
}

// ParseDate parses a date string (YYYY-MM-DD) in the product timezone.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(FormatDate, value, Location)
}
