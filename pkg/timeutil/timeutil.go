// Package timeutil provides timezone utilities for the Moscow timezone (UTC+3).
// The university publishes all schedules in Moscow civil time, so every date
// computed by the schedule engine lives in this one fixed zone.
// No external dependencies - uses only standard library.
package timeutil

import (
	"time"
)

// MoscowTZ is the Moscow timezone (UTC+3, no DST).
// Russia abolished seasonal clock changes in 2014, so this is constant year-round.
var MoscowTZ = time.FixedZone("Europe/Moscow", 3*60*60)

// Now returns the current time in Moscow timezone.
func Now() time.Time {
	return time.Now().In(MoscowTZ)
}

// ToMoscow converts a time to Moscow timezone.
func ToMoscow(t time.Time) time.Time {
	return t.In(MoscowTZ)
}

// Date creates a midnight time in Moscow timezone with the given date.
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, MoscowTZ)
}

// DateTime creates a time in Moscow timezone with the given date and time.
func DateTime(year, month, day, hour, min, sec int) time.Time {
	return time.Date(year, time.Month(month), day, hour, min, sec, 0, MoscowTZ)
}

// StartOfDay returns the start of the day (00:00:00) in Moscow timezone.
func StartOfDay(t time.Time) time.Time {
	moscow := ToMoscow(t)
	return time.Date(moscow.Year(), moscow.Month(), moscow.Day(), 0, 0, 0, 0, MoscowTZ)
}

// ISOWeekday returns the ISO weekday of t: Monday = 1 .. Sunday = 7.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7 // Sunday
	}
	return wd
}

// FloorToMonday returns the Monday of the week containing t, at midnight
// in Moscow timezone. A Monday floors to itself.
func FloorToMonday(t time.Time) time.Time {
	moscow := ToMoscow(t)
	return StartOfDay(moscow.AddDate(0, 0, -(ISOWeekday(moscow) - 1)))
}

// FirstMondayOfMonth scans forward from the first day of the month until it
// hits a Monday. This is how the university anchors semester starts.
func FirstMondayOfMonth(year int, month time.Month) time.Time {
	day := time.Date(year, month, 1, 0, 0, 0, 0, MoscowTZ)
	for day.Weekday() != time.Monday {
		day = day.AddDate(0, 0, 1)
	}
	return day
}

// SameDate reports whether a and b fall on the same calendar date in Moscow
// timezone.
func SameDate(a, b time.Time) bool {
	am, bm := ToMoscow(a), ToMoscow(b)
	return am.Year() == bm.Year() && am.Month() == bm.Month() && am.Day() == bm.Day()
}

// Common date/time formats.
const (
	// FormatDate is the standard date format (YYYY-MM-DD).
	FormatDate = "2006-01-02"
	// FormatTime is the standard time format (HH:MM).
	FormatTime = "15:04"
	// FormatRussianDate is the Russian date format (DD.MM.YYYY) used in
	// exported schedules.
	FormatRussianDate = "02.01.2006"
)

// FormatMoscow formats a time in Moscow timezone with the given layout.
func FormatMoscow(t time.Time, layout string) string {
	return ToMoscow(t).Format(layout)
}

// FormatDateStr formats a time as a date string (YYYY-MM-DD) in Moscow timezone.
func FormatDateStr(t time.Time) string {
	return FormatMoscow(t, FormatDate)
}

// FormatRussian formats a time in Russian format (DD.MM.YYYY).
func FormatRussian(t time.Time) string {
	return FormatMoscow(t, FormatRussianDate)
}
