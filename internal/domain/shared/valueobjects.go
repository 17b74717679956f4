// Package shared contains common domain types, errors, and value objects
// that are used across all domain packages.
package shared

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════
// Subgroup Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Subgroup represents the smallest timetable-addressable student group,
// e.g. "241Б". Upstream feeds are inconsistent about letter case, so the
// canonical form is uppercase and equality is case-insensitive.
type Subgroup string

// IsValid checks that the subgroup token is not blank.
func (s Subgroup) IsValid() bool {
	return strings.TrimSpace(string(s)) != ""
}

// String returns the canonical string representation.
func (s Subgroup) String() string {
	return string(s)
}

// Equal reports whether two subgroups denote the same group, ignoring case.
func (s Subgroup) Equal(other Subgroup) bool {
	return string(s) == string(other)
}

// NewSubgroup creates a canonical (trimmed, uppercased) Subgroup.
// Uppercasing covers both Latin and Cyrillic group letters.
func NewSubgroup(token string) (Subgroup, error) {
	canonical := strings.ToUpper(strings.TrimSpace(token))
	if canonical == "" {
		return "", ErrBlankSubgroup
	}
	return Subgroup(canonical), nil
}

// ═══════════════════════════════════════════════════════════════════════════
// WeekNumber Value Object
// ═══════════════════════════════════════════════════════════════════════════

// WeekNumber is the 1-based ordinal week within a semester. Upstream sources
// address lessons by week number instead of absolute dates.
type WeekNumber int

// IsValid checks that the week number is positive.
func (w WeekNumber) IsValid() bool {
	return w > 0
}

// Int returns the underlying int value.
func (w WeekNumber) Int() int {
	return int(w)
}

// NewWeekNumber creates a new WeekNumber with validation.
func NewWeekNumber(n int) (WeekNumber, error) {
	if n <= 0 {
		return 0, ErrWeekOutOfRange
	}
	return WeekNumber(n), nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Weekday Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Weekday is an ISO day of week: 1 = Monday .. 7 = Sunday.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// Tokens the upstream feeds use for day names. Keys are lowercased and
// stripped of dots, dashes and line breaks before lookup.
var weekdayTokens = map[string]Weekday{
	"пн": Monday, "понедельник": Monday, "mon": Monday, "monday": Monday,
	"вт": Tuesday, "вторник": Tuesday, "tue": Tuesday, "tuesday": Tuesday,
	"ср": Wednesday, "среда": Wednesday, "wed": Wednesday, "wednesday": Wednesday,
	"чт": Thursday, "четверг": Thursday, "thu": Thursday, "thursday": Thursday,
	"пт": Friday, "пятница": Friday, "fri": Friday, "friday": Friday,
	"сб": Saturday, "суббота": Saturday, "sat": Saturday, "saturday": Saturday,
	"вс": Sunday, "воскресенье": Sunday, "sun": Sunday, "sunday": Sunday,
}

var weekdayShortRU = [...]string{"Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Вс"}

var weekdayFullRU = [...]string{
	"Понедельник", "Вторник", "Среда", "Четверг", "Пятница", "Суббота", "Воскресенье",
}

// IsValid checks that the weekday is within [Monday, Sunday].
func (d Weekday) IsValid() bool {
	return d >= Monday && d <= Sunday
}

// Int returns the underlying int value (1 = Monday .. 7 = Sunday).
func (d Weekday) Int() int {
	return int(d)
}

// ShortRU returns the short Russian label, e.g. "Пн".
func (d Weekday) ShortRU() string {
	if !d.IsValid() {
		return "?"
	}
	return weekdayShortRU[d-1]
}

// FullRU returns the full Russian weekday name, e.g. "Понедельник".
func (d Weekday) FullRU() string {
	if !d.IsValid() {
		return "?"
	}
	return weekdayFullRU[d-1]
}

// String returns the English weekday name.
func (d Weekday) String() string {
	if !d.IsValid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return time.Weekday(int(d) % 7).String()
}

// FromTime converts a time.Weekday (Sunday = 0) to an ISO Weekday.
func FromTime(wd time.Weekday) Weekday {
	if wd == time.Sunday {
		return Sunday
	}
	return Weekday(wd)
}

// ParseWeekday parses an upstream day token: a day name in Russian or English
// (full or short form) or a 1-based numeric index.
func ParseWeekday(token string) (Weekday, error) {
	cleaned := strings.ToLower(strings.TrimSpace(token))
	cleaned = strings.NewReplacer(".", "", "-", "", "\n", "").Replace(cleaned)
	if cleaned == "" {
		return 0, ErrUnknownWeekday
	}

	if d, ok := weekdayTokens[cleaned]; ok {
		return d, nil
	}

	if n, err := strconv.Atoi(cleaned); err == nil {
		d := Weekday(n)
		if d.IsValid() {
			return d, nil
		}
	}

	return 0, WrapError("shared", "ParseWeekday", ErrInvalidFormat, token, ErrUnknownWeekday)
}

// NewWeekday creates a Weekday from a numeric index with validation.
func NewWeekday(n int) (Weekday, error) {
	d := Weekday(n)
	if !d.IsValid() {
		return 0, ErrWeekdayOutOfRange
	}
	return d, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// ClockTime Value Object
// ═══════════════════════════════════════════════════════════════════════════

// ClockTime is a wall-clock time of day with minute precision. Used for ring
// boundaries and lesson start/end times; it carries no date or zone.
type ClockTime struct {
	Hour   int
	Minute int
}

// Clock is a convenience constructor without validation (for static tables).
func Clock(hour, minute int) ClockTime {
	return ClockTime{Hour: hour, Minute: minute}
}

// IsValid checks that the clock time is a real time of day.
func (c ClockTime) IsValid() bool {
	return c.Hour >= 0 && c.Hour <= 23 && c.Minute >= 0 && c.Minute <= 59
}

// Minutes returns the number of minutes since midnight.
func (c ClockTime) Minutes() int {
	return c.Hour*60 + c.Minute
}

// Before reports whether c is earlier in the day than other.
func (c ClockTime) Before(other ClockTime) bool {
	return c.Minutes() < other.Minutes()
}

// Add returns the clock time the given number of minutes later, capped at
// 23:59 so a late fallback slot never rolls over to the next day.
func (c ClockTime) Add(minutes int) ClockTime {
	total := c.Minutes() + minutes
	if total > 23*60+59 {
		total = 23*60 + 59
	}
	return ClockTime{Hour: total / 60, Minute: total % 60}
}

// Sub returns the duration between c and an earlier clock time.
func (c ClockTime) Sub(earlier ClockTime) time.Duration {
	return time.Duration(c.Minutes()-earlier.Minutes()) * time.Minute
}

// At anchors the clock time on the given calendar date, keeping the date's
// location.
func (c ClockTime) At(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour, c.Minute, 0, 0, date.Location())
}

// String returns the "HH:MM" representation.
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// ParseClock parses an upstream hour/minute token. It tolerates ":" or "." as
// the separator, surrounding whitespace, and 1-2 digit components, e.g.
// "9.00", " 13:10 ", "9:5".
func ParseClock(token string) (ClockTime, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(token), ".", ":")
	parts := strings.SplitN(cleaned, ":", 2)
	if len(parts) != 2 {
		return ClockTime{}, WrapError("shared", "ParseClock", ErrInvalidFormat, token, ErrUnparsableClock)
	}

	hour, errH := strconv.Atoi(strings.TrimSpace(parts[0]))
	minute, errM := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errH != nil || errM != nil {
		return ClockTime{}, WrapError("shared", "ParseClock", ErrInvalidFormat, token, ErrUnparsableClock)
	}

	c := ClockTime{Hour: hour, Minute: minute}
	if !c.IsValid() {
		return ClockTime{}, WrapError("shared", "ParseClock", ErrValueOutOfRange, token, ErrUnparsableClock)
	}
	return c, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// AcademicYear Value Object
// ═══════════════════════════════════════════════════════════════════════════

// AcademicYear is the "2024/2025" style label the university uses to scope
// schedules.
type AcademicYear string

// IsValid checks the "YYYY/YYYY" shape with consecutive years.
func (y AcademicYear) IsValid() bool {
	parts := strings.Split(string(y), "/")
	if len(parts) != 2 {
		return false
	}
	first, err1 := strconv.Atoi(parts[0])
	second, err2 := strconv.Atoi(parts[1])
	return err1 == nil && err2 == nil && second == first+1
}

// String returns the string representation.
func (y AcademicYear) String() string {
	return string(y)
}

// NewAcademicYear builds the label for the academic year starting in
// startYear, e.g. NewAcademicYear(2024) == "2024/2025".
func NewAcademicYear(startYear int) AcademicYear {
	return AcademicYear(fmt.Sprintf("%d/%d", startYear, startYear+1))
}
