package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestISOWeekday(t *testing.T) {
	// 2025-02-03 is a Monday, 2025-02-09 is a Sunday.
	assert.Equal(t, 1, ISOWeekday(Date(2025, 2, 3)))
	assert.Equal(t, 7, ISOWeekday(Date(2025, 2, 9)))
}

func TestFloorToMonday(t *testing.T) {
	monday := Date(2025, 2, 3)

	assert.Equal(t, monday, FloorToMonday(monday), "a Monday floors to itself")
	assert.Equal(t, monday, FloorToMonday(Date(2025, 2, 5)))
	assert.Equal(t, monday, FloorToMonday(Date(2025, 2, 9)), "Sunday belongs to the week started the previous Monday")
}

func TestFirstMondayOfMonth(t *testing.T) {
	// September 2025 starts on a Monday.
	assert.Equal(t, Date(2025, 9, 1), FirstMondayOfMonth(2025, time.September))
	// February 2025 starts on a Saturday; first Monday is the 3rd.
	assert.Equal(t, Date(2025, 2, 3), FirstMondayOfMonth(2025, time.February))
}

func TestFirstMondayOfMonth_InMoscowZone(t *testing.T) {
	got := FirstMondayOfMonth(2025, time.September)
	assert.Equal(t, MoscowTZ, got.Location())
	assert.Equal(t, time.Monday, got.Weekday())
}

func TestSameDate(t *testing.T) {
	a := DateTime(2025, 2, 3, 9, 0, 0)
	b := DateTime(2025, 2, 3, 23, 59, 59)
	assert.True(t, SameDate(a, b))
	assert.False(t, SameDate(a, Date(2025, 2, 4)))
}

func TestFormatRussian(t *testing.T) {
	assert.Equal(t, "03.02.2025", FormatRussian(Date(2025, 2, 3)))
}
