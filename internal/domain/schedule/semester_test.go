package schedule

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/szgmu-hub/schedule-hub/internal/domain/shared"
	"github.com/szgmu-hub/schedule-hub/pkg/timeutil"
)

func TestCurrentWindow(t *testing.T) {
	tests := []struct {
		name      string
		today     string // YYYY-MM-DD
		season    Season
		year      shared.AcademicYear
		startDate string
	}{
		{"mid autumn", "2025-10-10", SeasonAutumn, "2025/2026", "2025-09-01"},
		{"december still autumn", "2025-12-31", SeasonAutumn, "2025/2026", "2025-09-01"},
		{"february spring", "2025-02-01", SeasonSpring, "2024/2025", "2025-02-03"},
		{"may still spring", "2025-05-31", SeasonSpring, "2024/2025", "2025-02-03"},
		{"january points at the upcoming spring", "2025-01-15", SeasonSpring, "2024/2025", "2025-02-03"},
		{"summer vacation points at the upcoming autumn", "2025-06-15", SeasonAutumn, "2025/2026", "2025-09-01"},
		{"august vacation", "2025-08-30", SeasonAutumn, "2025/2026", "2025-09-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var y, m, d int
			_, err := fmt.Sscanf(tt.today, "%d-%d-%d", &y, &m, &d)
			assert.NoError(t, err)

			window := CurrentWindow(timeutil.Date(y, m, d))
			assert.Equal(t, tt.season, window.Season)
			assert.Equal(t, tt.year, window.AcademicYear)
			assert.Equal(t, tt.startDate, timeutil.FormatDateStr(window.Start))
		})
	}
}

func TestCurrentWindow_StartIsAlwaysMonday(t *testing.T) {
	for month := 1; month <= 12; month++ {
		window := CurrentWindow(timeutil.Date(2025, month, 15))
		assert.Equal(t, 1, timeutil.ISOWeekday(window.Start), "month %d", month)
		assert.True(t, window.Start.Before(window.End), "month %d", month)
	}
}

func TestSemesterWindow_CurrentWeek(t *testing.T) {
	window := AutumnWindow(2025) // starts 2025-09-01

	assert.Equal(t, 1, window.CurrentWeek(timeutil.Date(2025, 8, 20)), "before the start it is week 1")
	assert.Equal(t, 1, window.CurrentWeek(timeutil.Date(2025, 9, 1)))
	assert.Equal(t, 1, window.CurrentWeek(timeutil.Date(2025, 9, 7)))
	assert.Equal(t, 2, window.CurrentWeek(timeutil.Date(2025, 9, 8)))
	assert.Equal(t, maxTeachingWeeks, window.CurrentWeek(timeutil.Date(2026, 6, 1)), "clamped at the semester cap")
}

func TestSemesterWindow_String(t *testing.T) {
	window := SpringWindow(2025)
	assert.Equal(t, "весенний 2024/2025 (03.02.2025 - 30.06.2025)", window.String())
}
