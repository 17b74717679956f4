package schedule

import (
	"time"

	"github.com/szgmu-hub/schedule-hub/internal/domain/shared"
	"github.com/szgmu-hub/schedule-hub/pkg/timeutil"
)

// ResolveDate переводит абстрактную координату "номер недели + день недели"
// в календарную дату, привязанную к началу семестра:
//
//	понедельник 1-й недели = понедельник недели, содержащей начало семестра;
//	дата = этот понедельник + (неделя-1)*7 + (день-1) дней.
//
// День недели: 1 = понедельник .. 7 = воскресенье. Неделя вне диапазона или
// некорректный день - ошибка InvalidInput.
func ResolveDate(semesterStart time.Time, week shared.WeekNumber, day shared.Weekday) (time.Time, error) {
	if !week.IsValid() {
		return time.Time{}, shared.ErrWeekOutOfRange
	}
	if !day.IsValid() {
		return time.Time{}, shared.ErrWeekdayOutOfRange
	}

	mondayOfWeek1 := timeutil.FloorToMonday(semesterStart)
	return mondayOfWeek1.AddDate(0, 0, (week.Int()-1)*7+(day.Int()-1)), nil
}
