package schedule

import (
	"fmt"
	"time"

	"github.com/szgmu-hub/schedule-hub/internal/domain/shared"
	"github.com/szgmu-hub/schedule-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// СЕМЕСТР
// ══════════════════════════════════════════════════════════════════════════════

// Season - сезон семестра.
type Season string

const (
	SeasonAutumn Season = "autumn"
	SeasonSpring Season = "spring"
)

// UpstreamLabel возвращает название семестра в лексике API университета.
func (s Season) UpstreamLabel() string {
	if s == SeasonAutumn {
		return "осенний"
	}
	return "весенний"
}

// String возвращает строковое представление сезона.
func (s Season) String() string {
	return string(s)
}

// SemesterWindow - окно активного семестра. Вычисляется по требованию и не
// является авторитетным календарём: универ может опубликовать собственные
// даты, тогда вызывающая сторона подставляет окно явно.
type SemesterWindow struct {
	Season       Season
	AcademicYear shared.AcademicYear
	Start        time.Time
	End          time.Time
}

// String возвращает отображаемое описание окна, например
// "осенний 2025/2026 (01.09.2025 - 31.12.2025)".
func (w SemesterWindow) String() string {
	return fmt.Sprintf("%s %s (%s - %s)",
		w.Season.UpstreamLabel(), w.AcademicYear,
		timeutil.FormatRussian(w.Start), timeutil.FormatRussian(w.End))
}

// maxTeachingWeeks ограничивает счётчик учебных недель длиной семестра.
const maxTeachingWeeks = 20

// CurrentWeek возвращает 1-based номер учебной недели внутри окна на дату
// today. До начала семестра - всегда 1; после двадцатой недели счёт
// останавливается.
func (w SemesterWindow) CurrentWeek(today time.Time) int {
	start := timeutil.StartOfDay(w.Start)
	day := timeutil.StartOfDay(today)
	if day.Before(start) {
		return 1
	}
	week := int(day.Sub(start).Hours()/24)/7 + 1
	if week > maxTeachingWeeks {
		return maxTeachingWeeks
	}
	return week
}

// ══════════════════════════════════════════════════════════════════════════════
// ДЕТЕКТОР
// ══════════════════════════════════════════════════════════════════════════════

// CurrentWindow выводит окно активного семестра из текущей даты.
//
//	сентябрь-декабрь: осенний семестр года Y, метка "Y/Y+1";
//	февраль-май:      весенний семестр, метка "Y-1/Y";
//	январь:           ближайший весенний того же года;
//	июнь-август:      ближайший осенний того же года.
//
// Начало - первый понедельник сентября либо февраля. Чистая функция, без
// ввода-вывода.
func CurrentWindow(today time.Time) SemesterWindow {
	moscow := timeutil.ToMoscow(today)
	year := moscow.Year()

	switch {
	case moscow.Month() >= time.September:
		return AutumnWindow(year)
	case moscow.Month() >= time.June:
		// Летние каникулы: показываем предстоящий осенний семестр.
		return AutumnWindow(year)
	default:
		// Январь-май: весенний семестр текущего года (в январе - предстоящий).
		return SpringWindow(year)
	}
}

// AutumnWindow строит окно осеннего семестра, начинающегося в году startYear.
func AutumnWindow(startYear int) SemesterWindow {
	return SemesterWindow{
		Season:       SeasonAutumn,
		AcademicYear: shared.NewAcademicYear(startYear),
		Start:        timeutil.FirstMondayOfMonth(startYear, time.September),
		End:          timeutil.Date(startYear, 12, 31),
	}
}

// SpringWindow строит окно весеннего семестра года year (учебный год
// начался в year-1).
func SpringWindow(year int) SemesterWindow {
	return SemesterWindow{
		Season:       SeasonSpring,
		AcademicYear: shared.NewAcademicYear(year - 1),
		Start:        timeutil.FirstMondayOfMonth(year, time.February),
		End:          timeutil.Date(year, 6, 30),
	}
}
