package schedule

import (
	"fmt"
	"time"

	"github.com/szgmu-hub/schedule-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ТИПЫ ЗАНЯТИЙ
// ══════════════════════════════════════════════════════════════════════════════

// LessonType определяет тип занятия. Источник присылает свободный текст
// ("лекционного", "семинарского", ...); классификатор сводит его к
// конечному перечислению.
type LessonType string

const (
	TypeLecture  LessonType = "lecture"
	TypeSeminar  LessonType = "seminar"
	TypePractice LessonType = "practice"
	TypeExam     LessonType = "exam"
	TypeOther    LessonType = "other"
)

// ShortRU возвращает короткую русскую метку типа занятия для экспорта.
func (t LessonType) ShortRU() string {
	switch t {
	case TypeLecture:
		return "Л"
	case TypeSeminar:
		return "С"
	case TypePractice:
		return "Пр"
	case TypeExam:
		return "Эк"
	default:
		return "?"
	}
}

// String возвращает строковое представление типа.
func (t LessonType) String() string {
	return string(t)
}

// RingCategory возвращает категорию звонков, по таблице которой ищется
// временной слот данного типа занятия. Практики идут по семинарской сетке;
// всё остальное без собственной сетки попадает в CategoryOther.
func (t LessonType) RingCategory() Category {
	switch t {
	case TypeLecture:
		return CategoryLecture
	case TypeSeminar, TypePractice:
		return CategorySeminar
	default:
		return CategoryOther
	}
}

// Category - категория сетки звонков: у лекций и семинаров разные таблицы
// временных слотов.
type Category string

const (
	CategoryLecture Category = "lecture"
	CategorySeminar Category = "seminar"
	CategoryOther   Category = "other"
)

// Rank задаёт порядок категорий при сортировке занятий с совпадающим
// временем: лекция < семинар < прочее.
func (c Category) Rank() int {
	switch c {
	case CategoryLecture:
		return 0
	case CategorySeminar:
		return 1
	default:
		return 2
	}
}

// String возвращает строковое представление категории.
func (c Category) String() string {
	return string(c)
}

// ══════════════════════════════════════════════════════════════════════════════
// ЗАНЯТИЕ
// ══════════════════════════════════════════════════════════════════════════════

// Lesson - каноническое занятие после нормализации. Date заполняется
// мерджером через ResolveDate и всегда согласована с (Week, Day, началом
// семестра) на момент разрешения.
type Lesson struct {
	Subject  string
	Type     LessonType
	Teacher  string // опционально
	Room     string // опционально
	Subgroup shared.Subgroup
	Week     shared.WeekNumber
	Day      shared.Weekday
	Date     time.Time // нулевое значение до разрешения
	Slot     TimeSlot
	SourceID string
}

// IdentityKey - ключ идентичности занятия. Два занятия с одинаковым ключом
// считаются дубликатами независимо от источника.
type IdentityKey struct {
	Subject  string
	Category Category
	Subgroup shared.Subgroup
	Week     shared.WeekNumber
	Day      shared.Weekday
	Sequence int
}

// Key возвращает ключ идентичности занятия.
func (l Lesson) Key() IdentityKey {
	return IdentityKey{
		Subject:  l.Subject,
		Category: l.Slot.Category,
		Subgroup: l.Subgroup,
		Week:     l.Week,
		Day:      l.Day,
		Sequence: l.Slot.Sequence,
	}
}

// StartAt возвращает момент начала занятия (дата + начало слота).
func (l Lesson) StartAt() time.Time {
	return l.Slot.Start.At(l.Date)
}

// EndAt возвращает момент окончания занятия.
func (l Lesson) EndAt() time.Time {
	return l.Slot.End.At(l.Date)
}

// Title возвращает заголовок занятия для календарных экспортов,
// например "№1 Л Анатомия".
func (l Lesson) Title() string {
	return fmt.Sprintf("№%s %s %s", l.Slot.Label(), l.Type.ShortRU(), l.Subject)
}
