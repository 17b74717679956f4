package schedule

import (
	"sort"
	"strconv"
	"time"

	"github.com/szgmu-hub/schedule-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ВРЕМЕННЫЕ СЛОТЫ
// ══════════════════════════════════════════════════════════════════════════════

// TimeSlot - канонический звонок: позиция пары в сетке своей категории.
// Статическая конфигурация, не изменяется во время работы.
type TimeSlot struct {
	Category Category
	Sequence int // 0-based позиция в сетке; -1 у запасного слота
	Start    shared.ClockTime
	End      shared.ClockTime
}

// Duration возвращает длительность слота.
func (s TimeSlot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// IsFallback сообщает, что слот не найден в сетке и построен как запасной
// вокруг разобранного времени начала.
func (s TimeSlot) IsFallback() bool {
	return s.Sequence < 0
}

// Label возвращает человекочитаемый номер пары ("1", "2", ...), либо "?"
// для запасного слота.
func (s TimeSlot) Label() string {
	if s.IsFallback() {
		return "?"
	}
	return strconv.Itoa(s.Sequence + 1)
}

// fallbackDuration - длительность запасного слота для занятий без сетки
// звонков (стандартная пара).
const fallbackDuration = 90 // минут

// ══════════════════════════════════════════════════════════════════════════════
// СЕТКА ЗВОНКОВ
// ══════════════════════════════════════════════════════════════════════════════

// RingTable - статический реестр звонков: категория -> упорядоченный список
// слотов. Заполняется один раз при старте процесса из конфигурации.
type RingTable struct {
	slots map[Category][]TimeSlot
}

// NewRingTable строит реестр из пар (начало, конец) по категориям.
// Слоты каждой категории сортируются по началу и нумеруются заново.
func NewRingTable(rings map[Category][]TimeSlot) *RingTable {
	table := &RingTable{slots: make(map[Category][]TimeSlot, len(rings))}
	for category, slots := range rings {
		ordered := make([]TimeSlot, len(slots))
		copy(ordered, slots)
		sort.Slice(ordered, func(i, j int) bool {
			return ordered[i].Start.Before(ordered[j].Start)
		})
		for i := range ordered {
			ordered[i].Category = category
			ordered[i].Sequence = i
		}
		table.slots[category] = ordered
	}
	return table
}

// DefaultRingTable возвращает сетку звонков СЗГМУ: лекционные пары
// 45+5+45 минут и семинарские половины пар по 90 минут.
func DefaultRingTable() *RingTable {
	return NewRingTable(map[Category][]TimeSlot{
		CategoryLecture: {
			{Start: shared.Clock(9, 0), End: shared.Clock(10, 35)},
			{Start: shared.Clock(10, 55), End: shared.Clock(12, 30)},
			{Start: shared.Clock(13, 10), End: shared.Clock(14, 45)},
			{Start: shared.Clock(15, 0), End: shared.Clock(16, 35)},
			{Start: shared.Clock(16, 45), End: shared.Clock(18, 20)},
		},
		CategorySeminar: {
			{Start: shared.Clock(9, 0), End: shared.Clock(10, 30)},
			{Start: shared.Clock(10, 45), End: shared.Clock(12, 15)},
			{Start: shared.Clock(13, 10), End: shared.Clock(14, 40)},
			{Start: shared.Clock(14, 55), End: shared.Clock(16, 25)},
		},
	})
}

// Slots возвращает слоты категории в порядке следования.
func (t *RingTable) Slots(category Category) []TimeSlot {
	return t.slots[category]
}

// Resolve находит слот категории, начинающийся точно в указанное время.
//
// Для категории без собственной сетки (CategoryOther или незнакомая
// категория) возвращается запасной слот с Sequence = -1, привязанный к
// разобранному началу: запись остаётся в расписании, но помечена как не
// сопоставленная сетке. Для известной категории отсутствие слота - ошибка
// ErrRingNotFound; её обрабатывает нормализатор, а не весь конвейер.
func (t *RingTable) Resolve(category Category, start shared.ClockTime) (TimeSlot, error) {
	slots, ok := t.slots[category]
	if !ok {
		return TimeSlot{
			Category: CategoryOther,
			Sequence: -1,
			Start:    start,
			End:      start.Add(fallbackDuration),
		}, nil
	}

	for _, slot := range slots {
		if slot.Start == start {
			return slot, nil
		}
	}
	return TimeSlot{}, shared.ErrRingNotFound
}
