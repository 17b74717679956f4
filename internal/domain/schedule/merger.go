package schedule

import (
	"sort"
	"time"

	"github.com/szgmu-hub/schedule-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ОБЪЕДИНЁННОЕ РАСПИСАНИЕ
// ══════════════════════════════════════════════════════════════════════════════

// UnifiedSchedule - итог объединения: хронологический список занятий одной
// подгруппы плюс диагностика пропусков. Экспортёры читают его, не изменяя.
type UnifiedSchedule struct {
	Subgroup      shared.Subgroup
	SemesterStart time.Time
	Lessons       []Lesson
	Skips         []Skip
}

// IsEmpty сообщает, что занятий нет (легитимный случай "расписания ещё нет").
func (s *UnifiedSchedule) IsEmpty() bool {
	return len(s.Lessons) == 0
}

// SkipCounts возвращает количество пропусков по причинам - для логов и
// пользовательских сводок.
func (s *UnifiedSchedule) SkipCounts() map[SkipReason]int {
	if len(s.Skips) == 0 {
		return nil
	}
	counts := make(map[SkipReason]int)
	for _, skip := range s.Skips {
		counts[skip.Reason]++
	}
	return counts
}

// ══════════════════════════════════════════════════════════════════════════════
// МЕРДЖЕР
// ══════════════════════════════════════════════════════════════════════════════

// Merger объединяет несколько лент сырых записей в одно расписание
// подгруппы. Количество лент произвольное: лекционная и семинарская - лишь
// типичный случай.
type Merger struct {
	normalizer *Normalizer
}

// NewMerger создаёт мерджер над заданным нормализатором.
func NewMerger(normalizer *Normalizer) *Merger {
	return &Merger{normalizer: normalizer}
}

// Merge нормализует каждую запись каждой ленты, фильтрует по подгруппе,
// рассчитывает даты, убирает дубликаты и сортирует результат.
//
// Пустая подгруппа - ошибка InvalidInput; выход за диапазон недели или дня
// при разрешении даты тоже прерывает весь вызов. Пропуски отдельных записей
// (нечитаемое время, незнакомый звонок) только накапливаются в диагностике.
// Пустой список лент - не ошибка: вернётся расписание без занятий.
func (m *Merger) Merge(sources [][]RawRecord, subgroup string, semesterStart time.Time) (*UnifiedSchedule, error) {
	target, err := shared.NewSubgroup(subgroup)
	if err != nil {
		return nil, err
	}

	result := &UnifiedSchedule{
		Subgroup:      target,
		SemesterStart: semesterStart,
	}

	// Дубликат разрешается в пользу лексикографически меньшего source id:
	// стабильная ранняя редакция выигрывает у повторной выгрузки.
	byKey := make(map[IdentityKey]int)

	for _, records := range sources {
		for _, raw := range records {
			lesson, skip := m.normalizer.Normalize(raw)
			if skip != nil {
				result.Skips = append(result.Skips, *skip)
				continue
			}
			if !lesson.Subgroup.Equal(target) {
				continue
			}

			date, err := ResolveDate(semesterStart, lesson.Week, lesson.Day)
			if err != nil {
				return nil, err
			}
			lesson.Date = date

			key := lesson.Key()
			if at, seen := byKey[key]; seen {
				if lesson.SourceID < result.Lessons[at].SourceID {
					result.Lessons[at] = lesson
				}
				continue
			}
			byKey[key] = len(result.Lessons)
			result.Lessons = append(result.Lessons, lesson)
		}
	}

	sortLessons(result.Lessons)
	return result, nil
}

// sortLessons задаёт детерминированный полный порядок занятий: дата, начало
// пары, категория (лекция < семинар < прочее), затем предмет и источник как
// финальные разделители равных.
func sortLessons(lessons []Lesson) {
	sort.Slice(lessons, func(i, j int) bool {
		a, b := lessons[i], lessons[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Slot.Start != b.Slot.Start {
			return a.Slot.Start.Before(b.Slot.Start)
		}
		if a.Slot.Category != b.Slot.Category {
			return a.Slot.Category.Rank() < b.Slot.Category.Rank()
		}
		if a.Subject != b.Subject {
			return a.Subject < b.Subject
		}
		return a.SourceID < b.SourceID
	})
}
