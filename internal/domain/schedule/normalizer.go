package schedule

import (
	"strings"

	"github.com/szgmu-hub/schedule-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ДИАГНОСТИКА ПРОПУСКОВ
// ══════════════════════════════════════════════════════════════════════════════

// SkipReason - причина, по которой запись не попала в расписание.
type SkipReason string

const (
	// ReasonUnparsableTime - строку времени не удалось разобрать в часы и минуты.
	ReasonUnparsableTime SkipReason = "unparsable-time"

	// ReasonUnmappedSlot - разобранное время не совпало ни с одним звонком
	// сетки своей категории.
	ReasonUnmappedSlot SkipReason = "unmapped-time-slot"

	// ReasonUnknownWeekday - токен дня недели не удалось сопоставить дню.
	ReasonUnknownWeekday SkipReason = "unknown-weekday"
)

// Skip - диагностика одной пропущенной записи. Пропуски накапливаются и
// возвращаются вызывающей стороне; они никогда не прерывают пакет.
type Skip struct {
	Reason   SkipReason
	Subject  string
	SourceID string
	Detail   string // исходный токен, вызвавший пропуск
}

// ══════════════════════════════════════════════════════════════════════════════
// НОРМАЛИЗАТОР
// ══════════════════════════════════════════════════════════════════════════════

// Normalizer превращает сырую запись в каноническое занятие. Чистое
// преобразование: без побочных эффектов, кроме необязательной диагностики.
type Normalizer struct {
	rings      *RingTable
	classifier *TypeClassifier
}

// NewNormalizer создаёт нормализатор над заданной сеткой звонков и
// классификатором типов.
func NewNormalizer(rings *RingTable, classifier *TypeClassifier) *Normalizer {
	return &Normalizer{rings: rings, classifier: classifier}
}

// Normalize переводит raw в Lesson. При непригодной записи возвращает
// ненулевой Skip; Lesson в этом случае пуст. Дата занятия здесь не
// рассчитывается - это задача мерджера.
func (n *Normalizer) Normalize(raw RawRecord) (Lesson, *Skip) {
	lessonType := n.classifier.Classify(raw.LessonType)

	day, err := shared.ParseWeekday(raw.DayName)
	if err != nil {
		return Lesson{}, &Skip{
			Reason:   ReasonUnknownWeekday,
			Subject:  raw.Subject,
			SourceID: raw.SourceID,
			Detail:   raw.DayName,
		}
	}

	start, err := shared.ParseClock(startToken(raw.PairTime))
	if err != nil {
		return Lesson{}, &Skip{
			Reason:   ReasonUnparsableTime,
			Subject:  raw.Subject,
			SourceID: raw.SourceID,
			Detail:   raw.PairTime,
		}
	}

	slot, err := n.rings.Resolve(lessonType.RingCategory(), start)
	if err != nil {
		return Lesson{}, &Skip{
			Reason:   ReasonUnmappedSlot,
			Subject:  raw.Subject,
			SourceID: raw.SourceID,
			Detail:   start.String(),
		}
	}

	// Подгруппы в лентах приходят в разном регистре; каноническая форма -
	// верхний регистр, сравнение всегда регистронезависимое.
	subgroup, _ := shared.NewSubgroup(raw.Subgroup)

	return Lesson{
		Subject:  strings.TrimSpace(raw.Subject),
		Type:     lessonType,
		Teacher:  strings.TrimSpace(raw.Teacher),
		Room:     strings.TrimSpace(raw.Room),
		Subgroup: subgroup,
		Week:     shared.WeekNumber(raw.WeekNumber),
		Day:      day,
		Slot:     slot,
		SourceID: raw.SourceID,
	}, nil
}

// startToken выделяет из сырого диапазона "9.00-10.30" токен начала пары.
// Одиночное время ("13:10") возвращается как есть.
func startToken(pairTime string) string {
	start, _, _ := strings.Cut(pairTime, "-")
	return strings.TrimSpace(start)
}
