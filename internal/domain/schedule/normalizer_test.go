package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/szgmu-hub/schedule-hub/internal/domain/shared"
)

func newTestNormalizer() *Normalizer {
	return NewNormalizer(DefaultRingTable(), DefaultTypeClassifier())
}

func rawSeminar(subject, pairTime string) RawRecord {
	return RawRecord{
		Subject:    subject,
		LessonType: "семинарского",
		Teacher:    "Иванова И.И.",
		Room:       "Пискарёвский пр., 47",
		PairTime:   pairTime,
		WeekNumber: 2,
		DayName:    "вт",
		Subgroup:   "241б",
		SourceID:   "100",
	}
}

func TestNormalizer_Normalize(t *testing.T) {
	n := newTestNormalizer()

	lesson, skip := n.Normalize(rawSeminar("Анатомия", "9.00-10.30"))
	require.Nil(t, skip)

	assert.Equal(t, "Анатомия", lesson.Subject)
	assert.Equal(t, TypeSeminar, lesson.Type)
	assert.Equal(t, shared.Subgroup("241Б"), lesson.Subgroup, "subgroup is canonicalized to uppercase")
	assert.Equal(t, shared.WeekNumber(2), lesson.Week)
	assert.Equal(t, shared.Tuesday, lesson.Day)
	assert.Equal(t, 0, lesson.Slot.Sequence)
	assert.Equal(t, shared.Clock(9, 0), lesson.Slot.Start)
	assert.Equal(t, shared.Clock(10, 30), lesson.Slot.End)
	assert.True(t, lesson.Date.IsZero(), "date resolution is the merger's job")
}

func TestNormalizer_UnmappedSlot(t *testing.T) {
	n := newTestNormalizer()

	raw := rawSeminar("Гистология", "09:50")
	raw.LessonType = "лекционного"

	_, skip := n.Normalize(raw)
	require.NotNil(t, skip)
	assert.Equal(t, ReasonUnmappedSlot, skip.Reason)
	assert.Equal(t, "Гистология", skip.Subject)
	assert.Equal(t, "09:50", skip.Detail)
}

func TestNormalizer_UnparsableTime(t *testing.T) {
	n := newTestNormalizer()

	for _, pairTime := range []string{"", "после обеда", "9", "-"} {
		_, skip := n.Normalize(rawSeminar("Анатомия", pairTime))
		require.NotNil(t, skip, "pairTime %q", pairTime)
		assert.Equal(t, ReasonUnparsableTime, skip.Reason, "pairTime %q", pairTime)
	}
}

func TestNormalizer_UnknownWeekday(t *testing.T) {
	n := newTestNormalizer()

	raw := rawSeminar("Анатомия", "9.00-10.30")
	raw.DayName = "какой-то день"

	_, skip := n.Normalize(raw)
	require.NotNil(t, skip)
	assert.Equal(t, ReasonUnknownWeekday, skip.Reason)
	assert.Equal(t, "какой-то день", skip.Detail)
}

func TestNormalizer_UnrecognizedTypeGetsFallbackSlot(t *testing.T) {
	n := newTestNormalizer()

	raw := rawSeminar("Физкультура", "17.05")
	raw.LessonType = "факультативного"

	lesson, skip := n.Normalize(raw)
	require.Nil(t, skip, "an unrecognized lesson type is kept, not skipped")
	assert.Equal(t, TypeOther, lesson.Type)
	assert.True(t, lesson.Slot.IsFallback())
	assert.Equal(t, shared.Clock(17, 5), lesson.Slot.Start)
}

func TestNormalizer_TimeRangeVariants(t *testing.T) {
	n := newTestNormalizer()

	// The start token wins regardless of separator style and range form.
	for _, pairTime := range []string{"9.00-10.30", "9:00 - 10:30", " 9.00 ", "09:00"} {
		lesson, skip := n.Normalize(rawSeminar("Анатомия", pairTime))
		require.Nil(t, skip, "pairTime %q", pairTime)
		assert.Equal(t, shared.Clock(9, 0), lesson.Slot.Start, "pairTime %q", pairTime)
	}
}

func TestLesson_IdentityKeyIgnoresSource(t *testing.T) {
	n := newTestNormalizer()

	a, skip := n.Normalize(rawSeminar("Анатомия", "9.00-10.30"))
	require.Nil(t, skip)

	rawB := rawSeminar("Анатомия", "9.00-10.30")
	rawB.SourceID = "50"
	rawB.Subgroup = "241Б"
	b, skip := n.Normalize(rawB)
	require.Nil(t, skip)

	assert.Equal(t, a.Key(), b.Key(), "identity key must not depend on source id or subgroup case")
}

func TestLesson_Title(t *testing.T) {
	n := newTestNormalizer()

	lesson, skip := n.Normalize(rawSeminar("Анатомия", "13.10"))
	require.Nil(t, skip)
	assert.Equal(t, "№3 С Анатомия", lesson.Title())
}
