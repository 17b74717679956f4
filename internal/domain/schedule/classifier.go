package schedule

import "strings"

// TypeClassifier сводит свободный текст типа занятия из ленты к конечному
// LessonType по таблице подстрок. Новая лексика источника - изменение
// конфигурации, а не кода.
type TypeClassifier struct {
	rules []classifierRule
}

type classifierRule struct {
	substr string
	result LessonType
}

// NewTypeClassifier строит классификатор из упорядоченной таблицы правил:
// выигрывает первое правило, чья подстрока входит в описание типа.
func NewTypeClassifier(rules map[LessonType][]string) *TypeClassifier {
	c := &TypeClassifier{}
	// Фиксированный порядок обхода, чтобы классификация была детерминированной.
	for _, t := range []LessonType{TypeLecture, TypeSeminar, TypePractice, TypeExam} {
		for _, substr := range rules[t] {
			c.rules = append(c.rules, classifierRule{
				substr: strings.ToLower(strings.TrimSpace(substr)),
				result: t,
			})
		}
	}
	return c
}

// DefaultTypeClassifier возвращает таблицу под лексику API СЗГМУ
// ("лекционного", "семинарского") с англоязычными синонимами.
func DefaultTypeClassifier() *TypeClassifier {
	return NewTypeClassifier(map[LessonType][]string{
		TypeLecture:  {"лекцион", "лекция", "lecture"},
		TypeSeminar:  {"семинар", "seminar"},
		TypePractice: {"практич", "практ", "practice", "practical"},
		TypeExam:     {"экзамен", "exam"},
	})
}

// Classify возвращает тип занятия для исходного описания.
// Нераспознанное описание - TypeOther, без ошибки.
func (c *TypeClassifier) Classify(raw string) LessonType {
	needle := strings.ToLower(strings.TrimSpace(raw))
	if needle == "" {
		return TypeOther
	}
	for _, rule := range c.rules {
		if strings.Contains(needle, rule.substr) {
			return rule.result
		}
	}
	return TypeOther
}
