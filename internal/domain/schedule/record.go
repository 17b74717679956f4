package schedule

// RawRecord - строгая форма одной сырой записи расписания на границе
// ингеста. Инфраструктурный маппер переводит нетипизированный ответ API
// ровно в эту структуру; дальше нетипизированная форма не распространяется.
// Запись живёт только в течение одного вызова нормализации.
type RawRecord struct {
	// Subject - название дисциплины.
	Subject string

	// LessonType - исходная строка типа занятия ("лекционного", "семинарского", ...).
	LessonType string

	// Teacher - преподаватель (может быть пустым).
	Teacher string

	// Room - аудитория или адрес площадки (может быть пустым).
	Room string

	// PairTime - сырой диапазон времени пары, например "9.00-10.30" или "13:10".
	PairTime string

	// WeekNumber - номер учебной недели, 1-based.
	WeekNumber int

	// DayName - день недели: название ("пн", "понедельник") или индекс ("1").
	DayName string

	// Subgroup - токен подгруппы в исходном регистре.
	Subgroup string

	// SourceID - идентификатор ленты-источника.
	SourceID string

	// AcademicYear и Semester - контекст для отображения и фильтрации.
	AcademicYear string
	Semester     string
}

// FeedFilter - параметры поиска лент расписания в API университета.
// Все поля - списки: так устроен upstream-запрос findAll.
type FeedFilter struct {
	GroupStream  []string
	Speciality   []string
	CourseNumber []string
	AcademicYear []string
	LessonType   []string
	Semester     []string
}
