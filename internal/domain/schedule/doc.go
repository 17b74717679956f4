// Package schedule содержит ядро обработки расписания СЗГМУ.
//
// Это движок временного разрешения и объединения расписаний. Пакет определяет:
//
//   - Сущности: Lesson, TimeSlot, UnifiedSchedule, GroupProfile, ScheduleSnapshot
//   - Value Objects (в пакете shared): Subgroup, WeekNumber, Weekday, ClockTime
//   - Компоненты конвейера: Normalizer, Merger, RingTable, ResolveDate, CurrentWindow
//   - Интерфейсы репозиториев: SnapshotRepository, GroupRepository, Cache, FeedProvider
//
// # Конвейер
//
// Сырые записи из нескольких лент (лекционной, семинарской, ...) проходят один путь:
//
//	RawRecord -> Normalizer (классификация типа, разбор времени, поиск звонка)
//	          -> Merger (фильтр по подгруппе, расчёт дат, дедупликация, сортировка)
//	          -> UnifiedSchedule -> экспортёры (iCal, Excel)
//
// Нормализация терпима к неконсистентным данным: запись с неразборчивым
// временем или с неизвестным звонком не роняет конвейер, а превращается в
// диагностику Skip. Ошибки InvalidInput (пустая подгруппа, неделя или день
// вне диапазона) прерывают весь вызов Merge.
//
// # Детерминизм
//
// Merge от одинаковых входов даёт байтово идентичный результат: порядок
// задаётся полным сравнением (дата, начало пары, категория, предмет,
// источник), дубликаты разрешаются лексикографически меньшим source id.
//
// Пакет не выполняет ввод-вывод; все компоненты - чистые функции над
// данными в памяти.
package schedule
