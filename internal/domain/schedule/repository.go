package schedule

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// ИНТЕРФЕЙСЫ РЕПОЗИТОРИЕВ
// Контракты для внешних коллабораторов; реализации живут в infrastructure.
// ══════════════════════════════════════════════════════════════════════════════

// FeedProvider достаёт ленты сырых записей из API университета.
// Каждый внутренний срез - одна независимая лента (один schedule id).
type FeedProvider interface {
	// FetchFeeds ищет ленты по фильтру и загружает их записи.
	// Пустой результат - не ошибка: лент для фильтра может ещё не быть.
	FetchFeeds(ctx context.Context, filter FeedFilter) ([][]RawRecord, error)
}

// GroupRepository хранит профили подгрупп.
type GroupRepository interface {
	// Save создаёт или обновляет профиль подгруппы.
	Save(ctx context.Context, profile *GroupProfile) error

	// GetBySubgroup возвращает профиль по канонической подгруппе.
	// Возвращает shared.ErrNotFound, если профиль не найден.
	GetBySubgroup(ctx context.Context, subgroup string) (*GroupProfile, error)

	// List возвращает все профили; их обходит фоновый обновлятор.
	List(ctx context.Context) ([]*GroupProfile, error)
}

// SnapshotRepository хранит снимки объединённых расписаний.
type SnapshotRepository interface {
	// Save сохраняет снимок вместе с занятиями.
	Save(ctx context.Context, snapshot *ScheduleSnapshot) error

	// Latest возвращает последний снимок подгруппы.
	// Возвращает shared.ErrNotFound, если снимков ещё нет.
	Latest(ctx context.Context, subgroup string) (*ScheduleSnapshot, error)
}

// Cache кеширует объединённые расписания между запросами.
// Промах кеша - не ошибка: возвращается (nil, nil).
type Cache interface {
	Get(ctx context.Context, subgroup string, window SemesterWindow) (*UnifiedSchedule, error)
	Set(ctx context.Context, schedule *UnifiedSchedule, window SemesterWindow, ttl time.Duration) error
	Invalidate(ctx context.Context, subgroup string, window SemesterWindow) error
}
