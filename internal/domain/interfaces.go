package domain

import (
	"context"
	"time"
)

// EventRepo выгружает мероприятия из хранилища.
type EventRepo interface {
	// ListFutureEvents возвращает все мероприятия с датой не раньше from.
	ListFutureEvents(ctx context.Context, from time.Time) ([]Event, error)
	// ListEventsBetween возвращает мероприятия в диапазоне дат включительно.
	// Пустой ids означает отсутствие фильтра.
	ListEventsBetween(ctx context.Context, from, to time.Time, ids []string) ([]Event, error)
}

// OrganizationRepo отдаёт названия организаций.
type OrganizationRepo interface {
	OrganizationNames(ctx context.Context, ids []string) (map[string]string, error)
}

// DraftRepo управляет черновиками постов.
type DraftRepo interface {
	ExistingDraftKeys(ctx context.Context, eventIDs []string, statuses []DraftStatus) (map[DraftKey]struct{}, error)
	ScheduledTimes(ctx context.Context, statuses []DraftStatus) ([]time.Time, error)
	// InsertDrafts вставляет пачку строк атомарно.
	InsertDrafts(ctx context.Context, rows []DraftRow) error
}

// BestTimesProvider отдаёт недельную таблицу лучшего времени для платформы.
type BestTimesProvider interface {
	BestTimes(ctx context.Context, platform Platform) ([]BestTimeSlot, error)
}

// FolderService создаёт папки в Drive. Пустой parentPath означает корень.
type FolderService interface {
	// Configured возвращает ErrMissingServiceKey, если сервис не настроен.
	Configured() error
	CreateFolder(ctx context.Context, name, parentPath string) error
}

// RunNotifier сообщает об итогах прогона.
type RunNotifier interface {
	NotifyRun(ctx context.Context, result RunResult) error
}

// ScheduleRunner запускает генерацию расписания.
type ScheduleRunner interface {
	Run(ctx context.Context, req RunRequest) (RunResult, error)
}

// Cache используется для простых TTL-хранилищ.
type Cache interface {
	Once(ctx context.Context, key string, ttl time.Duration, fn func() error) error
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
}
