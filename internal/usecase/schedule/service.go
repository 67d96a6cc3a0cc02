// Package schedule собирает прогон генератора расписания: выгрузка мероприятий,
// папки в Drive, черновики по окнам, оптимизация времени и сохранение.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"social-scheduler/internal/domain"
	"social-scheduler/internal/infra/metrics"
	"social-scheduler/internal/usecase/brand"
	"social-scheduler/internal/usecase/caption"
	"social-scheduler/internal/usecase/optimizer"
	"social-scheduler/internal/usecase/strategy"
)

const (
	// LookaheadDays: горизонт генерации черновиков.
	LookaheadDays = 56
	// InsertBatchSize: число строк в одной вставке.
	InsertBatchSize = 50

	aiModel           = "schedule-generator"
	noEventsMessage   = "No upcoming events in draft window"
	brandMissTemplate = "No brand match for event: %s"
)

// Deps: внешние зависимости сервиса. BestTimes и Notifier необязательны.
type Deps struct {
	Events    domain.EventRepo
	Orgs      domain.OrganizationRepo
	Drafts    domain.DraftRepo
	Folders   domain.FolderService
	BestTimes domain.BestTimesProvider
	Notifier  domain.RunNotifier
}

// Service запускает генерацию расписания.
type Service struct {
	deps Deps
	loc  *time.Location
	log  zerolog.Logger
	now  func() time.Time
}

var _ domain.ScheduleRunner = (*Service)(nil)

// NewService создаёт сервис. Все календарные вычисления идут в loc.
func NewService(deps Deps, loc *time.Location, logger zerolog.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{deps: deps, loc: loc, log: logger, now: time.Now}
}

// WithClock подменяет источник времени.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Run выполняет один прогон. Ошибка возвращается только для фатальных случаев:
// не настроен Drive или не удалось прочитать мероприятия и черновики.
func (s *Service) Run(ctx context.Context, req domain.RunRequest) (domain.RunResult, error) {
	start := time.Now()
	logger := s.log.With().Str("job_id", req.ID).Str("cause", string(req.Cause)).Logger()

	result, err := s.run(ctx, req, logger)
	metrics.ObserveRun(string(req.Cause), start, err)
	if err != nil {
		logger.Error().Err(err).Msg("schedule: прогон завершился ошибкой")
		s.notify(ctx, logger, domain.RunResult{OK: false, Message: err.Error(), Errors: []string{}})
		return domain.RunResult{}, err
	}
	logger.Info().
		Int("events", result.EventsProcessed).
		Int("created", result.DraftsCreated).
		Int("skipped", result.DraftsSkipped).
		Int("dropped", result.DraftsDropped).
		Int("folders", result.FoldersCreated).
		Int("errors", len(result.Errors)).
		Dur("took", time.Since(start)).
		Msg("schedule: прогон завершён")
	s.notify(ctx, logger, result)
	return result, nil
}

func (s *Service) run(ctx context.Context, req domain.RunRequest, logger zerolog.Logger) (domain.RunResult, error) {
	if err := s.deps.Folders.Configured(); err != nil {
		return domain.RunResult{}, err
	}

	now := s.now().In(s.loc)
	today := strategy.DayStart(now)
	result := domain.RunResult{Errors: []string{}}

	future, err := s.deps.Events.ListFutureEvents(ctx, today)
	if err != nil {
		return domain.RunResult{}, fmt.Errorf("%w: future events: %w", domain.ErrEventsQuery, err)
	}
	events, err := s.deps.Events.ListEventsBetween(ctx, today, today.AddDate(0, 0, LookaheadDays), req.EventIDs)
	if err != nil {
		return domain.RunResult{}, fmt.Errorf("%w: draft window: %w", domain.ErrEventsQuery, err)
	}

	orgNames := s.organizationNames(ctx, logger, future, events)
	withOrgNames(future, orgNames)
	withOrgNames(events, orgNames)

	result.FoldersCreated = s.provisionFolders(ctx, logger, future)

	if len(events) == 0 {
		result.OK = true
		result.Message = noEventsMessage
		return result, nil
	}

	eventIDs := make([]string, 0, len(events))
	for _, e := range events {
		eventIDs = append(eventIDs, e.ID)
	}
	existing, err := s.deps.Drafts.ExistingDraftKeys(ctx, eventIDs, domain.DedupStatuses)
	if err != nil {
		return domain.RunResult{}, fmt.Errorf("%w: existing drafts: %w", domain.ErrEventsQuery, err)
	}
	scheduled, err := s.deps.Drafts.ScheduledTimes(ctx, domain.PendingStatuses)
	if err != nil {
		return domain.RunResult{}, fmt.Errorf("%w: scheduled drafts: %w", domain.ErrEventsQuery, err)
	}

	bestTimes := s.loadBestTimes(ctx, logger)

	var slots []domain.DraftSlot
	for _, event := range events {
		b, ok := brand.Match(event.Name, event.OrganizationName)
		if !ok {
			metrics.BrandMissesTotal.Inc()
			result.Errors = append(result.Errors, fmt.Sprintf(brandMissTemplate, event.Name))
			continue
		}
		result.EventsProcessed++
		logger.Debug().
			Str("event_id", event.ID).
			Str("brand", b.Name).
			Str("account", b.Account()).
			Msg("schedule: бренд мероприятия")
		eventSlots, skipped := buildSlots(event, b, now, existing)
		result.DraftsSkipped += skipped
		slots = append(slots, eventSlots...)
	}

	optimized := optimizer.Optimize(slots, bestTimes, scheduled, now, s.loc)
	result.DraftsDropped = len(optimized.Dropped)
	for _, d := range optimized.Dropped {
		logger.Debug().Str("key", d.Key().String()).Time("target", d.TargetDate).Msg("schedule: не нашлось слота")
	}

	rows := draftRows(optimized.Scheduled)
	for i := 0; i < len(rows); i += InsertBatchSize {
		end := min(i+InsertBatchSize, len(rows))
		if err := s.deps.Drafts.InsertDrafts(ctx, rows[i:end]); err != nil {
			logger.Error().Err(err).Int("offset", i).Msg("schedule: ошибка вставки пачки")
			metrics.AddDrafts("failed", end-i)
			result.Errors = append(result.Errors, fmt.Sprintf("Batch insert failed at offset %d: %s", i, err.Error()))
			continue
		}
		result.DraftsCreated += end - i
	}

	metrics.AddDrafts("created", result.DraftsCreated)
	metrics.AddDrafts("skipped", result.DraftsSkipped)
	metrics.AddDrafts("dropped", result.DraftsDropped)

	result.OK = true
	result.Summary = fmt.Sprintf("Processed %d events, created %d drafts, skipped %d (already exist)",
		result.EventsProcessed, result.DraftsCreated, result.DraftsSkipped)
	return result, nil
}

// buildSlots разворачивает мероприятие в черновики: окна × платформы бренда × форматы.
func buildSlots(event domain.Event, b domain.BrandConfig, now time.Time, existing map[domain.DraftKey]struct{}) ([]domain.DraftSlot, int) {
	var (
		slots   []domain.DraftSlot
		skipped int
	)
	hashtags := b.Hashtags()
	media := event.MediaURLs()
	for _, w := range strategy.PostingWindows(event, now) {
		for _, platform := range w.Platforms {
			if !b.HasPlatform(platform) {
				continue
			}
			for _, postType := range w.PostTypes {
				slot := domain.DraftSlot{
					EventID:        event.ID,
					EventName:      event.Name,
					WindowLabel:    w.Label,
					Platform:       platform,
					PostType:       postType,
					Priority:       w.Priority,
					TargetDate:     w.TargetDate,
					Hashtags:       hashtags,
					MediaURLs:      media,
					OrganizationID: event.OrganizationID,
				}
				if _, ok := existing[slot.Key()]; ok {
					skipped++
					continue
				}
				slot.Caption = caption.Render(w.Label, event, b, platform)
				slots = append(slots, slot)
			}
		}
	}
	return slots, skipped
}

func draftRows(scheduled []domain.ScheduledSlot) []domain.DraftRow {
	rows := make([]domain.DraftRow, 0, len(scheduled))
	for _, s := range scheduled {
		rows = append(rows, domain.DraftRow{
			OrganizationID: s.OrganizationID,
			EventID:        s.EventID,
			WindowLabel:    s.WindowLabel,
			Platform:       s.Platform,
			PostType:       s.PostType,
			Caption:        s.Caption,
			Hashtags:       s.Hashtags,
			MediaURLs:      s.MediaURLs,
			ScheduledFor:   s.ScheduledFor,
			Status:         domain.DraftStatusDraft,
			AIModel:        aiModel,
			AIPromptUsed:   fmt.Sprintf("Auto-generated: %s for %s", s.WindowLabel, s.EventName),
		})
	}
	return rows
}

func (s *Service) organizationNames(ctx context.Context, logger zerolog.Logger, lists ...[]domain.Event) map[string]string {
	seen := make(map[string]struct{})
	var ids []string
	for _, list := range lists {
		for _, e := range list {
			if e.OrganizationID == "" {
				continue
			}
			if _, ok := seen[e.OrganizationID]; ok {
				continue
			}
			seen[e.OrganizationID] = struct{}{}
			ids = append(ids, e.OrganizationID)
		}
	}
	if len(ids) == 0 {
		return map[string]string{}
	}
	names, err := s.deps.Orgs.OrganizationNames(ctx, ids)
	if err != nil {
		logger.Warn().Err(err).Int("orgs", len(ids)).Msg("schedule: не удалось получить названия организаций")
		return map[string]string{}
	}
	return names
}

func withOrgNames(events []domain.Event, names map[string]string) {
	for i := range events {
		if name, ok := names[events[i].OrganizationID]; ok {
			events[i].OrganizationName = name
		}
	}
}

// loadBestTimes собирает таблицы по платформам. Ошибка платформы не прерывает
// прогон: для неё оптимизатор возьмёт слоты по умолчанию.
func (s *Service) loadBestTimes(ctx context.Context, logger zerolog.Logger) map[domain.Platform][]domain.BestTimeSlot {
	out := make(map[domain.Platform][]domain.BestTimeSlot)
	if s.deps.BestTimes == nil {
		return out
	}
	for _, platform := range domain.AllPlatforms() {
		slots, err := s.deps.BestTimes.BestTimes(ctx, platform)
		if err != nil {
			metrics.BestTimesErrorsTotal.WithLabelValues(string(platform)).Inc()
			logger.Warn().Err(err).Str("platform", string(platform)).Msg("schedule: best times недоступны")
			continue
		}
		if len(slots) > 0 {
			out[platform] = slots
		}
	}
	return out
}

func (s *Service) notify(ctx context.Context, logger zerolog.Logger, result domain.RunResult) {
	if s.deps.Notifier == nil {
		return
	}
	if err := s.deps.Notifier.NotifyRun(ctx, result); err != nil {
		logger.Warn().Err(err).Msg("schedule: не удалось отправить уведомление")
	}
}
