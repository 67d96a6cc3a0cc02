package schedule

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"social-scheduler/internal/domain"
)

// Worker разбирает очередь запросов и выполняет прогоны по одному.
type Worker struct {
	queue  domain.RunQueue
	runner domain.ScheduleRunner
	log    zerolog.Logger
	// retryDelay: пауза после ошибки чтения очереди.
	retryDelay time.Duration
}

// NewWorker создаёт обработчик очереди.
func NewWorker(queue domain.RunQueue, runner domain.ScheduleRunner, logger zerolog.Logger) *Worker {
	return &Worker{queue: queue, runner: runner, log: logger, retryDelay: time.Second}
}

// Run блокируется до отмены ctx.
func (w *Worker) Run(ctx context.Context) {
	for {
		req, err := w.queue.Pop(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			w.log.Error().Err(err).Msg("worker: ошибка чтения очереди")
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.retryDelay):
			}
			continue
		}
		if req.ID == "" {
			req.ID = uuid.NewString()
		}
		jobLog := w.log.With().Str("job_id", req.ID).Str("cause", string(req.Cause)).Logger()
		if _, err := w.runner.Run(ctx, req); err != nil {
			jobLog.Error().Err(err).Msg("worker: прогон завершился ошибкой")
			continue
		}
		jobLog.Debug().Msg("worker: прогон выполнен")
	}
}

// Trigger периодически ставит прогоны в очередь. При нескольких экземплярах
// дубли одного интервала отсекаются через кэш.
type Trigger struct {
	queue    domain.RunQueue
	cache    domain.Cache
	interval time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

// NewTrigger создаёт таймер. cache может быть nil.
func NewTrigger(queue domain.RunQueue, cache domain.Cache, interval time.Duration, logger zerolog.Logger) *Trigger {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &Trigger{queue: queue, cache: cache, interval: interval, log: logger, now: time.Now}
}

// Run сразу ставит первый прогон и далее повторяет каждые interval.
func (t *Trigger) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		if err := t.Fire(ctx); err != nil {
			t.log.Error().Err(err).Msg("trigger: не удалось поставить прогон")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Fire ставит прогон текущего интервала, если он ещё не поставлен.
func (t *Trigger) Fire(ctx context.Context) error {
	now := t.now().UTC()
	slot := now.Truncate(t.interval)
	enqueue := func() error {
		req := domain.RunRequest{ID: uuid.NewString(), RequestedAt: now, Cause: domain.RunCauseScheduled}
		if err := t.queue.Enqueue(ctx, req); err != nil {
			return err
		}
		t.log.Info().Str("job_id", req.ID).Time("slot", slot).Msg("trigger: прогон поставлен в очередь")
		return nil
	}
	if t.cache == nil {
		return enqueue()
	}
	return t.cache.Once(ctx, "trigger:"+strconv.FormatInt(slot.Unix(), 10), t.interval, enqueue)
}
