package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"social-scheduler/internal/domain"
	"social-scheduler/internal/infra/cache"
)

type chanQueue struct {
	mu       sync.Mutex
	ch       chan domain.RunRequest
	enqueued []domain.RunRequest
}

func newChanQueue() *chanQueue { return &chanQueue{ch: make(chan domain.RunRequest, 16)} }

func (q *chanQueue) Enqueue(ctx context.Context, req domain.RunRequest) error {
	q.mu.Lock()
	q.enqueued = append(q.enqueued, req)
	q.mu.Unlock()
	q.ch <- req
	return nil
}

func (q *chanQueue) Pop(ctx context.Context) (domain.RunRequest, error) {
	select {
	case <-ctx.Done():
		return domain.RunRequest{}, ctx.Err()
	case req := <-q.ch:
		return req, nil
	}
}

type recordingRunner struct {
	mu   sync.Mutex
	got  []domain.RunRequest
	done chan struct{}
	err  error
}

func (r *recordingRunner) Run(ctx context.Context, req domain.RunRequest) (domain.RunResult, error) {
	r.mu.Lock()
	r.got = append(r.got, req)
	r.mu.Unlock()
	r.done <- struct{}{}
	return domain.RunResult{OK: r.err == nil}, r.err
}

func TestWorkerRunsQueuedRequests(t *testing.T) {
	q := newChanQueue()
	runner := &recordingRunner{done: make(chan struct{}, 4), err: errors.New("first fails")}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	finished := make(chan struct{})
	go func() {
		NewWorker(q, runner, zerolog.Nop()).Run(ctx)
		close(finished)
	}()

	_ = q.Enqueue(ctx, domain.RunRequest{ID: "a"})
	_ = q.Enqueue(ctx, domain.RunRequest{})
	for i := 0; i < 2; i++ {
		select {
		case <-runner.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("прогон %d не выполнен", i)
		}
	}
	cancel()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatalf("worker не остановился после отмены")
	}

	runner.mu.Lock()
	defer runner.mu.Unlock()
	if runner.got[0].ID != "a" || runner.got[1].ID == "" {
		t.Fatalf("ожидали сохранение id и генерацию пустого: %+v", runner.got)
	}
}

func TestTriggerDedupsWithinInterval(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	q := newChanQueue()
	trig := NewTrigger(q, cache.NewRedis(client, "test:"), 6*time.Hour, zerolog.Nop())
	current := time.Date(2026, 10, 20, 1, 0, 0, 0, time.UTC)
	trig.now = func() time.Time { return current }

	ctx := context.Background()
	if err := trig.Fire(ctx); err != nil {
		t.Fatalf("fire: %v", err)
	}
	current = current.Add(time.Hour)
	if err := trig.Fire(ctx); err != nil {
		t.Fatalf("fire: %v", err)
	}
	if len(q.enqueued) != 1 {
		t.Fatalf("ожидали один прогон в интервале, получили %d", len(q.enqueued))
	}
	if q.enqueued[0].Cause != domain.RunCauseScheduled || q.enqueued[0].ID == "" {
		t.Fatalf("неожиданный запрос: %+v", q.enqueued[0])
	}

	current = current.Add(6 * time.Hour)
	if err := trig.Fire(ctx); err != nil {
		t.Fatalf("fire: %v", err)
	}
	if len(q.enqueued) != 2 {
		t.Fatalf("ожидали новый прогон в следующем интервале, получили %d", len(q.enqueued))
	}
}

func TestTriggerWithoutCache(t *testing.T) {
	q := newChanQueue()
	trig := NewTrigger(q, nil, time.Hour, zerolog.Nop())
	for i := 0; i < 2; i++ {
		if err := trig.Fire(context.Background()); err != nil {
			t.Fatalf("fire: %v", err)
		}
	}
	if len(q.enqueued) != 2 {
		t.Fatalf("без кэша каждый вызов ставит прогон, получили %d", len(q.enqueued))
	}
}
