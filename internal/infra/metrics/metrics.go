package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	ScheduleRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_runs_total",
		Help: "Количество прогонов генератора расписания",
	}, []string{"cause", "status"})
	ScheduleRunSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_run_seconds",
		Help:    "Длительность прогона генератора расписания",
		Buckets: prometheus.DefBuckets,
	})
	DraftsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_drafts_total",
		Help: "Черновики по результату: created, skipped, dropped, failed",
	}, []string{"result"})
	BrandMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_brand_misses_total",
		Help: "Мероприятия без подходящего бренда",
	})
	FolderErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_folder_errors_total",
		Help: "Ошибки создания папок в Drive",
	})
	BestTimesErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_besttimes_errors_total",
		Help: "Ошибки получения best times по платформам",
	}, []string{"platform"})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15, 20, 30, 60},
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "target", "status"})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		ScheduleRunsTotal,
		ScheduleRunSeconds,
		DraftsTotal,
		BrandMissesTotal,
		FolderErrorsTotal,
		BestTimesErrorsTotal,
		NetworkRequestDuration,
		NetworkRequestTotal,
	)
}

// StartServer запускает HTTP сервер с эндпоинтом /metrics.
func StartServer(ctx context.Context, logger zerolog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	shutdownCtx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-ctx.Done():
		case <-shutdownCtx.Done():
		}
		shutdownTimeout, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer timeoutCancel()
		if err := srv.Shutdown(shutdownTimeout); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: graceful shutdown failed")
		}
	}()

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics: server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: server stopped")
		}
		cancel()
	}()
}

// ObserveNetworkRequest записывает длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(duration)
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}

// ObserveRun записывает итог прогона генератора.
func ObserveRun(cause string, start time.Time, err error) {
	if cause == "" {
		cause = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	ScheduleRunsTotal.WithLabelValues(cause, status).Inc()
	ScheduleRunSeconds.Observe(time.Since(start).Seconds())
}

// AddDrafts увеличивает счётчик черновиков с указанным результатом.
func AddDrafts(result string, n int) {
	if n <= 0 {
		return
	}
	DraftsTotal.WithLabelValues(result).Add(float64(n))
}
