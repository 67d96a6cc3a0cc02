package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"social-scheduler/internal/app"
	"social-scheduler/internal/infra/config"
	applog "social-scheduler/internal/infra/log"
	"social-scheduler/internal/infra/metrics"
	"social-scheduler/internal/usecase/schedule"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.StartServer(ctx, applog.Component(logger, "metrics"), cfg.MetricsAddr)

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("scheduler: не удалось собрать зависимости")
	}
	defer a.Close()

	if a.Queue == nil {
		logger.Fatal().Msg("scheduler: не указана очередь (RABBITMQ_URL или REDIS_ADDR)")
	}

	trigger := schedule.NewTrigger(a.Queue, a.Cache, cfg.Schedule.Interval, applog.Component(logger, "trigger"))
	go trigger.Run(ctx)

	logger.Info().Dur("interval", cfg.Schedule.Interval).Msg("scheduler: запуск обработки очереди")
	schedule.NewWorker(a.Queue, a.Service, applog.Component(logger, "worker")).Run(ctx)
	logger.Info().Msg("scheduler: остановлен")
}
