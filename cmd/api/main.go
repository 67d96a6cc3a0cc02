package main

import (
	"context"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"social-scheduler/internal/app"
	"social-scheduler/internal/infra/config"
	httpinfra "social-scheduler/internal/infra/http"
	applog "social-scheduler/internal/infra/log"
	"social-scheduler/internal/infra/metrics"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: не удалось собрать зависимости")
	}
	defer a.Close()

	if a.Queue == nil {
		logger.Warn().Msg("api: очередь не настроена (RABBITMQ_URL, REDIS_ADDR), асинхронный запуск отключён")
	}

	handlers := httpinfra.NewHandlers(a.Service, a.Queue, applog.Component(logger, "http"))
	srv := httpinfra.NewServer(applog.Component(logger, "http"), handlers, cfg.APIToken)
	metrics.StartServer(ctx, applog.Component(logger, "metrics"), cfg.MetricsAddr)

	go func() {
		if err := srv.Start(":" + strconv.Itoa(cfg.Port)); err != nil {
			logger.Error().Err(err).Msg("api: сервер остановлен")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("api: остановка")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
