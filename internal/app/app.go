// Package app собирает зависимости сервисов из конфигурации.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"social-scheduler/internal/adapters/drive"
	"social-scheduler/internal/adapters/metricool"
	"social-scheduler/internal/adapters/repo"
	"social-scheduler/internal/adapters/telegram"
	"social-scheduler/internal/domain"
	"social-scheduler/internal/infra/cache"
	"social-scheduler/internal/infra/config"
	"social-scheduler/internal/infra/db"
	applog "social-scheduler/internal/infra/log"
	"social-scheduler/internal/infra/queue"
	"social-scheduler/internal/usecase/schedule"
)

// App: собранный граф зависимостей.
type App struct {
	Service *schedule.Service
	// Queue равна nil, если не задан ни RABBITMQ_URL, ни REDIS_ADDR.
	Queue domain.RunQueue
	// Cache равен nil без Redis.
	Cache domain.Cache

	closers []func() error
}

// Build подключается к хранилищам и создаёт сервис генерации.
func Build(ctx context.Context, cfg config.AppConfig, logger zerolog.Logger) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		return nil, fmt.Errorf("подключение к БД: %w", err)
	}
	a := &App{}
	a.closers = append(a.closers, func() error { pool.Close(); return nil })

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			_ = redisClient.Close()
			_ = a.Close()
			return nil, fmt.Errorf("подключение к Redis: %w", err)
		}
		a.closers = append(a.closers, redisClient.Close)
		a.Cache = cache.NewRedis(redisClient, "social-scheduler:")
	}

	switch {
	case cfg.RabbitURL != "":
		rq, err := queue.NewRabbitRunQueue(cfg.RabbitURL, cfg.Schedule.QueueKey)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("очередь RabbitMQ: %w", err)
		}
		a.closers = append(a.closers, rq.Close)
		a.Queue = rq
	case redisClient != nil:
		a.Queue = queue.NewRedisRunQueue(redisClient, cfg.Schedule.QueueKey)
	}

	deps := schedule.Deps{
		Folders:   drive.NewClient(cfg.Supabase.URL, cfg.Supabase.ServiceKey, 30*time.Second),
		BestTimes: bestTimesProvider(cfg, loc, a.Cache, applog.Component(logger, "metricool")),
	}
	store := repo.NewPostgres(pool, loc)
	deps.Events, deps.Orgs, deps.Drafts = store, store, store

	deps.Notifier = runNotifier(cfg, logger)

	a.Service = schedule.NewService(deps, loc, applog.Component(logger, "schedule"))
	return a, nil
}

// Close освобождает ресурсы в обратном порядке.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func bestTimesProvider(cfg config.AppConfig, loc *time.Location, c domain.Cache, logger zerolog.Logger) domain.BestTimesProvider {
	mc := metricool.Config{
		BaseURL:   cfg.Metricool.BaseURL,
		UserToken: cfg.Metricool.UserToken,
		UserID:    cfg.Metricool.UserID,
		BlogID:    cfg.Metricool.BlogID,
		Timezone:  loc.String(),
	}
	if !mc.Enabled() {
		logger.Info().Msg("metricool: учётные данные не заданы, используются слоты по умолчанию")
		return nil
	}
	var provider domain.BestTimesProvider = metricool.NewClient(mc)
	if c != nil {
		provider = metricool.NewCachedProvider(provider, c, cfg.Metricool.CacheTTL, logger)
	}
	return provider
}

func runNotifier(cfg config.AppConfig, logger zerolog.Logger) domain.RunNotifier {
	if cfg.Telegram.Token == "" || cfg.Telegram.NotifyChatID == 0 {
		return nil
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Warn().Err(err).Msg("app: бот недоступен, уведомления отключены")
		return nil
	}
	return telegram.NewNotifier(bot, cfg.Telegram.NotifyChatID)
}
