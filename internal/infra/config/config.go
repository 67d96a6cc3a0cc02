package config

import (
	"fmt"
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию сервисов.
type AppConfig struct {
	AppEnv      string `envconfig:"APP_ENV" default:"dev"`
	TZ          string `envconfig:"TZ" default:"Australia/Sydney"`
	Port        int    `envconfig:"PORT" default:"8080"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`
	APIToken    string `envconfig:"API_TOKEN"`

	PGDSN     string `envconfig:"PG_DSN"`
	RedisAddr string `envconfig:"REDIS_ADDR"`
	RabbitURL string `envconfig:"RABBITMQ_URL"`

	Supabase struct {
		URL        string `envconfig:"SUPABASE_URL"`
		ServiceKey string `envconfig:"SUPABASE_SERVICE_ROLE_KEY"`
	} `envconfig:""`

	Metricool struct {
		BaseURL   string        `envconfig:"METRICOOL_BASE_URL" default:"https://app.metricool.com/api"`
		UserToken string        `envconfig:"METRICOOL_USER_TOKEN"`
		UserID    string        `envconfig:"METRICOOL_USER_ID"`
		BlogID    string        `envconfig:"METRICOOL_BLOG_ID"`
		CacheTTL  time.Duration `envconfig:"BEST_TIMES_CACHE_TTL" default:"6h"`
	} `envconfig:""`

	Telegram struct {
		Token        string `envconfig:"TG_BOT_TOKEN"`
		NotifyChatID int64  `envconfig:"TG_NOTIFY_CHAT_ID"`
	} `envconfig:""`

	Schedule struct {
		Interval time.Duration `envconfig:"SCHEDULE_INTERVAL" default:"6h"`
		QueueKey string        `envconfig:"RUN_QUEUE_KEY" default:"schedule_runs"`
	} `envconfig:""`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}

// Location возвращает рабочий часовой пояс.
func (c AppConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TZ)
	if err != nil {
		return nil, fmt.Errorf("часовой пояс %q: %w", c.TZ, err)
	}
	return loc, nil
}
