package metricool

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"social-scheduler/internal/domain"
	"social-scheduler/internal/infra/metrics"
)

const defaultBaseURL = "https://app.metricool.com/api"

// Config описывает учётные данные Metricool.
type Config struct {
	BaseURL   string
	UserToken string
	UserID    string
	BlogID    string
	Timezone  string
	Timeout   time.Duration
}

// Enabled сообщает, заданы ли все учётные данные.
func (c Config) Enabled() bool {
	return c.UserToken != "" && c.UserID != "" && c.BlogID != ""
}

// Client запрашивает таблицы лучшего времени публикации.
type Client struct {
	http    *http.Client
	baseURL string
	cfg     Config
}

var _ domain.BestTimesProvider = (*Client)(nil)

// NewClient создаёт клиента Metricool.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{http: &http.Client{Timeout: timeout}, baseURL: baseURL, cfg: cfg}
}

// BestTimes возвращает недельную таблицу платформы.
func (c *Client) BestTimes(ctx context.Context, platform domain.Platform) ([]domain.BestTimeSlot, error) {
	endpoint, err := url.Parse(c.baseURL + "/v2/scheduler/besttimes/" + url.PathEscape(string(platform)))
	if err != nil {
		return nil, fmt.Errorf("metricool: build url: %w", err)
	}
	q := endpoint.Query()
	q.Set("userToken", c.cfg.UserToken)
	q.Set("userId", c.cfg.UserID)
	q.Set("blogId", c.cfg.BlogID)
	if c.cfg.Timezone != "" {
		q.Set("timezone", c.cfg.Timezone)
	}
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("metricool: build request: %w", err)
	}
	req.Header.Set("X-Mc-Auth", c.cfg.UserToken)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveNetworkRequest("metricool", "besttimes", string(platform), start, err)
		return nil, fmt.Errorf("metricool: do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("metricool: read response: %w", err)
	} else if resp.StatusCode >= 300 {
		err = fmt.Errorf("metricool: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(truncate(body, 256))))
	}
	metrics.ObserveNetworkRequest("metricool", "besttimes", string(platform), start, err)
	if err != nil {
		return nil, err
	}
	return ParseBestTimes(body), nil
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
