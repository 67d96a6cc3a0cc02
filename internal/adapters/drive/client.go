package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"social-scheduler/internal/domain"
	"social-scheduler/internal/infra/metrics"
)

// Client вызывает функцию social-drive для работы с папками.
type Client struct {
	http       *http.Client
	endpoint   string
	serviceKey string
}

var _ domain.FolderService = (*Client)(nil)

// NewClient создаёт клиента. baseURL задаёт адрес проекта, например https://xyz.supabase.co.
func NewClient(baseURL, serviceKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http:       &http.Client{Timeout: timeout},
		endpoint:   strings.TrimRight(baseURL, "/") + "/functions/v1/social-drive",
		serviceKey: serviceKey,
	}
}

type createFolderRequest struct {
	Action     string `json:"action"`
	FolderName string `json:"folderName"`
	FolderPath string `json:"folderPath,omitempty"`
}

// Configured проверяет наличие сервисного ключа.
func (c *Client) Configured() error {
	if c.serviceKey == "" {
		return domain.ErrMissingServiceKey
	}
	return nil
}

// CreateFolder создаёт папку name внутри parentPath (пустой означает корень). Повторное
// создание существующей папки не считается ошибкой на стороне сервиса.
func (c *Client) CreateFolder(ctx context.Context, name, parentPath string) error {
	if err := c.Configured(); err != nil {
		return err
	}
	body, err := json.Marshal(createFolderRequest{Action: "create-folder", FolderName: name, FolderPath: parentPath})
	if err != nil {
		return fmt.Errorf("drive: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("drive: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveNetworkRequest("drive", "create_folder", "social-drive", start, err)
		return fmt.Errorf("drive: create-folder %s: %w", name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err = fmt.Errorf("drive: create-folder failed (%s): status %d: %s", name, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	metrics.ObserveNetworkRequest("drive", "create_folder", "social-drive", start, err)
	return err
}
