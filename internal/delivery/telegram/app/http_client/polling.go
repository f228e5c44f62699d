// internal/delivery/telegram/app/http_client/polling.go
package http_client

import (
	"net/http"
	"strconv"
	"time"
)

// PollingClient клиент для polling запросов с увеличенным таймаутом
type PollingClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewPollingClient создает новый клиент для polling
func NewPollingClient(baseURL string) *PollingClient {
	return &PollingClient{
		httpClient: &http.Client{
			Timeout: 35 * time.Second, // Больше чем timeout=30 в Telegram long-polling
		},
		baseURL: baseURL,
	}
}

// GetUpdates выполняет GET запрос для получения обновлений
func (c *PollingClient) GetUpdates(offset int64, timeout int) (*http.Response, error) {
	url := c.baseURL + "getUpdates" +
		"?offset=" + strconv.FormatInt(offset, 10) +
		"&timeout=" + strconv.Itoa(timeout)
	return c.httpClient.Get(url)
}
