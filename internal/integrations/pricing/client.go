package pricing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxErrorBodySize сколько байт тела ошибки читаем для сообщения
const maxErrorBodySize = 4 << 10

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент для работы с сервисом расчёта цен
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента сервиса цен
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Calculate рассчитывает стоимость услуги для указанной частоты
func (c *Client) Calculate(ctx context.Context, params Request) (*Breakdown, error) {
	url := fmt.Sprintf("%s/internal/pricing/calculate", c.baseURL)

	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode request: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("Pricing: request failed for service_type=%s: %v", params.ServiceType, err)
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrUnknownService, params.ServiceType)
	default:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		var errResp ErrorResponse
		if json.Unmarshal(raw, &errResp) == nil && errResp.Message != "" {
			return nil, fmt.Errorf("%w: status %d: %s", ErrInvalidResponse, resp.StatusCode, errResp.Message)
		}
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(raw))
	}

	// Парсим ответ
	var breakdown Breakdown
	if err := json.NewDecoder(resp.Body).Decode(&breakdown); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	if breakdown.Total.IsNegative() || breakdown.Total.IsZero() {
		return nil, fmt.Errorf("%w: non-positive total %s", ErrInvalidResponse, breakdown.Total)
	}

	c.log.Info("Pricing: service_type=%s frequency=%s total=%s", params.ServiceType, params.Frequency, breakdown.Total)
	return &breakdown, nil
}
