package tenantservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Client клиент для работы с TenantService
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента TenantService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetCompany получает компанию: признак активности и список менеджеров.
// Сетевые ошибки и 5xx возвращаются как ErrUnavailable.
func (c *Client) GetCompany(ctx context.Context, companyID int64) (*domain.Company, error) {
	url := fmt.Sprintf("%s/internal/companies/%d", c.baseURL, companyID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("TenantService request failed: company_id=%d, error=%v", companyID, err)
		return nil, fmt.Errorf("%w: company_id=%d: %v", ErrUnavailable, companyID, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrCompanyNotFound
	case resp.StatusCode >= http.StatusInternalServerError:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.log.Error("TenantService returned %d for company_id=%d: %s", resp.StatusCode, companyID, string(body))
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	default:
		var errResp ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr == nil && errResp.Message != "" {
			return nil, fmt.Errorf("%w: status %d: %s", ErrInvalidResponse, resp.StatusCode, errResp.Message)
		}
		return nil, fmt.Errorf("%w: unexpected status code %d", ErrInvalidResponse, resp.StatusCode)
	}

	var company Company
	if err := json.NewDecoder(resp.Body).Decode(&company); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return company.ToDomain(), nil
}

// IsUnavailable сообщает, что ошибка вызвана недоступностью сервиса
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
