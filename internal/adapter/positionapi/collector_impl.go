package positionapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/user/report-service/internal/entity"
	"github.com/user/report-service/internal/repository"
)

// Client provides a concrete implementation for the CollectorRepository
// interface over the position service's HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new position API client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// CollectStatistics fetches the aggregate counters for a filter spec.
func (c *Client) CollectStatistics(ctx context.Context, spec entity.PositionFilterSpec) (*entity.StatisticsSummary, error) {
	var summary entity.StatisticsSummary
	if err := c.get(ctx, "/v1/positions/statistics", spec.QueryParams(), &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// CollectPositionsBatch fetches one page of matching records.
func (c *Client) CollectPositionsBatch(ctx context.Context, spec entity.PositionFilterSpec, page, perPage int) (*entity.PositionBatch, error) {
	params := spec.QueryParams()
	params["page"] = strconv.Itoa(page)
	params["per_page"] = strconv.Itoa(perPage)

	var batch entity.PositionBatch
	if err := c.get(ctx, "/v1/positions", params, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

// get performs one GET request and decodes the JSON body into out. Every
// failure mode of the upstream maps to ErrDataSource so the job layer can
// classify it without knowing transport details.
func (c *Client) get(ctx context.Context, path string, params map[string]string, out interface{}) error {
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+values.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", repository.ErrDataSource, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", repository.ErrDataSource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: API returned status %d", repository.ErrDataSource, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response body: %v", repository.ErrDataSource, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: failed to unmarshal response: %v", repository.ErrDataSource, err)
	}
	return nil
}
