// Package riverforecast reads river forecast point data from the hydrologic
// forecast service over HTTP.
package riverforecast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/hazard-product-generator/internal/hydro"
	"github.com/couchcryptid/hazard-product-generator/internal/observability"
)

// ErrPointNotFound is returned when the service has no data for a point.
var ErrPointNotFound = errors.New("forecast point not found")

// Client implements hydro.Service against the river forecast HTTP API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a river forecast client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// ForecastPoint fetches one forecast point. deep asks for the full
// observed and forecast time series.
func (c *Client) ForecastPoint(ctx context.Context, pointID string, deep bool) (hydro.ForecastPoint, error) {
	u := fmt.Sprintf("%s/forecast-points/%s", c.baseURL, url.PathEscape(pointID))
	params := url.Values{"deep": {strconv.FormatBool(deep)}}

	start := time.Now()
	point, err := c.doRequest(ctx, u+"?"+params.Encode())
	c.metrics.RiverAPIDuration.Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, ErrPointNotFound):
		c.metrics.RiverRequests.WithLabelValues("missing").Inc()
		c.logger.Info("forecast point not found", "point_id", pointID)
	case err != nil:
		c.metrics.RiverRequests.WithLabelValues("error").Inc()
		c.logger.Warn("river forecast request failed", "point_id", pointID, "error", err)
	default:
		c.metrics.RiverRequests.WithLabelValues("success").Inc()
	}
	return point, err
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (hydro.ForecastPoint, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return hydro.ForecastPoint{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return hydro.ForecastPoint{}, fmt.Errorf("forecast point request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return hydro.ForecastPoint{}, ErrPointNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return hydro.ForecastPoint{}, fmt.Errorf("river forecast API error: status %d: %s", resp.StatusCode, body)
	}

	var point hydro.ForecastPoint
	if err := json.NewDecoder(resp.Body).Decode(&point); err != nil {
		return hydro.ForecastPoint{}, fmt.Errorf("decode response: %w", err)
	}
	if point.ID == "" {
		return hydro.ForecastPoint{}, ErrPointNotFound
	}
	return point, nil
}
