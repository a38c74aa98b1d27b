//go:build riverforecast

package riverforecast

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/couchcryptid/hazard-product-generator/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit a live river forecast service and require RIVER_SERVICE_URL
// and RIVER_SMOKE_POINT.
// Run with: go test -tags=riverforecast ./internal/adapter/riverforecast/ -v -count=1

func smokeClient(t *testing.T) (*Client, string) {
	t.Helper()
	base, point := os.Getenv("RIVER_SERVICE_URL"), os.Getenv("RIVER_SMOKE_POINT")
	if base == "" || point == "" {
		t.Fatal("RIVER_SERVICE_URL and RIVER_SMOKE_POINT must be set to run smoke tests")
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(base, 10*time.Second, observability.NewMetricsForTesting(), logger), point
}

func TestSmoke_ForecastPoint(t *testing.T) {
	c, point := smokeClient(t)

	p, err := c.ForecastPoint(context.Background(), point, true)
	require.NoError(t, err)
	assert.Equal(t, point, p.ID)
	assert.NotEmpty(t, p.RiverName)
}

func TestSmoke_CachedService(t *testing.T) {
	c, point := smokeClient(t)
	cached := NewCachedService(c, 10, observability.NewMetricsForTesting())

	p1, err := cached.ForecastPoint(context.Background(), point, false)
	require.NoError(t, err)
	p2, err := cached.ForecastPoint(context.Background(), point, false)
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
}
