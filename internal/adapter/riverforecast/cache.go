package riverforecast

import (
	"context"
	"strconv"

	"github.com/couchcryptid/hazard-product-generator/internal/adapter/cache"
	"github.com/couchcryptid/hazard-product-generator/internal/hydro"
	"github.com/couchcryptid/hazard-product-generator/internal/observability"
)

// CachedService wraps a hydro.Service with an in-memory LRU cache. Failed
// lookups are not cached so they can be retried.
type CachedService struct {
	inner   hydro.Service
	cache   *cache.LRU[string, hydro.ForecastPoint]
	metrics *observability.Metrics
}

// NewCachedService creates a cache decorator around a river forecast service.
func NewCachedService(inner hydro.Service, maxEntries int, metrics *observability.Metrics) *CachedService {
	return &CachedService{
		inner:   inner,
		cache:   cache.New[string, hydro.ForecastPoint](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedService) ForecastPoint(ctx context.Context, pointID string, deep bool) (hydro.ForecastPoint, error) {
	key := pointID + "|" + strconv.FormatBool(deep)
	if point, ok := c.cache.Get(key); ok {
		c.metrics.ServiceCache.WithLabelValues("river", "hit").Inc()
		return point, nil
	}
	c.metrics.ServiceCache.WithLabelValues("river", "miss").Inc()

	point, err := c.inner.ForecastPoint(ctx, pointID, deep)
	if err != nil {
		return point, err
	}
	c.cache.Put(key, point)
	return point, nil
}
