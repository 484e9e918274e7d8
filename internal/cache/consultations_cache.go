package cache

import (
	"time"

	"github.com/axioniz/axioniz-api/internal/models"
	"github.com/axioniz/axioniz-api/pkg/logger"
	"github.com/axioniz/axioniz-api/pkg/metrics"
	gocache "github.com/patrickmn/go-cache"
)

const (
	consultationsCacheKey  = "consultations"
	consultationsCacheName = "consultations"
	cleanupInterval        = time.Minute
)

// ConsultationsCache holds the admin listing for a short TTL so dashboard
// polling does not hit the database on every refresh.
type ConsultationsCache struct {
	cache    *gocache.Cache
	ttl      time.Duration
	disabled bool
}

// NewConsultationsCache creates the cache. A zero TTL or disabled=true turns
// it into a pass-through.
func NewConsultationsCache(ttlSeconds int, disabled bool) *ConsultationsCache {
	ttl := time.Duration(ttlSeconds) * time.Second
	if ttl <= 0 {
		disabled = true
	}
	if disabled {
		logger.Info("Consultations cache disabled")
	}

	return &ConsultationsCache{
		cache:    gocache.New(ttl, cleanupInterval),
		ttl:      ttl,
		disabled: disabled,
	}
}

// Get returns copies of the cached listing.
func (c *ConsultationsCache) Get() ([]*models.Consultation, bool) {
	if c.disabled {
		return nil, false
	}

	data, found := c.cache.Get(consultationsCacheKey)
	if !found {
		metrics.CacheMisses.WithLabelValues(consultationsCacheName).Inc()
		return nil, false
	}

	list, ok := data.([]*models.Consultation)
	if !ok {
		logger.Error("Invalid consultations cache data type")
		c.cache.Delete(consultationsCacheKey)
		metrics.CacheMisses.WithLabelValues(consultationsCacheName).Inc()
		return nil, false
	}

	metrics.CacheHits.WithLabelValues(consultationsCacheName).Inc()
	return cloneAll(list), true
}

// Set stores copies of list.
func (c *ConsultationsCache) Set(list []*models.Consultation) {
	if c.disabled {
		return
	}
	c.cache.Set(consultationsCacheKey, cloneAll(list), c.ttl)
}

// Invalidate drops the cached listing.
func (c *ConsultationsCache) Invalidate() {
	c.cache.Delete(consultationsCacheKey)
}

func cloneAll(list []*models.Consultation) []*models.Consultation {
	out := make([]*models.Consultation, len(list))
	for i, item := range list {
		out[i] = item.Clone()
	}
	return out
}
