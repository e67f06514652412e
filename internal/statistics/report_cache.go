package statistics

import (
	"sync"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/derby/internal/metrics"
)

// ReportCache provides in-memory caching for rendered performance reports.
type ReportCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	mu        sync.RWMutex
	hitCount  uint64
	missCount uint64
}

// NewReportCache creates a new report cache.
func NewReportCache(ttl time.Duration) *ReportCache {
	return &ReportCache{
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

// Get retrieves a cached report.
func (rc *ReportCache) Get(horseID uuid.UUID) (string, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if v, found := rc.cache.Get(horseID.String()); found {
		if report, ok := v.(string); ok {
			rc.hitCount++
			rc.updateMetrics()
			return report, true
		}
	}

	rc.missCount++
	rc.updateMetrics()
	return "", false
}

// Set stores a report.
func (rc *ReportCache) Set(horseID uuid.UUID, report string) {
	rc.cache.Set(horseID.String(), report, rc.ttl)
}

// Invalidate drops a single horse's report.
func (rc *ReportCache) Invalidate(horseID uuid.UUID) {
	rc.cache.Delete(horseID.String())
}

// Clear flushes the entire cache
func (rc *ReportCache) Clear() {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.cache.Flush()
	rc.hitCount = 0
	rc.missCount = 0
}

// Stats returns cache statistics
func (rc *ReportCache) Stats() (hits, misses uint64, ratio float64) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.stats()
}

func (rc *ReportCache) stats() (hits, misses uint64, ratio float64) {
	hits = rc.hitCount
	misses = rc.missCount
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

func (rc *ReportCache) updateMetrics() {
	_, _, ratio := rc.stats()
	metrics.UpdateReportCacheHitRatio(ratio)
}

// ItemCount returns the number of items in cache
func (rc *ReportCache) ItemCount() int {
	return rc.cache.ItemCount()
}
