package pricefeed

import (
	"sync"
	"time"

	"github.com/wonny/tradestats/pkg/logger"
)

// Cache is an in-memory TTL cache for quotes
// ⭐ SSOT: 시세 캐싱은 이 구조체에서만 (프로세스 전역 상태 없음, 주입해서 사용)
type Cache struct {
	mu     sync.RWMutex
	quotes map[string]Quote
	ttl    time.Duration
	logger *logger.Logger
	now    func() time.Time
}

// NewCache creates a new quote cache
func NewCache(ttl time.Duration, log *logger.Logger) *Cache {
	return &Cache{
		quotes: make(map[string]Quote),
		ttl:    ttl,
		logger: log,
		now:    time.Now,
	}
}

// SetClock 테스트용 시계 주입
func (c *Cache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Update stores a quote
// 더 오래된 시세는 거부, 같은 시각이면 우선순위 높은 출처만 허용
func (c *Cache) Update(q Quote) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.quotes[q.Symbol]; ok {
		if q.Timestamp.Before(existing.Timestamp) {
			c.logger.WithFields(map[string]interface{}{
				"symbol":     q.Symbol,
				"new_time":   q.Timestamp,
				"old_time":   existing.Timestamp,
				"new_source": q.Source,
				"old_source": existing.Source,
			}).Debug("Rejected older quote")
			return false
		}
		if q.Timestamp.Equal(existing.Timestamp) && q.Source.Priority() <= existing.Source.Priority() {
			return false
		}
	}

	q.IsStale = c.stale(q)
	c.quotes[q.Symbol] = q
	return true
}

// Get retrieves a quote
func (c *Cache) Get(symbol string) (Quote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	q, ok := c.quotes[symbol]
	if !ok {
		return Quote{}, false
	}
	q.IsStale = c.stale(q)
	return q, true
}

// GetFresh returns quotes for all symbols only if every one is cached and fresh
func (c *Cache) GetFresh(symbols []string) (map[string]Quote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[string]Quote, len(symbols))
	for _, s := range symbols {
		q, ok := c.quotes[s]
		if !ok || c.stale(q) {
			return nil, false
		}
		result[s] = q
	}
	return result, true
}

// GetMany retrieves cached quotes (stale included, flagged)
func (c *Cache) GetMany(symbols []string) map[string]Quote {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[string]Quote, len(symbols))
	for _, s := range symbols {
		if q, ok := c.quotes[s]; ok {
			q.IsStale = c.stale(q)
			result[s] = q
		}
	}
	return result
}

// Clear clears all quotes
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.quotes = make(map[string]Quote)
	c.logger.Info("Cleared quote cache")
}

// Len returns the number of cached quotes
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.quotes)
}

// CleanStale removes stale quotes
func (c *Cache) CleanStale() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for s, q := range c.quotes {
		if c.stale(q) {
			delete(c.quotes, s)
			count++
		}
	}

	if count > 0 {
		c.logger.WithField("count", count).Info("Cleaned stale quotes from cache")
	}
	return count
}

// Stats returns cache statistics
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := CacheStats{TotalCount: len(c.quotes), BySource: make(map[Source]int)}
	for _, q := range c.quotes {
		if c.stale(q) {
			stats.StaleCount++
		}
		stats.BySource[q.Source]++
	}
	stats.FreshCount = stats.TotalCount - stats.StaleCount
	return stats
}

// CacheStats represents cache statistics
type CacheStats struct {
	TotalCount int            `json:"total_count"`
	FreshCount int            `json:"fresh_count"`
	StaleCount int            `json:"stale_count"`
	BySource   map[Source]int `json:"by_source"`
}

// stale caller must hold c.mu
func (c *Cache) stale(q Quote) bool {
	return c.now().Sub(q.Timestamp) > c.ttl
}
