package pricing

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/opscart/azure-vm-rightsizer/pkg/models"
)

// PriceCache caches price lookups per region and VM size
type PriceCache struct {
	data  map[string]cacheEntry
	ttl   time.Duration
	now   func() time.Time
	mutex sync.RWMutex
}

type cacheEntry struct {
	estimate  *models.CostEstimate
	expiresAt time.Time
}

func NewPriceCache(ttl time.Duration) *PriceCache {
	return &PriceCache{
		data: make(map[string]cacheEntry),
		ttl:  ttl,
		now:  time.Now,
	}
}

func cacheKey(region, size string) string {
	return fmt.Sprintf("%s/%s", strings.ToLower(region), strings.ToLower(size))
}

func (c *PriceCache) Get(region, size string) *models.CostEstimate {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.data[cacheKey(region, size)]
	if !exists || c.now().After(entry.expiresAt) {
		return nil
	}
	return entry.estimate
}

func (c *PriceCache) Set(region, size string, estimate *models.CostEstimate) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[cacheKey(region, size)] = cacheEntry{
		estimate:  estimate,
		expiresAt: c.now().Add(c.ttl),
	}
}

func (c *PriceCache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

func (c *PriceCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data = make(map[string]cacheEntry)
}
