// Package cache provides the sharded, TTL-aware LRU cache backing the
// in-memory half of the charge point authorization cache
// (internal/chargepoint.AuthManager keeps a durable copy in
// internal/storage/sqlite alongside it).
package cache

import (
	"fmt"
	"hash/fnv"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// LRUCache is a sharded, TTL-aware, size-and-memory-bounded cache.
// Sharding by key hash keeps the eviction lock contended per-shard
// rather than globally.
type LRUCache struct {
	shards  []*CacheShard
	config  *CacheConfig
	stats   *CacheStats
	running int32
	stopCh  chan struct{}
	wg      sync.WaitGroup

	globalStats struct {
		hits        int64
		misses      int64
		sets        int64
		gets        int64
		deletes     int64
		evictions   int64
		expirations int64
	}
}

// NewLRUCache builds a cache from config, or DefaultCacheConfig if nil.
func NewLRUCache(config *CacheConfig) *LRUCache {
	if config == nil {
		config = DefaultCacheConfig()
	}

	cache := &LRUCache{
		shards: make([]*CacheShard, config.ShardCount),
		config: config,
		stats: &CacheStats{
			MaxSize:       int64(config.MaxSize),
			MemoryLimitMB: int64(config.MemoryLimitMB),
			CreatedAt:     time.Now().Format(time.RFC3339),
		},
		stopCh: make(chan struct{}),
	}

	for i := 0; i < config.ShardCount; i++ {
		cache.shards[i] = NewCacheShard(config)
	}

	return cache
}

func (c *LRUCache) getShard(key string) *CacheShard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return c.shards[h.Sum32()%uint32(c.config.ShardCount)]
}

// Get returns the value stored at key, or ok=false if absent or expired.
func (c *LRUCache) Get(key string) (interface{}, bool) {
	start := time.Now()
	defer func() {
		atomic.AddInt64(&c.globalStats.gets, 1)
		if c.config.EnableMetrics {
			c.updateAvgGetTime(time.Since(start))
		}
	}()

	shard := c.getShard(key)
	value, exists := shard.Get(key)
	if !exists {
		atomic.AddInt64(&c.globalStats.misses, 1)
		return nil, false
	}

	atomic.AddInt64(&c.globalStats.hits, 1)
	return value, true
}

// Set stores value at key with the given TTL (zero means no expiry),
// evicting the least-recently-used entries if this push exceeds MaxSize.
func (c *LRUCache) Set(key string, value interface{}, ttl time.Duration) error {
	start := time.Now()
	defer func() {
		atomic.AddInt64(&c.globalStats.sets, 1)
		if c.config.EnableMetrics {
			c.updateAvgSetTime(time.Since(start))
		}
	}()

	shard := c.getShard(key)
	if err := shard.Add(key, value, ttl); err != nil {
		return err
	}

	for int64(c.Size()) > c.config.MaxSize {
		if c.EvictLRU(c.config.EvictionBatch) == 0 {
			break
		}
	}
	return nil
}

// Delete removes key, reporting whether it was present.
func (c *LRUCache) Delete(key string) bool {
	defer func() {
		atomic.AddInt64(&c.globalStats.deletes, 1)
	}()

	shard := c.getShard(key)
	return shard.Remove(key)
}

// Clear empties every shard and resets the running counters.
func (c *LRUCache) Clear() error {
	for _, shard := range c.shards {
		shard.mutex.Lock()
		shard.items = make(map[string]*LRUNode)
		shard.lruList = NewLRUList()
		shard.mutex.Unlock()
	}

	atomic.StoreInt64(&c.globalStats.hits, 0)
	atomic.StoreInt64(&c.globalStats.misses, 0)
	atomic.StoreInt64(&c.globalStats.sets, 0)
	atomic.StoreInt64(&c.globalStats.gets, 0)
	atomic.StoreInt64(&c.globalStats.deletes, 0)
	atomic.StoreInt64(&c.globalStats.evictions, 0)
	atomic.StoreInt64(&c.globalStats.expirations, 0)

	return nil
}

// GetBatch returns every key found among keys; absent or expired keys
// are simply omitted from the result.
func (c *LRUCache) GetBatch(keys []string) map[string]interface{} {
	result := make(map[string]interface{})
	for _, key := range keys {
		if value, exists := c.Get(key); exists {
			result[key] = value
		}
	}
	return result
}

// SetBatch stores every item, deriving each one's TTL from its
// ExpiresAt field (falling back to the cache's DefaultTTL if that has
// already passed).
func (c *LRUCache) SetBatch(items map[string]CacheItem) error {
	for key, item := range items {
		ttl := time.Until(item.ExpiresAt)
		if ttl < 0 {
			ttl = c.config.DefaultTTL
		}
		if err := c.Set(key, item.Value, ttl); err != nil {
			return fmt.Errorf("failed to set key %s: %w", key, err)
		}
	}
	return nil
}

// DeleteBatch removes every key present, returning how many were found.
func (c *LRUCache) DeleteBatch(keys []string) int {
	deleted := 0
	for _, key := range keys {
		if c.Delete(key) {
			deleted++
		}
	}
	return deleted
}

// Exists reports whether key is present and unexpired.
func (c *LRUCache) Exists(key string) bool {
	_, exists := c.Get(key)
	return exists
}

// Keys returns every key currently cached, across all shards.
func (c *LRUCache) Keys() []string {
	var keys []string
	for _, shard := range c.shards {
		shard.mutex.RLock()
		for key := range shard.items {
			keys = append(keys, key)
		}
		shard.mutex.RUnlock()
	}
	return keys
}

// Size returns the total number of entries currently cached.
func (c *LRUCache) Size() int {
	total := 0
	for _, shard := range c.shards {
		shard.mutex.RLock()
		total += len(shard.items)
		shard.mutex.RUnlock()
	}
	return total
}

// GetStats snapshots hit/miss/eviction counters and timing averages.
func (c *LRUCache) GetStats() *CacheStats {
	stats := &CacheStats{
		TotalItems:    int64(c.Size()),
		TotalSize:     c.GetMemoryUsage(),
		MaxSize:       c.stats.MaxSize,
		MemoryLimitMB: c.stats.MemoryLimitMB,
		Hits:          atomic.LoadInt64(&c.globalStats.hits),
		Misses:        atomic.LoadInt64(&c.globalStats.misses),
		Sets:          atomic.LoadInt64(&c.globalStats.sets),
		Gets:          atomic.LoadInt64(&c.globalStats.gets),
		Deletes:       atomic.LoadInt64(&c.globalStats.deletes),
		Evictions:     atomic.LoadInt64(&c.globalStats.evictions),
		Expirations:   atomic.LoadInt64(&c.globalStats.expirations),
		CreatedAt:     c.stats.CreatedAt,
		LastCleanup:   c.stats.LastCleanup,
		AvgGetTime:    c.stats.AvgGetTime,
		AvgSetTime:    c.stats.AvgSetTime,
	}

	totalRequests := stats.Hits + stats.Misses
	if totalRequests > 0 {
		stats.HitRate = float64(stats.Hits) / float64(totalRequests)
	}

	return stats
}

// GetMemoryUsage sums the estimated byte size of every cached value.
func (c *LRUCache) GetMemoryUsage() int64 {
	var totalSize int64

	for _, shard := range c.shards {
		shard.mutex.RLock()
		for _, node := range shard.items {
			totalSize += node.Item.Size
		}
		shard.mutex.RUnlock()
	}

	return totalSize
}

// EvictLRU evicts up to count entries, spread evenly across shards,
// oldest-accessed first.
func (c *LRUCache) EvictLRU(count int) int {
	evicted := 0

	shardEvictCount := count / len(c.shards)
	if shardEvictCount == 0 {
		shardEvictCount = 1
	}

	for _, shard := range c.shards {
		shard.mutex.Lock()
		for i := 0; i < shardEvictCount && evicted < count && shard.lruList.Size() > 0; i++ {
			node := shard.lruList.RemoveTail()
			if node != nil {
				delete(shard.items, node.Key)
				evicted++
				atomic.AddInt64(&c.globalStats.evictions, 1)
			}
		}
		shard.mutex.Unlock()
	}

	return evicted
}

// EvictExpired sweeps every shard for TTL-expired entries and removes them.
func (c *LRUCache) EvictExpired() int {
	expired := 0
	now := time.Now()

	for _, shard := range c.shards {
		shard.mutex.Lock()

		var expiredKeys []string
		for key, node := range shard.items {
			if node.Item.IsExpired() {
				expiredKeys = append(expiredKeys, key)
			}
		}

		for _, key := range expiredKeys {
			if node, exists := shard.items[key]; exists {
				delete(shard.items, key)
				shard.lruList.RemoveNode(node)
				expired++
				atomic.AddInt64(&c.globalStats.expirations, 1)
			}
		}

		shard.mutex.Unlock()
	}

	c.stats.LastCleanup = now
	return expired
}

// Start launches the background goroutine that periodically evicts
// expired entries and relieves memory pressure.
func (c *LRUCache) Start() error {
	if !atomic.CompareAndSwapInt32(&c.running, 0, 1) {
		return fmt.Errorf("cache is already running")
	}

	c.wg.Add(1)
	go c.cleanupWorker()

	return nil
}

// Stop halts the background cleanup goroutine and waits for it to exit.
func (c *LRUCache) Stop() error {
	if !atomic.CompareAndSwapInt32(&c.running, 1, 0) {
		return fmt.Errorf("cache is not running")
	}

	close(c.stopCh)
	c.wg.Wait()

	return nil
}

// IsRunning reports whether the background cleanup goroutine is active.
func (c *LRUCache) IsRunning() bool {
	return atomic.LoadInt32(&c.running) == 1
}

func (c *LRUCache) updateAvgGetTime(duration time.Duration) {
	if c.stats.AvgGetTime == 0 {
		c.stats.AvgGetTime = duration
	} else {
		c.stats.AvgGetTime = (c.stats.AvgGetTime + duration) / 2
	}
}

func (c *LRUCache) updateAvgSetTime(duration time.Duration) {
	if c.stats.AvgSetTime == 0 {
		c.stats.AvgSetTime = duration
	} else {
		c.stats.AvgSetTime = (c.stats.AvgSetTime + duration) / 2
	}
}

func (c *LRUCache) cleanupWorker() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.EvictExpired()
			c.checkMemoryPressure()
		case <-c.stopCh:
			return
		}
	}
}

func (c *LRUCache) checkMemoryPressure() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	memoryUsageMB := c.GetMemoryUsage() / (1024 * 1024)
	if memoryUsageMB > int64(c.config.MemoryLimitMB)*8/10 {
		evictCount := c.Size() / 5
		if evictCount > 0 {
			c.EvictLRU(evictCount)
		}
	}
}
