package cache

import (
	"sync"
	"time"
)

// CacheConfig configures shard count, size/memory limits, and eviction
// cadence for an LRUCache.
type CacheConfig struct {
	Capacity        int
	ShardCount      int
	MaxSize         int64
	MemoryLimitMB   int64
	DefaultTTL      time.Duration
	CleanupInterval time.Duration
	EvictionBatch   int
	EnableMetrics   bool
}

// DefaultCacheConfig returns sane defaults for a small in-process cache.
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Capacity:        10000,
		ShardCount:      32,
		MaxSize:         100 * 1024 * 1024, // entry-count ceiling checked by Set
		MemoryLimitMB:   100,
		DefaultTTL:      10 * time.Minute,
		CleanupInterval: 1 * time.Minute,
		EvictionBatch:   100,
		EnableMetrics:   true,
	}
}

// CacheStats is a point-in-time snapshot of an LRUCache's counters.
type CacheStats struct {
	TotalItems    int64
	TotalSize     int64
	MaxSize       int64
	MemoryLimitMB int64
	Hits          int64
	Misses        int64
	Sets          int64
	Gets          int64
	Deletes       int64
	Evictions     int64
	Expirations   int64
	CreatedAt     string
	LastCleanup   time.Time
	AvgGetTime    time.Duration
	AvgSetTime    time.Duration
	HitRate       float64
}

// CacheItem is one stored value plus its bookkeeping.
type CacheItem struct {
	Key         string
	Value       interface{}
	Size        int64
	CreatedAt   time.Time
	AccessAt    time.Time
	ExpiresAt   time.Time
	AccessCount int64
}

// IsExpired reports whether the item's TTL has elapsed.
func (item *CacheItem) IsExpired() bool {
	return !item.ExpiresAt.IsZero() && time.Now().After(item.ExpiresAt)
}

// UpdateAccess bumps the item's last-access time and hit count.
func (item *CacheItem) UpdateAccess() {
	item.AccessAt = time.Now()
	item.AccessCount++
}

// LRUNode is one node of the doubly-linked LRU list.
type LRUNode struct {
	Key  string
	Item *CacheItem
	Prev *LRUNode
	Next *LRUNode
}

// LRUList orders nodes from most- to least-recently-used.
type LRUList struct {
	head *LRUNode
	tail *LRUNode
	size int
}

// NewLRUList returns an empty LRUList.
func NewLRUList() *LRUList {
	return &LRUList{}
}

// AddToHead inserts node as the most-recently-used entry.
func (l *LRUList) AddToHead(node *LRUNode) {
	node.Next = l.head
	node.Prev = nil
	if l.head != nil {
		l.head.Prev = node
	}
	l.head = node
	if l.tail == nil {
		l.tail = node
	}
	l.size++
}

// MoveToHead promotes node to most-recently-used.
func (l *LRUList) MoveToHead(node *LRUNode) {
	if node == l.head {
		return
	}
	l.RemoveNode(node)
	l.AddToHead(node)
}

// RemoveNode unlinks node from the list.
func (l *LRUList) RemoveNode(node *LRUNode) {
	if node.Prev != nil {
		node.Prev.Next = node.Next
	} else {
		l.head = node.Next
	}
	if node.Next != nil {
		node.Next.Prev = node.Prev
	} else {
		l.tail = node.Prev
	}
	node.Next = nil
	node.Prev = nil
	l.size--
}

// RemoveTail evicts and returns the least-recently-used node, or nil if empty.
func (l *LRUList) RemoveTail() *LRUNode {
	if l.tail == nil {
		return nil
	}
	node := l.tail
	l.RemoveNode(node)
	return node
}

// Size returns the number of nodes in the list.
func (l *LRUList) Size() int {
	return l.size
}

// CacheShard is one lock-striped partition of an LRUCache.
type CacheShard struct {
	items   map[string]*LRUNode
	lruList *LRUList
	mutex   sync.RWMutex
	config  *CacheConfig
}

// NewCacheShard returns an empty shard using config's size estimation rules.
func NewCacheShard(config *CacheConfig) *CacheShard {
	return &CacheShard{
		items:   make(map[string]*LRUNode),
		lruList: NewLRUList(),
		config:  config,
	}
}

// Add inserts or replaces key, moving it to the front of the LRU order.
func (s *CacheShard) Add(key string, value interface{}, ttl time.Duration) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := time.Now()
	item := &CacheItem{
		Key:         key,
		Value:       value,
		CreatedAt:   now,
		AccessAt:    now,
		AccessCount: 1,
		Size:        s.estimateSize(value),
	}

	if ttl > 0 {
		item.ExpiresAt = now.Add(ttl)
	}

	if existingNode, exists := s.items[key]; exists {
		existingNode.Item = item
		s.lruList.MoveToHead(existingNode)
		return nil
	}

	node := &LRUNode{
		Key:  key,
		Item: item,
	}

	s.items[key] = node
	s.lruList.AddToHead(node)

	return nil
}

// Get returns key's value, evicting it first if its TTL has expired.
func (s *CacheShard) Get(key string) (interface{}, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	node, exists := s.items[key]
	if !exists {
		return nil, false
	}

	if node.Item.IsExpired() {
		s.mutex.RUnlock() // drop the read lock so the write lock below can be taken
		s.mutex.Lock()
		delete(s.items, key)
		s.lruList.RemoveNode(node)
		s.mutex.Unlock()
		s.mutex.RLock() // reacquire for the deferred RUnlock
		return nil, false
	}

	s.lruList.MoveToHead(node)
	node.Item.UpdateAccess()
	return node.Item.Value, true
}

// Remove deletes key, reporting whether it was present.
func (s *CacheShard) Remove(key string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if node, exists := s.items[key]; exists {
		delete(s.items, key)
		s.lruList.RemoveNode(node)
		return true
	}
	return false
}

// Len returns the number of items in the shard.
func (s *CacheShard) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.items)
}

// estimateSize gives a cheap byte-size estimate used for memory-pressure checks.
func (s *CacheShard) estimateSize(value interface{}) int64 {
	switch v := value.(type) {
	case string:
		return int64(len(v))
	case []byte:
		return int64(len(v))
	case int, int32, int64, float32, float64:
		return 8
	case bool:
		return 1
	default:
		return 256
	}
}
