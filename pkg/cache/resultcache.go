// Package cache implements the optional analyzer-result cache sketched in
// §6 "Persisted state": the core itself requires no persistence across a
// process restart, but a cache keyed on analyzer name plus a content hash
// of the file lets a caller skip re-running an analyzer over a file it has
// already seen unchanged. Entries older than a configurable horizon
// (default 7 days) are treated as misses.
package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pierrec/lz4/v4"

	"github.com/reviewforge/reviewforge/internal/issue"
)

// DefaultMaxSize is the default maximum in-memory size for the result
// cache, measured in encoded-entry bytes (256 MB).
const DefaultMaxSize = 256 * 1024 * 1024

// DefaultHorizon is the default staleness horizon: entries older than this
// are invalidated regardless of size pressure.
const DefaultHorizon = 7 * 24 * time.Hour

// bytesPerKB is the number of bytes in a kilobyte, used to normalize the
// eviction-cost calculation.
const bytesPerKB = 1024.0

// Key identifies one cached analyzer result: the analyzer that produced it
// plus the SHA-256 content hash of the file it ran against, per §6's
// "cache key must include the analyzer name plus a content hash of the
// file".
type Key struct {
	Analyzer string
	Hash     [sha256.Size]byte
}

// KeyFor computes the Key for one (analyzer, file content) pair.
func KeyFor(analyzerName string, content []byte) Key {
	return Key{Analyzer: analyzerName, Hash: sha256.Sum256(content)}
}

// Entry is one cached analyzer run over one file's content.
type Entry struct {
	Issues   []issue.Issue
	StoredAt time.Time
}

// ResultCache is a cross-job LRU cache of analyzer results, keyed by Key.
// It tracks encoded size and evicts least-recently-used entries when the
// limit is exceeded, favoring evicting large, infrequently hit entries
// first (the same size-aware eviction the teacher's blob cache used).
type ResultCache struct {
	mu          sync.RWMutex
	entries     map[Key]*lruEntry
	head        *lruEntry // Most recently used.
	tail        *lruEntry // Least recently used.
	maxSize     int64
	currentSize int64
	horizon     time.Duration
	now         func() time.Time

	// Metrics (atomic for lock-free reads).
	hits   atomic.Int64
	misses atomic.Int64
}

// lruEntry is a doubly-linked list node for LRU tracking.
type lruEntry struct {
	key         Key
	entry       Entry
	size        int64
	accessCount int64
	prev        *lruEntry
	next        *lruEntry
}

// evictionCost ranks an entry for eviction: higher is less desirable to
// evict. Cost = accessCount / size(KB) — large, rarely-hit entries are
// evicted before small, popular ones.
func (e *lruEntry) evictionCost() float64 {
	if e.size == 0 {
		return float64(e.accessCount)
	}

	sizeKB := float64(e.size) / bytesPerKB
	if sizeKB < 1 {
		sizeKB = 1
	}

	return float64(e.accessCount) / sizeKB
}

// New constructs a ResultCache bounded at maxSize bytes (DefaultMaxSize if
// non-positive) with the given staleness horizon (DefaultHorizon if
// non-positive).
func New(maxSize int64, horizon time.Duration) *ResultCache {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	if horizon <= 0 {
		horizon = DefaultHorizon
	}

	return &ResultCache{
		entries: make(map[Key]*lruEntry),
		maxSize: maxSize,
		horizon: horizon,
		now:     time.Now,
	}
}

// Get returns the cached issues for key, or (nil, false) if absent or
// stale (older than the horizon, which counts as a miss and evicts the
// entry).
func (c *ResultCache) Get(key Key) ([]issue.Issue, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)

		return nil, false
	}

	if c.now().Sub(entry.entry.StoredAt) > c.horizon {
		c.removeFromList(entry)
		delete(c.entries, key)
		c.currentSize -= entry.size
		c.misses.Add(1)

		return nil, false
	}

	c.hits.Add(1)
	entry.accessCount++
	c.moveToFront(entry)

	return append([]issue.Issue(nil), entry.entry.Issues...), true
}

// Put stores issues for key, stamped with the current time. Entries larger
// than the whole cache are not stored.
func (c *ResultCache) Put(key Key, issues []issue.Issue) {
	size := encodedSize(issues)
	if size > c.maxSize {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[key]; ok {
		c.currentSize -= existing.size
		c.removeFromList(existing)
		delete(c.entries, key)
	}

	for c.currentSize+size > c.maxSize && c.tail != nil {
		c.evictLowestCost()
	}

	entry := &lruEntry{
		key:         key,
		entry:       Entry{Issues: append([]issue.Issue(nil), issues...), StoredAt: c.now()},
		size:        size,
		accessCount: 1,
	}

	c.entries[key] = entry
	c.currentSize += size
	c.addToFront(entry)
}

// Stats reports cache performance counters.
type Stats struct {
	Hits        int64
	Misses      int64
	Entries     int
	CurrentSize int64
	MaxSize     int64
}

// HitRate returns Hits/(Hits+Misses), or 0 when there have been no lookups.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}

	return float64(s.Hits) / float64(total)
}

// CacheHits and CacheMisses satisfy observability.CacheStatsProvider so a
// *ResultCache can be registered directly for OTel export, without the
// observability package needing to know about lru entries or spill dirs.
func (c *ResultCache) CacheHits() int64 {
	return c.hits.Load()
}

func (c *ResultCache) CacheMisses() int64 {
	return c.misses.Load()
}

// Stats returns a snapshot of the cache's performance counters.
func (c *ResultCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Entries:     len(c.entries),
		CurrentSize: c.currentSize,
		MaxSize:     c.maxSize,
	}
}

// Clear removes every entry.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[Key]*lruEntry)
	c.head = nil
	c.tail = nil
	c.currentSize = 0
}

func (c *ResultCache) moveToFront(entry *lruEntry) {
	if entry == c.head {
		return
	}

	c.removeFromList(entry)
	c.addToFront(entry)
}

func (c *ResultCache) addToFront(entry *lruEntry) {
	entry.prev = nil
	entry.next = c.head

	if c.head != nil {
		c.head.prev = entry
	}

	c.head = entry

	if c.tail == nil {
		c.tail = entry
	}
}

func (c *ResultCache) removeFromList(entry *lruEntry) {
	if entry.prev != nil {
		entry.prev.next = entry.next
	} else {
		c.head = entry.next
	}

	if entry.next != nil {
		entry.next.prev = entry.prev
	} else {
		c.tail = entry.prev
	}
}

// evictionSampleSize is the number of LRU-tail candidates sampled for
// size-aware eviction, trading an O(n) scan for an O(k) one.
const evictionSampleSize = 5

func (c *ResultCache) evictLowestCost() {
	if c.tail == nil {
		return
	}

	var candidates [evictionSampleSize]*lruEntry

	count := 0
	entry := c.tail

	for entry != nil && count < evictionSampleSize {
		candidates[count] = entry
		count++
		entry = entry.prev
	}

	if count == 0 {
		return
	}

	victim := candidates[0]
	lowestCost := victim.evictionCost()

	for i := 1; i < count; i++ {
		cost := candidates[i].evictionCost()
		if cost < lowestCost {
			lowestCost = cost
			victim = candidates[i]
		}
	}

	c.removeFromList(victim)
	delete(c.entries, victim.key)
	c.currentSize -= victim.size
}

func encodedSize(issues []issue.Issue) int64 {
	data, err := json.Marshal(issues)
	if err != nil {
		return 0
	}

	return int64(len(data))
}

// SpillDir writes ResultCache entries to disk, lz4-compressed, for cold
// starts that want to skip re-invoking analyzers entirely (an extension
// beyond the in-memory LRU, not required by the core). Directory layout:
// one file per Key under Dir, named by analyzer name plus hex content
// hash.
type SpillDir struct {
	Dir string
}

// Write lz4-compresses and writes one entry to disk.
func (s SpillDir) Write(key Key, e Entry) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}

	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(s.Dir, spillFilename(key)))
	if err != nil {
		return err
	}
	defer f.Close()

	zw := lz4.NewWriter(f)
	defer zw.Close()

	_, err = zw.Write(raw)

	return err
}

// Read loads and lz4-decompresses one entry from disk. Returns
// (Entry{}, false, nil) if the file does not exist.
func (s SpillDir) Read(key Key) (Entry, bool, error) {
	f, err := os.Open(filepath.Join(s.Dir, spillFilename(key)))
	if os.IsNotExist(err) {
		return Entry{}, false, nil
	}

	if err != nil {
		return Entry{}, false, err
	}
	defer f.Close()

	var buf bytes.Buffer

	zr := lz4.NewReader(f)

	if _, err := io.Copy(&buf, zr); err != nil {
		return Entry{}, false, err
	}

	var e Entry
	if err := json.Unmarshal(buf.Bytes(), &e); err != nil {
		return Entry{}, false, err
	}

	return e, true, nil
}

func spillFilename(key Key) string {
	return key.Analyzer + "-" + hexString(key.Hash[:]) + ".lz4"
}

const hexDigits = "0123456789abcdef"

func hexString(b []byte) string {
	out := make([]byte, len(b)*2)

	for i, v := range b {
		out[i*2] = hexDigits[v>>4]
		out[i*2+1] = hexDigits[v&0xf]
	}

	return string(out)
}
