// Package cache holds rendered documents and the aggregates built from them.
//
// The cache is bounded: when an insert pushes it past its limit, the single
// entry with the oldest insertion time is evicted. Flush empties everything,
// including the chronological index and feed slots, and starts a new epoch.
package cache

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/daybook/internal/logfields"
	"git.home.luguber.info/inful/daybook/internal/metadata"
	"git.home.luguber.info/inful/daybook/internal/metrics"
)

const (
	DefaultMaxEntries = 50
	DefaultFeedTTL    = time.Hour
)

// Entry is one rendered document.
type Entry struct {
	ID            string
	Body          string // full page HTML
	UnwrappedBody string // body HTML without site or post chrome
	Metadata      metadata.Map
	Fingerprint   string
	InsertedAt    time.Time

	seq uint64
}

func (e Entry) clone() Entry {
	e.Metadata = e.Metadata.Clone()
	return e
}

// Cache is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]Entry
	seq     uint64
	epoch   string

	index    any
	hasIndex bool

	feed       []byte
	feedAt     time.Time
	feedTTL    time.Duration
	maxEntries int

	now      func() time.Time
	recorder metrics.Recorder
	logger   *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithMaxEntries sets the entry bound. Values below one are ignored.
func WithMaxEntries(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// WithFeedTTL sets how long a built feed stays valid.
func WithFeedTTL(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.feedTTL = d
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(c *Cache) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithLogger sets the logger used for flush and eviction events.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:    make(map[string]Entry),
		epoch:      uuid.NewString(),
		feedTTL:    DefaultFeedTTL,
		maxEntries: DefaultMaxEntries,
		now:        time.Now,
		recorder:   metrics.NoopRecorder{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a copy of the entry for id.
func (c *Cache) Get(id string) (Entry, bool) {
	c.mu.Lock()
	e, ok := c.entries[id]
	c.mu.Unlock()
	if !ok {
		c.recorder.IncCacheMiss()
		return Entry{}, false
	}
	c.recorder.IncCacheHit()
	return e.clone(), true
}

// PutFor stores e under id, stamping its ID and insertion time, and returns
// the stamped copy. Nothing is stored when a flush happened since epoch was
// read; the second result reports whether e was kept. If the cache then holds
// more than its bound, exactly one entry is evicted: the one inserted earliest.
func (c *Cache) PutFor(epoch, id string, e Entry) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e = e.clone()
	e.ID = id
	e.InsertedAt = c.now()
	if c.epoch != epoch {
		return e, false
	}
	c.seq++
	e.seq = c.seq
	c.entries[id] = e

	if len(c.entries) > c.maxEntries {
		victim := c.oldestLocked()
		delete(c.entries, victim)
		c.recorder.IncCacheEviction()
		c.logger.Debug("Evicted cache entry", logfields.DocumentID(victim), logfields.Entries(len(c.entries)))
	}
	c.recorder.SetCacheEntries(len(c.entries))
	return e.clone(), true
}

func (c *Cache) oldestLocked() string {
	var (
		victim string
		oldest Entry
		found  bool
	)
	for id, e := range c.entries {
		if !found || e.InsertedAt.Before(oldest.InsertedAt) ||
			(e.InsertedAt.Equal(oldest.InsertedAt) && e.seq < oldest.seq) {
			victim, oldest, found = id, e, true
		}
	}
	return victim
}

// Flush empties the cache and both aggregate slots and starts a new epoch.
// Flushing an empty cache is harmless.
func (c *Cache) Flush(reason metrics.FlushReason) {
	c.mu.Lock()
	dropped := len(c.entries)
	c.entries = make(map[string]Entry)
	c.index, c.hasIndex = nil, false
	c.feed, c.feedAt = nil, time.Time{}
	c.epoch = uuid.NewString()
	epoch := c.epoch
	c.mu.Unlock()

	c.recorder.IncCacheFlush(reason)
	c.recorder.SetCacheEntries(0)
	c.logger.Info("Emptied the cache", logfields.Reason(string(reason)),
		logfields.Entries(dropped), logfields.Epoch(epoch))
}

// Close flushes the cache as part of shutdown.
func (c *Cache) Close() error {
	c.Flush(metrics.FlushShutdown)
	return nil
}

// Index returns the cached chronological index for this epoch.
func (c *Cache) Index() (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index, c.hasIndex
}

// SetIndexFor stores v only if no flush happened since epoch was read, and
// reports whether it did.
func (c *Cache) SetIndexFor(epoch string, v any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return false
	}
	c.index, c.hasIndex = v, true
	return true
}

// Feed returns the cached feed payload if it is younger than the feed TTL.
func (c *Cache) Feed() ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.feed == nil || c.now().Sub(c.feedAt) > c.feedTTL {
		return nil, false
	}
	return append([]byte(nil), c.feed...), true
}

// SetFeed stores a feed payload stamped with the current time.
func (c *Cache) SetFeed(b []byte) {
	c.mu.Lock()
	c.feed = append([]byte(nil), b...)
	c.feedAt = c.now()
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Epoch identifies the interval since the last flush.
func (c *Cache) Epoch() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

func (c *Cache) keys() []string {
	c.mu.Lock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	c.mu.Unlock()
	sort.Strings(keys)
	return keys
}
