package auth

import (
	"context"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// SessionEntry is one cached (account id, last activity) pair.
type SessionEntry struct {
	AccountID uuid.UUID
	Timestamp time.Time
}

// SessionCache buffers last-activity timestamps in memory so that bursts of
// activity events collapse into a single persistence write at eviction time.
// The first touch for an id is written through immediately: if the process
// dies before the next sweep the session marker survives.
//
// All operations serialize on a single store-wide mutex. The cache has no
// size bound; entries only leave through Evict/EvictIf.
type SessionCache struct {
	mu      sync.Mutex
	entries map[uuid.UUID]time.Time
	store   AccountStore
	logger  Logger
}

// SessionCacheOption customizes cache construction.
type SessionCacheOption func(*SessionCache)

// WithSessionCacheLogger overrides the default logger.
func WithSessionCacheLogger(logger Logger) SessionCacheOption {
	return func(c *SessionCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewSessionCache creates an empty cache writing through to store on the
// first touch of every id.
func NewSessionCache(store AccountStore, opts ...SessionCacheOption) *SessionCache {
	c := &SessionCache{
		entries: map[uuid.UUID]time.Time{},
		store:   store,
		logger:  defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Touch records or overwrites the last-activity timestamp for the account.
// When the id is not currently tracked the timestamp is also persisted to
// the account's last_session_at before the entry is created; if that write
// fails the entry is not created so the next touch retries the write.
func (c *SessionCache) Touch(ctx context.Context, id uuid.UUID, ts time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, tracked := c.entries[id]; tracked {
		c.entries[id] = ts
		return nil
	}

	if err := c.store.UpdateLastSession(ctx, id, ts); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist first session touch")
	}

	c.entries[id] = ts
	return nil
}

// Get returns the cached timestamp for the account, if tracked.
func (c *SessionCache) Get(id uuid.UUID) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ts, ok := c.entries[id]
	return ts, ok
}

// Len reports the number of tracked accounts.
func (c *SessionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// ExpiredEntries returns a snapshot of every entry strictly older than ttl
// at the given instant. An entry aged exactly ttl is not expired. The
// snapshot is finite and safe to re-iterate while the cache keeps mutating.
func (c *SessionCache) ExpiredEntries(now time.Time, ttl time.Duration) []SessionEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expired []SessionEntry
	for id, ts := range c.entries {
		if now.Sub(ts) > ttl {
			expired = append(expired, SessionEntry{AccountID: id, Timestamp: ts})
		}
	}
	return expired
}

// Evict removes the entry unconditionally. The next Touch for the id counts
// as a first touch again.
func (c *SessionCache) Evict(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}

// EvictIf removes the entry only when its timestamp still equals lastSeen.
// The sweep uses it so a touch landing between snapshot and eviction is
// never silently dropped.
func (c *SessionCache) EvictIf(id uuid.UUID, lastSeen time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	ts, ok := c.entries[id]
	if !ok || !ts.Equal(lastSeen) {
		return false
	}
	delete(c.entries, id)
	return true
}
