package auth

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// SessionCoordinator reacts to login and activity events by writing into the
// SessionCache, and runs the periodic sweep that flushes expired entries to
// persistent storage.
//
// Per account id the coordinator moves through three states: untracked,
// cached, and back to untracked once the sweep persists and evicts the
// entry. Login events bypass the cache and increment login_count
// synchronously with the event.
type SessionCoordinator struct {
	store  AccountStore
	cache  *SessionCache
	ttl    time.Duration
	every  time.Duration
	logger Logger
	now    Clock

	started  atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// SessionCoordinatorOption customizes coordinator construction.
type SessionCoordinatorOption func(*SessionCoordinator)

// WithCoordinatorLogger overrides the default logger.
func WithCoordinatorLogger(logger Logger) SessionCoordinatorOption {
	return func(c *SessionCoordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCoordinatorClock injects a custom clock (useful for tests).
func WithCoordinatorClock(clock Clock) SessionCoordinatorOption {
	return func(c *SessionCoordinator) {
		if clock != nil {
			c.now = clock
		}
	}
}

// NewSessionCoordinator wires the coordinator to its cache and store. The
// caller owns the lifecycle: Subscribe, then Start, then Stop on shutdown.
func NewSessionCoordinator(store AccountStore, cache *SessionCache, cfg Config, opts ...SessionCoordinatorOption) *SessionCoordinator {
	c := &SessionCoordinator{
		store:  store,
		cache:  cache,
		ttl:    cfg.GetSessionTTL(),
		every:  cfg.GetSweepInterval(),
		logger: defLogger{},
		now:    time.Now,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Subscribe registers the coordinator's event handlers on the dispatcher.
func (c *SessionCoordinator) Subscribe(d *Dispatcher) {
	d.Subscribe(TopicUserActivity, func(ctx context.Context, msg Message) {
		if m, ok := msg.(UserActivityMessage); ok {
			c.OnUserActivity(ctx, m)
		}
	})
	d.Subscribe(TopicUserLoggedIn, func(ctx context.Context, msg Message) {
		if m, ok := msg.(UserLoggedInMessage); ok {
			c.OnUserLoggedIn(ctx, m)
		}
	})
}

// Start launches the periodic sweep. It returns immediately; calling it a
// second time is a no-op.
func (c *SessionCoordinator) Start(ctx context.Context) {
	if !c.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(c.done)
		ticker := time.NewTicker(c.every)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.Sweep(ctx, c.now())
			case <-c.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts the sweep loop and waits for it to exit. Idempotent, and safe
// to call on a coordinator that was never started.
func (c *SessionCoordinator) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
	if c.started.Load() {
		<-c.done
	}
}

// Flush persists every cached entry regardless of age. Used on shutdown so
// buffered activity survives the process.
func (c *SessionCoordinator) Flush(ctx context.Context) {
	c.Sweep(ctx, c.now().Add(c.ttl+time.Nanosecond))
}

// OnUserActivity records an activity timestamp for the account. Events that
// reference unknown accounts are logged and discarded; there is no caller
// to propagate an error to.
func (c *SessionCoordinator) OnUserActivity(ctx context.Context, msg UserActivityMessage) {
	id, err := uuid.Parse(msg.AccountID)
	if err != nil {
		c.logger.Warn("activity event with invalid account id", "account_id", msg.AccountID)
		return
	}

	if _, err := c.store.FindByID(ctx, id); err != nil {
		if goerrors.IsNotFound(err) {
			c.logger.Info("activity event for unknown account discarded", "account_id", msg.AccountID)
		} else {
			c.logger.Error("activity event account lookup failed", "account_id", msg.AccountID, "error", err)
		}
		return
	}

	if err := c.cache.Touch(ctx, id, msg.ActivityTime); err != nil {
		c.logger.Error("failed to record activity", "account_id", msg.AccountID, "error", err)
	}
}

// OnUserLoggedIn increments the account's login counter, synchronously with
// respect to the event, never batched.
func (c *SessionCoordinator) OnUserLoggedIn(ctx context.Context, msg UserLoggedInMessage) {
	id, err := uuid.Parse(msg.AccountID)
	if err != nil {
		c.logger.Warn("login event with invalid account id", "account_id", msg.AccountID)
		return
	}

	if _, err := c.store.FindByID(ctx, id); err != nil {
		if goerrors.IsNotFound(err) {
			c.logger.Info("login event for unknown account discarded", "account_id", msg.AccountID)
		} else {
			c.logger.Error("login event account lookup failed", "account_id", msg.AccountID, "error", err)
		}
		return
	}

	if err := c.store.IncrementLoginCount(ctx, id); err != nil {
		c.logger.Error("failed to increment login count", "account_id", msg.AccountID, "error", err)
	}
}

// Sweep persists and evicts every cache entry older than the session TTL at
// the given instant. Entries whose account no longer exists are evicted
// without persistence. Running the sweep twice with no new activity in
// between performs no redundant writes: evicted ids are simply absent from
// the second snapshot. Each per-id unit of work is independent, so a sweep
// cut short by process termination leaves no inconsistency behind.
func (c *SessionCoordinator) Sweep(ctx context.Context, now time.Time) {
	for _, entry := range c.cache.ExpiredEntries(now, c.ttl) {
		if _, err := c.store.FindByID(ctx, entry.AccountID); err != nil {
			if goerrors.IsNotFound(err) {
				c.logger.Info("evicting session for missing account", "account_id", entry.AccountID)
				c.cache.Evict(entry.AccountID)
			} else {
				c.logger.Error("sweep account lookup failed", "account_id", entry.AccountID, "error", err)
			}
			continue
		}

		if err := c.store.UpdateLastSession(ctx, entry.AccountID, entry.Timestamp); err != nil {
			// keep the entry; the next sweep retries the write
			c.logger.Error("sweep failed to persist session", "account_id", entry.AccountID, "error", err)
			continue
		}

		// a touch after the snapshot wins over the eviction
		c.cache.EvictIf(entry.AccountID, entry.Timestamp)
	}
}
