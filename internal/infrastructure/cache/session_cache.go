package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/farigab/bragctl/internal/domain"
)

// DefaultTTL bounds how long a fetched identity is trusted.
const DefaultTTL = 5 * time.Minute

// entry is one in-flight-or-settled identity fetch. done is closed once
// user/err are final; entries are never mutated after that.
type entry struct {
	done      chan struct{}
	user      *domain.AuthenticatedUser
	err       error
	createdAt time.Time
	gen       uint64
}

// Deps are the collaborators of a SessionCache. Store, Notifier and
// Navigator may be nil.
type Deps struct {
	Gateway   domain.IdentityGateway
	Store     domain.CredentialStore
	Notifier  domain.Notifier
	Navigator domain.Navigator
	Logger    *slog.Logger
}

// SessionCache is the single source of truth for the signed-in user.
// Concurrent callers of GetCurrentUser share one identity fetch.
type SessionCache struct {
	gw        domain.IdentityGateway
	store     domain.CredentialStore
	notifier  domain.Notifier
	navigator domain.Navigator
	logger    *slog.Logger
	ttl       time.Duration
	now       func() time.Time

	mu         sync.Mutex
	entry      *entry
	gen        uint64
	current    *domain.AuthenticatedUser
	lastErr    string
	loading    int
	refreshing bool
}

// NewSessionCache creates a session cache. A non-positive ttl selects DefaultTTL.
func NewSessionCache(d Deps, ttl time.Duration) *SessionCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionCache{
		gw:        d.Gateway,
		store:     d.Store,
		notifier:  d.Notifier,
		navigator: d.Navigator,
		logger:    logger,
		ttl:       ttl,
		now:       time.Now,
	}
}

// GetCurrentUser returns the cached identity, joining a pending fetch if one
// exists. A forced call, a missing entry or a stale entry starts exactly one
// new fetch. The fetch outlives the caller's context; a caller whose context
// ends just stops waiting.
func (c *SessionCache) GetCurrentUser(ctx context.Context, forceRefresh bool) (*domain.AuthenticatedUser, error) {
	c.mu.Lock()
	e := c.entry
	if forceRefresh || e == nil || !c.freshLocked(e) {
		e = c.startFetchLocked(ctx)
	}
	c.mu.Unlock()

	select {
	case <-e.done:
		if e.err != nil {
			return nil, e.err
		}
		u := *e.user
		return &u, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *SessionCache) startFetchLocked(ctx context.Context) *entry {
	e := &entry{
		done:      make(chan struct{}),
		createdAt: c.now(),
		gen:       c.gen,
	}
	c.entry = e
	go c.fetch(context.WithoutCancel(ctx), e)
	return e
}

func (c *SessionCache) fetch(ctx context.Context, e *entry) {
	user, err := c.gw.FetchUser(ctx)
	if err == nil && user == nil {
		err = domain.ErrNotAuthenticated
	}

	c.mu.Lock()
	if err != nil {
		c.lastErr = err.Error()
		if c.entry == e {
			c.entry = nil
		}
	} else if c.entry == e || (c.entry == nil && e.gen == c.gen) {
		// A nil entry in the same generation means a refresh invalidated the
		// cache mid-fetch. A Reset starts a new generation and drops the user.
		c.current = user
		c.lastErr = ""
	}
	e.user, e.err = user, err
	c.mu.Unlock()
	close(e.done)

	if err != nil {
		c.logger.ErrorContext(ctx, "load user error", "error", err)
	}
}

// freshLocked reports whether e is younger than the TTL.
func (c *SessionCache) freshLocked(e *entry) bool {
	return c.now().Sub(e.createdAt) < c.ttl
}

// CheckSession reports whether a user is signed in. It never fails: any fetch
// error yields false and clears the current user.
func (c *SessionCache) CheckSession(ctx context.Context) bool {
	c.mu.Lock()
	if c.current != nil && c.entry != nil && c.freshLocked(c.entry) {
		c.mu.Unlock()
		return true
	}
	c.loading++
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.loading--
		c.mu.Unlock()
	}()

	if _, err := c.GetCurrentUser(ctx, false); err != nil {
		c.Reset()
		return false
	}
	return true
}

// Invalidate discards the cached entry so the next read refetches.
func (c *SessionCache) Invalidate() {
	c.mu.Lock()
	c.entry = nil
	c.mu.Unlock()
}

// Reset clears the current user, the last error and the cached entry.
func (c *SessionCache) Reset() {
	c.mu.Lock()
	c.current = nil
	c.lastErr = ""
	c.entry = nil
	c.gen++
	c.mu.Unlock()
}

// Logout signs out remotely and always clears local state afterwards. A remote
// failure is logged, notified and returned, but does not block the clear.
func (c *SessionCache) Logout(ctx context.Context) error {
	c.mu.Lock()
	c.loading++
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.loading--
		c.mu.Unlock()
	}()

	err := c.gw.Logout(ctx)
	if err != nil {
		c.logger.ErrorContext(ctx, "logout error", "error", err)
		if c.notifier != nil {
			c.notifier.Error("Logout error", err.Error())
		}
	}

	c.Reset()
	if c.store != nil {
		if clearErr := c.store.Clear(); clearErr != nil {
			c.logger.WarnContext(ctx, "failed to clear stored credentials", "error", clearErr)
		}
	}
	if c.navigator != nil {
		c.navigator.NavigateToLogin()
	}
	return err
}

// Refresh runs one session refresh. A concurrent call fails fast with
// ErrRefreshInProgress instead of queueing.
func (c *SessionCache) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.refreshing {
		c.mu.Unlock()
		return domain.ErrRefreshInProgress
	}
	c.refreshing = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.refreshing = false
		c.mu.Unlock()
	}()

	if err := c.gw.RefreshSession(ctx); err != nil {
		c.logger.WarnContext(ctx, "session refresh failed", "error", err)
		return fmt.Errorf("%w: %w", domain.ErrRefreshFailed, err)
	}

	c.Invalidate()
	c.logger.DebugContext(ctx, "session refreshed")
	return nil
}

// RefreshInProgress reports whether a refresh is running.
func (c *SessionCache) RefreshInProgress() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshing
}

// Current returns the signed-in user or nil.
func (c *SessionCache) Current() *domain.AuthenticatedUser {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	u := *c.current
	return &u
}

// LastError returns the message of the last failed identity fetch.
func (c *SessionCache) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Loading reports whether a session check or logout is running.
func (c *SessionCache) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading > 0
}
