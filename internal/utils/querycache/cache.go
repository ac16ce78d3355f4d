// Package querycache is the shared read cache behind rates, wallets, order
// history and quotes. Entries are keyed by string segments, have a freshness
// window, can be invalidated by prefix and are garbage collected when unused.
package querycache

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/exchange_desk/internal/apperrors"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

const (
	defaultMaxEntries = 4096
	defaultGCTime     = 10 * time.Minute
	defaultFetchTime  = 30 * time.Second

	retryBaseDelay = 1 * time.Second
	retryMaxDelay  = 30 * time.Second
)

// Key identifies a cached read, e.g. Key{"orders", memberID, "1", "10"}.
type Key []string

func (k Key) String() string {
	return strings.Join(k, "/")
}

// Status mirrors the lifecycle of a read.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Options tune a single Read.
type Options struct {
	// StaleTime is how long fetched data is served without refetching.
	StaleTime time.Duration
	// Retries is the number of extra attempts for retryable failures.
	Retries int
	// RetryDelay overrides DefaultRetryDelay.
	RetryDelay func(attempt int) time.Duration
}

// DefaultRetryDelay doubles from one second and is capped at thirty.
func DefaultRetryDelay(attempt int) time.Duration {
	if attempt < 0 {
		return retryBaseDelay
	}
	if attempt > 5 {
		return retryMaxDelay
	}
	delay := retryBaseDelay * time.Duration(1<<attempt)
	if delay > retryMaxDelay {
		return retryMaxDelay
	}
	return delay
}

// State is what a consumer renders: cached data plus the status indicators.
type State[T any] struct {
	Data       T
	HasData    bool
	Status     Status
	Err        error
	FetchedAt  time.Time
	IsStale    bool
	IsFetching bool
}

func (s State[T]) IsPending() bool { return s.Status == StatusPending }
func (s State[T]) IsSuccess() bool { return s.Status == StatusSuccess }
func (s State[T]) IsError() bool   { return s.Status == StatusError }

type entry struct {
	value       any
	hasValue    bool
	err         error
	fetchedAt   time.Time
	staleTime   time.Duration
	gen         uint64
	seq         uint64 // sequence of the fetch whose result is stored
	invalidated bool
	fetching    int
}

type flight struct {
	e   *entry
	gen uint64
	seq uint64
}

// Config configures a Cache.
type Config struct {
	MaxEntries int
	// GCTime is how long an entry survives after its last write.
	GCTime time.Duration
	// FetchTimeout bounds a shared fetch, which outlives the callers waiting on it.
	FetchTimeout time.Duration
	Clock        clockwork.Clock
	Logger       *slog.Logger
}

// Cache is safe for concurrent use. Callbacks never run under its lock.
type Cache struct {
	mu           sync.Mutex
	clock        clockwork.Clock
	logger       *slog.Logger
	fetchTimeout time.Duration
	entries      *expirable.LRU[string, *entry]
	group        singleflight.Group
	subs         map[string]map[uint64]chan struct{}
	nextSub      uint64
	lastGen      uint64
	lastSeq      uint64
}

// New creates a Cache.
func New(cfg Config) *Cache {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = defaultMaxEntries
	}
	if cfg.GCTime <= 0 {
		cfg.GCTime = defaultGCTime
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTime
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Cache{
		clock:        cfg.Clock,
		logger:       cfg.Logger,
		fetchTimeout: cfg.FetchTimeout,
		entries:      expirable.NewLRU[string, *entry](cfg.MaxEntries, nil, cfg.GCTime),
		subs:         make(map[string]map[uint64]chan struct{}),
	}
}

// Clock returns the clock freshness is measured against.
func (c *Cache) Clock() clockwork.Clock {
	return c.clock
}

// Read returns the cached value for key while it is fresh, and otherwise fetches it.
// force bypasses freshness and in-flight de-duplication: the fetch is always
// re-issued and its result returned to the caller.
//
// Non-forced callers share one fetch per key and generation, so a Read issued
// after Invalidate never joins a fetch that started before it. The shared fetch
// is detached from any single caller's cancellation; each caller stops waiting
// when its own ctx ends.
func Read[T any](ctx context.Context, c *Cache, key Key, opts Options, fetch func(context.Context) (T, error), force bool) (T, error) {
	k := key.String()
	var zero T

	if !force {
		if v, ok := c.fresh(k); ok {
			if typed, ok := v.(T); ok {
				return typed, nil
			}
		}
	}

	untyped := func(ctx context.Context) (any, error) {
		return fetch(ctx)
	}

	var (
		v   any
		err error
	)
	gen := c.currentGen(k)
	if force {
		v, err = c.run(ctx, k, gen, opts, untyped)
	} else {
		ch := c.group.DoChan(k+"#"+strconv.FormatUint(gen, 10), func() (any, error) {
			fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
			defer cancel()
			return c.run(fctx, k, gen, opts, untyped)
		})
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case res := <-ch:
			v, err = res.Val, res.Err
		}
	}
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, errors.New("querycache: cached value has unexpected type for key " + k)
	}
	return typed, nil
}

// ReadState performs a non-forced Read and reports the resulting state.
// A failure that was not recorded on the entry (e.g. cancellation) still
// surfaces as an error state.
func ReadState[T any](ctx context.Context, c *Cache, key Key, opts Options, fetch func(context.Context) (T, error)) State[T] {
	_, err := Read(ctx, c, key, opts, fetch, false)
	st := Peek[T](c, key)
	if err != nil && st.Err == nil {
		st.Status = StatusError
		st.Err = err
	}
	return st
}

// Peek reports the current state of key without fetching.
func Peek[T any](c *Cache, key Key) State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries.Peek(key.String())
	if !ok {
		return State[T]{Status: StatusIdle}
	}

	st := State[T]{
		Err:        e.err,
		FetchedAt:  e.fetchedAt,
		IsFetching: e.fetching > 0,
		IsStale:    !e.hasValue || e.invalidated || c.clock.Since(e.fetchedAt) >= e.staleTime,
	}
	if e.hasValue {
		if typed, ok := e.value.(T); ok {
			st.Data = typed
			st.HasData = true
		}
	}
	switch {
	case e.err != nil:
		st.Status = StatusError
	case e.hasValue:
		st.Status = StatusSuccess
	default:
		st.Status = StatusPending
	}
	return st
}

// Invalidate marks every entry under prefix stale so the next Read refetches.
// A fetch already in flight stores its result pre-invalidated.
// It returns the number of entries affected.
func (c *Cache) Invalidate(prefix ...string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, k := range c.entries.Keys() {
		if !matches(k, prefix) {
			continue
		}
		if e, ok := c.entries.Peek(k); ok {
			c.lastGen++
			e.gen = c.lastGen
			e.invalidated = true
			n++
			c.notifyLocked(k)
		}
	}
	c.logger.Debug("Cache entries invalidated", slog.String("prefix", Key(prefix).String()), slog.Int("count", n))
	return n
}

// Clear drops every entry under prefix. A fetch in flight for a dropped entry
// still answers its callers but no longer writes to the cache.
func (c *Cache) Clear(prefix ...string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, k := range c.entries.Keys() {
		if matches(k, prefix) {
			c.entries.Remove(k)
			n++
		}
	}
	return n
}

// Subscribe returns a channel signalled after every write or invalidation of key.
// Signals coalesce; the channel is never closed. Call cancel to unsubscribe.
func (c *Cache) Subscribe(key Key) (<-chan struct{}, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key.String()
	id := c.nextSub
	c.nextSub++
	ch := make(chan struct{}, 1)
	if c.subs[k] == nil {
		c.subs[k] = make(map[uint64]chan struct{})
	}
	c.subs[k][id] = ch

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs[k], id)
		if len(c.subs[k]) == 0 {
			delete(c.subs, k)
		}
	}
}

// Every runs fn on each tick of interval until stop is called or ctx ends.
// stop waits for a running fn to return.
func (c *Cache) Every(ctx context.Context, interval time.Duration, fn func(context.Context)) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	ticker := c.clock.NewTicker(interval)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				fn(ctx)
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			wg.Wait()
		})
	}
}

func (c *Cache) fresh(k string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries.Get(k)
	if !ok || !e.hasValue || e.invalidated {
		return nil, false
	}
	if c.clock.Since(e.fetchedAt) >= e.staleTime {
		return nil, false
	}
	return e.value, true
}

// currentGen returns the generation of key, creating its entry when missing.
func (c *Cache) currentGen(k string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries.Peek(k)
	if !ok {
		e = c.newEntryLocked(k)
	}
	return e.gen
}

func (c *Cache) newEntryLocked(k string) *entry {
	c.lastGen++
	e := &entry{gen: c.lastGen}
	c.entries.Add(k, e)
	return e
}

func (c *Cache) run(ctx context.Context, k string, gen uint64, opts Options, fetch func(context.Context) (any, error)) (any, error) {
	f := c.beginFetch(k, gen)
	v, err := c.fetchWithRetry(ctx, k, opts, fetch)
	return c.finishFetch(k, f, opts.StaleTime, v, err)
}

func (c *Cache) beginFetch(k string, gen uint64) flight {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries.Peek(k)
	if !ok {
		e = c.newEntryLocked(k)
	}
	e.fetching++
	c.lastSeq++
	return flight{e: e, gen: gen, seq: c.lastSeq}
}

// finishFetch stores the result of f unless its entry was dropped meanwhile or
// a fetch that started later has already stored its own. A superseded fetch
// hands the newer value to its callers.
func (c *Cache) finishFetch(k string, f flight, staleTime time.Duration, v any, err error) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := f.e
	if e.fetching > 0 {
		e.fetching--
	}
	if cur, ok := c.entries.Peek(k); !ok || cur != e {
		return v, err
	}
	if f.seq < e.seq {
		if e.hasValue && e.err == nil {
			return e.value, nil
		}
		return v, err
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return v, err
		}
		e.err = err
		e.seq = f.seq
		c.entries.Add(k, e)
		c.notifyLocked(k)
		return v, err
	}

	e.value = v
	e.hasValue = true
	e.err = nil
	e.seq = f.seq
	e.fetchedAt = c.clock.Now()
	e.staleTime = staleTime
	e.invalidated = e.gen != f.gen
	c.entries.Add(k, e)
	c.notifyLocked(k)
	return v, nil
}

func (c *Cache) fetchWithRetry(ctx context.Context, k string, opts Options, fetch func(context.Context) (any, error)) (any, error) {
	delay := opts.RetryDelay
	if delay == nil {
		delay = DefaultRetryDelay
	}
	for attempt := 0; ; attempt++ {
		v, err := fetch(ctx)
		if err == nil {
			return v, nil
		}
		if attempt >= opts.Retries || !apperrors.IsRetryable(err) {
			return nil, err
		}
		wait := delay(attempt)
		c.logger.Warn("Cache fetch failed, retrying",
			slog.String("key", k),
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", wait),
			slog.String("error", err.Error()))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.clock.After(wait):
		}
	}
}

func (c *Cache) notifyLocked(k string) {
	for _, ch := range c.subs[k] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func matches(k string, prefix []string) bool {
	if len(prefix) == 0 {
		return true
	}
	p := strings.Join(prefix, "/")
	return k == p || strings.HasPrefix(k, p+"/")
}
