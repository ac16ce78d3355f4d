package querycache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SscSPs/exchange_desk/internal/apperrors"
	"github.com/SscSPs/exchange_desk/internal/utils/querycache"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noDelay(int) time.Duration { return 0 }

func newCache(clock clockwork.Clock) *querycache.Cache {
	return querycache.New(querycache.Config{Clock: clock})
}

func TestRead_ServesFreshDataWithoutRefetch(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cache := newCache(clock)
	key := querycache.Key{"wallets", "7"}
	opts := querycache.Options{StaleTime: time.Minute}

	var calls int32
	fetch := func(context.Context) (int, error) {
		return int(atomic.AddInt32(&calls, 1)), nil
	}

	v, err := querycache.Read(context.Background(), cache, key, opts, fetch, false)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	clock.Advance(30 * time.Second)
	v, err = querycache.Read(context.Background(), cache, key, opts, fetch, false)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	clock.Advance(30 * time.Second)
	v, err = querycache.Read(context.Background(), cache, key, opts, fetch, false)
	require.NoError(t, err)
	assert.Equal(t, 2, v, "stale entry is refetched")
}

func TestRead_ForceAlwaysRefetches(t *testing.T) {
	cache := newCache(clockwork.NewFakeClock())
	key := querycache.Key{"exchange-rates"}
	opts := querycache.Options{StaleTime: time.Hour}

	var calls int32
	fetch := func(context.Context) (int, error) {
		return int(atomic.AddInt32(&calls, 1)), nil
	}

	_, err := querycache.Read(context.Background(), cache, key, opts, fetch, false)
	require.NoError(t, err)
	v, err := querycache.Read(context.Background(), cache, key, opts, fetch, true)
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	st := querycache.Peek[int](cache, key)
	assert.Equal(t, 2, st.Data)
	assert.True(t, st.IsSuccess())
	assert.False(t, st.IsStale)
}

func TestInvalidate_MatchesSegmentPrefix(t *testing.T) {
	cache := newCache(clockwork.NewFakeClock())
	opts := querycache.Options{StaleTime: time.Hour}
	fetch := func(context.Context) (string, error) { return "ok", nil }

	for _, k := range []querycache.Key{
		{"orders", "7", "1", "10"},
		{"orders", "7", "2", "10"},
		{"orders", "70", "1", "10"},
		{"wallets", "7"},
	} {
		_, err := querycache.Read(context.Background(), cache, k, opts, fetch, false)
		require.NoError(t, err)
	}

	n := cache.Invalidate("orders", "7")
	assert.Equal(t, 2, n)
	assert.True(t, querycache.Peek[string](cache, querycache.Key{"orders", "7", "1", "10"}).IsStale)
	assert.True(t, querycache.Peek[string](cache, querycache.Key{"orders", "7", "2", "10"}).IsStale)
	assert.False(t, querycache.Peek[string](cache, querycache.Key{"orders", "70", "1", "10"}).IsStale)
	assert.False(t, querycache.Peek[string](cache, querycache.Key{"wallets", "7"}).IsStale)
}

func TestInvalidate_DuringInFlightFetchStoresStale(t *testing.T) {
	cache := newCache(clockwork.NewFakeClock())
	key := querycache.Key{"wallets", "7"}
	opts := querycache.Options{StaleTime: time.Hour}

	started := make(chan struct{})
	release := make(chan struct{})
	var calls int32
	fetch := func(context.Context) (int, error) {
		n := int(atomic.AddInt32(&calls, 1))
		if n == 1 {
			close(started)
			<-release
		}
		return n, nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = querycache.Read(context.Background(), cache, key, opts, fetch, false)
	}()

	<-started
	cache.Invalidate("wallets")
	close(release)
	<-done

	assert.True(t, querycache.Peek[int](cache, key).IsStale)

	v, err := querycache.Read(context.Background(), cache, key, opts, fetch, false)
	require.NoError(t, err)
	assert.Equal(t, 2, v, "read after invalidation never serves the pre-invalidation fetch")
}

func TestInvalidate_LaterReadDoesNotJoinEarlierFetch(t *testing.T) {
	cache := newCache(clockwork.NewFakeClock())
	key := querycache.Key{"wallets", "7"}
	opts := querycache.Options{StaleTime: time.Hour}

	started := make(chan struct{})
	release := make(chan struct{})
	var calls int32
	fetch := func(context.Context) (int, error) {
		n := int(atomic.AddInt32(&calls, 1))
		if n == 1 {
			close(started)
			<-release
		}
		return n, nil
	}

	first := make(chan int, 1)
	go func() {
		v, _ := querycache.Read(context.Background(), cache, key, opts, fetch, false)
		first <- v
	}()

	<-started
	cache.Invalidate("wallets")

	v, err := querycache.Read(context.Background(), cache, key, opts, fetch, false)
	require.NoError(t, err)
	assert.Equal(t, 2, v, "read issued after invalidation starts its own fetch")

	close(release)
	assert.Equal(t, 2, <-first, "the earlier fetch is superseded by the newer result")

	st := querycache.Peek[int](cache, key)
	assert.Equal(t, 2, st.Data)
	assert.False(t, st.IsStale)
}

func TestRead_CallerCancellationDoesNotFailSharedFetch(t *testing.T) {
	cache := newCache(clockwork.NewFakeClock())
	key := querycache.Key{"exchange-rates"}
	opts := querycache.Options{StaleTime: time.Minute}

	started := make(chan struct{})
	release := make(chan struct{})
	var calls int32
	fetch := func(ctx context.Context) (int, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
		}
		<-release
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := querycache.Read(ctxA, cache, key, opts, fetch, false)
		errA <- err
	}()
	<-started

	resultB := make(chan int, 1)
	go func() {
		v, err := querycache.Read(context.Background(), cache, key, opts, fetch, false)
		assert.NoError(t, err)
		resultB <- v
	}()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(release)
	assert.Equal(t, 1, <-resultB)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	assert.True(t, querycache.Peek[int](cache, key).IsSuccess())
}

func TestRead_OlderFetchDoesNotOverwriteNewerResult(t *testing.T) {
	cache := newCache(clockwork.NewFakeClock())
	key := querycache.Key{"exchange-rates"}
	opts := querycache.Options{StaleTime: time.Minute}

	started := make(chan struct{})
	release := make(chan struct{})
	var calls int32
	fetch := func(context.Context) (string, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
			<-release
			return "rate 1", nil
		}
		return "rate 2", nil
	}

	slow := make(chan string, 1)
	go func() {
		v, _ := querycache.Read(context.Background(), cache, key, opts, fetch, false)
		slow <- v
	}()
	<-started

	v, err := querycache.Read(context.Background(), cache, key, opts, fetch, true)
	require.NoError(t, err)
	assert.Equal(t, "rate 2", v)

	close(release)
	assert.Equal(t, "rate 2", <-slow)

	st := querycache.Peek[string](cache, key)
	assert.Equal(t, "rate 2", st.Data)
	assert.False(t, st.IsStale)
}

func TestClear_DuringInFlightFetchDoesNotRestoreEntry(t *testing.T) {
	cache := newCache(clockwork.NewFakeClock())
	key := querycache.Key{"wallets", "7"}
	opts := querycache.Options{StaleTime: time.Hour}

	started := make(chan struct{})
	release := make(chan struct{})
	var calls int32
	fetch := func(context.Context) (int, error) {
		n := int(atomic.AddInt32(&calls, 1))
		if n == 1 {
			close(started)
			<-release
		}
		return n, nil
	}

	done := make(chan int, 1)
	go func() {
		v, _ := querycache.Read(context.Background(), cache, key, opts, fetch, false)
		done <- v
	}()

	<-started
	cache.Clear("wallets", "7")
	close(release)
	assert.Equal(t, 1, <-done, "the caller still gets its own result")

	assert.Equal(t, querycache.StatusIdle, querycache.Peek[int](cache, key).Status)

	v, err := querycache.Read(context.Background(), cache, key, opts, fetch, false)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestRead_ConcurrentReadsShareOneFetch(t *testing.T) {
	cache := newCache(clockwork.NewFakeClock())
	key := querycache.Key{"quote", "7", "USD", "KRW", "100"}
	opts := querycache.Options{StaleTime: time.Minute}

	release := make(chan struct{})
	var calls int32
	fetch := func(context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := querycache.Read(context.Background(), cache, key, opts, fetch, false)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	require.Eventually(t, func() bool {
		return querycache.Peek[int](cache, key).IsFetching
	}, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	for _, v := range results {
		assert.Equal(t, 42, v)
	}
}

func TestRead_RetriesRetryableErrors(t *testing.T) {
	cache := newCache(clockwork.NewFakeClock())
	key := querycache.Key{"exchange-rates"}
	opts := querycache.Options{StaleTime: time.Minute, Retries: 2, RetryDelay: noDelay}

	var calls int32
	fetch := func(context.Context) (int, error) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return 0, apperrors.NewNetworkError(errors.New("connection refused"))
		}
		return 9, nil
	}

	v, err := querycache.Read(context.Background(), cache, key, opts, fetch, false)
	require.NoError(t, err)
	assert.Equal(t, 9, v)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestRead_GivesUpAfterRetries(t *testing.T) {
	cache := newCache(clockwork.NewFakeClock())
	key := querycache.Key{"exchange-rates"}
	opts := querycache.Options{StaleTime: time.Minute, Retries: 2, RetryDelay: noDelay}

	var calls int32
	fetch := func(context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 0, apperrors.NewAppError(apperrors.KindFailure, "boom", nil)
	}

	_, err := querycache.Read(context.Background(), cache, key, opts, fetch, false)
	require.Error(t, err)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))

	st := querycache.Peek[int](cache, key)
	assert.True(t, st.IsError())
	assert.False(t, st.HasData)
	assert.ErrorIs(t, st.Err, apperrors.ErrFailure)
}

func TestRead_DoesNotRetryUnauthorized(t *testing.T) {
	cache := newCache(clockwork.NewFakeClock())
	opts := querycache.Options{StaleTime: time.Minute, Retries: 2, RetryDelay: noDelay}

	var calls int32
	fetch := func(context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 0, apperrors.NewAppError(apperrors.KindUnauthorized, "expired", nil)
	}

	_, err := querycache.Read(context.Background(), cache, querycache.Key{"wallets", "7"}, opts, fetch, false)
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestPeek_UnknownKeyIsIdle(t *testing.T) {
	cache := newCache(clockwork.NewFakeClock())
	st := querycache.Peek[int](cache, querycache.Key{"nothing"})
	assert.Equal(t, querycache.StatusIdle, st.Status)
	assert.False(t, st.HasData)
}

func TestClear_DropsEntries(t *testing.T) {
	cache := newCache(clockwork.NewFakeClock())
	opts := querycache.Options{StaleTime: time.Hour}
	fetch := func(context.Context) (int, error) { return 1, nil }

	_, err := querycache.Read(context.Background(), cache, querycache.Key{"wallets", "7"}, opts, fetch, false)
	require.NoError(t, err)
	_, err = querycache.Read(context.Background(), cache, querycache.Key{"exchange-rates"}, opts, fetch, false)
	require.NoError(t, err)

	assert.Equal(t, 1, cache.Clear("wallets", "7"))
	assert.Equal(t, querycache.StatusIdle, querycache.Peek[int](cache, querycache.Key{"wallets", "7"}).Status)
	assert.True(t, querycache.Peek[int](cache, querycache.Key{"exchange-rates"}).HasData)
}

func TestSubscribe_SignalsOnWriteAndInvalidate(t *testing.T) {
	cache := newCache(clockwork.NewFakeClock())
	key := querycache.Key{"exchange-rates"}
	ch, cancel := cache.Subscribe(key)
	defer cancel()

	_, err := querycache.Read(context.Background(), cache, key, querycache.Options{StaleTime: time.Hour},
		func(context.Context) (int, error) { return 1, nil }, false)
	require.NoError(t, err)

	select {
	case <-ch:
	default:
		t.Fatal("expected a signal after write")
	}

	cache.Invalidate("exchange-rates")
	select {
	case <-ch:
	default:
		t.Fatal("expected a signal after invalidation")
	}
}

func TestEvery_RunsOnEachTickUntilStopped(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cache := newCache(clock)

	var ticks int32
	stop := cache.Every(context.Background(), time.Minute, func(context.Context) {
		atomic.AddInt32(&ticks, 1)
	})

	clock.Advance(time.Minute)
	require.Eventually(t, func() bool { return atomic.LoadInt32(&ticks) == 1 }, time.Second, 5*time.Millisecond)

	stop()
	clock.Advance(5 * time.Minute)
	time.Sleep(20 * time.Millisecond)
	assert.EqualValues(t, 1, atomic.LoadInt32(&ticks))
}

func TestDefaultRetryDelay(t *testing.T) {
	assert.Equal(t, time.Second, querycache.DefaultRetryDelay(0))
	assert.Equal(t, 2*time.Second, querycache.DefaultRetryDelay(1))
	assert.Equal(t, 16*time.Second, querycache.DefaultRetryDelay(4))
	assert.Equal(t, 30*time.Second, querycache.DefaultRetryDelay(5))
	assert.Equal(t, 30*time.Second, querycache.DefaultRetryDelay(12))
}

func TestReadState_ReportsErrors(t *testing.T) {
	cache := newCache(clockwork.NewFakeClock())
	key := querycache.Key{"wallets", "7"}

	st := querycache.ReadState(context.Background(), cache, key, querycache.Options{StaleTime: time.Minute},
		func(context.Context) (int, error) {
			return 0, apperrors.NewAppError(apperrors.KindUnauthorized, "expired", nil)
		})
	assert.True(t, st.IsError())
	assert.ErrorIs(t, st.Err, apperrors.ErrUnauthorized)

	st = querycache.ReadState(context.Background(), cache, key, querycache.Options{StaleTime: time.Minute},
		func(context.Context) (int, error) { return 3, nil })
	assert.True(t, st.IsSuccess())
	assert.Equal(t, 3, st.Data)
}
