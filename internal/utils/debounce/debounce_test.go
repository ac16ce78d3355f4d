package debounce_test

import (
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/exchange_desk/internal/utils/debounce"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type settledLog struct {
	mu     sync.Mutex
	values []string
}

func (l *settledLog) record(v string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.values = append(l.values, v)
}

func (l *settledLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.values...)
}

func TestDebouncer_InitialValue(t *testing.T) {
	d := debounce.New("initial", 300*time.Millisecond, debounce.WithClock(clockwork.NewFakeClock()))
	assert.Equal(t, "initial", d.Value())
	assert.False(t, d.Pending())
}

func TestDebouncer_OnlyLastValueSettles(t *testing.T) {
	clock := clockwork.NewFakeClock()
	d := debounce.New("a", 300*time.Millisecond, debounce.WithClock(clock))
	log := &settledLog{}
	d.OnSettle(log.record)

	d.Set("a") // t=0
	clock.Advance(100 * time.Millisecond)
	d.Set("b") // t=100
	clock.Advance(100 * time.Millisecond)
	d.Set("c") // t=200

	clock.Advance(299 * time.Millisecond) // t=499
	assert.Equal(t, "a", d.Value())
	assert.True(t, d.Pending())

	clock.Advance(1 * time.Millisecond) // t=500
	require.Eventually(t, func() bool { return d.Value() == "c" }, time.Second, time.Millisecond)

	assert.Equal(t, []string{"c"}, log.snapshot())
	assert.NotContains(t, log.snapshot(), "b")
	assert.False(t, d.Pending())
}

func TestDebouncer_SettlesAfterQuietPeriod(t *testing.T) {
	clock := clockwork.NewFakeClock()
	d := debounce.New(0, 300*time.Millisecond, debounce.WithClock(clock))

	d.Set(42)
	clock.Advance(300 * time.Millisecond)
	require.Eventually(t, func() bool { return d.Value() == 42 }, time.Second, time.Millisecond)

	d.Set(7)
	assert.Equal(t, 42, d.Value())
	clock.Advance(300 * time.Millisecond)
	require.Eventually(t, func() bool { return d.Value() == 7 }, time.Second, time.Millisecond)
}

func TestDebouncer_StopCancelsPendingCountdown(t *testing.T) {
	clock := clockwork.NewFakeClock()
	d := debounce.New("first", 300*time.Millisecond, debounce.WithClock(clock))
	log := &settledLog{}
	d.OnSettle(log.record)

	d.Set("second")
	d.Stop()
	clock.Advance(time.Second)

	// give any stray timer goroutine a chance to run
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, "first", d.Value())
	assert.Empty(t, log.snapshot())

	d.Set("third")
	clock.Advance(time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, "first", d.Value())
	assert.False(t, d.Pending())
}

func TestDebouncer_DefaultDelay(t *testing.T) {
	clock := clockwork.NewFakeClock()
	d := debounce.New("x", 0, debounce.WithClock(clock))

	d.Set("y")
	clock.Advance(debounce.DefaultDelay - time.Millisecond)
	assert.Equal(t, "x", d.Value())
	clock.Advance(time.Millisecond)
	require.Eventually(t, func() bool { return d.Value() == "y" }, time.Second, time.Millisecond)
}
