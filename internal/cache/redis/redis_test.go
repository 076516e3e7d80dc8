package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/spreadbot/internal/domain"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := New(context.Background(), ClientConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestNew_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := New(context.Background(), ClientConfig{Addr: addr, DialTimeout: 200 * time.Millisecond})
	assert.Error(t, err)
}

func TestRateLimiter_SlidingWindow(t *testing.T) {
	c, _ := newTestClient(t)
	rl := NewRateLimiter(c)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := rl.Allow(ctx, "scan:1.2.3.4", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i)
	}

	ok, err := rl.Allow(ctx, "scan:1.2.3.4", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = rl.Allow(ctx, "scan:5.6.7.8", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "keys are independent")

	now = now.Add(time.Minute + time.Second)
	ok, err = rl.Allow(ctx, "scan:1.2.3.4", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "window slid past the earlier requests")
}

func TestRateLimiter_ZeroLimit(t *testing.T) {
	c, _ := newTestClient(t)

	ok, err := NewRateLimiter(c).Allow(context.Background(), "k", 0, time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLockManager_LeadRenewResign(t *testing.T) {
	c, mr := newTestClient(t)
	lm := NewLockManager(c)
	ctx := context.Background()

	require.NoError(t, lm.Lead(ctx, "spreadbot:poller", "replica-a", time.Minute))
	assert.True(t, mr.Exists("lock:spreadbot:poller"))

	err := lm.Lead(ctx, "spreadbot:poller", "replica-b", time.Minute)
	assert.ErrorIs(t, err, domain.ErrLockHeld)

	mr.FastForward(50 * time.Second)
	require.NoError(t, lm.Lead(ctx, "spreadbot:poller", "replica-a", time.Minute), "owner renews")
	mr.FastForward(50 * time.Second)
	assert.True(t, mr.Exists("lock:spreadbot:poller"), "renewal pushed expiry out")

	require.NoError(t, lm.Resign(ctx, "spreadbot:poller", "replica-b"))
	assert.True(t, mr.Exists("lock:spreadbot:poller"), "non-owner cannot release")

	require.NoError(t, lm.Resign(ctx, "spreadbot:poller", "replica-a"))
	assert.False(t, mr.Exists("lock:spreadbot:poller"))

	require.NoError(t, lm.Lead(ctx, "spreadbot:poller", "replica-b", time.Minute))
}

func TestLockManager_ExpiredLeaseIsTakenOver(t *testing.T) {
	c, mr := newTestClient(t)
	lm := NewLockManager(c)
	ctx := context.Background()

	require.NoError(t, lm.Lead(ctx, "job", "old", time.Second))
	mr.FastForward(2 * time.Second)

	require.NoError(t, lm.Lead(ctx, "job", "new", time.Minute))

	require.NoError(t, lm.Resign(ctx, "job", "old"))
	assert.True(t, mr.Exists("lock:job"))
}

func TestLockManager_RejectsTinyTTL(t *testing.T) {
	c, _ := newTestClient(t)
	assert.Error(t, NewLockManager(c).Lead(context.Background(), "job", "me", time.Microsecond))
}

func TestSignalBus_PublishSubscribe(t *testing.T) {
	c, _ := newTestClient(t)
	bus := NewSignalBus(c)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx, domain.ChannelOpportunityNew)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, domain.ChannelOpportunityNew, []byte(`{"n":1}`)))

	select {
	case msg := <-ch:
		assert.JSONEq(t, `{"n":1}`, string(msg))
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSignalBus_Stream(t *testing.T) {
	c, _ := newTestClient(t)
	bus := NewSignalBus(c)
	ctx := context.Background()

	msgs, err := bus.StreamRead(ctx, domain.StreamOpportunityNew, "0", 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	require.NoError(t, bus.StreamAppend(ctx, domain.StreamOpportunityNew, []byte("a")))
	require.NoError(t, bus.StreamAppend(ctx, domain.StreamOpportunityNew, []byte("b")))

	msgs, err = bus.StreamRead(ctx, domain.StreamOpportunityNew, "0", 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, []byte("a"), msgs[0].Payload)
	assert.Equal(t, []byte("b"), msgs[1].Payload)

	rest, err := bus.StreamRead(ctx, domain.StreamOpportunityNew, msgs[0].ID, 10)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, []byte("b"), rest[0].Payload)
}

func TestHasPattern(t *testing.T) {
	assert.True(t, hasPattern("ch:*"))
	assert.False(t, hasPattern(domain.ChannelOpportunities))
}
