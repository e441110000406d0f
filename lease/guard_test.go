package lease

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/genesis/leasetest"
)

func TestLeaseReleaseIsIdempotent(t *testing.T) {
	clock := leasetest.NewFakeClock(1000)
	c := newTestClient(t, clock)
	ctx := context.Background()

	l, err := c.TryAcquire(ctx, "job-1")
	require.NoError(t, err)

	require.NoError(t, l.Release(ctx))
	assert.ErrorIs(t, l.Release(ctx), ErrClosed)
}

func TestLeaseReleaseFreesKeyForOthers(t *testing.T) {
	clock := leasetest.NewFakeClock(1000)
	c := newTestClient(t, clock)
	ctx := context.Background()

	l, err := c.TryAcquire(ctx, "job-1")
	require.NoError(t, err)
	require.NoError(t, l.Release(ctx))

	// Release detaches its delete onto its own goroutine, so the freed
	// key may not be immediately visible in the store.
	var l2 *Lease
	require.Eventually(t, func() bool {
		var acquireErr error
		l2, acquireErr = c.TryAcquire(ctx, "job-1")
		return acquireErr == nil && l2 != nil
	}, 2*time.Second, 10*time.Millisecond)
	require.NotNil(t, l2)
	l2.Release(ctx)
}

func TestLeaseVersionChangesAfterExtend(t *testing.T) {
	clock := leasetest.NewFakeClock(1000)
	c := newTestClient(t, clock, func(b *Builder) {
		b.ExtendPeriod(20 * time.Millisecond)
	})
	ctx := context.Background()

	l, err := c.TryAcquire(ctx, "job-1")
	require.NoError(t, err)
	defer l.Release(ctx)

	initial := l.Version()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if l.Version() != initial {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("Version() never changed after the background extender should have renewed it")
}

func TestLeaseErrLeaseLostAfterFencing(t *testing.T) {
	clock := leasetest.NewFakeClock(1000)
	c := newTestClient(t, clock, func(b *Builder) {
		b.ExtendPeriod(20 * time.Millisecond)
	})
	ctx := context.Background()

	l, err := c.TryAcquire(ctx, "job-1")
	require.NoError(t, err)

	// Simulate another holder fencing us out by force-expiring and
	// re-acquiring the same key with the same underlying store.
	l.cancelExtend()
	<-l.extendDone
	clock.Advance(int64(c.cfg.LeaseTTL/time.Second) + 1)

	err = c.store.PutIfAbsent(ctx, "job-1", "someone-else", clock.NowUnix()+int64(c.cfg.LeaseTTL/time.Second))
	require.NoError(t, err)

	// l's next extend attempt should now observe ErrConditionFailed and
	// mark itself lost.
	assert.False(t, l.extendOnce(ctx))
	assert.ErrorIs(t, l.Err(), ErrLeaseLost)

	// Release should now skip the delete since the lease was already lost.
	assert.NoError(t, l.Release(ctx))
}

func TestLeaseKeyAndAcquiredAt(t *testing.T) {
	clock := leasetest.NewFakeClock(1000)
	c := newTestClient(t, clock)
	ctx := context.Background()

	before := time.Now()
	l, err := c.TryAcquire(ctx, "job-1")
	require.NoError(t, err)
	defer l.Release(ctx)

	assert.Equal(t, "job-1", l.Key())
	assert.False(t, l.AcquiredAt().Before(before))
}
