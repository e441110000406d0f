package lease

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/ceyewan/genesis/clog"
)

// Lease represents exclusive ownership of a key, valid until Release is
// called or the background extender fails to renew it in time.
//
// Go has no destructors: callers must call Release explicitly (typically
// via defer) to give the key up promptly. A Lease that is garbage
// collected without Release having been called logs a warning through
// the Client's logger as a last-resort safety net; it is not a
// substitute for calling Release.
type Lease struct {
	client     *Client
	key        string
	acquiredAt time.Time

	mu      sync.Mutex
	version string
	closed  bool
	lostErr error

	cancelExtend context.CancelFunc
	extendDone   chan struct{}
}

// newLease constructs a held Lease and arms its background extender.
// Callers must hold no lock on c when calling this.
func newLease(c *Client, key, version string, acquiredAt time.Time) *Lease {
	l := &Lease{
		client:     c,
		key:        key,
		version:    version,
		acquiredAt: acquiredAt,
		extendDone: make(chan struct{}),
	}

	extendCtx, cancel := context.WithCancel(context.Background())
	l.cancelExtend = cancel
	go l.runExtender(extendCtx)

	runtime.SetFinalizer(l, finalizeLease)
	return l
}

// Key returns the key this lease holds.
func (l *Lease) Key() string {
	return l.key
}

// Version returns the lease's current fencing token. The version
// changes every time the background extender successfully renews the
// lease, so callers that need a stable fencing token for an operation
// should read it once immediately before issuing that operation.
func (l *Lease) Version() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.version
}

// AcquiredAt returns the local time at which the lease was first
// acquired.
func (l *Lease) AcquiredAt() time.Time {
	return l.acquiredAt
}

// Err returns ErrLeaseLost if the background extender observed that the
// lease was lost (expired via TTL or deleted by another holder) before
// Release was called. A nil return does not guarantee the lease is
// still held this instant, only that no loss has been observed yet.
func (l *Lease) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lostErr
}

// Release gives up the lease. It signals the background extender to
// stop and detaches the wait-for-exit-plus-delete sequence onto its
// own goroutine, returning to the caller immediately rather than
// blocking on the extender's exit or the delete round trip; a failure
// to delete (for example because the lease already expired or was
// fenced by another holder) is non-fatal, since the key is no longer
// usable by this Lease either way. Release is idempotent: calling it
// more than once returns ErrClosed after the first call actually
// released the lease.
func (l *Lease) Release(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.closed = true
	version := l.version
	lost := l.lostErr != nil
	l.mu.Unlock()

	l.cancelExtend()
	runtime.SetFinalizer(l, nil)

	l.client.forgetHeld(l.key)
	l.client.recordLocalRelease(l.key)
	l.client.metrics.decHeld(ctx)

	go l.finishRelease(version, lost)

	return nil
}

// finishRelease waits for the background extender to fully stop, then
// issues the best-effort delete. It runs detached from the goroutine
// that called Release, using a background context since the caller's
// ctx is not guaranteed to still be live by the time this runs -
// mirroring the original Rust implementation's Drop impl, which
// spawns its release onto the runtime rather than awaiting it inline.
func (l *Lease) finishRelease(version string, lost bool) {
	<-l.extendDone
	ctx := context.Background()

	if lost {
		// Already gone from the holder's perspective; nothing to delete.
		l.client.metrics.observeRelease(ctx, metricsOutcomeSkipped)
		return
	}

	err := l.client.store.DeleteIfVersion(ctx, l.key, version)
	switch {
	case err == nil:
		l.client.metrics.observeRelease(ctx, metricsOutcomeSuccess)
	case isConditionFailed(err):
		// Someone else already fenced us out or the record expired
		// server-side; the release still achieved its goal.
		l.client.metrics.observeRelease(ctx, metricsOutcomeSuccess)
	default:
		l.client.logger.Warn("lease: release delete failed",
			clog.String("key", l.key), clog.Error(err))
		l.client.metrics.observeRelease(ctx, metricsOutcomeError)
	}
}

// markLost records that the background extender observed the lease was
// taken from us, so Err() and subsequent Release calls reflect it.
func (l *Lease) markLost() {
	l.mu.Lock()
	if l.lostErr == nil {
		l.lostErr = ErrLeaseLost
	}
	l.mu.Unlock()
}

func (l *Lease) setVersion(v string) {
	l.mu.Lock()
	l.version = v
	l.mu.Unlock()
}

func finalizeLease(l *Lease) {
	l.mu.Lock()
	released := l.closed
	key := l.key
	l.mu.Unlock()
	if released {
		return
	}
	if l.client != nil && l.client.logger != nil {
		l.client.logger.Warn("lease: garbage collected without Release being called", clog.String("key", key))
	}
	l.cancelExtend()
}

const (
	metricsOutcomeSuccess = "success"
	metricsOutcomeError   = "error"
	metricsOutcomeSkipped = "skipped"
)
