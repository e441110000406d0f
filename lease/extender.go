package lease

import (
	"context"
	"time"

	"github.com/ceyewan/genesis/clog"
	"github.com/ceyewan/genesis/xerrors"
)

// runExtender is the background renewal loop for a held Lease. It wakes
// up every ExtendPeriod, tries to push the lease's expiry out by
// LeaseTTL under a fresh version, and stops the moment renewal is no
// longer possible: on ErrConditionFailed the lease has been fenced or
// expired and is marked lost; on repeated transient failures it keeps
// retrying on the same ticker cadence until the lease itself expires
// server-side, at which point the next tick surfaces ErrConditionFailed.
//
// It exits promptly when ctx is cancelled by Release, closing
// extendDone so the detached release routine can wait for the goroutine
// to fully stop before deleting the record; Release itself returns
// without waiting.
func (l *Lease) runExtender(ctx context.Context) {
	defer close(l.extendDone)

	ticker := time.NewTicker(l.client.cfg.ExtendPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !l.extendOnce(ctx) {
				return
			}
		}
	}
}

// extendOnce performs a single renewal attempt. It returns false when
// the extender loop should stop (lease lost, or the enclosing context
// was cancelled mid-call).
func (l *Lease) extendOnce(ctx context.Context) bool {
	oldVersion := l.Version()
	newVersion := l.client.newVersion()
	newExpiry := l.client.clock.NowUnix() + int64(l.client.cfg.LeaseTTL/time.Second)

	err := l.client.store.UpdateIfVersion(ctx, l.key, oldVersion, newVersion, newExpiry)
	switch {
	case err == nil:
		l.setVersion(newVersion)
		l.client.metrics.observeExtend(ctx, metricsOutcomeSuccess)
		return true
	case isConditionFailed(err):
		l.markLost()
		l.client.metrics.observeExtend(ctx, metricsOutcomeError)
		l.client.logger.Warn("lease: lost during extend", clog.String("key", l.key))
		return false
	case xerrors.Is(err, context.Canceled), xerrors.Is(err, context.DeadlineExceeded):
		return false
	default:
		// Transient or fatal store error: log and try again next tick.
		// The lease's server-side TTL is the backstop if this never
		// recovers before it expires.
		l.client.metrics.observeExtend(ctx, metricsOutcomeError)
		l.client.logger.Warn("lease: extend attempt failed, will retry", clog.String("key", l.key), clog.Error(err))
		return true
	}
}
