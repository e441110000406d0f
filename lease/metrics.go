package lease

import (
	"context"

	"github.com/ceyewan/genesis/metrics"
)

const (
	metricAcquireTotal   = "lease_acquire_total"
	metricAcquireLatency = "lease_acquire_latency_seconds"
	metricExtendTotal    = "lease_extend_total"
	metricReleaseTotal   = "lease_release_total"
	metricHeldGauge      = "lease_held"
)

// leaseMetrics 包装 Client 用到的全部指标句柄，在 Build 时一次性创建，
// 避免在热路径上重复调用 Meter.Counter/Histogram/Gauge。
type leaseMetrics struct {
	acquireTotal   metrics.Counter
	acquireLatency metrics.Histogram
	extendTotal    metrics.Counter
	releaseTotal   metrics.Counter
	held           metrics.Gauge
}

func newLeaseMetrics(meter metrics.Meter) (*leaseMetrics, error) {
	if meter == nil {
		return &leaseMetrics{}, nil
	}

	acquireTotal, err := meter.Counter(metricAcquireTotal, "lease acquisition attempts, labelled by outcome")
	if err != nil {
		return nil, err
	}
	acquireLatency, err := meter.Histogram(metricAcquireLatency, "time spent in Acquire/AcquireTimeout", metrics.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	extendTotal, err := meter.Counter(metricExtendTotal, "background lease extension attempts, labelled by outcome")
	if err != nil {
		return nil, err
	}
	releaseTotal, err := meter.Counter(metricReleaseTotal, "lease release attempts, labelled by outcome")
	if err != nil {
		return nil, err
	}
	held, err := meter.Gauge(metricHeldGauge, "leases currently held by this process")
	if err != nil {
		return nil, err
	}

	return &leaseMetrics{
		acquireTotal:   acquireTotal,
		acquireLatency: acquireLatency,
		extendTotal:    extendTotal,
		releaseTotal:   releaseTotal,
		held:           held,
	}, nil
}

func (m *leaseMetrics) observeAcquire(ctx context.Context, outcome string, seconds float64) {
	if m == nil || m.acquireTotal == nil {
		return
	}
	m.acquireTotal.Inc(ctx, metrics.L(metrics.LabelOutcome, outcome))
	m.acquireLatency.Record(ctx, seconds, metrics.L(metrics.LabelOutcome, outcome))
}

func (m *leaseMetrics) observeExtend(ctx context.Context, outcome string) {
	if m == nil || m.extendTotal == nil {
		return
	}
	m.extendTotal.Inc(ctx, metrics.L(metrics.LabelOutcome, outcome))
}

func (m *leaseMetrics) observeRelease(ctx context.Context, outcome string) {
	if m == nil || m.releaseTotal == nil {
		return
	}
	m.releaseTotal.Inc(ctx, metrics.L(metrics.LabelOutcome, outcome))
}

func (m *leaseMetrics) incHeld(ctx context.Context) {
	if m == nil || m.held == nil {
		return
	}
	m.held.Inc(ctx)
}

func (m *leaseMetrics) decHeld(ctx context.Context) {
	if m == nil || m.held == nil {
		return
	}
	m.held.Dec(ctx)
}
