package lease

import (
	"github.com/ceyewan/genesis/clog"
	"github.com/ceyewan/genesis/metrics"
)

// options 持有 Builder 的可选依赖，未设置时在 Build/BuildAndCheckDB 中回落到
// clog.Discard()、metrics 的 noop Meter 与系统时钟。
type options struct {
	logger clog.Logger
	meter  metrics.Meter
	clock  Clock
}

// Option 配置 Builder 的可选依赖
type Option func(*options)

// WithLogger 设置 Builder 使用的日志器，默认丢弃所有日志。
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMeter 设置 Builder 使用的指标上报器，默认不上报任何指标。
func WithMeter(meter metrics.Meter) Option {
	return func(o *options) {
		if meter != nil {
			o.meter = meter
		}
	}
}

// WithClock 替换时间来源，主要用于测试中推进虚拟时间而不必真实
// sleep。生产环境无需调用。
func WithClock(clock Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

func (o *options) applyDefaults() {
	if o.logger == nil {
		o.logger = clog.Discard()
	}
	if o.meter == nil {
		if m, err := metrics.New(&metrics.Config{Enabled: false}); err == nil {
			o.meter = m
		}
	}
	if o.clock == nil {
		o.clock = systemClock{}
	}
}

// systemClock is the production Clock backed by time.Now.
type systemClock struct{}

func (systemClock) NowUnix() int64 {
	return nowUnix()
}
