package lease

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/ceyewan/genesis/clog"
	"github.com/ceyewan/genesis/connector"
	"github.com/ceyewan/genesis/idgen"
	dynamostore "github.com/ceyewan/genesis/internal/lease/dynamodb"
	"github.com/ceyewan/genesis/metrics"
	"github.com/ceyewan/genesis/xerrors"
)

// Builder assembles a Client from validated configuration. The zero
// value is not usable; construct one with NewBuilder.
type Builder struct {
	cfg  Config
	opts []Option
}

// NewBuilder returns a Builder seeded with default configuration; call
// its setters to override any field before Build/BuildAndCheckDB.
func NewBuilder() *Builder {
	return &Builder{}
}

// TableName sets the remote table name (default "leases").
func (b *Builder) TableName(name string) *Builder {
	b.cfg.TableName = name
	return b
}

// KeyAttribute overrides the hash key attribute name (default "key").
func (b *Builder) KeyAttribute(name string) *Builder {
	b.cfg.KeyAttribute = name
	return b
}

// ExpiryAttribute overrides the TTL attribute name (default "lease_expiry").
func (b *Builder) ExpiryAttribute(name string) *Builder {
	b.cfg.ExpiryAttribute = name
	return b
}

// VersionAttribute overrides the version attribute name (default "lease_version").
func (b *Builder) VersionAttribute(name string) *Builder {
	b.cfg.VersionAttribute = name
	return b
}

// LeaseTTL sets how long a lease is valid without renewal (default 60s).
func (b *Builder) LeaseTTL(d time.Duration) *Builder {
	b.cfg.LeaseTTL = d
	return b
}

// ExtendPeriod sets how often the background extender renews a held
// lease (default: one third of LeaseTTL).
func (b *Builder) ExtendPeriod(d time.Duration) *Builder {
	b.cfg.ExtendPeriod = d
	return b
}

// AcquirePollPeriod sets the base wait between contended try-acquire
// attempts (default 150ms; actual sleeps are jittered ±20%).
func (b *Builder) AcquirePollPeriod(d time.Duration) *Builder {
	b.cfg.AcquirePollPeriod = d
	return b
}

// Logger sets the logger used by the built Client (default: discard).
func (b *Builder) Logger(logger clog.Logger) *Builder {
	b.opts = append(b.opts, WithLogger(logger))
	return b
}

// Meter sets the metrics sink used by the built Client (default: noop).
func (b *Builder) Meter(meter metrics.Meter) *Builder {
	b.opts = append(b.opts, WithMeter(meter))
	return b
}

// Clock overrides the time source (default: wall clock). Intended for tests.
func (b *Builder) Clock(clock Clock) *Builder {
	b.opts = append(b.opts, WithClock(clock))
	return b
}

// Build assembles a Client against the given Store without verifying
// the remote table's schema. Prefer BuildAndCheckDB when a
// connector.DynamoDBConnector is available.
func (b *Builder) Build(store Store) (*Client, error) {
	if store == nil {
		return nil, ErrStoreNil
	}

	cfg := b.cfg
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	o := &options{}
	for _, opt := range b.opts {
		opt(o)
	}
	o.applyDefaults()

	m, err := newLeaseMetrics(o.meter)
	if err != nil {
		return nil, xerrors.Wrap(err, "lease: create metrics")
	}

	return &Client{
		cfg:         &cfg,
		store:       store,
		clock:       o.clock,
		logger:      o.logger.WithNamespace("lease"),
		metrics:     m,
		held:        make(map[string]*Lease),
		lastRelease: make(map[string]time.Time),
	}, nil
}

// BuildAndCheckDB builds a Client backed by a DynamoDB table reached
// through conn, and additionally calls DescribeTable to verify the
// table's hash key and TTL configuration match cfg before handing the
// Client back. It returns ErrTableMisconfigured (wrapped) if they
// don't.
func (b *Builder) BuildAndCheckDB(ctx context.Context, conn connector.DynamoDBConnector) (*Client, error) {
	if conn == nil {
		return nil, ErrStoreNil
	}

	cfg := b.cfg
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	store := &dynamoAdapter{inner: dynamostore.New(conn, cfg.TableName, dynamostore.AttributeNames{
		Key:     cfg.KeyAttribute,
		Expiry:  cfg.ExpiryAttribute,
		Version: cfg.VersionAttribute,
	})}

	desc, err := store.DescribeTable(ctx, cfg.TableName)
	if err != nil {
		return nil, xerrors.Wrap(err, "lease: describe table")
	}
	if desc.HashKeyName != cfg.KeyAttribute || !desc.HashKeyIsString {
		return nil, xerrors.Wrap(ErrTableMisconfigured, "lease: hash key mismatch")
	}
	if !desc.TTLEnabled || desc.TTLAttributeName != cfg.ExpiryAttribute {
		return nil, xerrors.Wrap(ErrTableMisconfigured, "lease: ttl not enabled on expiry attribute")
	}

	return b.Build(store)
}

// Client is a configured entry point for acquiring leases against one
// remote table. A Client is safe for concurrent use by multiple
// goroutines and is typically constructed once and shared.
type Client struct {
	cfg     *Config
	store   Store
	clock   Clock
	logger  clog.Logger
	metrics *leaseMetrics

	heldMu sync.Mutex
	held   map[string]*Lease

	releaseMu   sync.Mutex
	lastRelease map[string]time.Time
}

// TryAcquire makes exactly one attempt to acquire key. It returns
// (nil, nil) if another holder currently owns the lease, a non-nil
// Lease on success, or an error for transient/fatal store failures.
func (c *Client) TryAcquire(ctx context.Context, key string) (*Lease, error) {
	if key == "" {
		return nil, ErrKeyEmpty
	}

	version := c.newVersion()
	expiry := c.clock.NowUnix() + int64(c.cfg.LeaseTTL/time.Second)

	err := c.store.PutIfAbsent(ctx, key, version, expiry)
	switch {
	case err == nil:
		l := newLease(c, key, version, time.Now())
		c.rememberHeld(l)
		c.metrics.incHeld(ctx)
		return l, nil
	case isConditionFailed(err):
		return nil, nil
	default:
		return nil, err
	}
}

// Acquire blocks until key is acquired or ctx is cancelled, retrying
// TryAcquire on AcquirePollPeriod (jittered ±20%). If this Client
// recently released key locally, the first retry waits at least a full
// AcquirePollPeriod regardless of how recently that release happened,
// so other waiters get a fair chance at the just-freed key.
func (c *Client) Acquire(ctx context.Context, key string) (*Lease, error) {
	if key == "" {
		return nil, ErrKeyEmpty
	}

	start := time.Now()
	first := true

	for {
		if first {
			if wait := c.fairnessDelay(key); wait > 0 {
				if err := sleepCtx(ctx, wait); err != nil {
					return nil, err
				}
			}
			first = false
		}

		l, err := c.TryAcquire(ctx, key)
		if err != nil {
			c.metrics.observeAcquire(ctx, metricsOutcomeError, time.Since(start).Seconds())
			return nil, err
		}
		if l != nil {
			c.metrics.observeAcquire(ctx, metricsOutcomeSuccess, time.Since(start).Seconds())
			return l, nil
		}

		if err := sleepCtx(ctx, jitter(c.cfg.AcquirePollPeriod)); err != nil {
			return nil, err
		}
	}
}

// AcquireTimeout wraps Acquire, returning ErrTimedOut if key is not
// acquired within timeout.
func (c *Client) AcquireTimeout(ctx context.Context, key string, timeout time.Duration) (*Lease, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	l, err := c.Acquire(ctx, key)
	if err != nil {
		if xerrors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimedOut
		}
		return nil, err
	}
	return l, nil
}

func (c *Client) newVersion() string {
	return idgen.NewUUIDV4()
}

func (c *Client) rememberHeld(l *Lease) {
	c.heldMu.Lock()
	c.held[l.key] = l
	c.heldMu.Unlock()
}

func (c *Client) forgetHeld(key string) {
	c.heldMu.Lock()
	delete(c.held, key)
	c.heldMu.Unlock()
}

// recordLocalRelease timestamps key's most recent local release and
// opportunistically prunes entries older than LeaseTTL, since a release
// that old can no longer affect fairnessDelay's outcome.
func (c *Client) recordLocalRelease(key string) {
	now := time.Now()
	c.releaseMu.Lock()
	defer c.releaseMu.Unlock()
	c.lastRelease[key] = now
	for k, t := range c.lastRelease {
		if now.Sub(t) > c.cfg.LeaseTTL {
			delete(c.lastRelease, k)
		}
	}
}

// fairnessDelay returns how long Acquire's first attempt for key should
// wait given this Client's own most recent local release of key.
func (c *Client) fairnessDelay(key string) time.Duration {
	c.releaseMu.Lock()
	last, ok := c.lastRelease[key]
	c.releaseMu.Unlock()
	if !ok {
		return 0
	}

	if time.Since(last) > c.cfg.LeaseTTL {
		return 0
	}
	return c.cfg.AcquirePollPeriod
}

func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return d
	}
	// ±20% jitter to avoid lock-step polling by many waiters.
	spread := float64(d) * 0.2
	delta := (rand.Float64()*2 - 1) * spread
	return d + time.Duration(delta)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
