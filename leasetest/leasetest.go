// Package leasetest provides an in-memory lease.Store and a
// deterministic lease.Clock for exercising code built on top of the
// lease package without a real DynamoDB table.
package leasetest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/ceyewan/genesis/internal/lease/memstore"
	"github.com/ceyewan/genesis/lease"
)

// NewStore returns a lease.Store backed by an in-memory table. clockFn
// supplies the current time in Unix seconds; pass a *FakeClock's NowUnix
// method to control expiry deterministically, or time.Now().Unix for
// wall-clock behavior.
func NewStore(clockFn func() int64) lease.Store {
	return &storeAdapter{inner: memstore.New(clockFn)}
}

// SetTableDescription overrides what store's DescribeTable reports, to
// exercise Builder.BuildAndCheckDB's schema-validation failure paths.
// store must have been returned by NewStore.
func SetTableDescription(store lease.Store, hashKeyName string, hashKeyIsString bool, ttlAttributeName string, ttlEnabled bool) {
	adapter, ok := store.(*storeAdapter)
	if !ok {
		return
	}
	adapter.inner.SetDescription(memstore.TableDescription{
		HashKeyName:      hashKeyName,
		HashKeyIsString:  hashKeyIsString,
		TTLAttributeName: ttlAttributeName,
		TTLEnabled:       ttlEnabled,
	})
}

type storeAdapter struct {
	inner *memstore.Store
}

func (a *storeAdapter) PutIfAbsent(ctx context.Context, key, version string, expiry int64) error {
	return translate(a.inner.PutIfAbsent(ctx, key, version, expiry))
}

func (a *storeAdapter) UpdateIfVersion(ctx context.Context, key, oldVersion, newVersion string, newExpiry int64) error {
	return translate(a.inner.UpdateIfVersion(ctx, key, oldVersion, newVersion, newExpiry))
}

func (a *storeAdapter) DeleteIfVersion(ctx context.Context, key, version string) error {
	return translate(a.inner.DeleteIfVersion(ctx, key, version))
}

func (a *storeAdapter) DescribeTable(ctx context.Context, tableName string) (lease.TableDescription, error) {
	d, err := a.inner.DescribeTable(ctx, tableName)
	if err != nil {
		return lease.TableDescription{}, translate(err)
	}
	return lease.TableDescription{
		HashKeyName:      d.HashKeyName,
		HashKeyIsString:  d.HashKeyIsString,
		TTLAttributeName: d.TTLAttributeName,
		TTLEnabled:       d.TTLEnabled,
	}, nil
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, memstore.ErrConditionFailed) {
		return lease.ErrConditionFailed
	}
	return err
}

// FakeClock is a manually-advanced lease.Clock for deterministic tests
// of extension and expiry behavior without real sleeps.
type FakeClock struct {
	mu  sync.Mutex
	sec atomic.Int64
}

// NewFakeClock returns a FakeClock starting at startUnix seconds.
func NewFakeClock(startUnix int64) *FakeClock {
	c := &FakeClock{}
	c.sec.Store(startUnix)
	return c
}

// NowUnix implements lease.Clock.
func (c *FakeClock) NowUnix() int64 {
	return c.sec.Load()
}

// Advance moves the clock forward by seconds and returns the new time.
func (c *FakeClock) Advance(seconds int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sec.Add(seconds)
}
