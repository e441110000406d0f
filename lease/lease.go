// Package lease provides distributed, time-bounded mutual exclusion
// ("leases") over a remote key-value store that supports conditional
// writes and server-side time-to-live expiry.
//
// A caller asks a Client to acquire a named lease; if no live holder
// exists, the lease is acquired exclusively, automatically extended in
// the background, and released when the caller is done. Other would-be
// holders block until release or TTL expiry.
//
//	client, _ := lease.NewBuilder().
//		TableName("example-leases").
//		LeaseTTL(60 * time.Second).
//		BuildAndCheckDB(ctx, conn)
//
//	l, err := client.Acquire(ctx, "important-job-123")
//	if err != nil {
//		return err
//	}
//	defer l.Release(ctx)
//
// l periodically extends itself in a background goroutine until
// Release is called; until then, other TryAcquire calls for the same
// key return (nil, nil).
package lease

import "context"

// Store is the narrow interface over the remote table's four
// conditional operations. Implementations must translate backend-specific
// errors into ErrConditionFailed, ErrTransient or ErrFatal (see errors.go);
// a nil error means the write committed.
type Store interface {
	// PutIfAbsent writes a new record with key, version and expiry.
	// Returns ErrConditionFailed if a record for key already exists.
	PutIfAbsent(ctx context.Context, key, version string, expiry int64) error

	// UpdateIfVersion overwrites version and expiry on an existing
	// record. Returns ErrConditionFailed if the stored version does not
	// equal oldVersion, or the record is absent.
	UpdateIfVersion(ctx context.Context, key, oldVersion, newVersion string, newExpiry int64) error

	// DeleteIfVersion removes the record for key. Returns
	// ErrConditionFailed if the stored version does not equal version,
	// or the record is absent.
	DeleteIfVersion(ctx context.Context, key, version string) error

	// DescribeTable reports the configured table's schema, used by
	// BuildAndCheckDB to sanity-check hash key and TTL configuration
	// before the Client is handed to callers.
	DescribeTable(ctx context.Context, tableName string) (TableDescription, error)
}

// TableDescription is the subset of a remote table's schema this
// package cares about.
type TableDescription struct {
	// HashKeyName is the name of the table's single string hash key
	// attribute.
	HashKeyName string
	// HashKeyIsString reports whether the hash key attribute type is a
	// string (as opposed to number or binary).
	HashKeyIsString bool
	// TTLAttributeName is the attribute TTL is enabled on, or "" if TTL
	// is disabled.
	TTLAttributeName string
	// TTLEnabled reports whether server-side TTL expiry is active.
	TTLEnabled bool
}

// Clock decouples wall-clock reads from production code so tests can
// control time deterministically.
type Clock interface {
	// NowUnix returns the current time as seconds since the Unix epoch.
	NowUnix() int64
}
