package lease

import "github.com/ceyewan/genesis/xerrors"

// Sentinel errors returned by Store implementations and surfaced by
// Client/Lease. Store implementations translate backend-specific errors
// into ErrConditionFailed/ErrTransient/ErrFatal so callers can test them
// with xerrors.Is; the built-in adapters return the bare sentinel and do
// not keep the backend error in the chain.
var (
	// ErrConditionFailed means the store's conditional expression did
	// not hold: for PutIfAbsent the key already exists, for
	// UpdateIfVersion/DeleteIfVersion the stored version has moved on
	// or the record is gone.
	ErrConditionFailed = xerrors.New("lease: condition failed")

	// ErrTransient covers network errors, throttling and 5xx responses
	// from the store; callers may retry.
	ErrTransient = xerrors.New("lease: transient store error")

	// ErrFatal covers authentication, missing-table and schema-mismatch
	// errors; callers must reconfigure before retrying.
	ErrFatal = xerrors.New("lease: fatal store error")

	// ErrTableMisconfigured is returned by BuildAndCheckDB when the
	// table's hash key or TTL attribute does not match the configured
	// Client.
	ErrTableMisconfigured = xerrors.New("lease: table misconfigured")

	// ErrLeaseLost is surfaced via Lease.Err() when the background
	// extender observes ErrConditionFailed while renewing: the lease
	// expired via TTL or was deleted by another holder.
	ErrLeaseLost = xerrors.New("lease: lease lost")

	// ErrTimedOut is returned by Client.AcquireTimeout when the
	// deadline elapses before a lease is acquired.
	ErrTimedOut = xerrors.New("lease: acquire timed out")

	// ErrStoreNil is returned by Build/BuildAndCheckDB when no Store
	// (or connector, for BuildAndCheckDB) was supplied.
	ErrStoreNil = xerrors.New("lease: store is nil")

	// ErrKeyEmpty is returned by TryAcquire/Acquire for an empty key.
	ErrKeyEmpty = xerrors.New("lease: key is empty")

	// ErrClosed is returned by Release when Release has already been
	// called on the same Lease.
	ErrClosed = xerrors.New("lease: already released")
)
