// Package memstore implements an in-memory Store, used by leasetest and
// by the lease package's own unit tests, that reproduces the
// conditional put/update/delete semantics a real remote table provides
// without requiring network access.
package memstore

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrConditionFailed mirrors lease.ErrConditionFailed.
	ErrConditionFailed = errors.New("memstore: condition failed")
)

type record struct {
	version string
	expiry  int64
}

// TableDescription is returned by DescribeTable; Store always reports a
// correctly configured schema unless overridden with SetDescription.
type TableDescription struct {
	HashKeyName      string
	HashKeyIsString  bool
	TTLAttributeName string
	TTLEnabled       bool
}

// Store is a goroutine-safe, in-memory stand-in for a remote
// conditional key-value table with TTL expiry. Expired records are
// evicted lazily, on the next access to their key, mirroring how a
// real store's TTL sweep is not instantaneous either.
type Store struct {
	mu   sync.Mutex
	data map[string]record
	now  func() int64
	desc TableDescription
}

// New returns an empty Store. now supplies the current wall-clock time
// in Unix seconds; production callers pass time.Now().Unix, tests pass
// a fake clock for deterministic expiry.
func New(now func() int64) *Store {
	return &Store{
		data: make(map[string]record),
		now:  now,
		desc: TableDescription{
			HashKeyName:      "key",
			HashKeyIsString:  true,
			TTLAttributeName: "lease_expiry",
			TTLEnabled:       true,
		},
	}
}

// SetDescription overrides what DescribeTable reports, for exercising
// Builder.BuildAndCheckDB's schema-mismatch rejection paths.
func (s *Store) SetDescription(desc TableDescription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.desc = desc
}

func (s *Store) PutIfAbsent(ctx context.Context, key, version string, expiry int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictIfExpiredLocked(key)
	if _, exists := s.data[key]; exists {
		return ErrConditionFailed
	}
	s.data[key] = record{version: version, expiry: expiry}
	return nil
}

func (s *Store) UpdateIfVersion(ctx context.Context, key, oldVersion, newVersion string, newExpiry int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictIfExpiredLocked(key)
	rec, exists := s.data[key]
	if !exists || rec.version != oldVersion {
		return ErrConditionFailed
	}
	s.data[key] = record{version: newVersion, expiry: newExpiry}
	return nil
}

func (s *Store) DeleteIfVersion(ctx context.Context, key, version string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictIfExpiredLocked(key)
	rec, exists := s.data[key]
	if !exists || rec.version != version {
		return ErrConditionFailed
	}
	delete(s.data, key)
	return nil
}

func (s *Store) DescribeTable(ctx context.Context, tableName string) (TableDescription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.desc, nil
}

// evictIfExpiredLocked drops key's record if its expiry has passed,
// simulating server-side TTL eviction. Callers must hold s.mu.
func (s *Store) evictIfExpiredLocked(key string) {
	rec, exists := s.data[key]
	if exists && rec.expiry <= s.now() {
		delete(s.data, key)
	}
}
