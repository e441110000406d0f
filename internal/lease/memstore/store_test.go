package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutIfAbsent(t *testing.T) {
	clock := int64(1000)
	s := New(func() int64 { return clock })
	ctx := context.Background()

	require.NoError(t, s.PutIfAbsent(ctx, "k", "v1", 2000))
	assert.ErrorIs(t, s.PutIfAbsent(ctx, "k", "v2", 2000), ErrConditionFailed)
}

func TestPutIfAbsentAfterExpiry(t *testing.T) {
	clock := int64(1000)
	s := New(func() int64 { return clock })
	ctx := context.Background()

	require.NoError(t, s.PutIfAbsent(ctx, "k", "v1", 1005))

	clock = 1010
	assert.NoError(t, s.PutIfAbsent(ctx, "k", "v2", 2000))
}

func TestUpdateIfVersion(t *testing.T) {
	clock := int64(1000)
	s := New(func() int64 { return clock })
	ctx := context.Background()

	require.NoError(t, s.PutIfAbsent(ctx, "k", "v1", 2000))

	assert.ErrorIs(t, s.UpdateIfVersion(ctx, "k", "wrong", "v2", 2000), ErrConditionFailed)
	assert.NoError(t, s.UpdateIfVersion(ctx, "k", "v1", "v2", 3000))
	assert.ErrorIs(t, s.UpdateIfVersion(ctx, "k", "v1", "v3", 3000), ErrConditionFailed)
}

func TestUpdateIfVersionOnMissingRecord(t *testing.T) {
	s := New(func() int64 { return 0 })
	assert.ErrorIs(t, s.UpdateIfVersion(context.Background(), "missing", "v1", "v2", 100), ErrConditionFailed)
}

func TestDeleteIfVersion(t *testing.T) {
	s := New(func() int64 { return 0 })
	ctx := context.Background()

	require.NoError(t, s.PutIfAbsent(ctx, "k", "v1", 100))
	assert.ErrorIs(t, s.DeleteIfVersion(ctx, "k", "wrong"), ErrConditionFailed)
	assert.NoError(t, s.DeleteIfVersion(ctx, "k", "v1"))
	assert.ErrorIs(t, s.DeleteIfVersion(ctx, "k", "v1"), ErrConditionFailed)
}

func TestDescribeTableDefaultsAndOverride(t *testing.T) {
	s := New(func() int64 { return 0 })
	ctx := context.Background()

	desc, err := s.DescribeTable(ctx, "leases")
	require.NoError(t, err)
	assert.Equal(t, "key", desc.HashKeyName)
	assert.True(t, desc.HashKeyIsString)
	assert.True(t, desc.TTLEnabled)
	assert.Equal(t, "lease_expiry", desc.TTLAttributeName)

	s.SetDescription(TableDescription{HashKeyName: "id", HashKeyIsString: false, TTLEnabled: false})
	desc, err = s.DescribeTable(ctx, "leases")
	require.NoError(t, err)
	assert.Equal(t, "id", desc.HashKeyName)
	assert.False(t, desc.HashKeyIsString)
	assert.False(t, desc.TTLEnabled)
}
