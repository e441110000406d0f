package lease

import (
	"context"
	"errors"

	dynamostore "github.com/ceyewan/genesis/internal/lease/dynamodb"
)

// dynamoAdapter wraps internal/lease/dynamodb.Store to satisfy Store,
// translating that package's local error values into this package's
// sentinels at the boundary. Kept here (rather than in
// internal/lease/dynamodb) so the internal package never imports lease
// and no import cycle results.
type dynamoAdapter struct {
	inner *dynamostore.Store
}

func (a *dynamoAdapter) PutIfAbsent(ctx context.Context, key, version string, expiry int64) error {
	return translateDynamoErr(a.inner.PutIfAbsent(ctx, key, version, expiry))
}

func (a *dynamoAdapter) UpdateIfVersion(ctx context.Context, key, oldVersion, newVersion string, newExpiry int64) error {
	return translateDynamoErr(a.inner.UpdateIfVersion(ctx, key, oldVersion, newVersion, newExpiry))
}

func (a *dynamoAdapter) DeleteIfVersion(ctx context.Context, key, version string) error {
	return translateDynamoErr(a.inner.DeleteIfVersion(ctx, key, version))
}

func (a *dynamoAdapter) DescribeTable(ctx context.Context, tableName string) (TableDescription, error) {
	d, err := a.inner.DescribeTable(ctx, tableName)
	if err != nil {
		return TableDescription{}, translateDynamoErr(err)
	}
	return TableDescription{
		HashKeyName:      d.HashKeyName,
		HashKeyIsString:  d.HashKeyIsString,
		TTLAttributeName: d.TTLAttributeName,
		TTLEnabled:       d.TTLEnabled,
	}, nil
}

func translateDynamoErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, dynamostore.ErrConditionFailed):
		return ErrConditionFailed
	case errors.Is(err, dynamostore.ErrTransient):
		return ErrTransient
	case errors.Is(err, dynamostore.ErrFatal):
		return ErrFatal
	default:
		return err
	}
}
