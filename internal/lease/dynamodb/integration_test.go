//go:build integration

package dynamodb_test

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	leasedynamodb "github.com/ceyewan/genesis/internal/lease/dynamodb"
	"github.com/ceyewan/genesis/testkit"
)

// createLeaseTable provisions a table matching the schema Store expects,
// including a TTL attribute, against a real (containerized) DynamoDB.
func createLeaseTable(t *testing.T, client *awsdynamodb.Client, table string) {
	t.Helper()
	ctx := context.Background()

	_, err := client.CreateTable(ctx, &awsdynamodb.CreateTableInput{
		TableName: aws.String(table),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("key"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("key"), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	require.NoError(t, err)

	_, err = client.UpdateTimeToLive(ctx, &awsdynamodb.UpdateTimeToLiveInput{
		TableName: aws.String(table),
		TimeToLiveSpecification: &types.TimeToLiveSpecification{
			AttributeName: aws.String("lease_expiry"),
			Enabled:       aws.Bool(true),
		},
	})
	require.NoError(t, err)
}

func TestStoreAgainstRealDynamoDBLocal(t *testing.T) {
	conn := testkit.NewDynamoDBContainerConnector(t)
	createLeaseTable(t, conn.GetClient(), "leases-it")

	store := leasedynamodb.New(conn, "leases-it", leasedynamodb.AttributeNames{
		Key: "key", Expiry: "lease_expiry", Version: "lease_version",
	})
	ctx := context.Background()

	require.NoError(t, store.PutIfAbsent(ctx, "job-1", "v1", 9999999999))
	require.ErrorIs(t, store.PutIfAbsent(ctx, "job-1", "v2", 9999999999), leasedynamodb.ErrConditionFailed)

	require.NoError(t, store.UpdateIfVersion(ctx, "job-1", "v1", "v2", 9999999999))
	require.ErrorIs(t, store.UpdateIfVersion(ctx, "job-1", "v1", "v3", 9999999999), leasedynamodb.ErrConditionFailed)

	require.NoError(t, store.DeleteIfVersion(ctx, "job-1", "v2"))
	require.ErrorIs(t, store.DeleteIfVersion(ctx, "job-1", "v2"), leasedynamodb.ErrConditionFailed)

	desc, err := store.DescribeTable(ctx, "leases-it")
	require.NoError(t, err)
	require.Equal(t, "key", desc.HashKeyName)
	require.True(t, desc.HashKeyIsString)
	require.True(t, desc.TTLEnabled)
	require.Equal(t, "lease_expiry", desc.TTLAttributeName)
}
