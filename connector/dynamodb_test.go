package connector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDynamoDBRejectsNilConfig(t *testing.T) {
	conn, err := NewDynamoDB(nil)
	assert.Nil(t, conn)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestNewDynamoDBRequiresRegionOrEndpoint(t *testing.T) {
	_, err := NewDynamoDB(&DynamoDBConfig{})
	require.Error(t, err)
}

func TestNewDynamoDBAcceptsEndpointWithoutRegion(t *testing.T) {
	conn, err := NewDynamoDB(&DynamoDBConfig{Endpoint: "http://localhost:8000"})
	require.NoError(t, err)
	require.NotNil(t, conn)
	assert.NotNil(t, conn.GetClient())
}

func TestNewDynamoDBDefaultsName(t *testing.T) {
	conn, err := NewDynamoDB(&DynamoDBConfig{Region: "us-east-1"})
	require.NoError(t, err)
	assert.Equal(t, "default", conn.Name())
}

func TestNewDynamoDBPreservesConfiguredName(t *testing.T) {
	conn, err := NewDynamoDB(&DynamoDBConfig{Region: "us-east-1", Name: "leases-table"})
	require.NoError(t, err)
	assert.Equal(t, "leases-table", conn.Name())
}

func TestDynamoDBConnectorClose(t *testing.T) {
	conn, err := NewDynamoDB(&DynamoDBConfig{Region: "us-east-1"})
	require.NoError(t, err)

	assert.False(t, conn.IsHealthy())
	require.NoError(t, conn.Close())
	assert.False(t, conn.IsHealthy())
}
