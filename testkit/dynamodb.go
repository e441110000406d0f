package testkit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ceyewan/genesis/connector"
)

// NewDynamoDBContainerConnector starts a local DynamoDB container
// (amazon/dynamodb-local) and returns a connected connector.DynamoDBConnector
// pointed at it. The container and connector are torn down automatically
// via t.Cleanup.
//
// Callers still need to create their own table since dynamodb-local starts
// empty (see the integration tests under internal/lease/dynamodb for an
// example of provisioning the lease table schema).
func NewDynamoDBContainerConnector(t *testing.T) connector.DynamoDBConnector {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "amazon/dynamodb-local:2.5.2",
		ExposedPorts: []string{"8000/tcp"},
		Cmd:          []string{"-jar", "DynamoDBLocal.jar", "-inMemory", "-sharedDb"},
		WaitingFor:   wait.ForListeningPort("8000/tcp").WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start dynamodb-local container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate dynamodb-local container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err, "failed to resolve dynamodb-local host")
	port, err := container.MappedPort(ctx, "8000")
	require.NoError(t, err, "failed to resolve dynamodb-local port")

	conn, err := connector.NewDynamoDB(&connector.DynamoDBConfig{
		Name:            "testkit-dynamodb",
		Region:          "us-east-1",
		Endpoint:        fmt.Sprintf("http://%s:%s", host, port.Port()),
		AccessKeyID:     "test",
		SecretAccessKey: "test",
	})
	require.NoError(t, err, "failed to create dynamodb connector")
	require.NoError(t, conn.Connect(ctx), "failed to connect to dynamodb-local")
	t.Cleanup(func() { conn.Close() })

	return conn
}
