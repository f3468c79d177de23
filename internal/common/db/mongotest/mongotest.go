// Package mongotest starts a throwaway MongoDB container for repository
// integration tests. Tests run only when GO_TEST_INTEGRATION is set.
package mongotest

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	envIntegration = "GO_TEST_INTEGRATION"
	envURI         = "BLOG_TEST_MONGO_URL"
)

// Run wraps testing.M: when integration tests are enabled it starts mongo
// once for the whole package and exports its address.
func Run(m *testing.M) int {
	if os.Getenv(envIntegration) == "" {
		return m.Run()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7.0",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForLog("Waiting for connections").WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start mongo testcontainer: %v\n", err)
		return 1
	}
	defer func() { _ = container.Terminate(context.Background()) }()

	host, err := container.Host(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get container host: %v\n", err)
		return 1
	}

	port, err := container.MappedPort(ctx, "27017/tcp")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get mapped port: %v\n", err)
		return 1
	}

	_ = os.Setenv(envURI, fmt.Sprintf("mongodb://%s:%s", host, port.Port()))

	return m.Run()
}

// Database returns a fresh database that is dropped when the test ends.
func Database(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv(envURI)
	if os.Getenv(envIntegration) == "" || uri == "" {
		t.Skip("set GO_TEST_INTEGRATION=1 to run mongo integration tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("mongo connect: %v", err)
	}

	name := "blog_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	database := cli.Database(name)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = database.Drop(ctx)
		_ = cli.Disconnect(ctx)
	})

	return database
}
