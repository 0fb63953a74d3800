package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/aretw0/ticketflow/pkg/adapters/postgres"
	"github.com/aretw0/ticketflow/pkg/ports"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// testDSN returns TEST_DB_DSN or starts a throwaway container.
func testDSN(t *testing.T) string {
	t.Helper()
	if dsn := os.Getenv("TEST_DB_DSN"); dsn != "" {
		return dsn
	}
	if testing.Short() {
		t.Skip("postgres integration test skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	pg, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: "postgres:16-alpine",
			Env: map[string]string{
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_USER":     "test",
				"POSTGRES_DB":       "ticketflow",
			},
			ExposedPorts: []string{"5432/tcp"},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	host, err := pg.Host(ctx)
	require.NoError(t, err)
	port, err := pg.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://test:test@%s:%s/ticketflow?sslmode=disable", host, port.Port())
}

func TestPostgresTicketStore_Contract(t *testing.T) {
	store, err := postgres.Open(testDSN(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ports.RunTicketStorageContract(t, store)
}
