package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/verlane/ollamactl/internal/store"
)

// startPostgresContainer starts a PostgreSQL container for tests and
// returns a DSN suitable for pgx stdlib. It skips the test if Docker is
// unavailable.
func startPostgresContainer(t *testing.T) (dsn string, terminate func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
	)
	if err != nil {
		cancel()
		t.Skipf("Failed to start PostgreSQL container: %v", err)
		return "", nil
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		cancel()
		t.Skipf("Failed to get host info: %v", err)
		return "", nil
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = container.Terminate(ctx)
		cancel()
		t.Skipf("Failed to get mapped port: %v", err)
		return "", nil
	}

	dsn = fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())
	terminate = func() {
		_ = container.Terminate(ctx)
		cancel()
	}
	return dsn, terminate
}

func waitForPostgres(t *testing.T, dsn string) {
	t.Helper()
	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		d, err := sql.Open("pgx", dsn)
		if err == nil {
			if err = d.Ping(); err == nil {
				_ = d.Close()
				return
			}
			_ = d.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Skip("PostgreSQL container did not become ready")
}

func TestPostgresStoreRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	dsn, terminate := startPostgresContainer(t)
	defer terminate()
	waitForPostgres(t, dsn)

	db, err := New(dsn)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	require.NoError(t, db.EnsureSchema(ctx))

	now := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, db.RecordTransition(ctx, store.Record{
		State: "starting", PID: 42, OccurredAt: now,
	}))
	require.NoError(t, db.RecordTransition(ctx, store.Record{
		State: "running", Running: true, PID: 42, OccurredAt: now.Add(time.Second),
	}))

	recs, err := db.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, "running", recs[0].State)
	require.True(t, recs[0].Running)
	require.Equal(t, 42, recs[0].PID)

	n, err := db.PurgeOlderThan(ctx, now.Add(time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}
