package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/amishk599/stagescout/internal/model"
)

// setupPostgres spins up a Postgres container and returns a migrated store.
func setupPostgres(t *testing.T) *PostgresStore {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("stagescout_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	st, err := Open(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Init(ctx))
	require.NoError(t, st.Init(ctx), "migrations must be re-runnable")

	pg, ok := st.(*PostgresStore)
	require.True(t, ok)
	return pg
}

func TestPostgresUpsertIdentity(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	first, err := s.Upsert(ctx, sampleJob())
	require.NoError(t, err)
	assert.True(t, first.Inserted)

	later := sampleJob()
	later.Title = "Backend Intern (renamed)"
	later.Location = "Lyon"
	second, err := s.Upsert(ctx, later)
	require.NoError(t, err)
	assert.False(t, second.Inserted)
	assert.Equal(t, first.ID, second.ID)

	rows, err := s.List(ctx, model.ListOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Lyon", rows[0].Location)
	assert.Equal(t, "Backend Intern", rows[0].Title)
	assert.Equal(t, []string{"backend", "python"}, rows[0].Tags)
	assert.False(t, rows[0].ScrapedAt.IsZero())
}

func TestPostgresNullSourceIDs(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	a := model.Job{Source: "teamtailor", Title: "Backend Intern", ApplyURL: "https://x/jobs/1"}
	b := model.Job{Source: "teamtailor", Title: "Data Intern", ApplyURL: "https://x/jobs/2"}
	_, err := s.Upsert(ctx, a)
	require.NoError(t, err)
	_, err = s.Upsert(ctx, b)
	require.NoError(t, err)
	_, err = s.Upsert(ctx, a)
	require.NoError(t, err)

	rows, err := s.List(ctx, model.ListOptions{Source: "teamtailor"})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = s.Get(ctx, 99999)
	assert.ErrorIs(t, err, ErrNotFound)
}
