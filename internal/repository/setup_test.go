package repository

import (
	"context"
	"testing"
	"time"

	"pizzeria-api/internal/database"
	"pizzeria-api/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a migrated PostgreSQL testcontainer and returns a connection pool.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, database.Migrate(ctx, pool, zerolog.Nop()))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// seedUser inserts a customer and returns it.
func seedUser(t *testing.T, pool *pgxpool.Pool, email string) *model.User {
	t.Helper()

	user := &model.User{
		ID:           uuid.New(),
		Email:        email,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, NewUserRepository(pool, zerolog.Nop()).Create(context.Background(), user))
	return user
}
