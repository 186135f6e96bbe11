package user_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/users-api/internal/config"
	"github.com/vasiliy-maslov/users-api/internal/db"
	"github.com/vasiliy-maslov/users-api/internal/user"
)

var testDB *pgxpool.Pool

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// TestMain connects to the database named by the DB_*_TEST variables. Without
// DB_HOST_TEST the Postgres tests are skipped and everything else still runs.
func TestMain(m *testing.M) {
	if os.Getenv("DB_HOST_TEST") != "" {
		cfg := config.PostgresConfig{
			Host:            os.Getenv("DB_HOST_TEST"),
			Port:            getenv("DB_PORT_TEST", "5432"),
			User:            getenv("DB_USER_TEST", "postgres"),
			Password:        getenv("DB_PASSWORD_TEST", "postgres"),
			DBName:          getenv("DB_NAME_TEST", "users_test"),
			SSLMode:         getenv("DB_SSLMODE_TEST", "disable"),
			MaxConns:        5,
			MinConns:        1,
			MaxConnLifetime: time.Hour,
		}

		if err := db.Migrate(cfg); err != nil {
			log.Fatal().Err(err).Str("host", cfg.Host).Msg("Failed to migrate test database")
		}

		connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		pg, err := db.New(connectCtx, cfg)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Str("host", cfg.Host).Msg("Failed to connect to test database")
		}
		testDB = pg.Pool

		code := m.Run()
		pg.Close()
		os.Exit(code)
	}

	os.Exit(m.Run())
}

func newPostgresRepository(t *testing.T) user.Repository {
	t.Helper()

	if testDB == nil {
		t.Skip("DB_HOST_TEST is not set, skipping Postgres integration test")
	}

	_, err := testDB.Exec(context.Background(), "TRUNCATE TABLE users")
	require.NoError(t, err, "failed to clean users table")

	return user.NewPostgresRepository(testDB)
}

// dbUser returns a user whose birth date survives a TIMESTAMP round trip.
func dbUser(birthDate time.Time) user.User {
	return user.User{
		ID:          uuid.Must(uuid.NewV4()),
		FirstName:   "Bob",
		LastName:    "John",
		Email:       fmt.Sprintf("bob.%d@email.com", time.Now().UnixNano()),
		BirthDate:   birthDate.UTC().Truncate(time.Microsecond),
		Address:     strPtr("Some Random Street, 12"),
		PhoneNumber: nil,
	}
}

func TestPostgresRepository_CreateAndFindByID(t *testing.T) {
	repo := newPostgresRepository(t)
	ctx := context.Background()

	u := dbUser(time.Date(1990, time.May, 17, 10, 15, 30, 0, time.UTC))

	created, err := repo.Create(ctx, &u)
	require.NoError(t, err)
	if diff := cmp.Diff(u, *created); diff != "" {
		t.Errorf("Create mismatch (-want +got):\n%s", diff)
	}

	found, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(u, *found); diff != "" {
		t.Errorf("FindByID mismatch (-want +got):\n%s", diff)
	}
}

func TestPostgresRepository_CreateDuplicateID(t *testing.T) {
	repo := newPostgresRepository(t)
	ctx := context.Background()

	u := dbUser(time.Date(1990, time.May, 17, 0, 0, 0, 0, time.UTC))
	_, err := repo.Create(ctx, &u)
	require.NoError(t, err)

	_, err = repo.Create(ctx, &u)
	require.ErrorIs(t, err, user.ErrAlreadyExists)
}

func TestPostgresRepository_FindByID_NotFound(t *testing.T) {
	repo := newPostgresRepository(t)

	found, err := repo.FindByID(context.Background(), uuid.Must(uuid.NewV4()))

	require.ErrorIs(t, err, user.ErrNotFound)
	assert.Nil(t, found)
}

func TestPostgresRepository_UpdateReplaceDelete(t *testing.T) {
	repo := newPostgresRepository(t)
	ctx := context.Background()

	u := dbUser(time.Date(1990, time.May, 17, 0, 0, 0, 0, time.UTC))
	_, err := repo.Create(ctx, &u)
	require.NoError(t, err)

	changed := u
	changed.FirstName = "Alice"
	changed.PhoneNumber = strPtr("+380775553535")
	updated, err := repo.Update(ctx, u.ID, &changed)
	require.NoError(t, err)
	if diff := cmp.Diff(changed, *updated); diff != "" {
		t.Errorf("Update mismatch (-want +got):\n%s", diff)
	}

	replacement := dbUser(time.Date(1985, time.January, 1, 0, 0, 0, 0, time.UTC))
	replacement.ID = u.ID
	replacement.Address = nil
	replaced, err := repo.Replace(ctx, u.ID, &replacement)
	require.NoError(t, err)
	assert.Nil(t, replaced.Address)
	assert.Nil(t, replaced.PhoneNumber)

	require.NoError(t, repo.Delete(ctx, u.ID))
	require.ErrorIs(t, repo.Delete(ctx, u.ID), user.ErrNotFound)

	_, err = repo.Update(ctx, u.ID, &changed)
	require.ErrorIs(t, err, user.ErrNotFound)
}

func TestPostgresRepository_FindByBirthDateRange(t *testing.T) {
	repo := newPostgresRepository(t)
	ctx := context.Background()

	before := dbUser(time.Date(1989, time.December, 31, 23, 0, 0, 0, time.UTC))
	onFrom := dbUser(time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC))
	lateOnTo := dbUser(time.Date(2000, time.January, 1, 23, 0, 0, 0, time.UTC))
	after := dbUser(time.Date(2000, time.January, 2, 0, 0, 0, 0, time.UTC))

	for _, u := range []user.User{lateOnTo, after, before, onFrom} {
		u := u
		_, err := repo.Create(ctx, &u)
		require.NoError(t, err)
	}

	users, err := repo.FindByBirthDateRange(ctx,
		time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, users, 2)
	assert.Equal(t, onFrom.ID, users[0].ID)
	assert.Equal(t, lateOnTo.ID, users[1].ID)
}
