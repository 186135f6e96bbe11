package db

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsFS_PairsUpAndDown(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("unexpected file in migrations: %s", name)
		}
	}

	assert.Equal(t, ups, downs, "every up migration needs a down migration")
}

func TestMigrationsFS_CreatesUsersTable(t *testing.T) {
	content, err := fs.ReadFile(migrationsFS, "migrations/000001_create_users_table.up.sql")
	require.NoError(t, err)

	sql := string(content)
	for _, column := range []string{"id", "first_name", "last_name", "email", "birth_date", "address", "phone_number"} {
		assert.Contains(t, sql, column)
	}
}
