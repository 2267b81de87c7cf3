package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@h:5432/db?sslmode=disable", migrateURL("postgres://u:p@h:5432/db?sslmode=disable"))
	assert.Equal(t, "pgx5://u@h/db", migrateURL("postgresql://u@h/db"))
	assert.Equal(t, "pgx5://already", migrateURL("pgx5://already"))
}

func TestMigrationsEmbebidas(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	assert.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "000001_init.up.sql")
	assert.Contains(t, names, "000001_init.down.sql")
}
