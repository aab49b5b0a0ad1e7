package helper

import (
	"errors"
	"net/url"
	"testing"

	"stayvista/config"

	"github.com/stretchr/testify/assert"
)

func TestDatabaseURL(t *testing.T) {
	cfg := &config.Config{}
	cfg.DB.Postgres.Prefix = "test_"
	cfg.DB.Postgres.Write.Username = "stay"
	cfg.DB.Postgres.Write.Password = "p@ss/word"
	cfg.DB.Postgres.Write.Host = "localhost"
	cfg.DB.Postgres.Write.Port = "5432"
	cfg.DB.Postgres.Write.Name = "stayvista"

	parsed, err := url.Parse(databaseURL(cfg))
	assert.NoError(t, err)

	password, _ := parsed.User.Password()

	assert.Equal(t, "postgres", parsed.Scheme)
	assert.Equal(t, "p@ss/word", password)
	assert.Equal(t, "localhost:5432", parsed.Host)
	assert.Equal(t, "/test_stayvista", parsed.Path)
	assert.Equal(t, "disable", parsed.Query().Get("sslmode"))
	assert.Equal(t, defaultMigrationTable, parsed.Query().Get("x-migrations-table"))

	cfg.DB.Postgres.MigrationTable = "stayvista_migrations"
	cfg.DB.Postgres.Write.SSLMode = "require"

	parsed, err = url.Parse(databaseURL(cfg))
	assert.NoError(t, err)
	assert.Equal(t, "require", parsed.Query().Get("sslmode"))
	assert.Equal(t, "stayvista_migrations", parsed.Query().Get("x-migrations-table"))
}

func TestRunner_UnknownAction(t *testing.T) {
	cfg := &config.Config{}
	cfg.DB.Postgres.Write.Host = "localhost"
	cfg.DB.Postgres.Write.Port = "1"

	err := Runner(cfg, "sideways")

	// migrate.New fails first when no database listens on the port
	assert.Error(t, err)
	if errors.Is(err, ErrUnknownAction) {
		assert.Contains(t, err.Error(), "sideways")
	}
}
