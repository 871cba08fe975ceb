package postgres_test

import (
	"errors"
	"fmt"
	"net/url"
	"rms/config"
	"rms/infras/postgres"
	"rms/shared/constant"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	cfg := &config.Config{}
	cfg.DB.Postgres.Prefix = "dev_"

	endpoint := config.PostgresEndpoint{
		Host:     "db.internal",
		Port:     "5432",
		Username: "rms",
		Password: "p@ss/word",
		Name:     "rms",
		Timezone: "Asia/Jakarta",
		SSLMode:  "disable",
	}

	dsn := postgres.DSN(cfg, endpoint, url.Values{"x-migrations-table": {"schema_migrations"}})

	u, err := url.Parse(dsn)
	require.NoError(t, err)

	password, _ := u.User.Password()

	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "db.internal:5432", u.Host)
	assert.Equal(t, "/dev_rms", u.Path)
	assert.Equal(t, "rms", u.User.Username())
	assert.Equal(t, "p@ss/word", password)
	assert.Equal(t, "disable", u.Query().Get("sslmode"))
	assert.Equal(t, "Asia/Jakarta", u.Query().Get("timezone"))
	assert.Equal(t, "schema_migrations", u.Query().Get("x-migrations-table"))
}

func TestDSN_NoTimezone(t *testing.T) {
	dsn := postgres.DSN(&config.Config{}, config.PostgresEndpoint{Host: "localhost", Port: "5432", Name: "rms", SSLMode: "require"}, nil)

	assert.NotContains(t, dsn, "timezone")
	assert.Contains(t, dsn, "sslmode=require")
}

func TestViolations(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pq.Error{Code: constant.PqErrorCodeUniqueViolation})
	foreign := fmt.Errorf("insert: %w", &pq.Error{Code: constant.PqErrorCodeFkViolation})

	assert.True(t, postgres.IsUniqueViolation(unique))
	assert.False(t, postgres.IsForeignKeyViolation(unique))
	assert.True(t, postgres.IsForeignKeyViolation(foreign))
	assert.False(t, postgres.IsUniqueViolation(foreign))
	assert.False(t, postgres.IsUniqueViolation(errors.New("plain")))
	assert.False(t, postgres.IsUniqueViolation(nil))
}
