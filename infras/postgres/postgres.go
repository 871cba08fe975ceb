package postgres

//nolint:revive
import (
	"context"
	"errors"
	"net"
	"net/url"
	"rms/config"
	"rms/shared/constant"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	maxIdleConnections = 10
	maxOpenConnections = 10
	connMaxLifetime    = 30 * time.Minute
	pingTimeout        = 5 * time.Second
)

// Connection splits reads and writes. Reservation commits and status changes always go
// through Write so their rechecks see committed rows.
type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

func New(cfg *config.Config) *Connection {
	return &Connection{
		Read:  connect(cfg, "read", cfg.DB.Postgres.Read),
		Write: connect(cfg, "write", cfg.DB.Postgres.Write),
	}
}

// DSN builds the lib/pq connection url for an endpoint. The configured prefix is put in
// front of the database name and extra are appended as query parameters.
func DSN(cfg *config.Config, e config.PostgresEndpoint, extra url.Values) string {
	query := url.Values{"sslmode": {e.SSLMode}}
	if e.Timezone != constant.Empty {
		query.Set("timezone", e.Timezone)
	}

	for k, v := range extra {
		query[k] = v
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(e.Username, e.Password),
		Host:     net.JoinHostPort(e.Host, e.Port),
		Path:     "/" + cfg.DB.Postgres.Prefix + e.Name,
		RawQuery: query.Encode(),
	}

	return u.String()
}

// connect retries until the database answers a ping. The process exits once the retry
// budget is spent.
func connect(cfg *config.Config, name string, e config.PostgresEndpoint) *sqlx.DB {
	pg := cfg.DB.Postgres
	attempts := max(pg.MaxRetry, 1)

	logger := log.With().
		Str("name", name).
		Str("host", e.Host).
		Str("port", e.Port).
		Str("db", pg.Prefix+e.Name).
		Logger()

	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		db, err := ping(DSN(cfg, e, nil))
		if err == nil {
			db.SetMaxIdleConns(maxIdleConnections)
			db.SetMaxOpenConns(maxOpenConnections)
			db.SetConnMaxLifetime(connMaxLifetime)

			logger.Info().Msg("Connected to database")

			return db
		}

		lastErr = err

		logger.Error().Err(err).Int("attempt", attempt).Msg("Failed connecting to database, retrying")
		time.Sleep(time.Duration(pg.RetryWaitTime) * time.Second)
	}

	logger.Fatal().Err(lastErr).Msg("Giving up connecting to database")

	return nil
}

func ping(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, err
	}

	return db, nil
}

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}

	return constant.Empty
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	return pqCode(err) == constant.PqErrorCodeUniqueViolation
}

// IsForeignKeyViolation reports whether err references a missing parent row.
func IsForeignKeyViolation(err error) bool {
	return pqCode(err) == constant.PqErrorCodeFkViolation
}

// Close releases both pools.
func (c *Connection) Close() error {
	return errors.Join(c.Read.Close(), c.Write.Close())
}
