package helper

//nolint:revive
import (
	"errors"
	"fmt"
	"net/url"
	"rms/config"
	"rms/infras/postgres"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
)

const migrationSource = "file://migrations/postgres"

// step moves the schema and names the outcome for the log line.
type step struct {
	run  func(*migrate.Migrate) error
	done string
}

var (
	stepUp     = step{run: (*migrate.Migrate).Up, done: "applied all pending migrations"}
	stepUpOne  = step{run: func(m *migrate.Migrate) error { return m.Steps(1) }, done: "applied one migration"}
	stepDown   = step{run: func(m *migrate.Migrate) error { return m.Steps(-1) }, done: "rolled back one migration"}
	stepDropDB = step{run: (*migrate.Migrate).Down, done: "rolled back all migrations"}
)

// Migrations always run against the write endpoint.
func open(cfg *config.Config) (*migrate.Migrate, error) {
	var extra url.Values
	if table := cfg.DB.Postgres.MigrationTable; table != "" {
		extra = url.Values{"x-migrations-table": {table}}
	}

	mig, err := migrate.New(migrationSource, postgres.DSN(cfg, cfg.DB.Postgres.Write, extra))
	if err != nil {
		return nil, fmt.Errorf("failed to open migrations: %w", err)
	}

	return mig, nil
}

func apply(cfg *config.Config, s step) (err error) {
	mig, err := open(cfg)
	if err != nil {
		return err
	}

	defer func() {
		srcErr, dbErr := mig.Close()
		if err == nil {
			err = errors.Join(srcErr, dbErr)
		}
	}()

	if err = s.run(mig); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Msg("Database schema already up to date")

			return nil
		}

		return fmt.Errorf("migration failed: %w", err)
	}

	version, dirty, verr := mig.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		log.Warn().Err(verr).Msg("Could not read schema version")
	}

	log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Database " + s.done)

	return nil
}

func Up(cfg *config.Config) error {
	return apply(cfg, stepUp)
}

func StepUp(cfg *config.Config) error {
	return apply(cfg, stepUpOne)
}

func Down(cfg *config.Config) error {
	return apply(cfg, stepDown)
}

func Drop(cfg *config.Config) error {
	return apply(cfg, stepDropDB)
}
