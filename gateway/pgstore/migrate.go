package pgstore

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// pgx5 driver registers "pgx5" scheme for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate brings the profiles and audit_logs schema up to the latest embedded
// version. A schema left half-applied by an earlier run is reported, not repaired.
func Migrate(dsn string) error {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("[pgstore.Migrate] embedded schema: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, toPgx5DSN(dsn))
	if err != nil {
		return fmt.Errorf("[pgstore.Migrate] connect: %w", err)
	}
	defer closeMigrator(m)
	m.Log = migrateLogger{}

	from, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		log.Info().Msg("creating profiles and audit_logs schema")
	case err != nil:
		return fmt.Errorf("[pgstore.Migrate] read schema version: %w", err)
	case dirty:
		return fmt.Errorf("[pgstore.Migrate] profiles/audit_logs schema version %d is dirty, fix it with the migrate CLI before starting", from)
	}

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Debug().Uint("schema_version", from).Msg("session schema is current")
		return nil
	}
	if err != nil {
		return fmt.Errorf("[pgstore.Migrate] apply: %w", err)
	}

	to, _, _ := m.Version()
	log.Info().Uint("from", from).Uint("to", to).Msg("session schema migrated")
	return nil
}

func closeMigrator(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if err := errors.Join(srcErr, dbErr); err != nil {
		log.Warn().Err(err).Msg("closing schema migrator")
	}
}

// toPgx5DSN rewrites postgres:// URLs to the pgx5:// scheme golang-migrate expects.
func toPgx5DSN(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(dsn, prefix) {
			return "pgx5://" + strings.TrimPrefix(dsn, prefix)
		}
	}
	return dsn
}

type migrateLogger struct{}

func (migrateLogger) Printf(format string, args ...any) {
	log.Debug().Msgf(strings.TrimSuffix(format, "\n"), args...)
}

func (migrateLogger) Verbose() bool {
	return false
}
