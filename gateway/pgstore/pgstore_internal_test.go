package pgstore

import (
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-session-guard/gateway"
)

func TestMapError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		require.NoError(t, mapError(nil, "x"))
	})

	t.Run("no rows", func(t *testing.T) {
		require.ErrorIs(t, mapError(pgx.ErrNoRows, "[Store.FetchProfileRow]"), gateway.ErrNotFound)
	})

	t.Run("unique violation", func(t *testing.T) {
		err := mapError(&pgconn.PgError{
			Code:           pgerrcode.UniqueViolation,
			ConstraintName: "profiles_email_key",
		}, "[Store.InsertProfileRow]")
		require.ErrorIs(t, err, gateway.ErrDuplicateEmail)
	})

	t.Run("other pg error", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: pgerrcode.CheckViolation}
		err := mapError(pgErr, "[Store.InsertProfileRow]")
		require.NotErrorIs(t, err, gateway.ErrDuplicateEmail)
		require.Contains(t, err.Error(), "[Store.InsertProfileRow] ")
		var got *pgconn.PgError
		require.True(t, errors.As(err, &got))
	})
}

func TestToPgx5DSN(t *testing.T) {
	require.Equal(t, "pgx5://u:p@db:5432/app", toPgx5DSN("postgres://u:p@db:5432/app"))
	require.Equal(t, "pgx5://u:p@db/app", toPgx5DSN("postgresql://u:p@db/app"))
	require.Equal(t, "pgx5://db/app", toPgx5DSN("pgx5://db/app"))
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := migrationFiles.ReadDir("migrations")
	require.NoError(t, err)
	require.Len(t, entries, 4)
}
