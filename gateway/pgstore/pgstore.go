// Package pgstore implements gateway.DataStore on PostgreSQL.
package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jrsteele09/go-session-guard/gateway"
	"github.com/jrsteele09/go-session-guard/roles"
)

var _ gateway.DataStore = (*Store)(nil)

// Store reads profiles and writes audit rows.
type Store struct {
	pool *pgxpool.Pool
}

// NewPool opens a connection pool for dsn.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, errors.New("[pgstore.NewPool] dsn is required")
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("[pgstore.NewPool] parse dsn: %w", err)
	}
	cfg.MinConns = 0
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("[pgstore.NewPool] create pool: %w", err)
	}
	return pool, nil
}

// New creates a Store over pool.
func New(pool *pgxpool.Pool) (*Store, error) {
	if pool == nil {
		return nil, errors.New("[pgstore.New] pool is required")
	}
	return &Store{pool: pool}, nil
}

func (s *Store) FetchProfileRow(ctx context.Context, identityID string) (*gateway.ProfileRow, error) {
	const q = `SELECT id, email, role, full_name, employee_code, created_at
		FROM profiles WHERE id = $1`

	var (
		row  gateway.ProfileRow
		role string
	)
	err := s.pool.QueryRow(ctx, q, identityID).Scan(
		&row.ID, &row.Email, &role, &row.FullName, &row.EmployeeCode, &row.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err, "[Store.FetchProfileRow]")
	}
	row.Role = roles.Parse(role)
	return &row, nil
}

func (s *Store) InsertProfileRow(ctx context.Context, row gateway.ProfileRow) error {
	const q = `INSERT INTO profiles (id, email, role, full_name, employee_code)
		VALUES ($1, $2, $3, $4, $5)`

	role := roles.Parse(string(row.Role))
	if _, err := s.pool.Exec(ctx, q, row.ID, row.Email, string(role), row.FullName, row.EmployeeCode); err != nil {
		return mapError(err, "[Store.InsertProfileRow]")
	}
	return nil
}

func (s *Store) InsertAuditRow(ctx context.Context, row gateway.AuditRow) error {
	const q = `INSERT INTO audit_logs (id, event_type, identity_id, metadata, client_context, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	id := row.ID
	if id == "" {
		id = uuid.New().String()
	}
	metadata := row.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("[Store.InsertAuditRow] marshal metadata: %w", err)
	}
	clientJSON, err := json.Marshal(row.ClientContext)
	if err != nil {
		return fmt.Errorf("[Store.InsertAuditRow] marshal client context: %w", err)
	}
	createdAt := row.Timestamp
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	if _, err := s.pool.Exec(ctx, q, id, row.EventType, row.IdentityID, metadataJSON, clientJSON, createdAt); err != nil {
		return mapError(err, "[Store.InsertAuditRow]")
	}
	return nil
}

// mapError translates driver errors into gateway sentinels.
func mapError(err error, action string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return gateway.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return fmt.Errorf("%s %w", action, gateway.ErrDuplicateEmail)
	}
	return fmt.Errorf("%s %w", action, err)
}
