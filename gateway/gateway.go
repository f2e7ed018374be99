// Package gateway describes the identity and data capabilities the session layer
// consumes, independent of the backend that provides them.
package gateway

import (
	"context"
	"time"

	"github.com/pkg/errors"

	apperrors "github.com/jrsteele09/go-session-guard/internal/errors"
	"github.com/jrsteele09/go-session-guard/roles"
)

var (
	ErrInvalidCredentials = apperrors.ErrInvalidCredentials
	ErrDuplicateEmail     = apperrors.ErrDuplicateEmail
	ErrNoSession          = apperrors.ErrNoSession
	ErrSessionExpired     = apperrors.ErrSessionExpired
	ErrUnavailable        = apperrors.ErrUnavailable
	ErrNotFound           = apperrors.ErrNotFound
)

// Session is what the identity provider hands back after a successful sign-in or refresh.
type Session struct {
	Token         string
	RefreshToken  string
	IdentityID    string
	IdentityEmail string
	ExpiresAt     time.Time
}

// Identity is the provider's view of the signed-in principal.
type Identity struct {
	ID    string
	Email string
}

// ProfileRow is a row of the application's profile table.
type ProfileRow struct {
	ID           string
	Email        string
	Role         roles.Role
	FullName     string
	EmployeeCode *string
	CreatedAt    time.Time
}

// ClientContext describes the client an audit event came from.
type ClientContext struct {
	UserAgent  string `json:"userAgent"`
	Platform   string `json:"platform"`
	Hostname   string `json:"hostname,omitempty"`
	AppVersion string `json:"appVersion,omitempty"`
	Language   string `json:"language"`
}

// AuditRow is a row of the application's audit log table.
type AuditRow struct {
	ID            string
	EventType     string
	IdentityID    *string
	Metadata      map[string]any
	ClientContext ClientContext
	Timestamp     time.Time
}

// IdentityProvider performs credential operations against the identity backend.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	// SignUp returns the new identity ID. A duplicate email is reported as ErrDuplicateEmail.
	SignUp(ctx context.Context, email, password string) (string, error)
	// SignOut is best-effort.
	SignOut(ctx context.Context) error
	// CurrentIdentity returns nil when no identity is signed in.
	CurrentIdentity(ctx context.Context) (*Identity, error)
	RefreshToken(ctx context.Context) (*Session, error)
	RequestPasswordReset(ctx context.Context, email, redirectURL string) error
	UpdatePassword(ctx context.Context, newPassword string) error
}

// DataStore reads and writes the application tables.
type DataStore interface {
	FetchProfileRow(ctx context.Context, identityID string) (*ProfileRow, error)
	InsertProfileRow(ctx context.Context, row ProfileRow) error
	InsertAuditRow(ctx context.Context, row AuditRow) error
}

// Gateway is the full capability set.
type Gateway interface {
	IdentityProvider
	DataStore
}

var _ Gateway = (*composite)(nil)

type composite struct {
	IdentityProvider
	DataStore
}

// New composes an IdentityProvider and a DataStore into a Gateway. A missing half is
// reported as ErrUnavailable so callers fail at construction, not on first use.
func New(idp IdentityProvider, data DataStore) (Gateway, error) {
	if idp == nil {
		return nil, errors.Wrap(ErrUnavailable, "[gateway.New] identity provider is required")
	}
	if data == nil {
		return nil, errors.Wrap(ErrUnavailable, "[gateway.New] data store is required")
	}
	return &composite{IdentityProvider: idp, DataStore: data}, nil
}
