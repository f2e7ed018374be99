// Package audit records security-relevant session events. Emission is best-effort:
// a failed write is logged and never reaches the caller.
package audit

import (
	"context"
	"errors"
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-session-guard/gateway"
)

// EventType is the audit_logs.event_type value.
type EventType string

const (
	LoginSuccess           EventType = "login_success"
	LoginFailed            EventType = "login_failed"
	Logout                 EventType = "logout"
	UserRegistered         EventType = "user_registered"
	PasswordResetRequested EventType = "password_reset_requested"
	PasswordUpdated        EventType = "password_updated"
)

// Failure reasons attached to LoginFailed events.
const (
	ReasonInvalidCredentials = "invalid_credentials"
	ReasonLockedOut          = "locked_out"
	ReasonUnexpected         = "unexpected"
)

const defaultWriteTimeout = 5 * time.Second

// Sink stores audit rows. gateway.DataStore satisfies it.
type Sink interface {
	InsertAuditRow(ctx context.Context, row gateway.AuditRow) error
}

// Emitter stamps events with the client context and hands them to a Sink.
type Emitter struct {
	sink         Sink
	client       gateway.ClientContext
	writeTimeout time.Duration
	nowTime      func() time.Time
}

// EmitterOption defines a function type to modify the Emitter instance.
type EmitterOption func(*Emitter)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) EmitterOption {
	return func(e *Emitter) {
		e.nowTime = nowFunc
	}
}

// WithWriteTimeout bounds how long a single write may take.
func WithWriteTimeout(d time.Duration) EmitterOption {
	return func(e *Emitter) {
		if d > 0 {
			e.writeTimeout = d
		}
	}
}

// NewEmitter creates an Emitter writing to sink.
func NewEmitter(sink Sink, client gateway.ClientContext, options ...EmitterOption) (*Emitter, error) {
	if sink == nil {
		return nil, errors.New("[audit.NewEmitter] sink is required")
	}
	e := &Emitter{
		sink:         sink,
		client:       client,
		writeTimeout: defaultWriteTimeout,
		nowTime:      time.Now,
	}
	for _, opt := range options {
		opt(e)
	}
	return e, nil
}

// Emit writes one event. identityID may be empty for anonymous events. The write
// is not cancelled with ctx, only bounded by the write timeout.
func (e *Emitter) Emit(ctx context.Context, event EventType, identityID string, metadata map[string]any) {
	row := gateway.AuditRow{
		ID:            uuid.New().String(),
		EventType:     string(event),
		Metadata:      metadata,
		ClientContext: e.client,
		Timestamp:     e.nowTime(),
	}
	if identityID != "" {
		row.IdentityID = &identityID
	}
	if row.Metadata == nil {
		row.Metadata = map[string]any{}
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.writeTimeout)
	defer cancel()

	if err := e.sink.InsertAuditRow(writeCtx, row); err != nil {
		log.Warn().Err(err).Str("event_type", row.EventType).Msg("audit event not recorded")
		return
	}
	log.Debug().Str("event_type", row.EventType).Str("audit_id", row.ID).Msg("audit event recorded")
}

// DetectClientContext describes the running process.
func DetectClientContext(appName, appVersion, lang string) gateway.ClientContext {
	hostname, _ := os.Hostname()
	userAgent := appName
	if appVersion != "" {
		userAgent += "/" + appVersion
	}
	userAgent += " (" + runtime.GOOS + "; " + runtime.Version() + ")"

	return gateway.ClientContext{
		UserAgent:  userAgent,
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
		Hostname:   hostname,
		AppVersion: appVersion,
		Language:   lang,
	}
}
