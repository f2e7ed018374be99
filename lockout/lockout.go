// Package lockout throttles sign-in attempts. It is attempt-count based: failures
// accumulate until the threshold is reached, at which point a fixed-duration lock
// is set. When the lock expires the whole counter is wiped.
package lockout

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	apperrors "github.com/jrsteele09/go-session-guard/internal/errors"
)

const (
	// DefaultMaxAttempts is the number of consecutive failures that trigger a lock.
	DefaultMaxAttempts = 5

	// DefaultLockoutDuration is how long a lock lasts.
	DefaultLockoutDuration = 15 * time.Minute
)

// ErrLocked is reported while a lockout deadline is in the future.
var ErrLocked = apperrors.ErrAccountLocked

// State is where the tracker keeps its counters. localstore.Store satisfies it.
type State interface {
	FailedAttempts() int
	SetFailedAttempts(n int) bool
	LockedUntil() (time.Time, bool)
	SetLockedUntil(deadline time.Time) bool
	ClearLockout()
}

// Decision is the outcome of RecordAttempt.
type Decision struct {
	Allowed       bool
	Locked        bool
	RemainingTime time.Duration
	AttemptsLeft  int
}

// Status is the outcome of CheckLocked.
type Status struct {
	Locked        bool
	RemainingTime time.Duration
}

// Err returns ErrLocked when the status is locked.
func (s Status) Err() error {
	if !s.Locked {
		return nil
	}
	return errors.Wrapf(ErrLocked, "retry in %s", s.RemainingTime)
}

// Tracker records sign-in outcomes against a State.
type Tracker struct {
	mu              sync.Mutex
	state           State
	maxAttempts     int
	lockoutDuration time.Duration
	nowTime         func() time.Time
}

// TrackerOption defines a function type to modify the Tracker instance.
type TrackerOption func(*Tracker)

// WithMaxAttempts sets the failure threshold. Values below 1 are ignored.
func WithMaxAttempts(maxAttempts int) TrackerOption {
	return func(t *Tracker) {
		if maxAttempts > 0 {
			t.maxAttempts = maxAttempts
		}
	}
}

// WithLockoutDuration sets how long a lock lasts.
func WithLockoutDuration(d time.Duration) TrackerOption {
	return func(t *Tracker) {
		if d > 0 {
			t.lockoutDuration = d
		}
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) TrackerOption {
	return func(t *Tracker) {
		t.nowTime = nowFunc
	}
}

// New creates a Tracker persisting into state.
func New(state State, options ...TrackerOption) (*Tracker, error) {
	if state == nil {
		return nil, errors.New("[lockout.New] state is required")
	}
	t := &Tracker{
		state:           state,
		maxAttempts:     DefaultMaxAttempts,
		lockoutDuration: DefaultLockoutDuration,
		nowTime:         time.Now,
	}
	for _, opt := range options {
		opt(t)
	}
	return t, nil
}

// MaxAttempts returns the configured failure threshold.
func (t *Tracker) MaxAttempts() int {
	return t.maxAttempts
}

// RecordAttempt registers the outcome of one sign-in attempt.
func (t *Tracker) RecordAttempt(success bool) Decision {
	t.mu.Lock()
	defer t.mu.Unlock()

	if success {
		t.state.ClearLockout()
		return Decision{Allowed: true}
	}

	count := t.state.FailedAttempts() + 1
	if !t.state.SetFailedAttempts(count) {
		log.Warn().Int("count", count).Msg("failed attempt counter not persisted")
	}

	if count >= t.maxAttempts {
		deadline := t.nowTime().Add(t.lockoutDuration)
		if !t.state.SetLockedUntil(deadline) {
			log.Warn().Time("locked_until", deadline).Msg("lockout deadline not persisted")
		}
		log.Warn().Int("count", count).Dur("duration", t.lockoutDuration).Msg("sign-in locked out")
		return Decision{
			Locked:        true,
			RemainingTime: t.lockoutDuration,
		}
	}

	return Decision{
		Allowed:      true,
		AttemptsLeft: t.maxAttempts - count,
	}
}

// CheckLocked reports whether a lock is in force. An expired lock clears both
// the deadline and the failure count.
func (t *Tracker) CheckLocked() Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	deadline, ok := t.state.LockedUntil()
	if !ok {
		return Status{}
	}

	remaining := deadline.Sub(t.nowTime())
	if remaining > 0 {
		return Status{Locked: true, RemainingTime: remaining}
	}

	t.state.ClearLockout()
	return Status{}
}
