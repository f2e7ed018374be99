package localstore

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jrsteele09/go-session-guard/roles"
	"github.com/rs/zerolog/log"
)

// DefaultSessionTimeout is how long a saved session token stays valid.
const DefaultSessionTimeout = 24 * time.Hour

// Keys used on the underlying Medium.
const (
	KeySessionToken       = "session_token"
	KeyUserProfile        = "user_profile"
	KeyLoginAttempts      = "login_attempts"
	KeyLockoutUntil       = "lockout_until"
	KeyRedirectAfterLogin = "redirect_after_login"
	KeyProviderToken      = "provider_token"
)

// Profile is the locally cached copy of the user's profile row. It is a fallback for
// degraded availability and never authoritative.
type Profile struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Role         roles.Role `json:"role"`
	FullName     string     `json:"fullName"`
	EmployeeCode *string    `json:"employeeCode,omitempty"`
}

type sessionRecord struct {
	Token     string `json:"token"`
	Timestamp int64  `json:"timestamp"` // issued at, epoch milliseconds
}

// Store persists the session token, cached profile, lockout counters and the
// post-login destination. Every operation is synchronous and reports failure as a
// boolean or empty result; medium errors are logged, never returned.
type Store struct {
	medium         Medium
	sessionTimeout time.Duration
	nowTime        func() time.Time
}

// StoreOption defines a function type to modify the Store instance.
type StoreOption func(*Store)

// WithSessionTimeout overrides DefaultSessionTimeout. Non-positive values are ignored.
func WithSessionTimeout(timeout time.Duration) StoreOption {
	return func(s *Store) {
		if timeout > 0 {
			s.sessionTimeout = timeout
		}
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

// New creates a Store on top of medium.
func New(medium Medium, options ...StoreOption) (*Store, error) {
	if medium == nil {
		return nil, errors.New("[localstore.New] medium is required")
	}
	s := &Store{
		medium:         medium,
		sessionTimeout: DefaultSessionTimeout,
		nowTime:        time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// SessionTimeout returns the configured session lifetime.
func (s *Store) SessionTimeout() time.Duration {
	return s.sessionTimeout
}

// Save stores token stamped with the current time.
func (s *Store) Save(token string) bool {
	return s.setJSON(KeySessionToken, sessionRecord{
		Token:     token,
		Timestamp: s.nowTime().UnixMilli(),
	})
}

// Load returns the saved token. A record at or past the session timeout is purged,
// together with the cached profile, and reported as absent.
func (s *Store) Load() (string, bool) {
	var rec sessionRecord
	if !s.getJSON(KeySessionToken, &rec) {
		return "", false
	}
	if rec.Token == "" {
		s.purgeSession()
		return "", false
	}
	issuedAt := time.UnixMilli(rec.Timestamp)
	if s.nowTime().Sub(issuedAt) >= s.sessionTimeout {
		log.Debug().Time("issued_at", issuedAt).Msg("session expired, purging")
		s.purgeSession()
		return "", false
	}
	return rec.Token, true
}

// SaveProfile caches profile. The role is normalised so an unknown role is stored as
// the lowest-privilege role.
func (s *Store) SaveProfile(profile Profile) bool {
	profile.Role = roles.Parse(string(profile.Role))
	return s.setJSON(KeyUserProfile, profile)
}

// LoadProfile returns the cached profile, or nil when none is stored.
func (s *Store) LoadProfile() *Profile {
	var profile Profile
	if !s.getJSON(KeyUserProfile, &profile) {
		return nil
	}
	profile.Role = roles.Parse(string(profile.Role))
	return &profile
}

// Clear removes the session token, cached profile, lockout counters and provider
// token. It is idempotent.
func (s *Store) Clear() {
	for _, key := range []string{KeySessionToken, KeyUserProfile, KeyLoginAttempts, KeyLockoutUntil, KeyProviderToken} {
		s.delete(key)
	}
}

// FailedAttempts returns the persisted failed login count, 0 when absent or unreadable.
func (s *Store) FailedAttempts() int {
	raw, ok := s.get(KeyLoginAttempts)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		log.Warn().Str("key", KeyLoginAttempts).Msg("discarding malformed attempt counter")
		return 0
	}
	return n
}

// SetFailedAttempts persists the failed login count.
func (s *Store) SetFailedAttempts(n int) bool {
	return s.set(KeyLoginAttempts, strconv.Itoa(n))
}

// LockedUntil returns the persisted lockout deadline if one is set.
func (s *Store) LockedUntil() (time.Time, bool) {
	raw, ok := s.get(KeyLockoutUntil)
	if !ok {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Warn().Str("key", KeyLockoutUntil).Msg("discarding malformed lockout deadline")
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

// SetLockedUntil persists the lockout deadline.
func (s *Store) SetLockedUntil(deadline time.Time) bool {
	return s.set(KeyLockoutUntil, strconv.FormatInt(deadline.UnixMilli(), 10))
}

// ClearLockout removes both the failed count and the deadline.
func (s *Store) ClearLockout() {
	s.delete(KeyLoginAttempts)
	s.delete(KeyLockoutUntil)
}

// SaveIntendedDestination remembers where to send the user after login.
func (s *Store) SaveIntendedDestination(location string) bool {
	return s.set(KeyRedirectAfterLogin, location)
}

// TakeIntendedDestination returns the remembered destination and forgets it.
func (s *Store) TakeIntendedDestination() (string, bool) {
	location, ok := s.get(KeyRedirectAfterLogin)
	if !ok {
		return "", false
	}
	s.delete(KeyRedirectAfterLogin)
	return location, location != ""
}

// SaveProviderToken stores the identity provider's serialized token.
func (s *Store) SaveProviderToken(raw string) bool {
	return s.set(KeyProviderToken, raw)
}

// LoadProviderToken returns the identity provider's serialized token.
func (s *Store) LoadProviderToken() (string, bool) {
	return s.get(KeyProviderToken)
}

// ClearProviderToken removes the identity provider's token.
func (s *Store) ClearProviderToken() {
	s.delete(KeyProviderToken)
}

func (s *Store) purgeSession() {
	s.delete(KeySessionToken)
	s.delete(KeyUserProfile)
}

func (s *Store) get(key string) (string, bool) {
	value, err := s.medium.Get(key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Err(err).Str("key", key).Msg("local store read failed")
		}
		return "", false
	}
	return value, true
}

func (s *Store) set(key, value string) bool {
	if err := s.medium.Set(key, value); err != nil {
		log.Err(err).Str("key", key).Msg("local store write failed")
		return false
	}
	return true
}

func (s *Store) delete(key string) {
	if err := s.medium.Delete(key); err != nil {
		log.Err(err).Str("key", key).Msg("local store delete failed")
	}
}

func (s *Store) getJSON(key string, v any) bool {
	raw, ok := s.get(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		log.Err(err).Str("key", key).Msg("discarding unreadable local record")
		s.delete(key)
		return false
	}
	return true
}

func (s *Store) setJSON(key string, v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		log.Err(err).Str("key", key).Msg("local record marshal failed")
		return false
	}
	return s.set(key, string(data))
}
