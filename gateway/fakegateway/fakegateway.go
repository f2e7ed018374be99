// Package fakegateway is an in-memory gateway.Gateway used by tests and by the CLI's
// mock mode.
package fakegateway

import (
	"context"
	"crypto/rand"
	"sort"
	"strings"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/jrsteele09/go-session-guard/gateway"
)

var _ gateway.Gateway = (*Fake)(nil)

// Method names a gateway operation for call counting and failure injection.
type Method string

const (
	MethodSignIn               Method = "SignIn"
	MethodSignUp               Method = "SignUp"
	MethodSignOut              Method = "SignOut"
	MethodCurrentIdentity      Method = "CurrentIdentity"
	MethodRefreshToken         Method = "RefreshToken"
	MethodRequestPasswordReset Method = "RequestPasswordReset"
	MethodUpdatePassword       Method = "UpdatePassword"
	MethodFetchProfileRow      Method = "FetchProfileRow"
	MethodInsertProfileRow     Method = "InsertProfileRow"
	MethodInsertAuditRow       Method = "InsertAuditRow"
)

const defaultTokenTTL = time.Hour

type account struct {
	id           string
	email        string
	passwordHash []byte
}

// Fake keeps accounts, profiles and audit rows in memory and issues HS256 tokens.
type Fake struct {
	lock          sync.RWMutex
	secret        []byte
	accounts      map[string]*account // by normalised email
	profiles      map[string]gateway.ProfileRow
	auditRows     []gateway.AuditRow
	resetRequests []string
	current       *gateway.Session
	calls         map[Method]int
	failures      map[Method]error
	tokenTTL      time.Duration
	nowTime       func() time.Time
}

// Option defines a function type to modify the Fake instance.
type Option func(*Fake)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(f *Fake) {
		f.nowTime = nowFunc
	}
}

// WithTokenTTL sets the lifetime of issued tokens.
func WithTokenTTL(ttl time.Duration) Option {
	return func(f *Fake) {
		if ttl > 0 {
			f.tokenTTL = ttl
		}
	}
}

// New creates an empty Fake.
func New(options ...Option) *Fake {
	secret := make([]byte, 32)
	_, _ = rand.Read(secret)

	f := &Fake{
		secret:   secret,
		accounts: make(map[string]*account),
		profiles: make(map[string]gateway.ProfileRow),
		calls:    make(map[Method]int),
		failures: make(map[Method]error),
		tokenTTL: defaultTokenTTL,
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(f)
	}
	return f
}

// AddAccount registers an identity directly, bypassing SignUp, and returns its ID.
func (f *Fake) AddAccount(email, password string) (string, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.addAccount(email, password)
}

// PutProfile stores a profile row directly.
func (f *Fake) PutProfile(row gateway.ProfileRow) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.profiles[row.ID] = row
}

// FailOn makes every subsequent call to method return err. A nil err clears it.
func (f *Fake) FailOn(method Method, err error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err == nil {
		delete(f.failures, method)
		return
	}
	f.failures[method] = err
}

// Calls returns how many times method has been invoked.
func (f *Fake) Calls(method Method) int {
	f.lock.RLock()
	defer f.lock.RUnlock()
	return f.calls[method]
}

// TotalCalls returns the number of gateway invocations of any kind.
func (f *Fake) TotalCalls() int {
	f.lock.RLock()
	defer f.lock.RUnlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

// AuditRows returns a copy of the recorded audit rows, oldest first.
func (f *Fake) AuditRows() []gateway.AuditRow {
	f.lock.RLock()
	defer f.lock.RUnlock()
	return append([]gateway.AuditRow(nil), f.auditRows...)
}

// AuditEventTypes returns the event types of the recorded audit rows, oldest first.
func (f *Fake) AuditEventTypes() []string {
	rows := f.AuditRows()
	types := make([]string, 0, len(rows))
	for _, row := range rows {
		types = append(types, row.EventType)
	}
	return types
}

// ResetRequests returns the emails a password reset was requested for.
func (f *Fake) ResetRequests() []string {
	f.lock.RLock()
	defer f.lock.RUnlock()
	return append([]string(nil), f.resetRequests...)
}

// Profiles returns the stored profile rows ordered by ID.
func (f *Fake) Profiles() []gateway.ProfileRow {
	f.lock.RLock()
	defer f.lock.RUnlock()
	rows := make([]gateway.ProfileRow, 0, len(f.profiles))
	for _, row := range f.profiles {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows
}

// RevokeCurrent drops the provider-side session, as if it had been revoked remotely.
func (f *Fake) RevokeCurrent() {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.current = nil
}

func (f *Fake) SignIn(ctx context.Context, email, password string) (*gateway.Session, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.enter(ctx, MethodSignIn); err != nil {
		return nil, err
	}

	acct, ok := f.accounts[normaliseEmail(email)]
	if !ok {
		return nil, gateway.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(password)); err != nil {
		return nil, gateway.ErrInvalidCredentials
	}

	session, err := f.issue(acct)
	if err != nil {
		return nil, err
	}
	f.current = session
	return copySession(session), nil
}

func (f *Fake) SignUp(ctx context.Context, email, password string) (string, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.enter(ctx, MethodSignUp); err != nil {
		return "", err
	}
	return f.addAccount(email, password)
}

func (f *Fake) SignOut(ctx context.Context) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.enter(ctx, MethodSignOut); err != nil {
		return err
	}
	f.current = nil
	return nil
}

func (f *Fake) CurrentIdentity(ctx context.Context) (*gateway.Identity, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.enter(ctx, MethodCurrentIdentity); err != nil {
		return nil, err
	}
	claims, err := f.currentClaims()
	if err != nil {
		return nil, nil
	}

	sub, _ := claims.GetSubject()
	email, _ := claims["email"].(string)
	return &gateway.Identity{ID: sub, Email: email}, nil
}

func (f *Fake) RefreshToken(ctx context.Context) (*gateway.Session, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.enter(ctx, MethodRefreshToken); err != nil {
		return nil, err
	}
	if f.current == nil {
		return nil, gateway.ErrNoSession
	}

	acct, ok := f.accounts[normaliseEmail(f.current.IdentityEmail)]
	if !ok {
		f.current = nil
		return nil, gateway.ErrNoSession
	}
	session, err := f.issue(acct)
	if err != nil {
		return nil, err
	}
	f.current = session
	return copySession(session), nil
}

func (f *Fake) RequestPasswordReset(ctx context.Context, email, redirectURL string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.enter(ctx, MethodRequestPasswordReset); err != nil {
		return err
	}
	f.resetRequests = append(f.resetRequests, normaliseEmail(email))
	return nil
}

func (f *Fake) UpdatePassword(ctx context.Context, newPassword string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.enter(ctx, MethodUpdatePassword); err != nil {
		return err
	}
	if _, err := f.currentClaims(); err != nil {
		return err
	}
	acct, ok := f.accounts[normaliseEmail(f.current.IdentityEmail)]
	if !ok {
		return gateway.ErrNoSession
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.MinCost)
	if err != nil {
		return errors.Wrap(err, "[Fake.UpdatePassword] bcrypt.GenerateFromPassword")
	}
	acct.passwordHash = hash
	return nil
}

func (f *Fake) FetchProfileRow(ctx context.Context, identityID string) (*gateway.ProfileRow, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.enter(ctx, MethodFetchProfileRow); err != nil {
		return nil, err
	}
	row, ok := f.profiles[identityID]
	if !ok {
		return nil, gateway.ErrNotFound
	}
	return &row, nil
}

func (f *Fake) InsertProfileRow(ctx context.Context, row gateway.ProfileRow) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.enter(ctx, MethodInsertProfileRow); err != nil {
		return err
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = f.nowTime()
	}
	f.profiles[row.ID] = row
	return nil
}

func (f *Fake) InsertAuditRow(ctx context.Context, row gateway.AuditRow) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.enter(ctx, MethodInsertAuditRow); err != nil {
		return err
	}
	if row.ID == "" {
		row.ID = uuid.New().String()
	}
	f.auditRows = append(f.auditRows, row)
	return nil
}

// enter counts the call and returns any injected failure. Callers hold the lock.
// currentClaims validates the current token against the fake's clock. An invalid
// token ends the session. Callers hold the lock.
func (f *Fake) currentClaims() (jwtlib.MapClaims, error) {
	if f.current == nil {
		return nil, gateway.ErrNoSession
	}
	claims := jwtlib.MapClaims{}
	_, err := jwtlib.ParseWithClaims(f.current.Token, claims, func(token *jwtlib.Token) (any, error) {
		return f.secret, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}), jwtlib.WithTimeFunc(f.nowTime))
	if err != nil {
		f.current = nil
		return nil, errors.Wrap(gateway.ErrSessionExpired, "[Fake.currentClaims] "+err.Error())
	}
	return claims, nil
}

func (f *Fake) enter(ctx context.Context, method Method) error {
	f.calls[method]++
	if err := ctx.Err(); err != nil {
		return err
	}
	return f.failures[method]
}

func (f *Fake) addAccount(email, password string) (string, error) {
	key := normaliseEmail(email)
	if _, exists := f.accounts[key]; exists {
		return "", gateway.ErrDuplicateEmail
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return "", errors.Wrap(err, "[Fake.addAccount] bcrypt.GenerateFromPassword")
	}
	acct := &account{
		id:           uuid.New().String(),
		email:        key,
		passwordHash: hash,
	}
	f.accounts[key] = acct
	return acct.id, nil
}

func (f *Fake) issue(acct *account) (*gateway.Session, error) {
	now := f.nowTime()
	expiresAt := now.Add(f.tokenTTL)
	claims := jwtlib.MapClaims{
		"sub":   acct.id,
		"email": acct.email,
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
		"jti":   uuid.New().String(),
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(f.secret)
	if err != nil {
		return nil, errors.Wrap(err, "[Fake.issue] SignedString")
	}
	return &gateway.Session{
		Token:         token,
		RefreshToken:  uuid.New().String(),
		IdentityID:    acct.id,
		IdentityEmail: acct.email,
		ExpiresAt:     expiresAt,
	}, nil
}

func copySession(s *gateway.Session) *gateway.Session {
	c := *s
	return &c
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
