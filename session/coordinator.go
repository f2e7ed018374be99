// Package session coordinates sign-in, registration and session upkeep between the
// identity gateway and the local session store. Every public operation returns a
// result value with a localized message; none of them return an error.
package session

import (
	"context"
	"errors"
	"math"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/jrsteele09/go-session-guard/audit"
	"github.com/jrsteele09/go-session-guard/gateway"
	apperrors "github.com/jrsteele09/go-session-guard/internal/errors"
	"github.com/jrsteele09/go-session-guard/internal/i18n"
	"github.com/jrsteele09/go-session-guard/internal/validate"
	"github.com/jrsteele09/go-session-guard/localstore"
	"github.com/jrsteele09/go-session-guard/lockout"
	"github.com/jrsteele09/go-session-guard/roles"
)

const (
	// DefaultMinPasswordLength is the shortest password Register and UpdatePassword accept.
	DefaultMinPasswordLength = 8

	// DefaultLandingPath is where a successful login goes when no destination was saved.
	DefaultLandingPath = "/dashboard"

	refreshKey = "refresh"
)

// Deps holds the Coordinator's collaborators. Gateway and Store are required; a nil
// Lockout or Audit is replaced by a default built on Store and Gateway.
type Deps struct {
	Gateway gateway.Gateway
	Store   *localstore.Store
	Lockout *lockout.Tracker
	Audit   *audit.Emitter
}

// Coordinator runs the session operations.
type Coordinator struct {
	gateway           gateway.Gateway
	store             *localstore.Store
	lockout           *lockout.Tracker
	audit             *audit.Emitter
	messages          *i18n.Translator
	minPasswordLength int
	landingPath       string
	resetRedirectURL  string
	refreshGroup      singleflight.Group
}

// CoordinatorOption defines a function type to modify the Coordinator instance.
type CoordinatorOption func(*Coordinator)

// WithTranslator sets the message language.
func WithTranslator(t *i18n.Translator) CoordinatorOption {
	return func(c *Coordinator) {
		if t != nil {
			c.messages = t
		}
	}
}

// WithMinPasswordLength overrides DefaultMinPasswordLength.
func WithMinPasswordLength(n int) CoordinatorOption {
	return func(c *Coordinator) {
		if n > 0 {
			c.minPasswordLength = n
		}
	}
}

// WithLandingPath overrides DefaultLandingPath.
func WithLandingPath(path string) CoordinatorOption {
	return func(c *Coordinator) {
		if path != "" {
			c.landingPath = path
		}
	}
}

// WithPasswordResetRedirect sets the URL the reset email links back to.
func WithPasswordResetRedirect(url string) CoordinatorOption {
	return func(c *Coordinator) {
		c.resetRedirectURL = url
	}
}

// New creates a Coordinator. A missing gateway is reported as gateway.ErrUnavailable.
func New(deps Deps, options ...CoordinatorOption) (*Coordinator, error) {
	if deps.Gateway == nil {
		return nil, pkgerrors.Wrap(gateway.ErrUnavailable, "[session.New] Gateway is required")
	}
	if deps.Store == nil {
		return nil, errors.New("[session.New] Store is required")
	}

	c := &Coordinator{
		gateway:           deps.Gateway,
		store:             deps.Store,
		lockout:           deps.Lockout,
		audit:             deps.Audit,
		messages:          i18n.New(""),
		minPasswordLength: DefaultMinPasswordLength,
		landingPath:       DefaultLandingPath,
	}
	for _, opt := range options {
		opt(c)
	}

	if c.lockout == nil {
		tracker, err := lockout.New(deps.Store)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "[session.New] lockout.New")
		}
		c.lockout = tracker
	}
	if c.audit == nil {
		emitter, err := audit.NewEmitter(deps.Gateway, audit.DetectClientContext("sessionguard", "", c.messages.Language().String()))
		if err != nil {
			return nil, pkgerrors.Wrap(err, "[session.New] audit.NewEmitter")
		}
		c.audit = emitter
	}
	return c, nil
}

// Messages returns the translator used for result messages.
func (c *Coordinator) Messages() *i18n.Translator {
	return c.messages
}

// Login verifies credentials with the gateway and establishes a local session.
func (c *Coordinator) Login(ctx context.Context, email, password string) LoginResult {
	if email == "" || password == "" {
		return LoginResult{Result: failed(c.messages.T(i18n.MissingCredentials))}
	}
	if !validate.IsEmail(email) {
		return LoginResult{Result: failed(c.messages.T(i18n.InvalidEmail))}
	}
	email = validate.NormalizeEmail(email)

	if status := c.lockout.CheckLocked(); status.Locked {
		log.Info().Err(status.Err()).Msg("login refused before contacting the gateway")
		return c.lockedResult(status.RemainingTime)
	}

	session, err := c.gateway.SignIn(ctx, email, password)
	if err != nil {
		return c.loginRejected(ctx, email, err)
	}

	c.lockout.RecordAttempt(true)

	user, err := c.establish(ctx, session)
	if err != nil {
		log.Err(err).Str("identity_id", session.IdentityID).Msg("login could not be completed")
		c.store.Clear()
		c.audit.Emit(ctx, audit.LoginFailed, session.IdentityID, map[string]any{
			"email":  email,
			"reason": audit.ReasonUnexpected,
		})
		return LoginResult{Result: failed(c.messages.T(i18n.LoginUnexpected))}
	}

	c.audit.Emit(ctx, audit.LoginSuccess, user.ID, map[string]any{"email": user.Email})

	redirectTo, ok := c.store.TakeIntendedDestination()
	if !ok {
		redirectTo = c.landingPath
	}

	return LoginResult{
		Result:     succeeded(c.messages.T(i18n.WelcomeUser, displayName(user))),
		User:       user,
		RedirectTo: redirectTo,
	}
}

func (c *Coordinator) loginRejected(ctx context.Context, email string, err error) LoginResult {
	// A cancelled caller is not a credential attempt.
	if errors.Is(err, context.Canceled) {
		log.Debug().Msg("login cancelled")
		return LoginResult{Result: failed(c.messages.T(i18n.LoginUnexpected))}
	}
	if !errors.Is(err, gateway.ErrInvalidCredentials) {
		log.Err(err).Msg("sign-in failed")
	}

	decision := c.lockout.RecordAttempt(false)
	reason := audit.ReasonInvalidCredentials
	if decision.Locked {
		reason = audit.ReasonLockedOut
	}
	c.audit.Emit(ctx, audit.LoginFailed, "", map[string]any{"email": email, "reason": reason})

	if decision.Locked {
		return c.lockedResult(decision.RemainingTime)
	}
	message := c.messages.T(i18n.InvalidCredentials, decision.AttemptsLeft)
	if errors.Is(err, gateway.ErrUnavailable) {
		message = c.messages.T(i18n.ServiceUnavailable)
	}
	return LoginResult{
		Result:       failed(message),
		AttemptsLeft: decision.AttemptsLeft,
	}
}

func (c *Coordinator) lockedResult(remaining time.Duration) LoginResult {
	return LoginResult{
		Result:     failed(c.messages.T(i18n.LockedOut, minutesCeil(remaining))),
		Locked:     true,
		RetryAfter: remaining,
	}
}

// establish loads the profile and persists the session. A missing profile row
// yields the lowest-privilege role.
func (c *Coordinator) establish(ctx context.Context, session *gateway.Session) (*localstore.Profile, error) {
	if session == nil || session.Token == "" || session.IdentityID == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInternal, "[Coordinator.establish] gateway returned an incomplete session")
	}

	profile := localstore.Profile{
		ID:    session.IdentityID,
		Email: session.IdentityEmail,
		Role:  roles.Default,
	}
	row, err := c.gateway.FetchProfileRow(ctx, session.IdentityID)
	if err != nil {
		log.Warn().Err(err).Str("identity_id", session.IdentityID).Msg("profile lookup failed, using default role")
	} else {
		profile.Role = roles.Parse(string(row.Role))
		profile.FullName = row.FullName
		profile.EmployeeCode = row.EmployeeCode
		if row.Email != "" {
			profile.Email = row.Email
		}
	}

	if !c.store.Save(session.Token) {
		return nil, apperrors.Wrapf(apperrors.ErrInternal, "[Coordinator.establish] session token not persisted")
	}
	if !c.store.SaveProfile(profile) {
		return nil, apperrors.Wrapf(apperrors.ErrInternal, "[Coordinator.establish] profile for %s not persisted", profile.ID)
	}
	return &profile, nil
}

// Register creates an account. It does not sign the user in.
func (c *Coordinator) Register(ctx context.Context, in RegisterInput) RegisterResult {
	v := validate.New().
		Required("email", in.Email).
		Required("password", in.Password).
		Required("fullName", in.FullName).
		Email("email", in.Email).
		MinLen("password", in.Password, c.minPasswordLength)
	if fe, invalid := v.First(); invalid {
		log.Debug().Err(v.Err()).Msg("registration input rejected")
		return RegisterResult{Result: failed(c.validationMessage(fe, i18n.MissingRegistration))}
	}
	email := validate.NormalizeEmail(in.Email)

	identityID, err := c.gateway.SignUp(ctx, email, in.Password)
	if err != nil {
		if errors.Is(err, gateway.ErrDuplicateEmail) {
			return RegisterResult{Result: failed(c.messages.T(i18n.DuplicateEmail))}
		}
		log.Err(err).Msg("sign-up failed")
		return RegisterResult{Result: failed(c.gatewayFailure(err, i18n.RegisterFailed))}
	}

	row := gateway.ProfileRow{
		ID:           identityID,
		Email:        email,
		Role:         roles.Default,
		FullName:     in.FullName,
		EmployeeCode: in.EmployeeCode,
	}
	if err := c.gateway.InsertProfileRow(ctx, row); err != nil {
		log.Warn().Err(err).Str("identity_id", identityID).Msg("profile row not created")
	}

	c.audit.Emit(ctx, audit.UserRegistered, identityID, map[string]any{
		"email":    email,
		"fullName": in.FullName,
	})

	return RegisterResult{
		Result:                    succeeded(c.messages.T(i18n.RegisterSuccess)),
		UserID:                    identityID,
		RequiresEmailVerification: true,
	}
}

// Logout signs out at the gateway and clears local state. It always succeeds.
// Clearing local state also resets the failed-attempt count and any lockout
// deadline, since both live in the same store.
func (c *Coordinator) Logout(ctx context.Context) Result {
	user := c.store.LoadProfile()

	if err := c.gateway.SignOut(ctx); err != nil {
		log.Warn().Err(err).Msg("gateway sign-out failed")
	}
	if user != nil {
		c.audit.Emit(ctx, audit.Logout, user.ID, nil)
	}

	c.store.Clear()
	return succeeded(c.messages.T(i18n.LoggedOut))
}

// IsAuthenticated reports whether a local session exists and the gateway still
// recognises its identity. Any doubt clears local state.
func (c *Coordinator) IsAuthenticated(ctx context.Context) bool {
	if _, ok := c.store.Load(); !ok {
		return false
	}

	identity, err := c.gateway.CurrentIdentity(ctx)
	if err != nil || identity == nil {
		if err != nil {
			log.Warn().Err(err).Msg("identity check failed, clearing session")
		}
		c.store.Clear()
		return false
	}
	return true
}

// RefreshSession exchanges the session for a fresh token. Concurrent callers share
// one gateway call.
func (c *Coordinator) RefreshSession(ctx context.Context) bool {
	v, _, _ := c.refreshGroup.Do(refreshKey, func() (any, error) {
		session, err := c.gateway.RefreshToken(ctx)
		if err != nil || session == nil || session.Token == "" {
			if err != nil {
				log.Warn().Err(err).Msg("session refresh failed, clearing session")
			}
			c.store.Clear()
			return false, nil
		}
		if !c.store.Save(session.Token) {
			c.store.Clear()
			return false, nil
		}
		return true, nil
	})
	return v.(bool)
}

// RequestPasswordReset asks the gateway to email a reset link.
func (c *Coordinator) RequestPasswordReset(ctx context.Context, email string) Result {
	if email == "" {
		return failed(c.messages.T(i18n.MissingCredentials))
	}
	if !validate.IsEmail(email) {
		return failed(c.messages.T(i18n.InvalidEmail))
	}
	email = validate.NormalizeEmail(email)

	if err := c.gateway.RequestPasswordReset(ctx, email, c.resetRedirectURL); err != nil {
		log.Err(err).Msg("password reset request failed")
		return failed(c.gatewayFailure(err, i18n.ResetFailed))
	}

	c.audit.Emit(ctx, audit.PasswordResetRequested, "", map[string]any{"email": email})
	return succeeded(c.messages.T(i18n.ResetEmailSent))
}

// UpdatePassword changes the signed-in user's password.
func (c *Coordinator) UpdatePassword(ctx context.Context, newPassword string) Result {
	v := validate.New().MinLen("password", newPassword, c.minPasswordLength)
	if fe, invalid := v.First(); invalid {
		return failed(c.validationMessage(fe, i18n.PasswordTooShort))
	}

	if err := c.gateway.UpdatePassword(ctx, newPassword); err != nil {
		if errors.Is(err, gateway.ErrNoSession) || errors.Is(err, gateway.ErrSessionExpired) {
			c.store.Clear()
			return failed(c.messages.T(i18n.SessionExpired))
		}
		log.Err(err).Msg("password update failed")
		return failed(c.gatewayFailure(err, i18n.PasswordUpdateFailed))
	}

	identityID := ""
	if user := c.store.LoadProfile(); user != nil {
		identityID = user.ID
	}
	c.audit.Emit(ctx, audit.PasswordUpdated, identityID, nil)
	return succeeded(c.messages.T(i18n.PasswordUpdated))
}

// CurrentUser returns the cached profile while a local session exists.
func (c *Coordinator) CurrentUser() *localstore.Profile {
	if _, ok := c.store.Load(); !ok {
		return nil
	}
	return c.store.LoadProfile()
}

func (c *Coordinator) validationMessage(fe validate.FieldError, required i18n.Key) string {
	switch fe.Code {
	case validate.CodeEmail:
		return c.messages.T(i18n.InvalidEmail)
	case validate.CodeMinLen:
		return c.messages.T(i18n.PasswordTooShort, fe.Min)
	default:
		return c.messages.T(required)
	}
}

// gatewayFailure picks the message for a gateway error: an unavailable capability
// has its own message, anything else gets fallback.
func (c *Coordinator) gatewayFailure(err error, fallback i18n.Key) string {
	if errors.Is(err, gateway.ErrUnavailable) {
		return c.messages.T(i18n.ServiceUnavailable)
	}
	return c.messages.T(fallback)
}

func minutesCeil(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Minutes()))
}

func displayName(p *localstore.Profile) string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.Email
}
