// Package guard gates pages and actions on the local session. The checks are
// advisory: the cached role can be edited by anyone with access to the local store,
// so the backend must enforce its own authorization.
package guard

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-session-guard/internal/i18n"
	"github.com/jrsteele09/go-session-guard/localstore"
	"github.com/jrsteele09/go-session-guard/roles"
)

const (
	DefaultLoginPath   = "/login"
	DefaultLandingPath = "/dashboard"
)

// Navigator moves the user between pages.
type Navigator interface {
	CurrentLocation() string
	Redirect(location string)
}

// Notifier shows a message to the user.
type Notifier interface {
	Warn(message string)
}

// Authenticator answers whether the user is signed in. session.Coordinator satisfies it.
type Authenticator interface {
	IsAuthenticated(ctx context.Context) bool
	CurrentUser() *localstore.Profile
}

// ProfileStore is the part of localstore.Store the guard reads and writes.
type ProfileStore interface {
	LoadProfile() *localstore.Profile
	SaveIntendedDestination(location string) bool
}

// Guard protects pages and capabilities.
type Guard struct {
	auth        Authenticator
	store       ProfileStore
	navigator   Navigator
	notifier    Notifier
	table       *roles.Table
	messages    *i18n.Translator
	loginPath   string
	landingPath string
}

// GuardOption defines a function type to modify the Guard instance.
type GuardOption func(*Guard)

// WithLoginPath sets where unauthenticated users are sent.
func WithLoginPath(path string) GuardOption {
	return func(g *Guard) {
		if path != "" {
			g.loginPath = path
		}
	}
}

// WithLandingPath sets where users with the wrong role are sent.
func WithLandingPath(path string) GuardOption {
	return func(g *Guard) {
		if path != "" {
			g.landingPath = path
		}
	}
}

// WithTable replaces the default permission table.
func WithTable(table *roles.Table) GuardOption {
	return func(g *Guard) {
		if table != nil {
			g.table = table
		}
	}
}

// WithTranslator sets the language of warnings.
func WithTranslator(t *i18n.Translator) GuardOption {
	return func(g *Guard) {
		if t != nil {
			g.messages = t
		}
	}
}

// New creates a Guard.
func New(auth Authenticator, store ProfileStore, navigator Navigator, notifier Notifier, options ...GuardOption) (*Guard, error) {
	if auth == nil {
		return nil, errors.New("[guard.New] authenticator is required")
	}
	if store == nil {
		return nil, errors.New("[guard.New] store is required")
	}
	if navigator == nil {
		return nil, errors.New("[guard.New] navigator is required")
	}
	if notifier == nil {
		return nil, errors.New("[guard.New] notifier is required")
	}

	g := &Guard{
		auth:        auth,
		store:       store,
		navigator:   navigator,
		notifier:    notifier,
		table:       roles.DefaultTable(),
		messages:    i18n.New(""),
		loginPath:   DefaultLoginPath,
		landingPath: DefaultLandingPath,
	}
	for _, opt := range options {
		opt(g)
	}
	return g, nil
}

// ProtectPage reports whether the current page may be shown. An unauthenticated
// user is told to sign in and sent to the login page with the current location
// remembered. When requiredRole is set the cached role must equal it exactly;
// ranks are not compared.
func (g *Guard) ProtectPage(ctx context.Context, requiredRole roles.Role) bool {
	if !g.auth.IsAuthenticated(ctx) {
		location := g.navigator.CurrentLocation()
		if location != "" && location != g.loginPath {
			g.store.SaveIntendedDestination(location)
			g.notifier.Warn(g.messages.T(i18n.LoginRequiredRedirect))
		}
		g.navigator.Redirect(g.loginPath)
		return false
	}

	if requiredRole == "" {
		return true
	}

	profile := g.store.LoadProfile()
	if profile == nil || profile.Role != requiredRole {
		role := roles.Role("")
		if profile != nil {
			role = profile.Role
		}
		log.Info().Str("required_role", string(requiredRole)).Str("role", string(role)).Msg("page access denied")
		g.notifier.Warn(g.messages.T(i18n.AccessDenied))
		g.navigator.Redirect(g.landingPath)
		return false
	}
	return true
}

// Can reports whether the signed-in user's cached role grants capability.
func (g *Guard) Can(capability roles.Capability) bool {
	profile := g.auth.CurrentUser()
	if profile == nil {
		return false
	}
	return g.table.HasPermission(profile.Role, capability)
}
