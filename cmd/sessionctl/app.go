package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-session-guard/audit"
	"github.com/jrsteele09/go-session-guard/gateway"
	"github.com/jrsteele09/go-session-guard/gateway/fakegateway"
	"github.com/jrsteele09/go-session-guard/gateway/oidcidp"
	"github.com/jrsteele09/go-session-guard/gateway/pgstore"
	"github.com/jrsteele09/go-session-guard/guard"
	"github.com/jrsteele09/go-session-guard/internal/config"
	"github.com/jrsteele09/go-session-guard/internal/i18n"
	"github.com/jrsteele09/go-session-guard/localstore"
	"github.com/jrsteele09/go-session-guard/localstore/memmedium"
	"github.com/jrsteele09/go-session-guard/localstore/redismedium"
	"github.com/jrsteele09/go-session-guard/localstore/sqlitemedium"
	"github.com/jrsteele09/go-session-guard/lockout"
	"github.com/jrsteele09/go-session-guard/roles"
	"github.com/jrsteele09/go-session-guard/session"
)

const (
	demoEmail    = "admin@example.com"
	demoPassword = "parola-demo"
)

type app struct {
	cfg         config.Config
	out         io.Writer
	store       *localstore.Store
	coordinator *session.Coordinator
	guard       *guard.Guard
	navigator   *terminalNavigator
	closers     []func() error
}

// newApp opens the configured medium and gateway and assembles the session layer.
func newApp(ctx context.Context, cfg config.Config, out io.Writer) (*app, error) {
	var closers []func() error
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
	}

	medium, closeMedium, err := openMedium(ctx, cfg)
	if err != nil {
		return nil, err
	}
	closers = append(closers, closeMedium)

	store, err := localstore.New(medium, localstore.WithSessionTimeout(cfg.GetSessionTimeout()))
	if err != nil {
		closeAll()
		return nil, err
	}

	gw, closeGateway, err := openGateway(ctx, cfg, store)
	if err != nil {
		closeAll()
		return nil, err
	}
	closers = append(closers, closeGateway)

	a, err := assemble(cfg, store, gw, out)
	if err != nil {
		closeAll()
		return nil, err
	}
	a.closers = closers
	return a, nil
}

func assemble(cfg config.Config, store *localstore.Store, gw gateway.Gateway, out io.Writer) (*app, error) {
	messages := i18n.New(cfg.GetLanguage())

	tracker, err := lockout.New(store,
		lockout.WithMaxAttempts(cfg.GetMaxLoginAttempts()),
		lockout.WithLockoutDuration(cfg.GetLockoutDuration()),
	)
	if err != nil {
		return nil, err
	}

	emitter, err := audit.NewEmitter(gw, audit.DetectClientContext(cfg.GetAppName(), version, messages.Language().String()))
	if err != nil {
		return nil, err
	}

	coordinator, err := session.New(session.Deps{
		Gateway: gw,
		Store:   store,
		Lockout: tracker,
		Audit:   emitter,
	},
		session.WithTranslator(messages),
		session.WithMinPasswordLength(cfg.GetMinPasswordLength()),
		session.WithLandingPath(cfg.GetLandingPath()),
		session.WithPasswordResetRedirect(cfg.GetPasswordResetRedirectURL()),
	)
	if err != nil {
		return nil, err
	}

	navigator := &terminalNavigator{out: out}
	g, err := guard.New(coordinator, store, navigator, &terminalNotifier{out: out},
		guard.WithLoginPath(cfg.GetLoginPath()),
		guard.WithLandingPath(cfg.GetLandingPath()),
		guard.WithTranslator(messages),
	)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:         cfg,
		out:         out,
		store:       store,
		coordinator: coordinator,
		guard:       g,
		navigator:   navigator,
	}, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn().Err(err).Msg("close failed")
		}
	}
	a.closers = nil
}

func openMedium(ctx context.Context, cfg config.StoreConfig) (localstore.Medium, func() error, error) {
	noop := func() error { return nil }

	switch cfg.GetStoreDriver() {
	case config.StoreDriverMemory:
		return memmedium.New(), noop, nil
	case config.StoreDriverSQLite:
		m, err := sqlitemedium.Open(cfg.GetStorePath())
		if err != nil {
			return nil, nil, err
		}
		log.Debug().Str("path", cfg.GetStorePath()).Msg("using sqlite store")
		return m, m.Close, nil
	case config.StoreDriverRedis:
		client, err := redismedium.NewClient(ctx, cfg.GetRedisURL())
		if err != nil {
			return nil, nil, err
		}
		m, err := redismedium.New(client, cfg.GetStoreNamespace())
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return m, client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.GetStoreDriver())
	}
}

func openGateway(ctx context.Context, cfg config.GatewayConfig, store *localstore.Store) (gateway.Gateway, func() error, error) {
	switch cfg.GetGatewayMode() {
	case config.GatewayModeMock:
		return newDemoGateway(), func() error { return nil }, nil
	case config.GatewayModeOIDC:
		if err := pgstore.Migrate(cfg.GetDatabaseURL()); err != nil {
			return nil, nil, err
		}
		pool, err := pgstore.NewPool(ctx, cfg.GetDatabaseURL())
		if err != nil {
			return nil, nil, err
		}
		closePool := func() error {
			pool.Close()
			return nil
		}
		data, err := pgstore.New(pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		idp, err := oidcidp.NewProvider(ctx, oidcidp.Config{
			IssuerURL:     cfg.GetOIDCIssuerURL(),
			ClientID:      cfg.GetOIDCClientID(),
			ClientSecret:  cfg.GetOIDCClientSecret(),
			Scopes:        cfg.GetOIDCScopes(),
			AccountAPIURL: cfg.GetAccountAPIURL(),
		}, store)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		gw, err := gateway.New(idp, data)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return gw, closePool, nil
	default:
		return nil, nil, errors.New("unknown gateway mode " + cfg.GetGatewayMode())
	}
}

// newDemoGateway returns an in-process gateway seeded with one admin account.
// Its state lives only as long as the process.
func newDemoGateway() *fakegateway.Fake {
	fake := fakegateway.New()
	id, err := fake.AddAccount(demoEmail, demoPassword)
	if err != nil {
		log.Err(err).Msg("seed demo account")
		return fake
	}
	fake.PutProfile(gateway.ProfileRow{
		ID:       id,
		Email:    demoEmail,
		Role:     roles.Admin,
		FullName: "Demo Admin",
	})
	log.Info().Str("email", demoEmail).Msg("mock gateway seeded with demo account")
	return fake
}
