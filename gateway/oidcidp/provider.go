// Package oidcidp implements gateway.IdentityProvider against an OpenID Connect
// provider using the resource owner password grant, plus a small account API for
// sign-up and password management.
package oidcidp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-session-guard/gateway"
)

var _ gateway.IdentityProvider = (*Provider)(nil)

// TokenCache persists the provider token between process runs. localstore.Store
// satisfies it.
type TokenCache interface {
	SaveProviderToken(raw string) bool
	LoadProviderToken() (string, bool)
	ClearProviderToken()
}

// Config holds the provider connection settings.
type Config struct {
	IssuerURL     string
	ClientID      string
	ClientSecret  string
	Scopes        []string
	AccountAPIURL string       // base URL of the signup/recover/user endpoints
	HTTPClient    *http.Client // Optional, defaults to a client with a 30s timeout
}

// Provider talks to the identity provider. The current token lives in the TokenCache.
type Provider struct {
	oauth         *oauth2.Config
	oidcProvider  *oidc.Provider
	verifier      *oidc.IDTokenVerifier
	revocationURL string
	accounts      *accountClient
	httpClient    *http.Client
	cache         TokenCache
	tokenLock     sync.Mutex
}

// NewProvider performs discovery against cfg.IssuerURL.
func NewProvider(ctx context.Context, cfg Config, cache TokenCache) (*Provider, error) {
	if cfg.IssuerURL == "" {
		return nil, errors.New("[oidcidp.NewProvider] issuer URL is required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("[oidcidp.NewProvider] client ID is required")
	}
	if cache == nil {
		return nil, errors.New("[oidcidp.NewProvider] token cache is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	discoveryCtx := context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	op, err := oidc.NewProvider(discoveryCtx, strings.TrimSuffix(cfg.IssuerURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("[oidcidp.NewProvider] discovery: %w", err)
	}

	var extra struct {
		RevocationEndpoint string `json:"revocation_endpoint"`
	}
	if err := op.Claims(&extra); err != nil {
		return nil, fmt.Errorf("[oidcidp.NewProvider] discovery claims: %w", err)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "profile", "email", oidc.ScopeOfflineAccess}
	}

	p := &Provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     op.Endpoint(),
			Scopes:       scopes,
		},
		oidcProvider:  op,
		verifier:      op.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		revocationURL: extra.RevocationEndpoint,
		httpClient:    httpClient,
		cache:         cache,
	}
	if cfg.AccountAPIURL != "" {
		p.accounts = &accountClient{baseURL: strings.TrimSuffix(cfg.AccountAPIURL, "/"), httpClient: httpClient}
	}
	return p, nil
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (*gateway.Session, error) {
	tok, err := p.oauth.PasswordCredentialsToken(p.clientContext(ctx), email, password)
	if err != nil {
		return nil, mapTokenError(err)
	}

	identity, err := p.identityFromToken(ctx, tok)
	if err != nil {
		return nil, err
	}

	p.tokenLock.Lock()
	defer p.tokenLock.Unlock()
	if err := p.storeToken(tok); err != nil {
		return nil, err
	}
	return sessionFromToken(tok, identity), nil
}

func (p *Provider) SignUp(ctx context.Context, email, password string) (string, error) {
	if p.accounts == nil {
		return "", fmt.Errorf("[Provider.SignUp] account API not configured: %w", gateway.ErrUnavailable)
	}
	return p.accounts.signUp(ctx, email, password)
}

// SignOut revokes the cached refresh and access tokens (RFC 7009) and forgets them.
// The cache is cleared even when revocation fails.
func (p *Provider) SignOut(ctx context.Context) error {
	p.tokenLock.Lock()
	defer p.tokenLock.Unlock()

	tok, ok := p.loadToken()
	p.cache.ClearProviderToken()
	if !ok || p.revocationURL == "" {
		return nil
	}

	var errs []error
	if tok.RefreshToken != "" {
		errs = append(errs, p.revoke(ctx, tok.RefreshToken, "refresh_token"))
	}
	if tok.AccessToken != "" {
		errs = append(errs, p.revoke(ctx, tok.AccessToken, "access_token"))
	}
	return errors.Join(errs...)
}

// CurrentIdentity asks the userinfo endpoint who the cached token belongs to.
func (p *Provider) CurrentIdentity(ctx context.Context) (*gateway.Identity, error) {
	p.tokenLock.Lock()
	defer p.tokenLock.Unlock()

	tok, ok := p.loadToken()
	if !ok {
		return nil, nil
	}

	src := p.oauth.TokenSource(p.clientContext(ctx), tok)
	current, err := src.Token()
	if err != nil {
		return nil, mapTokenError(err)
	}
	if current.AccessToken != tok.AccessToken {
		if err := p.storeToken(current); err != nil {
			log.Warn().Err(err).Msg("refreshed provider token not cached")
		}
	}

	info, err := p.oidcProvider.UserInfo(p.clientContext(ctx), oauth2.StaticTokenSource(current))
	if err != nil {
		return nil, fmt.Errorf("[Provider.CurrentIdentity] UserInfo: %w", err)
	}
	return &gateway.Identity{ID: info.Subject, Email: info.Email}, nil
}

// RefreshToken forces a refresh grant regardless of the cached expiry.
func (p *Provider) RefreshToken(ctx context.Context) (*gateway.Session, error) {
	p.tokenLock.Lock()
	defer p.tokenLock.Unlock()

	tok, ok := p.loadToken()
	if !ok || tok.RefreshToken == "" {
		return nil, gateway.ErrNoSession
	}

	stale := *tok
	stale.Expiry = time.Unix(1, 0)
	refreshed, err := p.oauth.TokenSource(p.clientContext(ctx), &stale).Token()
	if err != nil {
		return nil, mapTokenError(err)
	}

	identity, err := p.identityFromToken(ctx, refreshed)
	if err != nil {
		return nil, err
	}
	if err := p.storeToken(refreshed); err != nil {
		return nil, err
	}
	return sessionFromToken(refreshed, identity), nil
}

func (p *Provider) RequestPasswordReset(ctx context.Context, email, redirectURL string) error {
	if p.accounts == nil {
		return fmt.Errorf("[Provider.RequestPasswordReset] account API not configured: %w", gateway.ErrUnavailable)
	}
	return p.accounts.recoverPassword(ctx, email, redirectURL)
}

func (p *Provider) UpdatePassword(ctx context.Context, newPassword string) error {
	if p.accounts == nil {
		return fmt.Errorf("[Provider.UpdatePassword] account API not configured: %w", gateway.ErrUnavailable)
	}
	p.tokenLock.Lock()
	tok, ok := p.loadToken()
	p.tokenLock.Unlock()
	if !ok {
		return gateway.ErrNoSession
	}
	return p.accounts.updatePassword(ctx, tok.AccessToken, newPassword)
}

func (p *Provider) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
}

func (p *Provider) loadToken() (*oauth2.Token, bool) {
	raw, ok := p.cache.LoadProviderToken()
	if !ok || raw == "" {
		return nil, false
	}
	var tok oauth2.Token
	if err := json.Unmarshal([]byte(raw), &tok); err != nil {
		log.Warn().Err(err).Msg("discarding unreadable provider token")
		p.cache.ClearProviderToken()
		return nil, false
	}
	return &tok, true
}

func (p *Provider) storeToken(tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("[Provider.storeToken] marshal: %w", err)
	}
	if !p.cache.SaveProviderToken(string(data)) {
		return errors.New("[Provider.storeToken] token not persisted")
	}
	return nil
}

func (p *Provider) revoke(ctx context.Context, token, hint string) error {
	err := revokeToken(ctx, p.httpClient, p.revocationURL, p.oauth.ClientID, p.oauth.ClientSecret, token, hint)
	if err != nil {
		log.Err(err).Str("token_type", hint).Msg("Failed to revoke token")
	}
	return err
}

// tokenClaims is the subset of ID or access token claims used to identify the user.
type tokenClaims struct {
	Subject           string `json:"sub"`
	Email             string `json:"email"`
	PreferredUsername string `json:"preferred_username"`
}

// identityFromToken prefers a verified ID token, then the access token's claims,
// then the userinfo endpoint.
func (p *Provider) identityFromToken(ctx context.Context, tok *oauth2.Token) (gateway.Identity, error) {
	if rawID, ok := tok.Extra("id_token").(string); ok && rawID != "" {
		idTok, err := p.verifier.Verify(p.clientContext(ctx), rawID)
		if err != nil {
			return gateway.Identity{}, fmt.Errorf("[Provider.identityFromToken] verify id_token: %w", err)
		}
		var claims tokenClaims
		if err := idTok.Claims(&claims); err != nil {
			return gateway.Identity{}, fmt.Errorf("[Provider.identityFromToken] id_token claims: %w", err)
		}
		if claims.Subject != "" && claims.Email != "" {
			return gateway.Identity{ID: claims.Subject, Email: claims.Email}, nil
		}
	}

	// The access token is only read here; the provider has just issued it over TLS.
	if claims, ok := accessTokenClaims(tok.AccessToken); ok {
		return gateway.Identity{ID: claims.Subject, Email: firstNonEmpty(claims.Email, claims.PreferredUsername)}, nil
	}

	info, err := p.oidcProvider.UserInfo(p.clientContext(ctx), oauth2.StaticTokenSource(tok))
	if err != nil {
		return gateway.Identity{}, fmt.Errorf("[Provider.identityFromToken] UserInfo: %w", err)
	}
	return gateway.Identity{ID: info.Subject, Email: info.Email}, nil
}

func accessTokenClaims(raw string) (tokenClaims, bool) {
	claims := jwtlib.MapClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(raw, claims); err != nil {
		return tokenClaims{}, false
	}
	sub, _ := claims.GetSubject()
	email, _ := claims["email"].(string)
	username, _ := claims["preferred_username"].(string)
	if sub == "" || (email == "" && username == "") {
		return tokenClaims{}, false
	}
	return tokenClaims{Subject: sub, Email: email, PreferredUsername: username}, true
}

func sessionFromToken(tok *oauth2.Token, identity gateway.Identity) *gateway.Session {
	return &gateway.Session{
		Token:         tok.AccessToken,
		RefreshToken:  tok.RefreshToken,
		IdentityID:    identity.ID,
		IdentityEmail: identity.Email,
		ExpiresAt:     tok.Expiry,
	}
}

// mapTokenError turns a rejected grant into gateway.ErrInvalidCredentials.
func mapTokenError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		switch {
		case retrieveErr.ErrorCode == "invalid_grant",
			retrieveErr.ErrorCode == "unauthorized_client",
			retrieveErr.Response != nil && retrieveErr.Response.StatusCode == http.StatusUnauthorized:
			return fmt.Errorf("[oidcidp.mapTokenError] grant rejected: %w", gateway.ErrInvalidCredentials)
		}
	}
	return fmt.Errorf("[oidcidp.mapTokenError] token grant: %w", err)
}

// firstNonEmpty returns the first non-empty string from vals, or empty string if none.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
