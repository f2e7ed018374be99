package oidcidp_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-session-guard/gateway"
	"github.com/jrsteele09/go-session-guard/gateway/oidcidp"
	"github.com/jrsteele09/go-session-guard/localstore"
	"github.com/jrsteele09/go-session-guard/localstore/memmedium"
)

type fakeUser struct {
	id       string
	password string
}

// fakeIdP is a minimal OpenID provider with a password grant and account endpoints.
type fakeIdP struct {
	server        *httptest.Server
	mu            sync.Mutex
	users         map[string]*fakeUser
	accessTokens  map[string]string // token -> email
	refreshTokens map[string]string // token -> email
	revoked       []string
	resets        []string
	seq           int
}

func newFakeIdP(t *testing.T) *fakeIdP {
	t.Helper()
	idp := &fakeIdP{
		users:         map[string]*fakeUser{"ana@firma.ro": {id: "id-ana", password: "parola-sigura"}},
		accessTokens:  make(map[string]string),
		refreshTokens: make(map[string]string),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", idp.discovery)
	mux.HandleFunc("/token", idp.token)
	mux.HandleFunc("/userinfo", idp.userinfo)
	mux.HandleFunc("/revoke", idp.revoke)
	mux.HandleFunc("/accounts/signup", idp.signup)
	mux.HandleFunc("/accounts/recover", idp.recover)
	mux.HandleFunc("/accounts/user", idp.updateUser)
	idp.server = httptest.NewServer(mux)
	t.Cleanup(idp.server.Close)
	return idp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (idp *fakeIdP) discovery(w http.ResponseWriter, r *http.Request) {
	base := idp.server.URL
	writeJSON(w, http.StatusOK, map[string]any{
		"issuer":                                base,
		"authorization_endpoint":                base + "/authorize",
		"token_endpoint":                        base + "/token",
		"userinfo_endpoint":                     base + "/userinfo",
		"jwks_uri":                              base + "/jwks",
		"revocation_endpoint":                   base + "/revoke",
		"id_token_signing_alg_values_supported": []string{"RS256"},
	})
}

func (idp *fakeIdP) issue(email string) map[string]any {
	idp.seq++
	user := idp.users[email]
	access, _ := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"sub":   user.id,
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
		"jti":   fmt.Sprintf("at-%d", idp.seq),
	}).SignedString([]byte("fake-idp-secret"))
	refresh := fmt.Sprintf("rt-%d", idp.seq)
	idp.accessTokens[access] = email
	idp.refreshTokens[refresh] = email
	return map[string]any{
		"access_token":  access,
		"refresh_token": refresh,
		"token_type":    "Bearer",
		"expires_in":    3600,
	}
}

func (idp *fakeIdP) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})
		return
	}
	idp.mu.Lock()
	defer idp.mu.Unlock()

	switch r.PostForm.Get("grant_type") {
	case "password":
		email := r.PostForm.Get("username")
		user, ok := idp.users[email]
		if !ok || user.password != r.PostForm.Get("password") {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})
			return
		}
		writeJSON(w, http.StatusOK, idp.issue(email))
	case "refresh_token":
		email, ok := idp.refreshTokens[r.PostForm.Get("refresh_token")]
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})
			return
		}
		delete(idp.refreshTokens, r.PostForm.Get("refresh_token"))
		writeJSON(w, http.StatusOK, idp.issue(email))
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported_grant_type"})
	}
}

func (idp *fakeIdP) bearerEmail(r *http.Request) (string, bool) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	idp.mu.Lock()
	defer idp.mu.Unlock()
	email, ok := idp.accessTokens[token]
	return email, ok
}

func (idp *fakeIdP) userinfo(w http.ResponseWriter, r *http.Request) {
	email, ok := idp.bearerEmail(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	idp.mu.Lock()
	id := idp.users[email].id
	idp.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"sub": id, "email": email, "email_verified": true})
}

func (idp *fakeIdP) revoke(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	token := r.PostForm.Get("token")
	idp.mu.Lock()
	defer idp.mu.Unlock()
	idp.revoked = append(idp.revoked, r.PostForm.Get("token_type_hint"))
	delete(idp.accessTokens, token)
	delete(idp.refreshTokens, token)
	w.WriteHeader(http.StatusOK)
}

func (idp *fakeIdP) signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	idp.mu.Lock()
	defer idp.mu.Unlock()
	if _, exists := idp.users[req.Email]; exists {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "user_already_exists"})
		return
	}
	id := fmt.Sprintf("id-%d", len(idp.users)+1)
	idp.users[req.Email] = &fakeUser{id: id, password: req.Password}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (idp *fakeIdP) recover(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	idp.mu.Lock()
	idp.resets = append(idp.resets, req.Email)
	idp.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{})
}

func (idp *fakeIdP) updateUser(w http.ResponseWriter, r *http.Request) {
	email, ok := idp.bearerEmail(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not_authenticated"})
		return
	}
	var req struct {
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	idp.mu.Lock()
	idp.users[email].password = req.Password
	idp.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{})
}

type testFixture struct {
	idp      *fakeIdP
	store    *localstore.Store
	provider *oidcidp.Provider
}

func setupTestFixture(t *testing.T, withAccounts bool) *testFixture {
	t.Helper()
	idp := newFakeIdP(t)

	store, err := localstore.New(memmedium.New())
	require.NoError(t, err)

	cfg := oidcidp.Config{
		IssuerURL:    idp.server.URL,
		ClientID:     "sessionctl",
		ClientSecret: "secret",
		HTTPClient:   idp.server.Client(),
	}
	if withAccounts {
		cfg.AccountAPIURL = idp.server.URL + "/accounts"
	}
	provider, err := oidcidp.NewProvider(context.Background(), cfg, store)
	require.NoError(t, err)

	return &testFixture{idp: idp, store: store, provider: provider}
}

func TestNewProvider_Validation(t *testing.T) {
	store, err := localstore.New(memmedium.New())
	require.NoError(t, err)

	_, err = oidcidp.NewProvider(context.Background(), oidcidp.Config{ClientID: "c"}, store)
	require.Error(t, err)
	_, err = oidcidp.NewProvider(context.Background(), oidcidp.Config{IssuerURL: "http://x"}, store)
	require.Error(t, err)
	_, err = oidcidp.NewProvider(context.Background(), oidcidp.Config{IssuerURL: "http://x", ClientID: "c"}, nil)
	require.Error(t, err)
}

func TestProvider_SignIn(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		f := setupTestFixture(t, false)
		session, err := f.provider.SignIn(ctx, "ana@firma.ro", "parola-sigura")
		require.NoError(t, err)
		require.Equal(t, "id-ana", session.IdentityID)
		require.Equal(t, "ana@firma.ro", session.IdentityEmail)
		require.NotEmpty(t, session.RefreshToken)

		_, cached := f.store.LoadProviderToken()
		require.True(t, cached)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := setupTestFixture(t, false)
		_, err := f.provider.SignIn(ctx, "ana@firma.ro", "gresit")
		require.ErrorIs(t, err, gateway.ErrInvalidCredentials)

		_, cached := f.store.LoadProviderToken()
		require.False(t, cached)
	})
}

func TestProvider_CurrentIdentity(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t, false)

	identity, err := f.provider.CurrentIdentity(ctx)
	require.NoError(t, err)
	require.Nil(t, identity)

	_, err = f.provider.SignIn(ctx, "ana@firma.ro", "parola-sigura")
	require.NoError(t, err)

	identity, err = f.provider.CurrentIdentity(ctx)
	require.NoError(t, err)
	require.Equal(t, &gateway.Identity{ID: "id-ana", Email: "ana@firma.ro"}, identity)
}

func TestProvider_RefreshToken(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t, false)

	_, err := f.provider.RefreshToken(ctx)
	require.ErrorIs(t, err, gateway.ErrNoSession)

	first, err := f.provider.SignIn(ctx, "ana@firma.ro", "parola-sigura")
	require.NoError(t, err)

	refreshed, err := f.provider.RefreshToken(ctx)
	require.NoError(t, err)
	require.NotEqual(t, first.Token, refreshed.Token)
	require.Equal(t, "id-ana", refreshed.IdentityID)
}

func TestProvider_SignOutRevokesAndForgets(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t, false)

	require.NoError(t, f.provider.SignOut(ctx))

	_, err := f.provider.SignIn(ctx, "ana@firma.ro", "parola-sigura")
	require.NoError(t, err)
	require.NoError(t, f.provider.SignOut(ctx))

	require.ElementsMatch(t, []string{"refresh_token", "access_token"}, f.idp.revoked)
	_, cached := f.store.LoadProviderToken()
	require.False(t, cached)

	identity, err := f.provider.CurrentIdentity(ctx)
	require.NoError(t, err)
	require.Nil(t, identity)
}

func TestProvider_AccountAPI(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t, true)

	id, err := f.provider.SignUp(ctx, "ion@firma.ro", "parola-noua-1")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	_, err = f.provider.SignUp(ctx, "ion@firma.ro", "altceva-123")
	require.ErrorIs(t, err, gateway.ErrDuplicateEmail)

	require.NoError(t, f.provider.RequestPasswordReset(ctx, "ion@firma.ro", "https://app/reset"))
	require.Equal(t, []string{"ion@firma.ro"}, f.idp.resets)

	require.ErrorIs(t, f.provider.UpdatePassword(ctx, "parola-schimbata"), gateway.ErrNoSession)

	_, err = f.provider.SignIn(ctx, "ion@firma.ro", "parola-noua-1")
	require.NoError(t, err)
	require.NoError(t, f.provider.UpdatePassword(ctx, "parola-schimbata"))

	_, err = f.provider.SignIn(ctx, "ion@firma.ro", "parola-schimbata")
	require.NoError(t, err)
}

func TestProvider_AccountAPIUnavailable(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t, false)

	_, err := f.provider.SignUp(ctx, "ion@firma.ro", "parola-noua-1")
	require.ErrorIs(t, err, gateway.ErrUnavailable)
	require.ErrorIs(t, f.provider.RequestPasswordReset(ctx, "ion@firma.ro", ""), gateway.ErrUnavailable)
	require.ErrorIs(t, f.provider.UpdatePassword(ctx, "parola-noua-1"), gateway.ErrUnavailable)
}
