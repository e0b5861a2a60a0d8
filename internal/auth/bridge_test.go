package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	authconfig "github.com/smallbiznis/dashboard/internal/auth/config"
	"github.com/smallbiznis/dashboard/internal/auth/domain"
	"github.com/smallbiznis/dashboard/internal/auth/oauth"
	"github.com/smallbiznis/dashboard/internal/auth/repository"
	"github.com/smallbiznis/dashboard/internal/auth/service"
	"github.com/smallbiznis/dashboard/internal/authorization"
	"github.com/smallbiznis/dashboard/internal/clock"
	"github.com/smallbiznis/dashboard/internal/config"
	"github.com/smallbiznis/dashboard/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubOAuth struct {
	redirect *oauth.RedirectResult
	login    *oauth.LoginResult
	err      error
}

func (s *stubOAuth) RedirectURL(context.Context, string, oauth.RedirectRequest) (*oauth.RedirectResult, error) {
	return s.redirect, s.err
}

func (s *stubOAuth) Login(context.Context, string, oauth.LoginRequest) (*oauth.LoginResult, error) {
	return s.login, s.err
}

type bridgeFixture struct {
	bridge *Bridge
	svc    domain.Service
	authz  authorization.Service
	oauth  *stubOAuth
}

func newBridgeFixture(t *testing.T, cfg config.Config) bridgeFixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.User{}, &domain.Session{}))

	log := zaptest.NewLogger(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	repo, sessions := repository.New(conn)
	svc := service.New(log, repo, sessions, node, clock.SystemClock{})

	enforcer, err := authorization.NewEnforcer(conn)
	require.NoError(t, err)
	authz := authorization.NewService(authorization.Params{Log: log, Enforcer: enforcer})

	stub := &stubOAuth{}
	bridge := NewBridge(BridgeParams{
		Log:      log,
		Config:   cfg,
		Service:  svc,
		OAuth:    stub,
		Registry: authconfig.AuthProviderRegistry{},
		Authz:    authz,
	})
	return bridgeFixture{bridge: bridge, svc: svc, authz: authz, oauth: stub}
}

func TestSignInWithCredentials(t *testing.T) {
	f := newBridgeFixture(t, config.Config{})
	ctx := context.Background()

	_, err := f.svc.CreateUser(ctx, domain.CreateUserRequest{Email: "user@nextmail.com", Password: "123456"})
	require.NoError(t, err)

	result, err := f.bridge.SignInWithCredentials(ctx, CredentialsRequest{Email: "user@nextmail.com", Password: "123456"})
	require.NoError(t, err)

	session, err := f.bridge.CurrentSession(ctx, result.RawToken)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, result.Session.UserID, session.UserID)

	require.NoError(t, f.bridge.SignOut(ctx, result.RawToken))
	session, err = f.bridge.CurrentSession(ctx, result.RawToken)
	assert.NoError(t, err)
	assert.Nil(t, session)
}

func TestSignInWithCredentialsRejected(t *testing.T) {
	f := newBridgeFixture(t, config.Config{})

	_, err := f.bridge.SignInWithCredentials(context.Background(), CredentialsRequest{Email: "nobody@example.com", Password: "x"})
	authErr, ok := domain.AsAuthError(err)
	require.True(t, ok)
	assert.Equal(t, domain.CredentialsSignin, authErr.Type)
}

func TestSignInWithCredentialsCanceledContextIsNotAnAuthError(t *testing.T) {
	f := newBridgeFixture(t, config.Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.bridge.SignInWithCredentials(ctx, CredentialsRequest{Email: "user@example.com", Password: "123456"})
	require.Error(t, err)
	_, ok := domain.AsAuthError(err)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCurrentSessionEmptyToken(t *testing.T) {
	f := newBridgeFixture(t, config.Config{})

	session, err := f.bridge.CurrentSession(context.Background(), "")
	assert.NoError(t, err)
	assert.Nil(t, session)

	session, err = f.bridge.CurrentSession(context.Background(), "garbage")
	assert.NoError(t, err)
	assert.Nil(t, session)
}

func TestSignInWithProviderMapsErrors(t *testing.T) {
	f := newBridgeFixture(t, config.Config{})

	f.oauth.err = oauth.ErrProviderNotFound
	_, err := f.bridge.SignInWithProvider(context.Background(), "gitlab", "http://localhost/login/gitlab")
	authErr, ok := domain.AsAuthError(err)
	require.True(t, ok)
	assert.Equal(t, domain.OAuthSignin, authErr.Type)

	f.oauth.err = oauth.ErrInvalidProvider
	_, err = f.bridge.SignInWithProvider(context.Background(), "github", "http://localhost/login/github")
	authErr, ok = domain.AsAuthError(err)
	require.True(t, ok)
	assert.Equal(t, domain.Configuration, authErr.Type)

	f.oauth.err = nil
	f.oauth.redirect = &oauth.RedirectResult{URL: "https://github.com/login", State: "s", CodeVerifier: "v"}
	result, err := f.bridge.SignInWithProvider(context.Background(), "github", "http://localhost/login/github")
	require.NoError(t, err)
	assert.Equal(t, "s", result.State)
}

func TestCompleteProviderSignInAssignsSignUpRole(t *testing.T) {
	f := newBridgeFixture(t, config.Config{Bootstrap: config.BootstrapConfig{SignUpRole: "viewer"}})
	ctx := context.Background()

	f.oauth.login = &oauth.LoginResult{
		ProviderName: "github",
		AllowSignUp:  true,
		Identity:     oauth.Identity{ExternalID: "77", Email: "octo@example.com", DisplayName: "Octo"},
	}

	result, err := f.bridge.CompleteProviderSignIn(ctx, "GitHub", CallbackRequest{Code: "c"})
	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), result.ExpiresAt, time.Minute)

	roles, err := f.authz.RolesForUser(ctx, result.Session.UserID)
	require.NoError(t, err)
	assert.Equal(t, []string{authorization.RoleViewer}, roles)
}

func TestCompleteProviderSignInWithoutSignUp(t *testing.T) {
	f := newBridgeFixture(t, config.Config{})

	f.oauth.login = &oauth.LoginResult{
		ProviderName: "google",
		Identity:     oauth.Identity{ExternalID: "g-1", Email: "g@example.com"},
	}
	_, err := f.bridge.CompleteProviderSignIn(context.Background(), "google", CallbackRequest{Code: "c"})
	authErr, ok := domain.AsAuthError(err)
	require.True(t, ok)
	assert.Equal(t, domain.AccessDenied, authErr.Type)
}

func TestCompleteProviderSignInExchangeFailure(t *testing.T) {
	f := newBridgeFixture(t, config.Config{})

	f.oauth.err = errors.Join(oauth.ErrUnauthorized, errors.New("invalid_grant"))
	_, err := f.bridge.CompleteProviderSignIn(context.Background(), "github", CallbackRequest{Code: "bad"})
	authErr, ok := domain.AsAuthError(err)
	require.True(t, ok)
	assert.Equal(t, domain.OAuthCallbackError, authErr.Type)
}
