package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	authdomain "github.com/smallbiznis/dashboard/internal/auth/domain"
	"github.com/smallbiznis/dashboard/internal/auth/password"
	"github.com/smallbiznis/dashboard/internal/auth/repository"
	"github.com/smallbiznis/dashboard/internal/clock"
	"github.com/smallbiznis/dashboard/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestService(t *testing.T) (authdomain.Service, *clock.FakeClock) {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(&authdomain.User{}, &authdomain.Session{}))

	repo, sessionRepo := repository.New(dbConn)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	return New(zaptest.NewLogger(t), repo, sessionRepo, node, clk), clk
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.CreateUser(context.Background(), authdomain.CreateUserRequest{
		Email:    "alice@example.com",
		Password: "correct-password",
	})
	require.NoError(t, err)
	require.NotNil(t, user)

	_, err = svc.Login(context.Background(), authdomain.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, authdomain.ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Login(context.Background(), authdomain.LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, authdomain.ErrInvalidCredentials)
}

func TestCreateUserLocalExternalIDUUID(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.CreateUser(context.Background(), authdomain.CreateUserRequest{
		Email:    "Bob@Example.com",
		Password: "strong-password",
	})
	require.NoError(t, err)
	assert.Equal(t, authdomain.ProviderLocal, user.Provider)
	assert.Equal(t, "bob@example.com", user.Email)
	assert.Equal(t, "bob", user.DisplayName)
	_, err = uuid.Parse(user.ExternalID)
	assert.NoError(t, err)

	_, err = svc.CreateUser(context.Background(), authdomain.CreateUserRequest{
		Email:    "bob@example.com",
		Password: "another-password",
	})
	assert.ErrorIs(t, err, authdomain.ErrUserExists)
}

func TestLoginAuthenticateLogout(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, authdomain.CreateUserRequest{
		Email:       "user@nextmail.com",
		Password:    "123456",
		DisplayName: "User",
	})
	require.NoError(t, err)

	result, err := svc.Login(ctx, authdomain.LoginRequest{
		Email:    "user@nextmail.com",
		Password: "123456",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.RawToken)
	assert.Equal(t, clk.Now().Add(sessionTTL), result.ExpiresAt)
	assert.NotEqual(t, result.RawToken, result.Session.SessionTokenHash)

	session, err := svc.Authenticate(ctx, result.RawToken)
	require.NoError(t, err)
	require.NotNil(t, session.User)
	assert.Equal(t, "User", session.User.DisplayName)

	require.NoError(t, svc.Logout(ctx, result.RawToken))
	_, err = svc.Authenticate(ctx, result.RawToken)
	assert.ErrorIs(t, err, authdomain.ErrSessionRevoked)

	assert.NoError(t, svc.Logout(ctx, result.RawToken))
}

func TestAuthenticateExpired(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, authdomain.CreateUserRequest{Email: "a@b.com", Password: "123456"})
	require.NoError(t, err)
	result, err := svc.Login(ctx, authdomain.LoginRequest{Email: "a@b.com", Password: "123456"})
	require.NoError(t, err)

	clk.Advance(sessionTTL + time.Minute)
	_, err = svc.Authenticate(ctx, result.RawToken)
	assert.ErrorIs(t, err, authdomain.ErrSessionExpired)

	_, err = svc.Authenticate(ctx, "unknown-token")
	assert.ErrorIs(t, err, authdomain.ErrInvalidSession)
	_, err = svc.Authenticate(ctx, "  ")
	assert.ErrorIs(t, err, authdomain.ErrInvalidSession)
}

func TestLoginWithIdentity(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	req := authdomain.IdentityLoginRequest{
		Provider:    "github",
		ExternalID:  "4242",
		Email:       "octo@example.com",
		DisplayName: "Octo",
	}

	_, err := svc.LoginWithIdentity(ctx, req)
	assert.ErrorIs(t, err, authdomain.ErrSignUpDisabled)

	req.AllowSignUp = true
	first, err := svc.LoginWithIdentity(ctx, req)
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, "github", first.Session.Provider)

	req.AllowSignUp = false
	req.DisplayName = "Octocat"
	second, err := svc.LoginWithIdentity(ctx, req)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Session.UserID, second.Session.UserID)
	assert.Equal(t, "Octocat", second.Session.User.DisplayName)
}

func TestLoginWithIdentityRejectsLocalProvider(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.LoginWithIdentity(context.Background(), authdomain.IdentityLoginRequest{
		Provider:    authdomain.ProviderLocal,
		ExternalID:  "x",
		Email:       "x@example.com",
		AllowSignUp: true,
	})
	assert.ErrorIs(t, err, authdomain.ErrInvalidCredentials)
}

func TestLoginUpgradesWeakPasswordHash(t *testing.T) {
	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(&authdomain.User{}, &authdomain.Session{}))
	repo, sessionRepo := repository.New(dbConn)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	svc := New(zaptest.NewLogger(t), repo, sessionRepo, node, clock.NewFakeClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)))

	current := password.Current
	password.Current = password.Params{Memory: 8 * 1024, Time: 1, Threads: 1, KeyLen: 32}
	user, err := svc.CreateUser(context.Background(), authdomain.CreateUserRequest{
		Email:    "carol@example.com",
		Password: "legacy-password",
	})
	password.Current = current
	require.NoError(t, err)
	require.NotNil(t, user.PasswordHash)
	weak := *user.PasswordHash
	require.True(t, password.NeedsRehash(weak))

	_, err = svc.Login(context.Background(), authdomain.LoginRequest{
		Email:    "carol@example.com",
		Password: "legacy-password",
	})
	require.NoError(t, err)

	stored, err := repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PasswordHash)
	assert.NotEqual(t, weak, *stored.PasswordHash)
	assert.False(t, password.NeedsRehash(*stored.PasswordHash))
	assert.True(t, password.Verify("legacy-password", *stored.PasswordHash))
}
