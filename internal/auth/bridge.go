package auth

import (
	"context"
	"errors"
	"strings"

	authconfig "github.com/smallbiznis/dashboard/internal/auth/config"
	"github.com/smallbiznis/dashboard/internal/auth/domain"
	"github.com/smallbiznis/dashboard/internal/auth/oauth"
	"github.com/smallbiznis/dashboard/internal/authorization"
	"github.com/smallbiznis/dashboard/internal/config"
	"github.com/smallbiznis/dashboard/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type BridgeParams struct {
	fx.In

	Log      *zap.Logger
	Config   config.Config
	Service  domain.Service
	OAuth    oauth.Service
	Registry authconfig.AuthProviderRegistry
	Authz    authorization.Service
	Metrics  *metrics.Metrics `optional:"true"`
}

// Bridge is the single entry point the HTTP layer uses to resolve and
// establish sessions, regardless of provider.
type Bridge struct {
	log      *zap.Logger
	cfg      config.Config
	svc      domain.Service
	oauth    oauth.Service
	registry authconfig.AuthProviderRegistry
	authz    authorization.Service
	metrics  *metrics.Metrics
}

type CredentialsRequest struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

type CallbackRequest struct {
	Code         string
	RedirectURI  string
	CodeVerifier string
	UserAgent    string
	IPAddress    string
}

func NewBridge(p BridgeParams) *Bridge {
	return &Bridge{
		log:      p.Log.Named("auth.bridge"),
		cfg:      p.Config,
		svc:      p.Service,
		oauth:    p.OAuth,
		registry: p.Registry,
		authz:    p.Authz,
		metrics:  p.Metrics,
	}
}

// CurrentSession resolves a session cookie. Unknown, expired and revoked
// tokens yield a nil session without error.
func (b *Bridge) CurrentSession(ctx context.Context, token string) (*domain.Session, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}
	session, err := b.svc.Authenticate(ctx, token)
	switch {
	case err == nil:
		return session, nil
	case errors.Is(err, domain.ErrInvalidSession),
		errors.Is(err, domain.ErrSessionExpired),
		errors.Is(err, domain.ErrSessionRevoked):
		return nil, nil
	default:
		return nil, err
	}
}

func (b *Bridge) SignInWithCredentials(ctx context.Context, req CredentialsRequest) (*domain.LoginResult, error) {
	result, err := b.svc.Login(ctx, domain.LoginRequest{
		Email:     req.Email,
		Password:  req.Password,
		UserAgent: req.UserAgent,
		IPAddress: req.IPAddress,
	})
	if err == nil {
		b.metrics.RecordSignIn(ctx, domain.ProviderLocal, "success")
		return result, nil
	}
	if isContextErr(err) {
		return nil, err
	}

	if errors.Is(err, domain.ErrInvalidCredentials) {
		b.metrics.RecordSignIn(ctx, domain.ProviderLocal, "rejected")
		return nil, domain.NewAuthError(domain.CredentialsSignin, err)
	}
	b.metrics.RecordSignIn(ctx, domain.ProviderLocal, "error")
	b.log.Error("credentials sign-in failed", zap.Error(err))
	return nil, domain.NewAuthError(domain.CallbackRouteError, err)
}

// SignInWithProvider starts an OAuth authorisation code flow.
func (b *Bridge) SignInWithProvider(ctx context.Context, provider string, redirectURI string) (*oauth.RedirectResult, error) {
	result, err := b.oauth.RedirectURL(ctx, provider, oauth.RedirectRequest{RedirectURI: redirectURI})
	if err == nil {
		return result, nil
	}
	switch {
	case errors.Is(err, oauth.ErrProviderNotFound), errors.Is(err, oauth.ErrInvalidRequest):
		return nil, domain.NewAuthError(domain.OAuthSignin, err)
	case errors.Is(err, oauth.ErrInvalidProvider):
		return nil, domain.NewAuthError(domain.Configuration, err)
	default:
		return nil, err
	}
}

// CompleteProviderSignIn finishes the flow started by SignInWithProvider and
// opens a session for the provider identity.
func (b *Bridge) CompleteProviderSignIn(ctx context.Context, provider string, req CallbackRequest) (*domain.LoginResult, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))

	identity, err := b.oauth.Login(ctx, provider, oauth.LoginRequest{
		Code:         req.Code,
		RedirectURI:  req.RedirectURI,
		CodeVerifier: req.CodeVerifier,
	})
	if err != nil {
		if isContextErr(err) {
			return nil, err
		}
		b.metrics.RecordSignIn(ctx, provider, "rejected")
		if errors.Is(err, oauth.ErrProviderNotFound) {
			return nil, domain.NewAuthError(domain.OAuthSignin, err)
		}
		return nil, domain.NewAuthError(domain.OAuthCallbackError, err)
	}

	result, err := b.svc.LoginWithIdentity(ctx, domain.IdentityLoginRequest{
		Provider:    identity.ProviderName,
		ExternalID:  identity.Identity.ExternalID,
		Email:       identity.Identity.Email,
		DisplayName: identity.Identity.DisplayName,
		AllowSignUp: identity.AllowSignUp || b.cfg.Bootstrap.AllowSignUp,
		UserAgent:   req.UserAgent,
		IPAddress:   req.IPAddress,
	})
	if err != nil {
		if isContextErr(err) {
			return nil, err
		}
		switch {
		case errors.Is(err, domain.ErrSignUpDisabled):
			b.metrics.RecordSignIn(ctx, provider, "rejected")
			return nil, domain.NewAuthError(domain.AccessDenied, err)
		case errors.Is(err, domain.ErrInvalidCredentials):
			b.metrics.RecordSignIn(ctx, provider, "rejected")
			return nil, domain.NewAuthError(domain.OAuthCallbackError, err)
		default:
			b.metrics.RecordSignIn(ctx, provider, "error")
			b.log.Error("provider sign-in failed", zap.String("provider", provider), zap.Error(err))
			return nil, domain.NewAuthError(domain.CallbackRouteError, err)
		}
	}

	if result.Created {
		if err := b.authz.AssignRole(ctx, result.Session.UserID, b.signUpRole()); err != nil {
			b.metrics.RecordSignIn(ctx, provider, "error")
			b.log.Error("assign sign-up role failed", zap.String("user_id", result.Session.UserID.String()), zap.Error(err))
			return nil, domain.NewAuthError(domain.CallbackRouteError, err)
		}
	}

	b.metrics.RecordSignIn(ctx, provider, "success")
	return result, nil
}

// SignOut revokes the session behind token. Unknown tokens are ignored.
func (b *Bridge) SignOut(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	err := b.svc.Logout(ctx, token)
	if err == nil || errors.Is(err, domain.ErrInvalidSession) {
		return nil
	}
	return err
}

// Providers lists the OAuth providers a user can sign in with.
func (b *Bridge) Providers() []string {
	return b.registry.Names()
}

func (b *Bridge) signUpRole() string {
	role := strings.TrimSpace(b.cfg.Bootstrap.SignUpRole)
	if role == "" {
		return authorization.RoleViewer
	}
	return role
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
