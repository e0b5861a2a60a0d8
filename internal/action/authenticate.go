package action

import (
	"context"

	auditdomain "github.com/smallbiznis/dashboard/internal/audit/domain"
	"github.com/smallbiznis/dashboard/internal/audit/masking"
	"github.com/smallbiznis/dashboard/internal/auth"
	authdomain "github.com/smallbiznis/dashboard/internal/auth/domain"
	"github.com/smallbiznis/dashboard/internal/observability/tracing"
	"go.uber.org/zap"
)

const (
	MsgInvalidCredentials = "Invalid credentials."
	MsgSomethingWentWrong = "Something went wrong."
)

// CredentialsSignIn is the part of the identity bridge the sign-in form uses.
type CredentialsSignIn interface {
	SignInWithCredentials(ctx context.Context, req auth.CredentialsRequest) (*authdomain.LoginResult, error)
}

// SignIn is the outcome of the credentials form. Message is set when the
// sign-in was refused; Session is set on success.
type SignIn struct {
	Message  string
	Session  *authdomain.LoginResult
	Redirect string
}

// Authenticate submits the credentials form. Recognised authentication
// failures become a message; any other error is returned to the caller.
func (o *Orchestrator) Authenticate(ctx context.Context, prev string, form Form) (SignIn, error) {
	ctx, span := tracing.StartSpan(ctx, "action.authenticate")
	var spanErr error
	defer func() { tracing.EndSpan(span, spanErr) }()

	if prev != "" {
		o.log.Debug("sign-in retry")
	}

	result, err := o.signIn.SignInWithCredentials(ctx, auth.CredentialsRequest{
		Email:     form.Value("email"),
		Password:  form.Value("password"),
		UserAgent: form.UserAgent,
		IPAddress: form.IPAddress,
	})
	if err == nil {
		o.recordSignIn(ctx, result)
		return SignIn{Session: result, Redirect: TargetDashboard}, nil
	}

	authErr, ok := authdomain.AsAuthError(err)
	if !ok {
		spanErr = err
		o.log.Error("sign-in failed unexpectedly", zap.Error(err))
		return SignIn{}, err
	}

	o.recordSignInFailure(ctx, form.Value("email"), authErr.Type)
	switch authErr.Type {
	case authdomain.CredentialsSignin:
		return SignIn{Message: MsgInvalidCredentials}, nil
	default:
		o.log.Warn("sign-in rejected", zap.String("type", string(authErr.Type)))
		return SignIn{Message: MsgSomethingWentWrong}, nil
	}
}

func (o *Orchestrator) recordSignIn(ctx context.Context, result *authdomain.LoginResult) {
	if result == nil || result.Session == nil {
		return
	}
	o.record(ctx, result.Session, auditdomain.ActionSignIn, "session", result.Session.ID.String(), map[string]any{
		"provider": result.Session.Provider,
	})
}

func (o *Orchestrator) recordSignInFailure(ctx context.Context, email string, errType authdomain.AuthErrorType) {
	if o.audit == nil {
		return
	}
	err := o.audit.Record(ctx, auditdomain.Entry{
		ActorType:  auditdomain.ActorTypeAnonymous,
		Action:     auditdomain.ActionSignInFailed,
		TargetType: "session",
		Metadata: map[string]any{
			"email": masking.MaskEmail(email),
			"type":  string(errType),
		},
	})
	if err != nil {
		o.log.Warn("audit record failed", zap.String("action", auditdomain.ActionSignInFailed), zap.Error(err))
	}
}
