package server

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/dashboard/internal/auth"
	authdomain "github.com/smallbiznis/dashboard/internal/auth/domain"
	authoauth "github.com/smallbiznis/dashboard/internal/auth/oauth"
	"go.uber.org/zap"
)

// IdentityBridge is the part of the session bridge the HTTP layer calls.
type IdentityBridge interface {
	CurrentSession(ctx context.Context, token string) (*authdomain.Session, error)
	SignInWithProvider(ctx context.Context, provider string, redirectURI string) (*authoauth.RedirectResult, error)
	CompleteProviderSignIn(ctx context.Context, provider string, req auth.CallbackRequest) (*authdomain.LoginResult, error)
	SignOut(ctx context.Context, token string) error
	Providers() []string
}

type signInFailure struct {
	Message string `json:"message"`
}

// Login submits the credentials form through the orchestrator.
func (s *Server) Login(c *gin.Context) {
	ctx := c.Request.Context()

	limit, err := s.signInLimit.Allow(ctx, c.ClientIP())
	if err != nil {
		s.requestLogger(ctx).Warn("sign-in rate limit unavailable", zap.Error(err))
	} else if !limit.Allowed {
		c.Header("Retry-After", strconv.Itoa(int(limit.RetryAfter.Seconds())+1))
		AbortWithError(c, ErrTooManyRequests)
		return
	}

	form, err := s.readForm(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.actions.Authenticate(ctx, "", form)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if result.Message != "" {
		c.JSON(http.StatusUnauthorized, signInFailure{Message: result.Message})
		return
	}

	s.sessions.Set(c, result.Session.RawToken, result.Session.ExpiresAt)
	c.Redirect(http.StatusSeeOther, result.Redirect)
}

// Logout revokes the current session and clears the cookie. It succeeds
// without a cookie.
func (s *Server) Logout(c *gin.Context) {
	if token, ok := s.sessions.ReadToken(c); ok {
		if err := s.bridge.SignOut(c.Request.Context(), token); err != nil {
			AbortWithError(c, err)
			return
		}
	}

	s.sessions.Clear(c)
	c.Status(http.StatusNoContent)
}

type sessionResponse struct {
	Session *authdomain.SessionView `json:"session"`
	Roles   []string                `json:"roles"`
}

func (s *Server) Me(c *gin.Context) {
	sess, err := s.currentSession(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if sess == nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	roles, err := s.authzSvc.RolesForUser(c.Request.Context(), sess.UserID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if roles == nil {
		roles = []string{}
	}

	c.JSON(http.StatusOK, sessionResponse{
		Session: authdomain.NewSessionView(sess),
		Roles:   roles,
	})
}

type AuthProviderInfo struct {
	Name      string `json:"name"`
	LoginPath string `json:"login_path"`
}

func (s *Server) AuthProviders(c *gin.Context) {
	names := s.bridge.Providers()
	providers := make([]AuthProviderInfo, 0, len(names))
	for _, name := range names {
		providers = append(providers, AuthProviderInfo{
			Name:      name,
			LoginPath: "/login/" + url.PathEscape(name),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"local_login_enabled": true,
		"providers":           providers,
	})
}
