package server

import (
	"crypto/hmac"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/dashboard/internal/action"
	"github.com/smallbiznis/dashboard/internal/auth"
	authdomain "github.com/smallbiznis/dashboard/internal/auth/domain"
	authoauth "github.com/smallbiznis/dashboard/internal/auth/oauth"
	"go.uber.org/zap"
)

const (
	oauthStateCookie    = "oauth_state"
	oauthVerifierCookie = "oauth_code_verifier"
	oauthRedirectCookie = "oauth_redirect_to"
	oauthStateTTL       = 10 * time.Minute
	oauthErrorRedirect  = "/login?error="
)

// OAuthLogin starts the provider flow, or completes it when the provider
// redirects back with a code.
func (s *Server) OAuthLogin(c *gin.Context) {
	provider := strings.ToLower(strings.TrimSpace(c.Param("name")))
	if provider == "" {
		AbortWithError(c, ErrNotFound)
		return
	}

	if strings.TrimSpace(c.Query("error")) != "" {
		s.logOAuthError(c, provider)
		s.clearOAuthCookies(c)
		redirectToOAuthError(c, authdomain.AccessDenied)
		return
	}

	code := strings.TrimSpace(c.Query("code"))
	if code == "" {
		if err := s.startOAuthLogin(c, provider); err != nil {
			s.handleOAuthError(c, provider, err)
		}
		return
	}

	if err := s.handleOAuthCallback(c, provider, code); err != nil {
		s.handleOAuthError(c, provider, err)
	}
}

func (s *Server) startOAuthLogin(c *gin.Context, provider string) error {
	result, err := s.bridge.SignInWithProvider(c.Request.Context(), provider, s.oauthRedirectURI(c, provider))
	if err != nil {
		return err
	}

	s.setOAuthCookie(c, oauthStateCookie, result.State, oauthStateTTL)
	if strings.TrimSpace(result.CodeVerifier) != "" {
		s.setOAuthCookie(c, oauthVerifierCookie, result.CodeVerifier, oauthStateTTL)
	}

	redirectTarget := sanitizeRedirectPath(firstNonEmpty(c.Query("redirectTo"), c.Query("redirect_to")))
	if redirectTarget != "" {
		s.setOAuthCookie(c, oauthRedirectCookie, redirectTarget, oauthStateTTL)
	}

	c.Redirect(http.StatusFound, result.URL)
	return nil
}

func (s *Server) handleOAuthCallback(c *gin.Context, provider string, code string) error {
	state := strings.TrimSpace(c.Query("state"))
	storedState, err := c.Cookie(oauthStateCookie)
	if err != nil || storedState == "" || state == "" || !subtleConstantEquals(state, storedState) {
		s.clearOAuthCookies(c)
		return authdomain.NewAuthError(authdomain.OAuthCallbackError, errors.New("oauth state mismatch"))
	}

	verifier, _ := c.Cookie(oauthVerifierCookie)
	redirectTarget, _ := c.Cookie(oauthRedirectCookie)
	s.clearOAuthCookies(c)

	result, err := s.bridge.CompleteProviderSignIn(c.Request.Context(), provider, auth.CallbackRequest{
		Code:         code,
		RedirectURI:  s.oauthRedirectURI(c, provider),
		CodeVerifier: verifier,
		UserAgent:    strings.TrimSpace(c.Request.UserAgent()),
		IPAddress:    strings.TrimSpace(c.ClientIP()),
	})
	if err != nil {
		return err
	}
	s.sessions.Set(c, result.RawToken, result.ExpiresAt)

	redirectTarget = sanitizeRedirectPath(redirectTarget)
	if redirectTarget == "" {
		redirectTarget = action.TargetDashboard
	}
	c.Redirect(http.StatusFound, redirectTarget)
	return nil
}

func (s *Server) oauthRedirectURI(c *gin.Context, provider string) string {
	base := requestBaseURL(c)
	return fmt.Sprintf("%s/login/%s", base, url.PathEscape(provider))
}

func requestBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := firstHeaderValue(c.GetHeader("X-Forwarded-Proto")); proto != "" {
		scheme = strings.ToLower(proto)
	}
	host := c.Request.Host
	if forwarded := firstHeaderValue(c.GetHeader("X-Forwarded-Host")); forwarded != "" {
		host = forwarded
	}
	return scheme + "://" + host
}

// handleOAuthError sends unknown providers to 404 and every other
// recognised failure back to the sign-in page with its error type.
func (s *Server) handleOAuthError(c *gin.Context, provider string, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, authoauth.ErrProviderNotFound) {
		AbortWithError(c, ErrNotFound)
		return
	}

	authErr, ok := authdomain.AsAuthError(err)
	if !ok {
		AbortWithError(c, err)
		return
	}
	s.requestLogger(c.Request.Context()).Warn("oauth sign-in failed",
		zap.String("provider", provider),
		zap.String("type", string(authErr.Type)),
		zap.Error(authErr.Err),
	)
	redirectToOAuthError(c, authErr.Type)
}

func (s *Server) logOAuthError(c *gin.Context, provider string) {
	s.requestLogger(c.Request.Context()).Warn("oauth provider returned error",
		zap.String("provider", provider),
		zap.String("error", strings.TrimSpace(c.Query("error"))),
		zap.String("description", strings.TrimSpace(c.Query("error_description"))),
		zap.String("uri", strings.TrimSpace(c.Query("error_uri"))),
	)
}

func redirectToOAuthError(c *gin.Context, errType authdomain.AuthErrorType) {
	c.Redirect(http.StatusFound, oauthErrorRedirect+url.QueryEscape(string(errType)))
}

func firstHeaderValue(value string) string {
	if value == "" {
		return ""
	}
	if idx := strings.Index(value, ","); idx >= 0 {
		value = value[:idx]
	}
	return strings.TrimSpace(value)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func sanitizeRedirectPath(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, "//") || strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return ""
	}
	if !strings.HasPrefix(value, "/") {
		return ""
	}
	return value
}

func (s *Server) setOAuthCookie(c *gin.Context, name string, value string, ttl time.Duration) {
	maxAge := int(ttl.Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", s.cfg.AuthCookieSecure, true)
}

func (s *Server) clearOAuthCookies(c *gin.Context) {
	s.clearCookie(c, oauthStateCookie)
	s.clearCookie(c, oauthVerifierCookie)
	s.clearCookie(c, oauthRedirectCookie)
}

func (s *Server) clearCookie(c *gin.Context, name string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, "", -1, "/", "", s.cfg.AuthCookieSecure, true)
}

func subtleConstantEquals(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}
