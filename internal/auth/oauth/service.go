package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	authconfig "github.com/smallbiznis/dashboard/internal/auth/config"
	obstracing "github.com/smallbiznis/dashboard/internal/observability/tracing"
	"golang.org/x/oauth2"
)

const (
	defaultTokenSize = 32
	githubEmailsURL  = "https://api.github.com/user/emails"
	maxIdentityBytes = 1 << 20
)

type Service interface {
	RedirectURL(ctx context.Context, providerName string, req RedirectRequest) (*RedirectResult, error)
	Login(ctx context.Context, providerName string, req LoginRequest) (*LoginResult, error)
}

type RedirectRequest struct {
	RedirectURI string
}

type RedirectResult struct {
	URL          string
	State        string
	CodeVerifier string
}

type LoginRequest struct {
	Code         string
	RedirectURI  string
	CodeVerifier string
}

type LoginResult struct {
	ProviderName string
	AllowSignUp  bool
	Identity     Identity
}

type Identity struct {
	ExternalID  string
	Email       string
	DisplayName string
}

type service struct {
	registry   authconfig.AuthProviderRegistry
	httpClient *http.Client
}

func NewService(registry authconfig.AuthProviderRegistry) Service {
	return newService(registry, http.DefaultClient)
}

func newService(registry authconfig.AuthProviderRegistry, client *http.Client) *service {
	return &service{
		registry:   registry,
		httpClient: obstracing.WrapHTTPClient(client),
	}
}

func (s *service) RedirectURL(ctx context.Context, providerName string, req RedirectRequest) (*RedirectResult, error) {
	_ = ctx

	cfg, err := s.lookupProvider(providerName)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.RedirectURI) == "" {
		return nil, ErrInvalidRequest
	}

	state, err := randomToken(defaultTokenSize)
	if err != nil {
		return nil, err
	}
	verifier := oauth2.GenerateVerifier()

	conf := oauthConfig(cfg, req.RedirectURI)
	return &RedirectResult{
		URL:          conf.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier)),
		State:        state,
		CodeVerifier: verifier,
	}, nil
}

func (s *service) Login(ctx context.Context, providerName string, req LoginRequest) (*LoginResult, error) {
	cfg, err := s.lookupProvider(providerName)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Code) == "" {
		return nil, ErrInvalidRequest
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	conf := oauthConfig(cfg, req.RedirectURI)

	var opts []oauth2.AuthCodeOption
	if strings.TrimSpace(req.CodeVerifier) != "" {
		opts = append(opts, oauth2.VerifierOption(req.CodeVerifier))
	}
	token, err := conf.Exchange(ctx, req.Code, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: exchange: %v", ErrUnauthorized, err)
	}

	client := conf.Client(ctx, token)
	identity, err := fetchIdentity(ctx, client, cfg)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		ProviderName: cfg.Type,
		AllowSignUp:  cfg.AllowSignUp,
		Identity:     identity,
	}, nil
}

func (s *service) lookupProvider(rawName string) (authconfig.AuthProviderConfig, error) {
	if strings.TrimSpace(rawName) == "" {
		return authconfig.AuthProviderConfig{}, ErrProviderNotFound
	}
	cfg, ok := s.registry.Lookup(rawName)
	if !ok || cfg.Type == "" || !cfg.Enabled {
		return authconfig.AuthProviderConfig{}, ErrProviderNotFound
	}
	if strings.TrimSpace(cfg.ClientID) == "" || strings.TrimSpace(cfg.AuthURL) == "" ||
		strings.TrimSpace(cfg.TokenURL) == "" || strings.TrimSpace(cfg.APIURL) == "" {
		return authconfig.AuthProviderConfig{}, ErrInvalidProvider
	}
	return cfg, nil
}

func oauthConfig(cfg authconfig.AuthProviderConfig, redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  cfg.AuthURL,
			TokenURL: cfg.TokenURL,
		},
		RedirectURL: redirectURI,
		Scopes:      cfg.Scopes,
	}
}

func fetchIdentity(ctx context.Context, client *http.Client, cfg authconfig.AuthProviderConfig) (Identity, error) {
	var payload map[string]any
	if err := getJSON(ctx, client, cfg.APIURL, &payload); err != nil {
		return Identity{}, err
	}

	identity := Identity{
		ExternalID:  firstClaim(payload, "sub", "id", "user_id", "uid"),
		Email:       firstClaim(payload, "email"),
		DisplayName: firstClaim(payload, "name", "display_name", "login", "username", "preferred_username"),
	}
	if identity.Email == "" && cfg.Type == "github" {
		identity.Email = githubPrimaryEmail(ctx, client)
	}
	if identity.DisplayName == "" {
		identity.DisplayName = identity.Email
	}
	if identity.ExternalID == "" || identity.Email == "" {
		return Identity{}, ErrUnauthorized
	}

	return identity, nil
}

// githubPrimaryEmail resolves the verified primary address of users who hide
// their public email.
func githubPrimaryEmail(ctx context.Context, client *http.Client) string {
	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := getJSON(ctx, client, githubEmailsURL, &emails); err != nil {
		return ""
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			return strings.TrimSpace(e.Email)
		}
	}
	return ""
}

func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxIdentityBytes))
	if err != nil {
		return err
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return ErrUnauthorized
	}

	decoder := json.NewDecoder(strings.NewReader(string(body)))
	decoder.UseNumber()
	if err := decoder.Decode(out); err != nil {
		return ErrUnauthorized
	}
	return nil
}

func firstClaim(payload map[string]any, keys ...string) string {
	for _, key := range keys {
		if value, ok := payload[key]; ok {
			if str := claimToString(value); str != "" {
				return str
			}
		}
	}
	return ""
}

func claimToString(value any) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func randomToken(size int) (string, error) {
	if size <= 0 {
		size = defaultTokenSize
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
