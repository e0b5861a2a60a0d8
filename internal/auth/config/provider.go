package config

import "golang.org/x/oauth2/endpoints"

// AuthProviderConfig defines the raw configuration for an auth provider.
type AuthProviderConfig struct {
	Name         string
	Type         string
	Enabled      bool
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	APIURL       string
	Scopes       []string
	AllowSignUp  bool
}

type providerDefaults struct {
	authURL  string
	tokenURL string
	apiURL   string
	scopes   []string
}

var defaultsByType = map[string]providerDefaults{
	"github": {
		authURL:  endpoints.GitHub.AuthURL,
		tokenURL: endpoints.GitHub.TokenURL,
		apiURL:   "https://api.github.com/user",
		scopes:   []string{"read:user", "user:email"},
	},
	"google": {
		authURL:  endpoints.Google.AuthURL,
		tokenURL: endpoints.Google.TokenURL,
		apiURL:   "https://openidconnect.googleapis.com/v1/userinfo",
		scopes:   []string{"openid", "email", "profile"},
	},
}

// withDefaults fills endpoints and scopes left empty for well-known providers.
func withDefaults(cfg AuthProviderConfig) AuthProviderConfig {
	def, ok := defaultsByType[cfg.Type]
	if !ok {
		return cfg
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = def.authURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = def.tokenURL
	}
	if cfg.APIURL == "" {
		cfg.APIURL = def.apiURL
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = append([]string(nil), def.scopes...)
	}
	return cfg
}
