package config

import (
	"os"
	"strings"
)

// knownProviders are the sign-in providers configurable through
// AUTH_<PROVIDER>_* variables.
var knownProviders = []struct {
	kind  string
	label string
}{
	{kind: "oauth", label: "OAuth"},
	{kind: "github", label: "GitHub"},
	{kind: "google", label: "Google"},
}

// ParseAuthProvidersFromEnv returns a config for every known provider with
// at least one AUTH_<PROVIDER>_ variable set.
func ParseAuthProvidersFromEnv() map[string]AuthProviderConfig {
	configs := make(map[string]AuthProviderConfig, len(knownProviders))
	for _, p := range knownProviders {
		env := providerEnv("AUTH_" + strings.ToUpper(p.kind) + "_")
		if !env.present() {
			continue
		}
		configs[p.kind] = withDefaults(AuthProviderConfig{
			Name:         env.str("NAME", p.label),
			Type:         p.kind,
			Enabled:      env.flag(false, "ENABLED"),
			ClientID:     env.str("CLIENT_ID", ""),
			ClientSecret: env.str("CLIENT_SECRET", ""),
			AuthURL:      env.str("AUTH_URL", ""),
			TokenURL:     env.str("TOKEN_URL", ""),
			APIURL:       env.str("API_URL", ""),
			Scopes:       splitScopes(env.str("SCOPES", "")),
			AllowSignUp:  env.flag(false, "ALLOW_SIGNUP", "ALLOW_SIGN_UP"),
		})
	}
	return configs
}

// providerEnv reads variables sharing one prefix.
type providerEnv string

func (e providerEnv) present() bool {
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, string(e)) {
			return true
		}
	}
	return false
}

func (e providerEnv) str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(string(e) + key)); v != "" {
		return v
	}
	return def
}

// flag reads the first of keys that is set. Unrecognised values fall back
// to def.
func (e providerEnv) flag(def bool, keys ...string) bool {
	for _, key := range keys {
		raw, ok := os.LookupEnv(string(e) + key)
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
		return def
	}
	return def
}

func splitScopes(raw string) []string {
	scopes := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(scopes) == 0 {
		return nil
	}
	return scopes
}
