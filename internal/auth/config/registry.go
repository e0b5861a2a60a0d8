package config

import (
	"sort"
	"strings"

	"github.com/smallbiznis/dashboard/internal/auth/features"
	"go.uber.org/zap"
)

// AuthProviderRegistry captures parsed providers and activation state.
type AuthProviderRegistry struct {
	All     map[string]AuthProviderConfig
	Active  map[string]AuthProviderConfig
	Ignored map[string]string
}

// Lookup returns the active provider registered under name.
func (r AuthProviderRegistry) Lookup(name string) (AuthProviderConfig, bool) {
	cfg, ok := r.Active[normalizeProviderType(name)]
	return cfg, ok
}

// Names lists active providers in stable order.
func (r AuthProviderRegistry) Names() []string {
	names := make([]string, 0, len(r.Active))
	for name := range r.Active {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildAuthProviderRegistry builds a registry from parsed provider configs.
func BuildAuthProviderRegistry(log *zap.Logger, cfgs map[string]AuthProviderConfig) AuthProviderRegistry {
	log = log.Named("auth.registry")
	registry := AuthProviderRegistry{
		All:     make(map[string]AuthProviderConfig, len(cfgs)),
		Active:  make(map[string]AuthProviderConfig),
		Ignored: make(map[string]string),
	}

	for key, cfg := range cfgs {
		cfg = normalizeProviderConfig(key, cfg)
		registry.All[cfg.Type] = cfg
	}

	keys := make([]string, 0, len(registry.All))
	for key := range registry.All {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		cfg := registry.All[key]
		if !cfg.Enabled {
			log.Info("auth provider disabled", zap.String("provider", cfg.Type))
			continue
		}
		if !features.ImplementedAuthFeatures[cfg.Type] {
			registry.Ignored[cfg.Type] = "enabled in config but feature not implemented"
			log.Warn("auth provider ignored", zap.String("provider", cfg.Type), zap.String("reason", "not_implemented"))
			continue
		}
		if cfg.ClientID == "" || cfg.AuthURL == "" || cfg.TokenURL == "" || cfg.APIURL == "" {
			registry.Ignored[cfg.Type] = "missing client id or endpoints"
			log.Warn("auth provider ignored", zap.String("provider", cfg.Type), zap.String("reason", "incomplete_config"))
			continue
		}
		registry.Active[cfg.Type] = cfg
		log.Info("auth provider active", zap.String("provider", cfg.Type))
	}

	return registry
}

func normalizeProviderConfig(key string, cfg AuthProviderConfig) AuthProviderConfig {
	if cfg.Type == "" {
		cfg.Type = key
	}
	cfg.Type = normalizeProviderType(cfg.Type)
	if cfg.Name == "" {
		cfg.Name = cfg.Type
	}
	return withDefaults(cfg)
}

func normalizeProviderType(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
