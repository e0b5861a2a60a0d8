package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// UploadPolicy bounds what the profile-image upload accepts.
type UploadPolicy struct {
	MaxBytes     int64    `mapstructure:"maxBytes"`
	AllowedTypes []string `mapstructure:"allowedTypes"`
	MaxDimension int      `mapstructure:"maxDimension"`
}

func DefaultUploadPolicy() UploadPolicy {
	return UploadPolicy{
		MaxBytes:     5 << 20,
		AllowedTypes: []string{"image/png"},
		MaxDimension: 512,
	}
}

// Allows reports whether the detected content type is on the allow list.
func (p UploadPolicy) Allows(contentType string) bool {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	for _, allowed := range p.AllowedTypes {
		if strings.EqualFold(strings.TrimSpace(allowed), contentType) {
			return true
		}
	}
	return false
}

type UploadPolicyHolder struct {
	current atomic.Value // holds UploadPolicy
}

func NewUploadPolicyHolder(log *zap.Logger) (*UploadPolicyHolder, error) {
	return NewUploadPolicyHolderFromPaths(log, "/var/lib/dashboard/config", "/etc/dashboard", ".")
}

// NewUploadPolicyHolderFromPaths reads uploads.yml from the first matching path
// and keeps the policy current while the file changes.
func NewUploadPolicyHolderFromPaths(log *zap.Logger, paths ...string) (*UploadPolicyHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("config.uploads")

	v := viper.New()
	v.SetConfigName("uploads")
	v.SetConfigType("yml")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	v.SetEnvPrefix("DASHBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultUploadPolicy()
	v.SetDefault("uploads.maxBytes", defaults.MaxBytes)
	v.SetDefault("uploads.allowedTypes", defaults.AllowedTypes)
	v.SetDefault("uploads.maxDimension", defaults.MaxDimension)

	watch := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		watch = false
	}

	var policy UploadPolicy
	if err := v.UnmarshalKey("uploads", &policy); err != nil {
		return nil, err
	}
	if err := validateUploadPolicy(policy); err != nil {
		return nil, err
	}

	holder := &UploadPolicyHolder{}
	holder.current.Store(policy)

	if watch {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			var updated UploadPolicy
			if err := v.UnmarshalKey("uploads", &updated); err != nil {
				log.Warn("reload failed", zap.Error(err))
				return
			}
			if err := validateUploadPolicy(updated); err != nil {
				log.Warn("invalid config ignored", zap.Error(err))
				return
			}
			holder.current.Store(updated)
			log.Info("reloaded", zap.String("file", e.Name))
		})
	}

	return holder, nil
}

// NewStaticUploadPolicyHolder pins a policy without reading any file.
func NewStaticUploadPolicyHolder(policy UploadPolicy) *UploadPolicyHolder {
	holder := &UploadPolicyHolder{}
	holder.current.Store(policy)
	return holder
}

func (h *UploadPolicyHolder) Get() UploadPolicy {
	return h.current.Load().(UploadPolicy)
}

func validateUploadPolicy(p UploadPolicy) error {
	if p.MaxBytes <= 0 {
		return errors.New("uploads.maxBytes must be positive")
	}
	if len(p.AllowedTypes) == 0 {
		return errors.New("uploads.allowedTypes cannot be empty")
	}
	if p.MaxDimension < 0 {
		return errors.New("uploads.maxDimension cannot be negative")
	}
	return nil
}
