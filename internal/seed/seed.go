package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	authdomain "github.com/smallbiznis/dashboard/internal/auth/domain"
	"github.com/smallbiznis/dashboard/internal/auth/password"
	"github.com/smallbiznis/dashboard/internal/config"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultAdminEmail    = "user@nextmail.com"
	defaultAdminPassword = "123456"
	defaultAdminDisplay  = "User"
)

// EnsureAdmin creates the first local account when the users table is empty.
// Outside production, missing ADMIN_* settings fall back to a development
// account. It reports whether a user was created.
func EnsureAdmin(ctx context.Context, db *gorm.DB, node *snowflake.Node, cfg config.Config) (*authdomain.User, bool, error) {
	if db == nil {
		return nil, false, errors.New("seed database handle is required")
	}
	if node == nil {
		return nil, false, errors.New("seed id generator is required")
	}

	email := strings.ToLower(strings.TrimSpace(cfg.Bootstrap.AdminEmail))
	secret := cfg.Bootstrap.AdminPassword
	display := strings.TrimSpace(cfg.Bootstrap.AdminName)
	if email == "" || secret == "" {
		if cfg.IsProduction() {
			return nil, false, nil
		}
		email, secret = defaultAdminEmail, defaultAdminPassword
	}
	if display == "" {
		display = defaultAdminDisplay
	}

	var user *authdomain.User
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&authdomain.User{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		hashed, err := password.Hash(secret)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		user = &authdomain.User{
			ID:           node.Generate(),
			ExternalID:   uuid.NewString(),
			Provider:     authdomain.ProviderLocal,
			DisplayName:  display,
			Email:        email,
			PasswordHash: &hashed,
			Metadata:     datatypes.JSONMap{"seeded": true},
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return tx.Create(user).Error
	})
	if err != nil {
		return nil, false, err
	}
	return user, user != nil, nil
}
