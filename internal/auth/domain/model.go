// Package domain contains core types for the auth service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const ProviderLocal = "local"

// User represents a dashboard account, local or linked to an OAuth provider.
type User struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	ExternalID   string            `gorm:"column:external_id;type:varchar(255);not null;uniqueIndex:ux_users_provider_external_id" json:"external_id"`
	Provider     string            `gorm:"column:provider;type:varchar(64);not null;uniqueIndex:ux_users_provider_external_id" json:"provider"`
	DisplayName  string            `gorm:"column:display_name;type:varchar(255);not null" json:"display_name"`
	Email        string            `gorm:"column:email;type:varchar(255);not null;index" json:"email"`
	PasswordHash *string           `gorm:"column:password_hash;type:text" json:"-"`
	Metadata     datatypes.JSONMap `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt    time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// Session represents a persisted login session.
type Session struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID           snowflake.ID `gorm:"column:user_id;not null;index" json:"user_id"`
	SessionTokenHash string       `gorm:"column:session_token_hash;type:varchar(64);not null;uniqueIndex" json:"-"`
	Provider         string       `gorm:"column:provider;type:varchar(64);not null" json:"provider"`
	UserAgent        string       `gorm:"column:user_agent;type:text" json:"-"`
	IPAddress        string       `gorm:"column:ip_address;type:varchar(64)" json:"-"`
	ExpiresAt        time.Time    `gorm:"column:expires_at;not null;index" json:"expires_at"`
	RevokedAt        *time.Time   `gorm:"column:revoked_at" json:"-"`
	CreatedAt        time.Time    `gorm:"column:created_at;not null" json:"created_at"`
	LastSeenAt       time.Time    `gorm:"column:last_seen_at;not null" json:"last_seen_at"`

	User *User `gorm:"-" json:"user,omitempty"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "sessions" }

// SessionView is returned to clients without exposing token values.
type SessionView struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Provider    string    `json:"provider"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func NewSessionView(session *Session) *SessionView {
	if session == nil {
		return nil
	}
	view := &SessionView{
		Provider:  session.Provider,
		ExpiresAt: session.ExpiresAt,
		UserID:    session.UserID.String(),
	}
	if session.User != nil {
		view.Email = session.User.Email
		view.DisplayName = session.User.DisplayName
	}
	return view
}
