package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type ActorType string

const (
	ActorTypeUser      ActorType = "user"
	ActorTypeSystem    ActorType = "system"
	ActorTypeAnonymous ActorType = "anonymous"
)

// Actions recorded by the dashboard.
const (
	ActionCustomerCreate = "customer.create"
	ActionCustomerUpdate = "customer.update"
	ActionCustomerDelete = "customer.delete"
	ActionInvoiceCreate  = "invoice.create"
	ActionInvoiceUpdate  = "invoice.update"
	ActionInvoiceDelete  = "invoice.delete"
	ActionSignIn         = "auth.sign_in"
	ActionSignInFailed   = "auth.sign_in_failed"
	ActionAssetSweep     = "assets.sweep"
)

type AuditLog struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	ActorType  string            `gorm:"column:actor_type;type:varchar(16);not null" json:"actor_type"`
	ActorID    *string           `gorm:"column:actor_id;type:varchar(64)" json:"actor_id,omitempty"`
	Action     string            `gorm:"column:action;type:varchar(64);not null;index" json:"action"`
	TargetType string            `gorm:"column:target_type;type:varchar(32);not null" json:"target_type"`
	TargetID   *string           `gorm:"column:target_id;type:varchar(64);index" json:"target_id,omitempty"`
	Metadata   datatypes.JSONMap `gorm:"column:metadata" json:"metadata,omitempty"`
	IPAddress  *string           `gorm:"column:ip_address;type:varchar(64)" json:"ip_address,omitempty"`
	UserAgent  *string           `gorm:"column:user_agent;type:text" json:"user_agent,omitempty"`
	CreatedAt  time.Time         `gorm:"column:created_at;not null;index" json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }
