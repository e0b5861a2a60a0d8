package repository

import (
	"context"
	"strings"

	"github.com/smallbiznis/dashboard/internal/audit/domain"
	"github.com/smallbiznis/dashboard/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, conn *gorm.DB, entry *domain.AuditLog) error {
	if entry == nil {
		return nil
	}
	err := conn.WithContext(ctx).Exec(
		`INSERT INTO audit_logs (
			id, actor_type, actor_id, action, target_type, target_id,
			metadata, ip_address, user_agent, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.ActorType,
		entry.ActorID,
		entry.Action,
		entry.TargetType,
		entry.TargetID,
		entry.Metadata,
		entry.IPAddress,
		entry.UserAgent,
		entry.CreatedAt,
	).Error
	return db.Wrap("insert audit log", err)
}

func (r *repo) List(ctx context.Context, conn *gorm.DB, filter domain.ListFilter) ([]*domain.AuditLog, int64, error) {
	stmt := conn.WithContext(ctx).Model(&domain.AuditLog{})

	if action := strings.TrimSpace(filter.Action); action != "" {
		stmt = stmt.Where("action = ?", action)
	}
	if targetType := strings.TrimSpace(filter.TargetType); targetType != "" {
		stmt = stmt.Where("target_type = ?", targetType)
	}
	if targetID := strings.TrimSpace(filter.TargetID); targetID != "" {
		stmt = stmt.Where("target_id = ?", targetID)
	}
	if actorType := strings.TrimSpace(filter.ActorType); actorType != "" {
		stmt = stmt.Where("actor_type = ?", actorType)
	}
	if filter.StartAt != nil {
		stmt = stmt.Where("created_at >= ?", filter.StartAt.UTC())
	}
	if filter.EndAt != nil {
		stmt = stmt.Where("created_at <= ?", filter.EndAt.UTC())
	}

	var total int64
	if err := stmt.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, db.Wrap("count audit logs", err)
	}

	var logs []*domain.AuditLog
	stmt = stmt.Order("created_at desc, id desc")
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit).Offset(filter.Offset)
	}
	if err := stmt.Find(&logs).Error; err != nil {
		return nil, 0, db.Wrap("list audit logs", err)
	}
	return logs, total, nil
}
