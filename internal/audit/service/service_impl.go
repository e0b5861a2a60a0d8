package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/dashboard/internal/audit/domain"
	"github.com/smallbiznis/dashboard/internal/clock"
	obscontext "github.com/smallbiznis/dashboard/internal/observability/context"
	"github.com/smallbiznis/dashboard/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const maxPageSize = 100

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  auditdomain.Repository
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  auditdomain.Repository
	clock clock.Clock
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		repo:  p.Repo,
		clock: p.Clock,
	}
}

func (s *Service) Record(ctx context.Context, in auditdomain.Entry) error {
	action := strings.TrimSpace(in.Action)
	if action == "" {
		return auditdomain.ErrInvalidAction
	}

	targetType := strings.TrimSpace(in.TargetType)
	if targetType == "" {
		targetType = "unknown"
	}

	actorType, actorID := s.resolveActor(ctx, in.ActorType, in.ActorID)
	ipAddress, userAgent := obscontext.ClientFromContext(ctx)

	payload := map[string]any{}
	for key, value := range in.Metadata {
		if key == "" {
			continue
		}
		payload[key] = value
	}
	if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
		payload["request_id"] = requestID
	}

	entry := auditdomain.AuditLog{
		ID:         s.genID.Generate(),
		ActorType:  actorType,
		ActorID:    optional(actorID),
		Action:     action,
		TargetType: targetType,
		TargetID:   optional(in.TargetID),
		Metadata:   datatypes.JSONMap(payload),
		IPAddress:  optional(ipAddress),
		UserAgent:  optional(userAgent),
		CreatedAt:  s.clock.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		s.log.Warn("failed to write audit log", zap.String("action", action), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, req auditdomain.ListAuditLogRequest) (auditdomain.ListAuditLogResponse, error) {
	if req.StartAt != nil && req.EndAt != nil && req.StartAt.After(*req.EndAt) {
		return auditdomain.ListAuditLogResponse{}, auditdomain.ErrInvalidTimeRange
	}

	page := req.Pagination
	if page.PageSize <= 0 {
		page.PageSize = 50
	}
	if page.PageSize > maxPageSize {
		page.PageSize = maxPageSize
	}
	page = page.Normalize()

	items, total, err := s.repo.List(ctx, s.db, auditdomain.ListFilter{
		Action:     req.Action,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		ActorType:  req.ActorType,
		StartAt:    req.StartAt,
		EndAt:      req.EndAt,
		Limit:      page.PageSize,
		Offset:     page.Offset(),
	})
	if err != nil {
		return auditdomain.ListAuditLogResponse{}, err
	}

	logs := make([]auditdomain.AuditLog, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		logs = append(logs, *item)
	}

	return auditdomain.ListAuditLogResponse{
		PageInfo:  pagination.BuildPageInfo(page, total),
		AuditLogs: logs,
	}, nil
}

func (s *Service) resolveActor(ctx context.Context, actorType auditdomain.ActorType, actorID string) (string, string) {
	resolvedType := strings.TrimSpace(string(actorType))
	resolvedID := strings.TrimSpace(actorID)
	if resolvedType == "" {
		if ctxType, ctxID := obscontext.ActorFromContext(ctx); ctxType != "" {
			resolvedType = ctxType
			if resolvedID == "" {
				resolvedID = ctxID
			}
		}
	}
	if resolvedType == "" {
		resolvedType = string(auditdomain.ActorTypeSystem)
	}
	return resolvedType, resolvedID
}

func optional(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
