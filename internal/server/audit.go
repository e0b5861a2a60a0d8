package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/dashboard/internal/audit/domain"
	"github.com/smallbiznis/dashboard/pkg/db/pagination"
)

type auditLogQuery struct {
	Action     string `form:"action"`
	TargetType string `form:"target_type"`
	TargetID   string `form:"target_id"`
	ActorType  string `form:"actor_type"`
	StartAt    string `form:"start_at"`
	EndAt      string `form:"end_at"`
	Page       string `form:"page"`
	PageSize   string `form:"page_size"`
}

// ListAuditLogs returns recorded dashboard events, newest first.
func (s *Server) ListAuditLogs(c *gin.Context) {
	var q auditLogQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req := auditdomain.ListAuditLogRequest{
		Action:     strings.TrimSpace(q.Action),
		TargetType: strings.TrimSpace(q.TargetType),
		TargetID:   strings.TrimSpace(q.TargetID),
		ActorType:  strings.TrimSpace(q.ActorType),
	}
	if page, err := strconv.Atoi(strings.TrimSpace(q.Page)); err == nil {
		req.Pagination = pagination.Pagination{Page: page}
	}
	if size, err := strconv.Atoi(strings.TrimSpace(q.PageSize)); err == nil {
		req.PageSize = size
	}

	var err error
	if req.StartAt, err = parseTimeParam("start_at", q.StartAt); err != nil {
		AbortWithError(c, err)
		return
	}
	if req.EndAt, err = parseTimeParam("end_at", q.EndAt); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.auditSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, listResponse[auditdomain.AuditLog]{
		Items:      resp.AuditLogs,
		Page:       resp.Page,
		TotalPages: resp.TotalPages,
		TotalItems: resp.TotalItems,
	})
}

// parseTimeParam accepts RFC 3339 timestamps or plain dates.
func parseTimeParam(field, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return &parsed, nil
		}
	}
	return nil, newValidationError(field, "invalid_time", field+" must be an RFC 3339 timestamp or a date")
}
