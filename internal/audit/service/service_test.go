package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/dashboard/internal/audit/domain"
	"github.com/smallbiznis/dashboard/internal/audit/repository"
	"github.com/smallbiznis/dashboard/internal/clock"
	obscontext "github.com/smallbiznis/dashboard/internal/observability/context"
	"github.com/smallbiznis/dashboard/pkg/db"
	"github.com/smallbiznis/dashboard/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestService(t *testing.T) (auditdomain.Service, *clock.FakeClock) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&auditdomain.AuditLog{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	svc := NewService(Params{
		DB:    conn,
		Log:   zaptest.NewLogger(t),
		GenID: node,
		Repo:  repository.Provide(),
		Clock: clk,
	})
	return svc, clk
}

func TestRecordUsesContextActorAndClient(t *testing.T) {
	svc, _ := newTestService(t)

	ctx := obscontext.WithActor(context.Background(), "user", "1001")
	ctx = obscontext.WithClient(ctx, "10.0.0.1", "curl/8")
	ctx = obscontext.WithRequestID(ctx, "req-1")

	require.NoError(t, svc.Record(ctx, auditdomain.Entry{
		Action:     auditdomain.ActionCustomerCreate,
		TargetType: "customer",
		TargetID:   "c-1",
		Metadata:   map[string]any{"name": "Jane", "": "dropped"},
	}))

	resp, err := svc.List(context.Background(), auditdomain.ListAuditLogRequest{})
	require.NoError(t, err)
	require.Len(t, resp.AuditLogs, 1)

	got := resp.AuditLogs[0]
	assert.Equal(t, "user", got.ActorType)
	require.NotNil(t, got.ActorID)
	assert.Equal(t, "1001", *got.ActorID)
	require.NotNil(t, got.TargetID)
	assert.Equal(t, "c-1", *got.TargetID)
	require.NotNil(t, got.IPAddress)
	assert.Equal(t, "10.0.0.1", *got.IPAddress)
	assert.Equal(t, "Jane", got.Metadata["name"])
	assert.Equal(t, "req-1", got.Metadata["request_id"])
	assert.NotContains(t, got.Metadata, "")
}

func TestRecordDefaultsToSystemActor(t *testing.T) {
	svc, _ := newTestService(t)

	require.NoError(t, svc.Record(context.Background(), auditdomain.Entry{Action: auditdomain.ActionAssetSweep}))

	resp, err := svc.List(context.Background(), auditdomain.ListAuditLogRequest{})
	require.NoError(t, err)
	require.Len(t, resp.AuditLogs, 1)
	assert.Equal(t, string(auditdomain.ActorTypeSystem), resp.AuditLogs[0].ActorType)
	assert.Equal(t, "unknown", resp.AuditLogs[0].TargetType)
	assert.Nil(t, resp.AuditLogs[0].ActorID)
}

func TestRecordRequiresAction(t *testing.T) {
	svc, _ := newTestService(t)
	assert.ErrorIs(t, svc.Record(context.Background(), auditdomain.Entry{Action: "  "}), auditdomain.ErrInvalidAction)
}

func TestListFiltersAndPaginates(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Record(ctx, auditdomain.Entry{Action: auditdomain.ActionInvoiceCreate, TargetType: "invoice"}))
		clk.Advance(time.Minute)
	}
	require.NoError(t, svc.Record(ctx, auditdomain.Entry{Action: auditdomain.ActionCustomerDelete, TargetType: "customer"}))

	resp, err := svc.List(ctx, auditdomain.ListAuditLogRequest{
		Pagination: pagination.Pagination{Page: 1, PageSize: 2},
		TargetType: "invoice",
	})
	require.NoError(t, err)
	assert.Len(t, resp.AuditLogs, 2)
	assert.Equal(t, int64(3), resp.TotalItems)
	assert.Equal(t, 2, resp.TotalPages)
	assert.True(t, resp.AuditLogs[0].CreatedAt.After(resp.AuditLogs[1].CreatedAt))

	resp, err = svc.List(ctx, auditdomain.ListAuditLogRequest{Action: auditdomain.ActionCustomerDelete})
	require.NoError(t, err)
	assert.Len(t, resp.AuditLogs, 1)
}

func TestListRejectsInvertedRange(t *testing.T) {
	svc, _ := newTestService(t)
	start := time.Now()
	end := start.Add(-time.Hour)

	_, err := svc.List(context.Background(), auditdomain.ListAuditLogRequest{StartAt: &start, EndAt: &end})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidTimeRange)
}
