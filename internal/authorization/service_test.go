package authorization

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/dashboard/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestService(t *testing.T) Service {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	enforcer, err := NewEnforcer(conn)
	require.NoError(t, err)

	return NewService(Params{Log: zaptest.NewLogger(t), Enforcer: enforcer})
}

func TestAdminCanMutate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	admin := snowflake.ID(101)

	require.NoError(t, svc.AssignRole(ctx, admin, "admin"))

	for _, object := range []string{ObjectCustomer, ObjectInvoice} {
		for _, action := range []string{ActionView, ActionCreate, ActionUpdate, ActionDelete} {
			assert.NoError(t, svc.Authorize(ctx, admin, object, action), object+"."+action)
		}
	}
	assert.NoError(t, svc.Authorize(ctx, admin, ObjectMaintenance, ActionSweep))
}

func TestViewerIsReadOnly(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	viewer := snowflake.ID(202)

	require.NoError(t, svc.AssignRole(ctx, viewer, RoleViewer))

	assert.NoError(t, svc.Authorize(ctx, viewer, ObjectInvoice, ActionView))
	assert.ErrorIs(t, svc.Authorize(ctx, viewer, ObjectInvoice, ActionCreate), ErrForbidden)
	assert.ErrorIs(t, svc.Authorize(ctx, viewer, ObjectCustomer, ActionDelete), ErrForbidden)
}

func TestAssignRoleReplacesPrevious(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user := snowflake.ID(303)

	require.NoError(t, svc.AssignRole(ctx, user, RoleAdmin))
	require.NoError(t, svc.AssignRole(ctx, user, RoleViewer))

	roles, err := svc.RolesForUser(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, []string{RoleViewer}, roles)
	assert.ErrorIs(t, svc.Authorize(ctx, user, ObjectCustomer, ActionCreate), ErrForbidden)
}

func TestRejectsUnknownInput(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.AssignRole(ctx, 1, "owner"), ErrInvalidRole)
	assert.ErrorIs(t, svc.AssignRole(ctx, 0, RoleAdmin), ErrInvalidActor)
	assert.ErrorIs(t, svc.Authorize(ctx, 0, ObjectCustomer, ActionView), ErrInvalidActor)
	assert.ErrorIs(t, svc.Authorize(ctx, 1, "", ActionView), ErrInvalidObject)
	assert.ErrorIs(t, svc.Authorize(ctx, 1, ObjectCustomer, " "), ErrInvalidAction)
	assert.ErrorIs(t, svc.Authorize(ctx, 999, ObjectCustomer, ActionView), ErrForbidden)
}
