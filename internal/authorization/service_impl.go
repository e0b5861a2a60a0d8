package authorization

import (
	"context"
	_ "embed"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectCustomer    = "customer"
	ObjectInvoice     = "invoice"
	ObjectMaintenance = "maintenance"
	ObjectAudit       = "audit"
)

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionSweep  = "sweep"
)

const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	if err := enforcer.BuildRoleLinks(); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, userID snowflake.ID, object string, action string) error {
	if userID == 0 {
		return ErrInvalidActor
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	allowed, err := s.enforcer.Enforce(subject(userID), object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Info("authorization denied",
			zap.String("user_id", userID.String()),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

// AssignRole replaces any role held by the user with role.
func (s *ServiceImpl) AssignRole(ctx context.Context, userID snowflake.ID, role string) error {
	if userID == 0 {
		return ErrInvalidActor
	}
	roleName, err := normalizeRole(role)
	if err != nil {
		return err
	}

	sub := subject(userID)
	existing, err := s.enforcer.GetRolesForUser(sub)
	if err != nil {
		return err
	}
	for _, current := range existing {
		if current == roleName {
			continue
		}
		if _, err := s.enforcer.DeleteRoleForUser(sub, current); err != nil {
			return err
		}
	}

	if _, err := s.enforcer.AddRoleForUser(sub, roleName); err != nil {
		return err
	}
	s.log.Info("role assigned", zap.String("user_id", userID.String()), zap.String("role", roleName))
	return nil
}

func (s *ServiceImpl) RolesForUser(ctx context.Context, userID snowflake.ID) ([]string, error) {
	roles, err := s.enforcer.GetRolesForUser(subject(userID))
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(roles))
	for _, role := range roles {
		out = append(out, strings.TrimPrefix(role, "role:"))
	}
	return out, nil
}

func subject(userID snowflake.ID) string {
	return "user:" + userID.String()
}

func normalizeRole(role string) (string, error) {
	role = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(role, "role:")))
	switch role {
	case RoleAdmin, RoleViewer:
		return "role:" + role, nil
	default:
		return "", ErrInvalidRole
	}
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Viewer permissions (read-only)
		{"role:viewer", ObjectCustomer, ActionView},
		{"role:viewer", ObjectInvoice, ActionView},

		// Admin permissions
		{"role:admin", ObjectCustomer, ActionView},
		{"role:admin", ObjectCustomer, ActionCreate},
		{"role:admin", ObjectCustomer, ActionUpdate},
		{"role:admin", ObjectCustomer, ActionDelete},
		{"role:admin", ObjectInvoice, ActionView},
		{"role:admin", ObjectInvoice, ActionCreate},
		{"role:admin", ObjectInvoice, ActionUpdate},
		{"role:admin", ObjectInvoice, ActionDelete},
		{"role:admin", ObjectMaintenance, ActionSweep},
		{"role:admin", ObjectAudit, ActionView},
	}

	for _, policy := range policies {
		has, err := enforcer.HasPolicy(policy)
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
