package authorization

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Authorize(ctx context.Context, userID snowflake.ID, object string, action string) error
	AssignRole(ctx context.Context, userID snowflake.ID, role string) error
	RolesForUser(ctx context.Context, userID snowflake.ID) ([]string, error)
}
