package authorization

import "errors"

var (
	ErrInvalidActor  = errors.New("invalid_actor")
	ErrInvalidObject = errors.New("invalid_object")
	ErrInvalidAction = errors.New("invalid_action")
	ErrInvalidRole   = errors.New("invalid_role")
	ErrForbidden     = errors.New("forbidden")
)
