package server

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// authorize checks the session user's role against the casbin policy for
// object and action. It must run after WebAuthRequired.
func (s *Server) authorize(object string, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.authorizeAction(c, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func (s *Server) authorizeAction(c *gin.Context, object string, action string) error {
	sess, ok := sessionFromContext(c)
	if !ok {
		return ErrUnauthorized
	}
	if s.authzSvc == nil {
		return ErrForbidden
	}
	return s.authzSvc.Authorize(c.Request.Context(), sess.UserID, strings.TrimSpace(object), strings.TrimSpace(action))
}
