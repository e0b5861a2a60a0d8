package server

import (
	"context"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/dashboard/internal/auth/domain"
	obscontext "github.com/smallbiznis/dashboard/internal/observability/context"
	"github.com/smallbiznis/dashboard/internal/observability/logger"
	"go.uber.org/zap"
)

const (
	contextSessionKey = "session"
	actorTypeUser     = "user"
)

// WebAuthRequired resolves the session cookie and rejects anonymous requests.
func (s *Server) WebAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := s.currentSession(c)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if sess == nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Set(contextSessionKey, sess)
		ctx := obscontext.WithActor(c.Request.Context(), actorTypeUser, sess.UserID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (s *Server) currentSession(c *gin.Context) (*authdomain.Session, error) {
	token, ok := s.sessions.ReadToken(c)
	if !ok {
		return nil, nil
	}
	return s.bridge.CurrentSession(c.Request.Context(), token)
}

func sessionFromContext(c *gin.Context) (*authdomain.Session, bool) {
	value, ok := c.Get(contextSessionKey)
	if !ok {
		return nil, false
	}
	sess, ok := value.(*authdomain.Session)
	return sess, ok && sess != nil
}

func (s *Server) requestLogger(ctx context.Context) *zap.Logger {
	return logger.WithContext(ctx, s.log)
}
