package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/dashboard/internal/scheduler"
)

// SweepAssets deletes stored customer images that no customer references.
// With Redis configured only one sweep runs at a time across instances.
func (s *Server) SweepAssets(c *gin.Context) {
	result, err := s.scheduler.RunSweep(c.Request.Context(), scheduler.TriggerManual)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
