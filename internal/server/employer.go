package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	appdomain "github.com/smallbiznis/hirewire/internal/application/domain"
	"github.com/smallbiznis/hirewire/internal/identity"
)

func (s *Server) ListOrgJobs(c *gin.Context) {
	items, err := s.jobSvc.ListOrgJobs(c.Request.Context(), identity.FromContext(c.Request.Context()))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetOrgStats(c *gin.Context) {
	stats, err := s.jobSvc.GetOrgStats(c.Request.Context(), identity.FromContext(c.Request.Context()))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}

func (s *Server) ListOrgApplications(c *gin.Context) {
	var req appdomain.ListForOrgRequest
	if raw := strings.TrimSpace(c.Query("job_id")); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil || id == 0 {
			AbortWithError(c, newValidationError("job_id", "invalid_job_id", "invalid job_id"))
			return
		}
		req.JobID = &id
	}

	items, err := s.appSvc.ListForOrg(c.Request.Context(), identity.FromContext(c.Request.Context()), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}
