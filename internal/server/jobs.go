package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	"github.com/smallbiznis/hirewire/internal/identity"
	jobdomain "github.com/smallbiznis/hirewire/internal/job/domain"
	"github.com/smallbiznis/hirewire/pkg/db/pagination"
)

func (s *Server) ListJobs(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Type     string `form:"type"`
		Location string `form:"location"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.jobSvc.ListJobs(c.Request.Context(), jobdomain.ListJobsRequest{
		Type:       jobdomain.JobType(strings.TrimSpace(query.Type)),
		Location:   strings.TrimSpace(query.Location),
		Pagination: query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Jobs, "page_info": resp.PageInfo})
}

func (s *Server) GetFeaturedJobs(c *gin.Context) {
	jobs, err := s.jobSvc.GetFeaturedJobs(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": jobs})
}

func (s *Server) SearchJobs(c *gin.Context) {
	jobs, err := s.jobSvc.SearchJobs(c.Request.Context(), jobdomain.SearchJobsRequest{
		Query:    strings.TrimSpace(c.Query("q")),
		Type:     jobdomain.JobType(strings.TrimSpace(c.Query("type"))),
		Location: strings.TrimSpace(c.Query("location")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": jobs})
}

func (s *Server) GetJob(c *gin.Context) {
	id, ok := jobIDParam(c)
	if !ok {
		return
	}

	item, err := s.jobSvc.GetJob(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) CreateJob(c *gin.Context) {
	var req jobdomain.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.jobSvc.CreateJob(c.Request.Context(), identity.FromContext(c.Request.Context()), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (s *Server) UpdateJob(c *gin.Context) {
	id, ok := jobIDParam(c)
	if !ok {
		return
	}

	var req jobdomain.UpdateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.jobSvc.UpdateJob(c.Request.Context(), identity.FromContext(c.Request.Context()), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) CloseJob(c *gin.Context) {
	id, ok := jobIDParam(c)
	if !ok {
		return
	}

	item, err := s.jobSvc.CloseJob(c.Request.Context(), identity.FromContext(c.Request.Context()), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func jobIDParam(c *gin.Context) (snowflake.ID, bool) {
	raw := strings.TrimSpace(c.Param("id"))
	id, err := snowflake.ParseString(raw)
	if err != nil || id == 0 {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return 0, false
	}
	return id, true
}
