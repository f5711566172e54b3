package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	appdomain "github.com/smallbiznis/hirewire/internal/application/domain"
	"github.com/smallbiznis/hirewire/internal/identity"
)

func (s *Server) SubmitApplication(c *gin.Context) {
	var req appdomain.SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.appSvc.Submit(c.Request.Context(), identity.FromContext(c.Request.Context()), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (s *Server) HasApplied(c *gin.Context) {
	id, ok := jobIDParam(c)
	if !ok {
		return
	}

	applied, err := s.appSvc.HasApplied(c.Request.Context(), identity.FromContext(c.Request.Context()), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"applied": applied}})
}

func (s *Server) ListMyApplications(c *gin.Context) {
	items, err := s.appSvc.ListMine(c.Request.Context(), identity.FromContext(c.Request.Context()))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) UpdateApplicationStatus(c *gin.Context) {
	raw := strings.TrimSpace(c.Param("id"))
	id, err := snowflake.ParseString(raw)
	if err != nil || id == 0 {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	var req appdomain.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.appSvc.UpdateStatus(c.Request.Context(), identity.FromContext(c.Request.Context()), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}
