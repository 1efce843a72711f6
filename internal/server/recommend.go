package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	recommenddomain "github.com/greensupply/greensupply/internal/recommend/domain"
)

type recommendGroupRequest struct {
	GroupID     string `json:"group_id"`
	Constraints string `json:"constraints"`
}

func (s *Server) RecommendGroup(c *gin.Context) {
	var req recommendGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.recommendSvc.Group(c.Request.Context(), recommenddomain.GroupRequest{
		GroupID:     strings.TrimSpace(req.GroupID),
		Constraints: req.Constraints,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type recommendDashboardRequest struct {
	BusinessName string `json:"business_name"`
}

func (s *Server) RecommendDashboard(c *gin.Context) {
	var req recommendDashboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.recommendSvc.Dashboard(c.Request.Context(), recommenddomain.DashboardRequest{
		BusinessName:   strings.TrimSpace(req.BusinessName),
		CityBusinesses: s.cfg.Impact.CityProjectionBusinesses,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RecommendGroupOpportunities(c *gin.Context) {
	businessID := strings.TrimSpace(c.Query("business_id"))

	resp, err := s.recommendSvc.GroupOpportunities(c.Request.Context(), recommenddomain.OpportunitiesRequest{
		BusinessID: businessID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
