package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) BusinessSummary(c *gin.Context) {
	businessID := strings.TrimSpace(c.Query("business_id"))

	resp, err := s.dashboardSvc.BusinessSummary(c.Request.Context(), businessID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
