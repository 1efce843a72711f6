package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListSupplierOrders(c *gin.Context) {
	supplierBusinessID := strings.TrimSpace(c.Query("supplier_business_id"))

	resp, err := s.orderSvc.ListSupplierOrders(c.Request.Context(), supplierBusinessID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListBusinessOrders(c *gin.Context) {
	businessID := strings.TrimSpace(c.Query("business_id"))

	resp, err := s.orderSvc.ListBusinessOrders(c.Request.Context(), businessID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
