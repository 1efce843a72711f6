package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	supplierdomain "github.com/greensupply/greensupply/internal/supplier/domain"
)

type createSupplierProductRequest struct {
	SupplierBusinessID string  `json:"supplier_business_id"`
	Name               string  `json:"name"`
	Category           string  `json:"category"`
	Material           string  `json:"material"`
	AvailableUnits     int     `json:"available_units"`
	UnitPrice          float64 `json:"unit_price"`
	MinOrderUnits      int     `json:"min_order_units"`
}

func (s *Server) CreateSupplierProduct(c *gin.Context) {
	var req createSupplierProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.supplierSvc.Create(c.Request.Context(), supplierdomain.CreateRequest{
		SupplierBusinessID: strings.TrimSpace(req.SupplierBusinessID),
		Name:               strings.TrimSpace(req.Name),
		Category:           strings.TrimSpace(req.Category),
		Material:           strings.TrimSpace(req.Material),
		AvailableUnits:     req.AvailableUnits,
		UnitPrice:          req.UnitPrice,
		MinOrderUnits:      req.MinOrderUnits,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListSupplierProducts(c *gin.Context) {
	var query supplierdomain.ListRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.supplierSvc.List(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
