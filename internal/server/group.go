package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	groupdomain "github.com/greensupply/greensupply/internal/group/domain"
)

type createGroupRequest struct {
	ProductID             string     `json:"product_id"`
	CreatedByBusinessID   string     `json:"created_by_business_id"`
	SupplierBusinessID    string     `json:"supplier_business_id"`
	SupplierProductID     string     `json:"supplier_product_id"`
	TargetUnits           int        `json:"target_units"`
	MinBusinessesRequired int        `json:"min_businesses_required"`
	Deadline              *time.Time `json:"deadline"`
}

func (s *Server) CreateGroup(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.groupSvc.Create(c.Request.Context(), groupdomain.CreateRequest{
		ProductID:             strings.TrimSpace(req.ProductID),
		CreatedByBusinessID:   strings.TrimSpace(req.CreatedByBusinessID),
		SupplierBusinessID:    strings.TrimSpace(req.SupplierBusinessID),
		SupplierProductID:     strings.TrimSpace(req.SupplierProductID),
		TargetUnits:           req.TargetUnits,
		MinBusinessesRequired: req.MinBusinessesRequired,
		Deadline:              req.Deadline,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListGroups(c *gin.Context) {
	resp, err := s.groupSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetGroupByID(c *gin.Context) {
	resp, err := s.groupSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type joinGroupRequest struct {
	BusinessID string `json:"business_id"`
	Units      int    `json:"units"`
}

func (s *Server) JoinGroup(c *gin.Context) {
	var req joinGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.groupSvc.Join(c.Request.Context(), groupdomain.JoinRequest{
		GroupID:    strings.TrimSpace(c.Param("id")),
		BusinessID: strings.TrimSpace(req.BusinessID),
		Units:      req.Units,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type approveGroupRequest struct {
	SupplierBusinessID string `json:"supplier_business_id"`
}

func (s *Server) ApproveGroup(c *gin.Context) {
	var req approveGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.groupSvc.Approve(c.Request.Context(), groupdomain.ApproveRequest{
		GroupID:            strings.TrimSpace(c.Param("id")),
		SupplierBusinessID: strings.TrimSpace(req.SupplierBusinessID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GroupImpact(c *gin.Context) {
	resp, err := s.groupSvc.Impact(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
