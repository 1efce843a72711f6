package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	businessdomain "github.com/greensupply/greensupply/internal/business/domain"
)

type createBusinessRequest struct {
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	BusinessType string   `json:"business_type"`
	AccountType  string   `json:"account_type"`
	Address      string   `json:"address"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	Neighborhood string   `json:"neighborhood"`
	ZipCode      string   `json:"zip_code"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

func (s *Server) CreateBusiness(c *gin.Context) {
	var req createBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.businessSvc.Create(c.Request.Context(), businessdomain.CreateRequest{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		BusinessType: req.BusinessType,
		AccountType:  req.AccountType,
		Address:      strings.TrimSpace(req.Address),
		City:         strings.TrimSpace(req.City),
		State:        strings.TrimSpace(req.State),
		Neighborhood: strings.TrimSpace(req.Neighborhood),
		ZipCode:      strings.TrimSpace(req.ZipCode),
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetBusinessByID(c *gin.Context) {
	resp, err := s.businessSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
