package server

import (
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	catalogdomain "github.com/greensupply/greensupply/internal/catalog/domain"
)

type productResponse struct {
	ID                      string   `json:"id"`
	Name                    string   `json:"name"`
	Category                string   `json:"category"`
	Material                string   `json:"material"`
	Certifications          []string `json:"certifications"`
	RetailUnitPrice         float64  `json:"retail_unit_price"`
	BulkUnitPrice           float64  `json:"bulk_unit_price"`
	MinBulkUnits            int      `json:"min_bulk_units"`
	CO2PerUnitKg            float64  `json:"co2_per_unit_kg"`
	PlasticAvoidedPerUnitKg float64  `json:"plastic_avoided_per_unit_kg"`
}

func (s *Server) ListProducts(c *gin.Context) {
	products, err := s.catalogRepo.FindAll(c.Request.Context(), s.db)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp := make([]productResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, toProductResponse(p))
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func toProductResponse(p catalogdomain.Product) productResponse {
	return productResponse{
		ID:                      snowflake.ID(p.ID).String(),
		Name:                    p.Name,
		Category:                p.Category,
		Material:                p.Material,
		Certifications:          p.Certifications,
		RetailUnitPrice:         p.RetailUnitPrice.InexactFloat64(),
		BulkUnitPrice:           p.BulkUnitPrice.InexactFloat64(),
		MinBulkUnits:            p.MinBulkUnits,
		CO2PerUnitKg:            p.CO2PerUnitKg.InexactFloat64(),
		PlasticAvoidedPerUnitKg: p.PlasticAvoidedPerUnitKg.InexactFloat64(),
	}
}

type regionResponse struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	RowIndex  int       `json:"row_index"`
	ColIndex  int       `json:"col_index"`
	MinLat    float64   `json:"min_lat"`
	MaxLat    float64   `json:"max_lat"`
	MinLng    float64   `json:"min_lng"`
	MaxLng    float64   `json:"max_lng"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) ListRegions(c *gin.Context) {
	regions, err := s.regionRepo.FindAll(c.Request.Context(), s.db)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp := make([]regionResponse, 0, len(regions))
	for _, region := range regions {
		resp = append(resp, regionResponse{
			ID:        snowflake.ID(region.ID).String(),
			Code:      region.Code,
			Name:      region.Name,
			RowIndex:  region.RowIndex,
			ColIndex:  region.ColIndex,
			MinLat:    region.MinLat,
			MaxLat:    region.MaxLat,
			MinLng:    region.MinLng,
			MaxLng:    region.MaxLng,
			CreatedAt: region.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
