package domain

import (
	"context"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
}

type CreateRequest struct {
	SupplierBusinessID string  `json:"supplier_business_id"`
	Name               string  `json:"name"`
	Category           string  `json:"category"`
	Material           string  `json:"material"`
	AvailableUnits     int     `json:"available_units"`
	UnitPrice          float64 `json:"unit_price"`
	MinOrderUnits      int     `json:"min_order_units"`
}

type ListRequest struct {
	SupplierBusinessID string `form:"supplier_business_id"`
}

// Response reports availability net of units reserved by active groups.
type Response struct {
	ID                   string    `json:"id"`
	SupplierBusinessID   string    `json:"supplier_business_id"`
	SupplierBusinessName *string   `json:"supplier_business_name,omitempty"`
	Name                 string    `json:"name"`
	Category             string    `json:"category"`
	Material             string    `json:"material"`
	AvailableUnits       int       `json:"available_units"`
	UnitPrice            float64   `json:"unit_price"`
	MinOrderUnits        int       `json:"min_order_units"`
	Status               string    `json:"status"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}
