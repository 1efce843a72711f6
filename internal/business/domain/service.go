package domain

import (
	"context"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	GetByEmail(ctx context.Context, email string) (*Response, error)
}

type CreateRequest struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	BusinessType string  `json:"business_type"`
	AccountType  string  `json:"account_type"`
	Address      string  `json:"address"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	Neighborhood string  `json:"neighborhood"`
	ZipCode      string  `json:"zip_code"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

type Response struct {
	ID           string    `json:"id"`
	Name         *string   `json:"name,omitempty"`
	Email        *string   `json:"email,omitempty"`
	BusinessType string    `json:"business_type"`
	AccountType  string    `json:"account_type"`
	Address      *string   `json:"address,omitempty"`
	City         *string   `json:"city,omitempty"`
	State        *string   `json:"state,omitempty"`
	Neighborhood string    `json:"neighborhood"`
	Zip          *string   `json:"zip,omitempty"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	RegionID     *string   `json:"region_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
