package domain

import (
	"context"
	"time"
)

type Service interface {
	ListSupplierOrders(ctx context.Context, supplierBusinessID string) ([]SupplierOrderView, error)
	// ListBusinessOrders also reconciles orders whose estimated delivery
	// window has passed to completed.
	ListBusinessOrders(ctx context.Context, businessID string) ([]BusinessOrderView, error)
}

type SupplierOrderView struct {
	ID                 string      `json:"id"`
	SupplierBusinessID string      `json:"supplier_business_id"`
	SupplierProductID  *string     `json:"supplier_product_id,omitempty"`
	GroupID            string      `json:"group_id"`
	TotalUnits         int         `json:"total_units"`
	BusinessCount      int         `json:"business_count"`
	Status             string      `json:"status"`
	ScheduledStartAt   *time.Time  `json:"scheduled_start_at,omitempty"`
	EstimatedEndAt     *time.Time  `json:"estimated_end_at,omitempty"`
	RouteTotalMiles    *float64    `json:"route_total_miles,omitempty"`
	RouteTotalMinutes  *float64    `json:"route_total_minutes,omitempty"`
	RoutePoints        [][]float64 `json:"route_points,omitempty"`
	GroupDisplayName   string      `json:"group_display_name"`
	ProductName        *string     `json:"product_name,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
}

type OrderParticipant struct {
	BusinessID      string  `json:"business_id"`
	BusinessName    *string `json:"business_name,omitempty"`
	BusinessAddress *string `json:"business_address,omitempty"`
	Units           int     `json:"units"`
}

type BusinessOrderView struct {
	ID               string             `json:"id"`
	GroupID          string             `json:"group_id"`
	GroupDisplayName string             `json:"group_display_name"`
	ProductName      *string            `json:"product_name,omitempty"`
	Status           string             `json:"status"`
	ScheduledStartAt *time.Time         `json:"scheduled_start_at,omitempty"`
	EstimatedEndAt   *time.Time         `json:"estimated_end_at,omitempty"`
	TotalUnits       int                `json:"total_units"`
	BusinessCount    int                `json:"business_count"`
	YourUnits        int                `json:"your_units"`
	Participants     []OrderParticipant `json:"participants"`
	CreatedAt        time.Time          `json:"created_at"`
}
