package domain

import (
	"context"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Detail, error)
	Join(ctx context.Context, req JoinRequest) (*Detail, error)
	Approve(ctx context.Context, req ApproveRequest) (*Detail, error)
	List(ctx context.Context) ([]Summary, error)
	Get(ctx context.Context, groupID string) (*Detail, error)
	Impact(ctx context.Context, groupID string) (*ImpactReport, error)
}

// ConfirmationNotifier receives the post-commit signal that a group has
// confirmed. Implementations must not block the caller.
type ConfirmationNotifier interface {
	GroupConfirmed(groupID int64)
}

type CreateRequest struct {
	ProductID             string     `json:"product_id"`
	CreatedByBusinessID   string     `json:"created_by_business_id"`
	SupplierBusinessID    string     `json:"supplier_business_id"`
	SupplierProductID     string     `json:"supplier_product_id"`
	TargetUnits           int        `json:"target_units"`
	MinBusinessesRequired int        `json:"min_businesses_required"`
	Deadline              *time.Time `json:"deadline"`
}

type JoinRequest struct {
	GroupID    string `json:"-"`
	BusinessID string `json:"business_id"`
	Units      int    `json:"units"`
}

type ApproveRequest struct {
	GroupID            string `json:"-"`
	SupplierBusinessID string `json:"supplier_business_id"`
}

// ProductView is the catalog slice embedded in group payloads.
type ProductView struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Category        string   `json:"category"`
	Material        string   `json:"material,omitempty"`
	Certifications  []string `json:"certifications,omitempty"`
	RetailUnitPrice float64  `json:"retail_unit_price"`
	BulkUnitPrice   float64  `json:"bulk_unit_price"`
	MinBulkUnits    int      `json:"min_bulk_units"`
}

// Summary is the list-view projection of a group with its rollup metrics.
type Summary struct {
	ID                     string      `json:"id"`
	Status                 string      `json:"status"`
	RegionID               string      `json:"region_id"`
	SupplierBusinessID     *string     `json:"supplier_business_id,omitempty"`
	SupplierProductID      *string     `json:"supplier_product_id,omitempty"`
	SupplierAvailableUnits *int        `json:"supplier_available_units,omitempty"`
	MinBusinessesRequired  int         `json:"min_businesses_required"`
	ConfirmedAt            *time.Time  `json:"confirmed_at,omitempty"`
	Deadline               *time.Time  `json:"deadline,omitempty"`
	TargetUnits            int         `json:"target_units"`
	RemainingUnits         int         `json:"remaining_units"`
	Product                ProductView `json:"product"`
	Metrics
}

// CommitmentView is one business's pledge as exposed on group detail.
type CommitmentView struct {
	ID         string    `json:"id"`
	BusinessID string    `json:"business_id"`
	Units      int       `json:"units"`
	CreatedAt  time.Time `json:"created_at"`
}

// Detail extends Summary with creator and per-commitment breakdown.
type Detail struct {
	Summary
	CreatedByBusinessID string           `json:"created_by_business_id"`
	Commitments         []CommitmentView `json:"commitments"`
}

// CityProjection scales a group's impact to a city-wide yearly estimate.
type CityProjection struct {
	Businesses               int     `json:"businesses"`
	YearlyCO2SavedKg         float64 `json:"yearly_co2_saved_kg"`
	YearlyPlasticAvoidedKg   float64 `json:"yearly_plastic_avoided_kg"`
	YearlyDeliveryMilesSaved float64 `json:"yearly_delivery_miles_saved"`
}

type ImpactReport struct {
	GroupID                   string         `json:"group_id"`
	CurrentUnits              int            `json:"current_units"`
	EstimatedSavingsUSD       float64        `json:"estimated_savings_usd"`
	EstimatedCO2SavedKg       float64        `json:"estimated_co2_saved_kg"`
	EstimatedPlasticAvoidedKg float64        `json:"estimated_plastic_avoided_kg"`
	DeliveryMilesSaved        float64        `json:"delivery_miles_saved"`
	DeliveryTripsReduced      int            `json:"delivery_trips_reduced"`
	CityScaleProjection       CityProjection `json:"city_scale_projection"`
}
