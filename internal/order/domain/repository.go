package domain

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OrderRow is a confirmed order joined with its group's catalog product
// and supplier product names.
type OrderRow struct {
	ID                  int64
	SupplierBusinessID  int64
	SupplierProductID   *int64
	GroupID             int64
	TotalUnits          int
	BusinessCount       int
	Status              string
	ScheduledStartAt    *time.Time
	EstimatedEndAt      *time.Time
	RouteTotalMiles     *float64
	RouteTotalMinutes   *float64
	RoutePoints         datatypes.JSONSlice[[]float64]
	CreatedAt           time.Time
	ProductName         *string
	SupplierProductName *string
}

// DisplayProductName prefers the supplier's lot name over the catalog name.
func (r *OrderRow) DisplayProductName() *string {
	if r.SupplierProductName != nil && *r.SupplierProductName != "" {
		return r.SupplierProductName
	}
	return r.ProductName
}

type Repository interface {
	FindOrders(ctx context.Context, db *gorm.DB, supplierBusinessID *int64) ([]OrderRow, error)
	FindOrdersForBusiness(ctx context.Context, db *gorm.DB, businessID int64) ([]OrderRow, error)
	CommittedUnits(ctx context.Context, db *gorm.DB, groupID, businessID int64) (int, error)
	// MarkCompleted flips an order and its group to completed.
	MarkCompleted(ctx context.Context, db *gorm.DB, orderID, groupID int64) error
}
