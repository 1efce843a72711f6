package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, product *SupplierProduct) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*SupplierProduct, error)
	// FindByIDForUpdate locks the inventory row for the duration of the
	// surrounding transaction on dialects that support row locks.
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id int64) (*SupplierProduct, error)
	FindActive(ctx context.Context, db *gorm.DB, supplierBusinessID *int64) ([]SupplierProduct, error)
	// ReservedUnits sums committed units across active groups per supplier
	// product, optionally excluding one group from the tally.
	ReservedUnits(ctx context.Context, db *gorm.DB, productIDs []int64, excludeGroupID int64) (map[int64]int, error)
	UpdateInventory(ctx context.Context, tx *gorm.DB, id int64, availableUnits int, status string) error
}
