package repository

import (
	"context"

	"github.com/greensupply/greensupply/internal/supplier/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, product *domain.SupplierProduct) error {
	return db.WithContext(ctx).Create(product).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.SupplierProduct, error) {
	var product domain.SupplierProduct
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&product).Error
	if err != nil {
		return nil, err
	}
	if product.ID == 0 {
		return nil, nil
	}
	return &product, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id int64) (*domain.SupplierProduct, error) {
	query := `SELECT id, supplier_business_id, name, category, material, available_units,
	        unit_price, min_order_units, status, created_at, updated_at
	 FROM supplier_products
	 WHERE id = ?
	 LIMIT 1`
	if tx.Dialector.Name() != "sqlite" {
		query += " FOR UPDATE"
	}

	var product domain.SupplierProduct
	if err := tx.WithContext(ctx).Raw(query, id).Scan(&product).Error; err != nil {
		return nil, err
	}
	if product.ID == 0 {
		return nil, nil
	}
	return &product, nil
}

func (r *repo) FindActive(ctx context.Context, db *gorm.DB, supplierBusinessID *int64) ([]domain.SupplierProduct, error) {
	stmt := db.WithContext(ctx).
		Where("status = ?", domain.StatusActive)
	if supplierBusinessID != nil {
		stmt = stmt.Where("supplier_business_id = ?", *supplierBusinessID)
	}

	var items []domain.SupplierProduct
	err := stmt.
		Order("created_at DESC, id DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ReservedUnits(ctx context.Context, db *gorm.DB, productIDs []int64, excludeGroupID int64) (map[int64]int, error) {
	reserved := make(map[int64]int)
	if len(productIDs) == 0 {
		return reserved, nil
	}

	var rows []struct {
		SupplierProductID int64
		ReservedUnits     int
	}
	stmt := db.WithContext(ctx).
		Table("buying_groups").
		Select("buying_groups.supplier_product_id AS supplier_product_id, COALESCE(SUM(group_commitments.units), 0) AS reserved_units").
		Joins("JOIN group_commitments ON group_commitments.group_id = buying_groups.id").
		Where("buying_groups.status = ?", "active").
		Where("buying_groups.supplier_product_id IN ?", productIDs).
		Group("buying_groups.supplier_product_id")
	if excludeGroupID != 0 {
		stmt = stmt.Where("buying_groups.id <> ?", excludeGroupID)
	}
	if err := stmt.Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		reserved[row.SupplierProductID] = row.ReservedUnits
	}
	return reserved, nil
}

func (r *repo) UpdateInventory(ctx context.Context, tx *gorm.DB, id int64, availableUnits int, status string) error {
	return tx.WithContext(ctx).Exec(
		`UPDATE supplier_products
		 SET available_units = ?, status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		availableUnits,
		status,
		id,
	).Error
}
