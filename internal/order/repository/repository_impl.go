package repository

import (
	"context"

	groupdomain "github.com/greensupply/greensupply/internal/group/domain"
	"github.com/greensupply/greensupply/internal/order/domain"
	"gorm.io/gorm"
)

const orderColumns = `supplier_confirmed_orders.id, supplier_confirmed_orders.supplier_business_id,
	supplier_confirmed_orders.supplier_product_id, supplier_confirmed_orders.group_id,
	supplier_confirmed_orders.total_units, supplier_confirmed_orders.business_count,
	supplier_confirmed_orders.status, supplier_confirmed_orders.scheduled_start_at,
	supplier_confirmed_orders.estimated_end_at, supplier_confirmed_orders.route_total_miles,
	supplier_confirmed_orders.route_total_minutes, supplier_confirmed_orders.route_points,
	supplier_confirmed_orders.created_at,
	products.name AS product_name, supplier_products.name AS supplier_product_name`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindOrders(ctx context.Context, db *gorm.DB, supplierBusinessID *int64) ([]domain.OrderRow, error) {
	stmt := db.WithContext(ctx).
		Table("supplier_confirmed_orders").
		Select(orderColumns).
		Joins("LEFT JOIN buying_groups ON buying_groups.id = supplier_confirmed_orders.group_id").
		Joins("LEFT JOIN products ON products.id = buying_groups.product_id").
		Joins("LEFT JOIN supplier_products ON supplier_products.id = supplier_confirmed_orders.supplier_product_id")
	if supplierBusinessID != nil {
		stmt = stmt.Where("supplier_confirmed_orders.supplier_business_id = ?", *supplierBusinessID)
	}

	var rows []domain.OrderRow
	err := stmt.
		Order("supplier_confirmed_orders.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) FindOrdersForBusiness(ctx context.Context, db *gorm.DB, businessID int64) ([]domain.OrderRow, error) {
	var rows []domain.OrderRow
	err := db.WithContext(ctx).
		Table("supplier_confirmed_orders").
		Select(orderColumns).
		Joins("JOIN buying_groups ON buying_groups.id = supplier_confirmed_orders.group_id").
		Joins("JOIN group_commitments ON group_commitments.group_id = buying_groups.id").
		Joins("LEFT JOIN products ON products.id = buying_groups.product_id").
		Joins("LEFT JOIN supplier_products ON supplier_products.id = supplier_confirmed_orders.supplier_product_id").
		Where("group_commitments.business_id = ?", businessID).
		Order("supplier_confirmed_orders.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) CommittedUnits(ctx context.Context, db *gorm.DB, groupID, businessID int64) (int, error) {
	var units int
	err := db.WithContext(ctx).
		Table("group_commitments").
		Select("COALESCE(SUM(units), 0)").
		Where("group_id = ? AND business_id = ?", groupID, businessID).
		Scan(&units).Error
	if err != nil {
		return 0, err
	}
	return units, nil
}

func (r *repo) MarkCompleted(ctx context.Context, db *gorm.DB, orderID, groupID int64) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Exec(
			`UPDATE supplier_confirmed_orders SET status = ? WHERE id = ?`,
			groupdomain.StatusCompleted,
			orderID,
		).Error
		if err != nil {
			return err
		}
		return tx.Exec(
			`UPDATE buying_groups SET status = ? WHERE id = ?`,
			groupdomain.StatusCompleted,
			groupID,
		).Error
	})
}
