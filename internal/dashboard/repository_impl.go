package dashboard

import (
	"context"

	"github.com/greensupply/greensupply/internal/dashboard/domain"
	"gorm.io/gorm"
)

type repo struct{}

func ProvideRepository() domain.Repository {
	return &repo{}
}

func (r *repo) FindCommitmentRows(ctx context.Context, db *gorm.DB, businessID int64) ([]domain.CommitmentRow, error) {
	var rows []domain.CommitmentRow
	err := db.WithContext(ctx).
		Table("group_commitments").
		Select(`group_commitments.units, group_commitments.created_at AS committed_at,
		        buying_groups.status AS group_status, buying_groups.confirmed_at AS group_confirmed_at,
		        products.retail_unit_price, products.bulk_unit_price,
		        products.co2_per_unit_kg, products.plastic_avoided_per_unit_kg`).
		Joins("JOIN buying_groups ON buying_groups.id = group_commitments.group_id").
		Joins("JOIN products ON products.id = buying_groups.product_id").
		Where("group_commitments.business_id = ?", businessID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
