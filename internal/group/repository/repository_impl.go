package repository

import (
	"context"
	"time"

	"github.com/greensupply/greensupply/internal/group/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, group *domain.BuyingGroup) error {
	return db.WithContext(ctx).Create(group).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.BuyingGroup, error) {
	var group domain.BuyingGroup
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&group).Error
	if err != nil {
		return nil, err
	}
	if group.ID == 0 {
		return nil, nil
	}
	return &group, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id int64) (*domain.BuyingGroup, error) {
	query := `SELECT id, product_id, created_by_business_id, supplier_business_id, supplier_product_id,
	        region_id, target_units, min_businesses_required, deadline, status, confirmed_at, created_at
	 FROM buying_groups
	 WHERE id = ?
	 LIMIT 1`
	if tx.Dialector.Name() != "sqlite" {
		query += " FOR UPDATE"
	}

	var group domain.BuyingGroup
	if err := tx.WithContext(ctx).Raw(query, id).Scan(&group).Error; err != nil {
		return nil, err
	}
	if group.ID == 0 {
		return nil, nil
	}
	return &group, nil
}

func (r *repo) FindVisible(ctx context.Context, db *gorm.DB) ([]domain.BuyingGroup, error) {
	var groups []domain.BuyingGroup
	err := db.WithContext(ctx).
		Where("status IN ?", []string{
			domain.StatusActive,
			domain.StatusCapacityReached,
			domain.StatusConfirmed,
		}).
		Order("created_at DESC, id DESC").
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *repo) UpdateStatus(ctx context.Context, tx *gorm.DB, id int64, status string, confirmedAt *time.Time) error {
	return tx.WithContext(ctx).Exec(
		`UPDATE buying_groups
		 SET status = ?, confirmed_at = ?
		 WHERE id = ?`,
		status,
		confirmedAt,
		id,
	).Error
}

func (r *repo) InsertCommitment(ctx context.Context, tx *gorm.DB, commitment *domain.GroupCommitment) error {
	return tx.WithContext(ctx).Create(commitment).Error
}

func (r *repo) FindCommitment(ctx context.Context, db *gorm.DB, groupID, businessID int64) (*domain.GroupCommitment, error) {
	var commitment domain.GroupCommitment
	err := db.WithContext(ctx).
		Where("group_id = ? AND business_id = ?", groupID, businessID).
		Limit(1).
		Find(&commitment).Error
	if err != nil {
		return nil, err
	}
	if commitment.ID == 0 {
		return nil, nil
	}
	return &commitment, nil
}

func (r *repo) FindCommitments(ctx context.Context, db *gorm.DB, groupID int64) ([]domain.GroupCommitment, error) {
	var commitments []domain.GroupCommitment
	err := db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at ASC, id ASC").
		Find(&commitments).Error
	if err != nil {
		return nil, err
	}
	return commitments, nil
}

func (r *repo) Rollups(ctx context.Context, db *gorm.DB, groupIDs []int64) (map[int64]domain.Rollup, error) {
	rollups := make(map[int64]domain.Rollup)
	if len(groupIDs) == 0 {
		return rollups, nil
	}

	var rows []struct {
		GroupID       int64
		CurrentUnits  int
		BusinessCount int
	}
	err := db.WithContext(ctx).
		Table("group_commitments").
		Select("group_id, COALESCE(SUM(units), 0) AS current_units, COUNT(DISTINCT business_id) AS business_count").
		Where("group_id IN ?", groupIDs).
		Group("group_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		rollups[row.GroupID] = domain.Rollup{
			CurrentUnits:  row.CurrentUnits,
			BusinessCount: row.BusinessCount,
		}
	}
	return rollups, nil
}

func (r *repo) Participants(ctx context.Context, db *gorm.DB, groupID int64) ([]domain.Participant, error) {
	var rows []domain.Participant
	err := db.WithContext(ctx).
		Table("group_commitments").
		Select(`businesses.id AS business_id, businesses.name, businesses.email, businesses.address,
		        businesses.latitude, businesses.longitude, group_commitments.units`).
		Joins("JOIN businesses ON businesses.id = group_commitments.business_id").
		Where("group_commitments.group_id = ?", groupID).
		Order("group_commitments.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) InsertConfirmedOrder(ctx context.Context, tx *gorm.DB, order *domain.SupplierConfirmedOrder) error {
	return tx.WithContext(ctx).Create(order).Error
}

func (r *repo) FindConfirmedOrderByGroup(ctx context.Context, db *gorm.DB, groupID int64) (*domain.SupplierConfirmedOrder, error) {
	var order domain.SupplierConfirmedOrder
	err := db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Limit(1).
		Find(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) UpdateOrderSchedule(ctx context.Context, db *gorm.DB, orderID int64, schedule domain.OrderSchedule) error {
	return db.WithContext(ctx).
		Model(&domain.SupplierConfirmedOrder{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"scheduled_start_at":  schedule.ScheduledStartAt,
			"estimated_end_at":    schedule.EstimatedEndAt,
			"route_total_miles":   schedule.RouteTotalMiles,
			"route_total_minutes": schedule.RouteTotalMinutes,
			"route_points":        datatypes.NewJSONSlice(schedule.RoutePoints),
		}).Error
}
