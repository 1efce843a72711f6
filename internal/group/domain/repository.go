package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Rollup is the committed-units summary for one group, derived from
// committed commitment rows only.
type Rollup struct {
	CurrentUnits  int
	BusinessCount int
}

// Participant is a committed business with enough detail for delivery
// routing and notification.
type Participant struct {
	BusinessID int64
	Name       *string
	Email      *string
	Address    *string
	Latitude   *float64
	Longitude  *float64
	Units      int
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, group *BuyingGroup) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*BuyingGroup, error)
	// FindByIDForUpdate locks the group row for the duration of the
	// surrounding transaction on dialects that support row locks.
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id int64) (*BuyingGroup, error)
	FindVisible(ctx context.Context, db *gorm.DB) ([]BuyingGroup, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id int64, status string, confirmedAt *time.Time) error

	InsertCommitment(ctx context.Context, tx *gorm.DB, commitment *GroupCommitment) error
	FindCommitment(ctx context.Context, db *gorm.DB, groupID, businessID int64) (*GroupCommitment, error)
	FindCommitments(ctx context.Context, db *gorm.DB, groupID int64) ([]GroupCommitment, error)
	Rollups(ctx context.Context, db *gorm.DB, groupIDs []int64) (map[int64]Rollup, error)
	Participants(ctx context.Context, db *gorm.DB, groupID int64) ([]Participant, error)

	InsertConfirmedOrder(ctx context.Context, tx *gorm.DB, order *SupplierConfirmedOrder) error
	FindConfirmedOrderByGroup(ctx context.Context, db *gorm.DB, groupID int64) (*SupplierConfirmedOrder, error)
	UpdateOrderSchedule(ctx context.Context, db *gorm.DB, orderID int64, schedule OrderSchedule) error
}

// OrderSchedule is the post-confirmation delivery plan written onto a
// confirmed order by the notification dispatcher.
type OrderSchedule struct {
	ScheduledStartAt  time.Time
	EstimatedEndAt    time.Time
	RouteTotalMiles   float64
	RouteTotalMinutes float64
	RoutePoints       [][]float64
}
