package domain

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

const (
	StatusActive          = "active"
	StatusCapacityReached = "capacity_reached"
	StatusConfirmed       = "confirmed"
	StatusCompleted       = "completed"
)

// IsTerminal reports whether a group can no longer accept commitments.
func IsTerminal(status string) bool {
	return status == StatusConfirmed || status == StatusCompleted
}

// BuyingGroup is a time-boxed pooled order for one product, open to
// businesses in one region. Status is mutated only by the confirmation
// state machine.
type BuyingGroup struct {
	ID                    int64      `json:"id" gorm:"primaryKey"`
	ProductID             int64      `json:"product_id" gorm:"not null;index"`
	CreatedByBusinessID   int64      `json:"created_by_business_id" gorm:"not null"`
	SupplierBusinessID    *int64     `json:"supplier_business_id,omitempty"`
	SupplierProductID     *int64     `json:"supplier_product_id,omitempty" gorm:"index"`
	RegionID              int64      `json:"region_id" gorm:"not null;index"`
	TargetUnits           int        `json:"target_units" gorm:"not null"`
	MinBusinessesRequired int        `json:"min_businesses_required" gorm:"not null;default:5"`
	Deadline              *time.Time `json:"deadline,omitempty"`
	Status                string     `json:"status" gorm:"type:text;not null;default:active;index"`
	ConfirmedAt           *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at" gorm:"not null"`
}

func (BuyingGroup) TableName() string { return "buying_groups" }

// GroupCommitment is a business's pledge of units to a group. Append-only,
// at most one row per (group, business) pair.
type GroupCommitment struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	GroupID    int64     `json:"group_id" gorm:"not null;uniqueIndex:uq_group_commitments_group_business,priority:1"`
	BusinessID int64     `json:"business_id" gorm:"not null;uniqueIndex:uq_group_commitments_group_business,priority:2"`
	Units      int       `json:"units" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"not null"`
}

func (GroupCommitment) TableName() string { return "group_commitments" }

// SupplierConfirmedOrder records the one-time reservation of supplier
// inventory for a confirmed group. Route and scheduling columns are filled
// in after commit by the notification dispatcher.
type SupplierConfirmedOrder struct {
	ID                 int64                          `json:"id" gorm:"primaryKey"`
	SupplierBusinessID int64                          `json:"supplier_business_id" gorm:"not null;index"`
	SupplierProductID  *int64                         `json:"supplier_product_id,omitempty"`
	GroupID            int64                          `json:"group_id" gorm:"not null;uniqueIndex:uq_supplier_confirmed_orders_group_id"`
	TotalUnits         int                            `json:"total_units" gorm:"not null"`
	BusinessCount      int                            `json:"business_count" gorm:"not null"`
	Status             string                         `json:"status" gorm:"type:text;not null;default:confirmed"`
	ScheduledStartAt   *time.Time                     `json:"scheduled_start_at,omitempty"`
	EstimatedEndAt     *time.Time                     `json:"estimated_end_at,omitempty"`
	RouteTotalMiles    *float64                       `json:"route_total_miles,omitempty"`
	RouteTotalMinutes  *float64                       `json:"route_total_minutes,omitempty"`
	RoutePoints        datatypes.JSONSlice[[]float64] `json:"route_points,omitempty" gorm:"type:json"`
	CreatedAt          time.Time                      `json:"created_at" gorm:"not null"`
}

func (SupplierConfirmedOrder) TableName() string { return "supplier_confirmed_orders" }

var (
	ErrNotFound              = errors.New("Group not found")
	ErrInvalidUnits          = errors.New("units must be greater than 0")
	ErrNotBusinessAccount    = errors.New("Only business accounts can join groups")
	ErrCreatorNotBusiness    = errors.New("Only business accounts can create buying groups")
	ErrNoRegion              = errors.New("Business must be assigned to a region before joining groups")
	ErrCreatorNoRegion       = errors.New("Business must be assigned to a region before creating a group")
	ErrRegionMismatch        = errors.New("Businesses can only join groups in the same region")
	ErrSupplierRegion        = errors.New("Supplier must be in the same region as the buying group")
	ErrNotJoinable           = errors.New("Group is already confirmed")
	ErrDuplicateCommitment   = errors.New("Business has already joined this group")
	ErrSupplierMismatch      = errors.New("Supplier product does not belong to supplier_business_id")
	ErrSupplierInactive      = errors.New("Supplier product is not active")
	ErrSupplierOutOfStock    = errors.New("Supplier product is out of stock")
	ErrNotSupplierReference  = errors.New("supplier_business_id must reference a supplier account")
	ErrInsufficientInventory = errors.New("Supplier inventory is insufficient for confirmation")
	ErrNotGroupSupplier      = errors.New("Only the group's supplier can approve this group")
	ErrNoCommittedUnits      = errors.New("Cannot approve a group with no committed units")
)

// CapacityExceededError rejects a join that would push committed units past
// the group's effective capacity. Remaining is the capacity still open at
// the moment of evaluation.
type CapacityExceededError struct {
	Remaining int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("Requested units exceed remaining group capacity (%d units left)", e.Remaining)
}
