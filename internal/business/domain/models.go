package domain

import (
	"errors"
	"time"
)

const (
	AccountTypeBusiness = "business"
	AccountTypeSupplier = "supplier"
)

// Business is a participating account: either an ordinary business that
// joins buying groups or a supplier that offers inventory.
type Business struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Name         *string   `json:"name,omitempty" gorm:"type:text"`
	Email        *string   `json:"email,omitempty" gorm:"type:text"`
	BusinessType string    `json:"business_type" gorm:"type:text;not null"`
	AccountType  string    `json:"account_type" gorm:"type:text;not null;default:business"`
	Address      *string   `json:"address,omitempty" gorm:"type:text"`
	City         *string   `json:"city,omitempty" gorm:"type:text"`
	State        *string   `json:"state,omitempty" gorm:"type:text"`
	Neighborhood string    `json:"neighborhood" gorm:"type:text;not null"`
	Zip          *string   `json:"zip,omitempty" gorm:"type:text"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	RegionID     *int64    `json:"region_id,omitempty" gorm:"index"`
	CreatedAt    time.Time `json:"created_at" gorm:"not null"`
}

func (Business) TableName() string { return "businesses" }

var (
	ErrNotFound            = errors.New("Business not found")
	ErrInvalidAccountType  = errors.New("account_type must be either 'business' or 'supplier'")
	ErrMissingBusinessType = errors.New("business_type is required for business accounts")
	ErrOutsideServiceArea  = errors.New("Address geocoded outside San Francisco; only SF businesses are supported")
	ErrSupplierOutsideUS   = errors.New("Supplier address must be inside the United States")
	ErrNoRegion            = errors.New("Could not assign region from address/coordinates")
)
