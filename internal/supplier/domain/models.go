package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusActive  = "active"
	StatusSoldOut = "sold_out"
)

// SupplierProduct is a finite inventory lot offered by a supplier account.
// Multiple buying groups may draw against the same lot concurrently;
// available_units only decreases, at group confirmation.
type SupplierProduct struct {
	ID                 int64           `json:"id" gorm:"primaryKey"`
	SupplierBusinessID int64           `json:"supplier_business_id" gorm:"not null;index"`
	Name               string          `json:"name" gorm:"type:text;not null"`
	Category           string          `json:"category" gorm:"type:text;not null"`
	Material           string          `json:"material" gorm:"type:text;not null"`
	AvailableUnits     int             `json:"available_units" gorm:"not null"`
	UnitPrice          decimal.Decimal `json:"unit_price" gorm:"type:numeric(10,4);not null"`
	MinOrderUnits      int             `json:"min_order_units" gorm:"not null;default:1"`
	Status             string          `json:"status" gorm:"type:text;not null;default:active"`
	CreatedAt          time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt          time.Time       `json:"updated_at" gorm:"not null"`
}

func (SupplierProduct) TableName() string { return "supplier_products" }

var (
	ErrNotFound             = errors.New("Supplier product not found")
	ErrSupplierNotFound     = errors.New("Supplier business not found")
	ErrNotSupplierAccount   = errors.New("Business account is not a supplier")
	ErrInvalidUnits         = errors.New("available_units must be greater than 0")
	ErrInvalidUnitPrice     = errors.New("unit_price must be greater than 0")
	ErrInvalidMinOrderUnits = errors.New("min_order_units must be greater than 0")
)
