package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Product is a catalog entry for a sustainable packaging product. Rows are
// seeded at startup and immutable afterwards.
type Product struct {
	ID                      int64                       `json:"id" gorm:"primaryKey"`
	Name                    string                      `json:"name" gorm:"type:text;not null"`
	Category                string                      `json:"category" gorm:"type:text;not null"`
	Material                string                      `json:"material" gorm:"type:text;not null"`
	Certifications          datatypes.JSONSlice[string] `json:"certifications" gorm:"type:json"`
	RetailUnitPrice         decimal.Decimal             `json:"retail_unit_price" gorm:"type:numeric(10,4);not null"`
	BulkUnitPrice           decimal.Decimal             `json:"bulk_unit_price" gorm:"type:numeric(10,4);not null"`
	MinBulkUnits            int                         `json:"min_bulk_units" gorm:"not null"`
	CO2PerUnitKg            decimal.Decimal             `json:"co2_per_unit_kg" gorm:"column:co2_per_unit_kg;type:numeric(10,6);not null"`
	PlasticAvoidedPerUnitKg decimal.Decimal             `json:"plastic_avoided_per_unit_kg" gorm:"type:numeric(10,6);not null"`
	CreatedAt               time.Time                   `json:"created_at" gorm:"not null"`
}

func (Product) TableName() string { return "products" }

var ErrNotFound = errors.New("Product not found")
