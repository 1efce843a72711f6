package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	FindAll(ctx context.Context, db *gorm.DB) ([]Region, error)
	FindByPoint(ctx context.Context, db *gorm.DB, lat, lng float64) (*Region, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Region, error)
}
