package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	FindAll(ctx context.Context, db *gorm.DB) ([]Product, error)
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Product, error)
}
