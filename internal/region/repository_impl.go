package region

import (
	"context"
	"strings"

	"github.com/greensupply/greensupply/internal/region/domain"
	"gorm.io/gorm"
)

// ZipRegionFallback maps SF zip codes to region codes for addresses the
// geocoder cannot place inside a grid cell.
var ZipRegionFallback = map[string]string{
	"94102": "SF-2-2",
	"94103": "SF-2-3",
	"94107": "SF-3-3",
	"94109": "SF-1-2",
	"94110": "SF-3-2",
	"94114": "SF-2-1",
	"94117": "SF-2-1",
	"94118": "SF-1-1",
}

type repo struct{}

func ProvideRepository() domain.Repository {
	return &repo{}
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB) ([]domain.Region, error) {
	var items []domain.Region
	err := db.WithContext(ctx).
		Order("row_index ASC, col_index ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindByPoint(ctx context.Context, db *gorm.DB, lat, lng float64) (*domain.Region, error) {
	var region domain.Region
	err := db.WithContext(ctx).
		Where("min_lat <= ? AND max_lat >= ? AND min_lng <= ? AND max_lng >= ?", lat, lat, lng, lng).
		Limit(1).
		Find(&region).Error
	if err != nil {
		return nil, err
	}
	if region.ID == 0 {
		return nil, nil
	}
	return &region, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Region, error) {
	var region domain.Region
	err := db.WithContext(ctx).
		Where("code = ?", strings.TrimSpace(code)).
		Limit(1).
		Find(&region).Error
	if err != nil {
		return nil, err
	}
	if region.ID == 0 {
		return nil, nil
	}
	return &region, nil
}

// FindByZipFallback resolves a region from the static zip fallback table.
func FindByZipFallback(ctx context.Context, db *gorm.DB, r domain.Repository, zip string) (*domain.Region, error) {
	code, ok := ZipRegionFallback[strings.TrimSpace(zip)]
	if !ok {
		return nil, nil
	}
	return r.FindByCode(ctx, db, code)
}
