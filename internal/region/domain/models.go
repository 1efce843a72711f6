package domain

import "time"

// Region is one cell of the fixed delivery grid. Businesses, groups and
// suppliers only interact inside a shared region.
type Region struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Code      string    `json:"code" gorm:"type:text;uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"type:text;not null"`
	RowIndex  int       `json:"row_index" gorm:"not null"`
	ColIndex  int       `json:"col_index" gorm:"not null"`
	MinLat    float64   `json:"min_lat" gorm:"not null"`
	MaxLat    float64   `json:"max_lat" gorm:"not null"`
	MinLng    float64   `json:"min_lng" gorm:"not null"`
	MaxLng    float64   `json:"max_lng" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
}

func (Region) TableName() string { return "regions" }
