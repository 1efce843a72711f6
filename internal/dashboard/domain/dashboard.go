package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service interface {
	BusinessSummary(ctx context.Context, businessID string) (*BusinessSummary, error)
}

// BusinessSummary is the 8-figure per-business dashboard rollup.
type BusinessSummary struct {
	YourTotalSavingsUSD               float64  `json:"your_total_savings_usd"`
	YourWeightedSavingsPct            float64  `json:"your_weighted_savings_pct"`
	YourGroupsJoined                  int      `json:"your_groups_joined"`
	YourGroupConversionRate           float64  `json:"your_group_conversion_rate"`
	YourMedianTimeToConfirmationHours *float64 `json:"your_median_time_to_confirmation_hours"`
	YourUnitsCommitted                int      `json:"your_units_committed"`
	YourCO2SavedKg                    float64  `json:"your_co2_saved_kg"`
	YourPlasticAvoidedKg              float64  `json:"your_plastic_avoided_kg"`
}

// CommitmentRow is one of the business's commitments joined with its
// group's status and product economics.
type CommitmentRow struct {
	Units                   int
	CommittedAt             time.Time
	GroupStatus             string
	GroupConfirmedAt        *time.Time
	RetailUnitPrice         decimal.Decimal
	BulkUnitPrice           decimal.Decimal
	CO2PerUnitKg            decimal.Decimal
	PlasticAvoidedPerUnitKg decimal.Decimal
}

type Repository interface {
	FindCommitmentRows(ctx context.Context, db *gorm.DB, businessID int64) ([]CommitmentRow, error)
}
