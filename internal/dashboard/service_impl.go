package dashboard

import (
	"context"
	"sort"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/greensupply/greensupply/internal/dashboard/domain"
	groupdomain "github.com/greensupply/greensupply/internal/group/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("dashboard.service"),
		repo: p.Repo,
	}
}

func (s *Service) BusinessSummary(ctx context.Context, businessID string) (*domain.BusinessSummary, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(businessID))
	if err != nil {
		return &domain.BusinessSummary{}, nil
	}

	rows, err := s.repo.FindCommitmentRows(ctx, s.db, parsed.Int64())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &domain.BusinessSummary{}, nil
	}

	totalSavings := decimal.Zero
	totalRetailCost := decimal.Zero
	totalCO2 := decimal.Zero
	totalPlastic := decimal.Zero
	totalUnits := 0
	confirmedCount := 0
	var confirmationHours []float64

	for _, row := range rows {
		units := decimal.NewFromInt(int64(row.Units))
		totalUnits += row.Units

		retailCost := units.Mul(row.RetailUnitPrice)
		totalRetailCost = totalRetailCost.Add(retailCost)
		totalSavings = totalSavings.Add(retailCost.Sub(units.Mul(row.BulkUnitPrice)))

		totalCO2 = totalCO2.Add(units.Mul(row.CO2PerUnitKg))
		totalPlastic = totalPlastic.Add(units.Mul(row.PlasticAvoidedPerUnitKg))

		if row.GroupStatus == groupdomain.StatusConfirmed || row.GroupStatus == groupdomain.StatusCompleted {
			confirmedCount++
			if row.GroupConfirmedAt != nil {
				hours := row.GroupConfirmedAt.Sub(row.CommittedAt).Hours()
				if hours >= 0 {
					confirmationHours = append(confirmationHours, round2(hours))
				}
			}
		}
	}

	groupsJoined := len(rows)
	conversionRate := round2(float64(confirmedCount) / float64(groupsJoined) * 100)

	weightedSavingsPct := 0.0
	if totalRetailCost.IsPositive() {
		weightedSavingsPct = totalSavings.
			Div(totalRetailCost).
			Mul(decimal.NewFromInt(100)).
			Round(2).
			InexactFloat64()
	}

	summary := &domain.BusinessSummary{
		YourTotalSavingsUSD:     totalSavings.Round(2).InexactFloat64(),
		YourWeightedSavingsPct:  weightedSavingsPct,
		YourGroupsJoined:        groupsJoined,
		YourGroupConversionRate: conversionRate,
		YourUnitsCommitted:      totalUnits,
		YourCO2SavedKg:          totalCO2.Round(4).InexactFloat64(),
		YourPlasticAvoidedKg:    totalPlastic.Round(4).InexactFloat64(),
	}
	if len(confirmationHours) > 0 {
		median := round2(median(confirmationHours))
		summary.YourMedianTimeToConfirmationHours = &median
	}
	return summary, nil
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func round2(value float64) float64 {
	return decimal.NewFromFloat(value).Round(2).InexactFloat64()
}
