package domain

import "github.com/shopspring/decimal"

// ProductEconomics carries the per-unit figures the metrics math needs.
type ProductEconomics struct {
	RetailUnitPrice         decimal.Decimal
	BulkUnitPrice           decimal.Decimal
	CO2PerUnitKg            decimal.Decimal
	PlasticAvoidedPerUnitKg decimal.Decimal
}

// DeliveryConstants parameterize the consolidated-delivery estimate.
type DeliveryConstants struct {
	BaselineMilesPerBusiness  float64
	ConsolidatedDeliveryMiles float64
}

// Metrics is the per-group financial and environmental rollup. Floats are
// produced only here, at the serialization boundary.
type Metrics struct {
	CurrentUnits              int     `json:"current_units"`
	BusinessCount             int     `json:"business_count"`
	ProgressPct               float64 `json:"progress_pct"`
	EstimatedSavingsUSD       float64 `json:"estimated_savings_usd"`
	EstimatedSavingsPct       float64 `json:"estimated_savings_pct"`
	EstimatedCO2SavedKg       float64 `json:"estimated_co2_saved_kg"`
	EstimatedPlasticAvoidedKg float64 `json:"estimated_plastic_avoided_kg"`
	DeliveryTripsReduced      int     `json:"delivery_trips_reduced"`
	DeliveryMilesSaved        float64 `json:"delivery_miles_saved"`
}

// CalculateMetrics computes savings and impact figures for a group. Pure,
// no I/O; all monetary math stays in fixed-point decimals.
func CalculateMetrics(econ ProductEconomics, currentUnits, businessCount, targetUnits int, delivery DeliveryConstants) Metrics {
	units := decimal.NewFromInt(int64(currentUnits))
	retailCost := units.Mul(econ.RetailUnitPrice)
	bulkCost := units.Mul(econ.BulkUnitPrice)
	savings := retailCost.Sub(bulkCost)

	co2Saved := units.Mul(econ.CO2PerUnitKg)
	plasticAvoided := units.Mul(econ.PlasticAvoidedPerUnitKg)

	effectiveTarget := targetUnits
	if effectiveTarget < 1 {
		effectiveTarget = 1
	}
	progress := units.
		Div(decimal.NewFromInt(int64(effectiveTarget))).
		Mul(decimal.NewFromInt(100))

	savingsPct := decimal.Zero
	if retailCost.IsPositive() {
		savingsPct = savings.Div(retailCost).Mul(decimal.NewFromInt(100))
	}

	consolidatedDeliveries := 0
	if businessCount > 0 {
		consolidatedDeliveries = 1
	}
	tripsReduced := businessCount - consolidatedDeliveries
	if tripsReduced < 0 {
		tripsReduced = 0
	}

	milesSaved := decimal.NewFromFloat(delivery.BaselineMilesPerBusiness).
		Mul(decimal.NewFromInt(int64(businessCount))).
		Sub(decimal.NewFromFloat(delivery.ConsolidatedDeliveryMiles))
	if milesSaved.IsNegative() {
		milesSaved = decimal.Zero
	}

	return Metrics{
		CurrentUnits:              currentUnits,
		BusinessCount:             businessCount,
		ProgressPct:               progress.Round(2).InexactFloat64(),
		EstimatedSavingsUSD:       savings.Round(2).InexactFloat64(),
		EstimatedSavingsPct:       savingsPct.Round(2).InexactFloat64(),
		EstimatedCO2SavedKg:       co2Saved.Round(4).InexactFloat64(),
		EstimatedPlasticAvoidedKg: plasticAvoided.Round(4).InexactFloat64(),
		DeliveryTripsReduced:      tripsReduced,
		DeliveryMilesSaved:        milesSaved.Round(2).InexactFloat64(),
	}
}
