// Package cost prices ambulance trips from the configured fleet constants.
package cost

import (
	"github.com/kisumu-dev/referral-dispatch/internal/config"
)

// Breakdown is the itemized cost of a single trip in Kenyan Shillings.
type Breakdown struct {
	FuelUsedLiters   float64 `json:"fuel_used_liters"`
	FuelCostKsh      float64 `json:"fuel_cost_ksh"`
	OperatingCostKsh float64 `json:"operating_cost_ksh"`
	TotalCostKsh     float64 `json:"total_cost_ksh"`
}

// SavingsEstimator derives a savings figure for a completed trip. The default
// is a flat fraction of actual cost; a real alternative-route comparison can
// be swapped in without touching the ledger.
type SavingsEstimator interface {
	EstimateSavings(actual Breakdown) float64
}

// FixedFractionSavings estimates savings as a fixed share of total trip cost.
type FixedFractionSavings struct {
	Fraction float64
}

// EstimateSavings returns Fraction * total cost.
func (f FixedFractionSavings) EstimateSavings(actual Breakdown) float64 {
	return actual.TotalCostKsh * f.Fraction
}

// DefaultSavingsFraction is the placeholder heuristic carried over from the
// dashboard's KPI layer.
const DefaultSavingsFraction = 0.15

// Model prices trips from injected constants. Safe for concurrent reads.
type Model struct {
	params  config.Cost
	savings SavingsEstimator
}

// NewModel builds a cost model. A nil estimator falls back to the fixed
// 15% fraction.
func NewModel(params config.Cost, savings SavingsEstimator) *Model {
	if savings == nil {
		savings = FixedFractionSavings{Fraction: DefaultSavingsFraction}
	}
	return &Model{params: params, savings: savings}
}

// TripCost itemizes the cost of covering distanceKm at the given consumption
// rate. A rate of zero means the vehicle-specific rate is unknown and the
// fleet average applies.
func (m *Model) TripCost(distanceKm, fuelConsumptionRate float64) Breakdown {
	if fuelConsumptionRate == 0 {
		fuelConsumptionRate = m.params.AverageFuelConsumption
	}

	fuelUsed := distanceKm * fuelConsumptionRate
	fuelCost := fuelUsed * m.params.FuelPricePerLiter
	operatingCost := distanceKm * m.params.BaseOperatingCostPerKm

	return Breakdown{
		FuelUsedLiters:   fuelUsed,
		FuelCostKsh:      fuelCost,
		OperatingCostKsh: operatingCost,
		TotalCostKsh:     fuelCost + operatingCost,
	}
}

// EstimateSavings applies the injected savings strategy.
func (m *Model) EstimateSavings(actual Breakdown) float64 {
	return m.savings.EstimateSavings(actual)
}

// PotentialSavings compares an actual trip cost against an alternative and
// clamps at zero: the KPI layer never reports savings as a loss.
func PotentialSavings(actualCost, alternativeCost float64) float64 {
	if s := alternativeCost - actualCost; s > 0 {
		return s
	}
	return 0
}

// Compare returns the signed cost delta (alternative minus actual) so a
// reporting view can surface true losses that PotentialSavings clamps away.
func Compare(actualCost, alternativeCost float64) float64 {
	return alternativeCost - actualCost
}
