package fleet

import (
	"context"

	"github.com/kisumu-dev/referral-dispatch/internal/db"
	"github.com/kisumu-dev/referral-dispatch/internal/models"
)

// KPIs is the dashboard snapshot of fleet and referral activity.
type KPIs struct {
	TotalReferrals      int     `json:"total_referrals"`
	ActiveReferrals     int     `json:"active_referrals"`
	CompletedTrips      int     `json:"completed_trips"`
	AvailableAmbulances int     `json:"available_ambulances"`
	FleetSize           int     `json:"fleet_size"`
	TotalDistanceKm     float64 `json:"total_distance_km"`
	TotalFuelCostKsh    float64 `json:"total_fuel_cost_ksh"`
	TotalSavingsKsh     float64 `json:"total_savings_ksh"`
}

// Analytics aggregates reporting figures from the record store.
type Analytics struct {
	patients   db.PatientCollection
	ambulances db.AmbulanceCollection
}

// NewAnalytics builds the reporting service.
func NewAnalytics(patients db.PatientCollection, ambulances db.AmbulanceCollection) *Analytics {
	return &Analytics{patients: patients, ambulances: ambulances}
}

// Snapshot computes the current KPI figures.
func (a *Analytics) Snapshot(ctx context.Context) (KPIs, error) {
	patients, err := a.patients.FindPatients(ctx)
	if err != nil {
		return KPIs{}, err
	}
	ambulances, err := a.ambulances.FindAmbulances(ctx)
	if err != nil {
		return KPIs{}, err
	}

	k := KPIs{
		TotalReferrals: len(patients),
		FleetSize:      len(ambulances),
	}
	for _, p := range patients {
		if p.Status != models.StatusArrived && p.Status != models.StatusCompleted {
			k.ActiveReferrals++
		}
		if p.Status == models.StatusCompleted {
			k.CompletedTrips++
		}
	}
	for _, amb := range ambulances {
		if amb.Status == models.AmbulanceAvailable {
			k.AvailableAmbulances++
		}
		k.TotalDistanceKm += amb.TotalDistanceTraveled
		k.TotalFuelCostKsh += amb.TotalFuelCost
		k.TotalSavingsKsh += amb.CostSavings
	}
	return k, nil
}

// ReferralCountsByHospital tallies referrals per referring facility and status.
func (a *Analytics) ReferralCountsByHospital(ctx context.Context) (map[string]map[models.PatientStatus]int, error) {
	patients, err := a.patients.FindPatients(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]map[models.PatientStatus]int)
	for _, p := range patients {
		byStatus, ok := counts[p.ReferringHospital]
		if !ok {
			byStatus = make(map[models.PatientStatus]int)
			counts[p.ReferringHospital] = byStatus
		}
		byStatus[p.Status]++
	}
	return counts, nil
}
