// Package dispatch selects ambulances for referrals.
package dispatch

import (
	"context"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/kisumu-dev/referral-dispatch/internal/db"
	"github.com/kisumu-dev/referral-dispatch/internal/geo"
	"github.com/kisumu-dev/referral-dispatch/internal/models"
)

// Candidate is an eligible ambulance with its distance to the pickup point.
type Candidate struct {
	Ambulance  models.Ambulance
	DistanceKm float64
}

// Planner ranks the fleet by proximity and reserves vehicles for referrals.
type Planner struct {
	ambulances   db.AmbulanceCollection
	minFuelLevel float64
}

// NewPlanner builds a planner. minFuelLevel is the fuel percentage floor
// below which a vehicle is not dispatched automatically.
func NewPlanner(ambulances db.AmbulanceCollection, minFuelLevel float64) *Planner {
	return &Planner{ambulances: ambulances, minFuelLevel: minFuelLevel}
}

// FindNearest returns the eligible ambulance closest to pickup, or nil when
// no vehicle qualifies. Eligible means status Available, fuel at or above the
// floor, and a known position. Ties on distance keep the first vehicle
// encountered in store order.
func (p *Planner) FindNearest(ctx context.Context, pickup models.Location) (*Candidate, error) {
	ambulances, err := p.ambulances.FindAvailableAmbulances(ctx)
	if err != nil {
		return nil, err
	}

	var best *Candidate
	for _, amb := range ambulances {
		if amb.FuelLevel < p.minFuelLevel || !amb.HasKnownPosition() {
			continue
		}
		d := geo.DistanceKm(*amb.Position, pickup)
		if best == nil || d < best.DistanceKm {
			best = &Candidate{Ambulance: amb, DistanceKm: d}
		}
	}
	return best, nil
}

// RankCandidates returns every eligible ambulance sorted nearest-first.
func (p *Planner) RankCandidates(ctx context.Context, pickup models.Location) ([]Candidate, error) {
	ambulances, err := p.ambulances.FindAvailableAmbulances(ctx)
	if err != nil {
		return nil, err
	}

	var out []Candidate
	for _, amb := range ambulances {
		if amb.FuelLevel < p.minFuelLevel || !amb.HasKnownPosition() {
			continue
		}
		out = append(out, Candidate{Ambulance: amb, DistanceKm: geo.DistanceKm(*amb.Position, pickup)})
	}
	// stable sort keeps ties in store order
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceKm < out[j].DistanceKm
	})
	return out, nil
}

// Reserve claims an ambulance for a patient. The claim succeeds only if the
// vehicle is still Available at write time, so two concurrent referrals
// cannot book the same vehicle; the loser gets db.ErrAmbulanceNotAvailable.
func (p *Planner) Reserve(ctx context.Context, ambulanceID, patientID string) error {
	if err := p.ambulances.ReserveAmbulance(ctx, ambulanceID, patientID); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"ambulance_id": ambulanceID,
		"patient_id":   patientID,
	}).Info("Reserved ambulance")
	return nil
}

// Assign books an ambulance regardless of its current status. Used by staff
// overriding the planner, e.g. redirecting a vehicle already on the road.
func (p *Planner) Assign(ctx context.Context, ambulanceID, patientID, destination string) error {
	if _, err := p.ambulances.FindAmbulanceByID(ctx, ambulanceID); err != nil {
		return err
	}
	if err := p.ambulances.SetAmbulanceAssignment(ctx, ambulanceID, patientID, destination); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"ambulance_id": ambulanceID,
		"patient_id":   patientID,
		"destination":  destination,
	}).Info("Manually assigned ambulance")
	return nil
}
