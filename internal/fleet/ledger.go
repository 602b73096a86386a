// Package fleet maintains the per-ambulance ledger: fuel level, cumulative
// distance, cost, and savings.
package fleet

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/kisumu-dev/referral-dispatch/internal/config"
	"github.com/kisumu-dev/referral-dispatch/internal/cost"
	"github.com/kisumu-dev/referral-dispatch/internal/db"
	"github.com/kisumu-dev/referral-dispatch/internal/models"
)

// Ledger mediates every write to an ambulance's fuel and cost fields. Writes
// for one ambulance are serialized in-process; the GPS feed and the request
// path share this ledger, so they cannot interleave on a single vehicle.
type Ledger struct {
	ambulances db.AmbulanceCollection
	locations  db.LocationCollection
	costs      *cost.Model
	params     config.Cost

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLedger builds a ledger over the given collections.
func NewLedger(ambulances db.AmbulanceCollection, locations db.LocationCollection, costs *cost.Model, params config.Cost) *Ledger {
	return &Ledger{
		ambulances: ambulances,
		locations:  locations,
		costs:      costs,
		params:     params,
		locks:      make(map[string]*sync.Mutex),
	}
}

func (l *Ledger) lockFor(ambulanceID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[ambulanceID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[ambulanceID] = m
	}
	return m
}

// DebitFuel decreases the fuel level by the fuel consumed over distanceKm,
// clamped at zero. Returns the new level.
func (l *Ledger) DebitFuel(ctx context.Context, ambulanceID string, distanceKm float64) (float64, error) {
	m := l.lockFor(ambulanceID)
	m.Lock()
	defer m.Unlock()
	return l.debitFuel(ctx, ambulanceID, distanceKm)
}

func (l *Ledger) debitFuel(ctx context.Context, ambulanceID string, distanceKm float64) (float64, error) {
	ambulance, err := l.ambulances.FindAmbulanceByID(ctx, ambulanceID)
	if err != nil {
		return 0, err
	}

	rate := ambulance.FuelConsumptionRate
	if rate == 0 {
		rate = l.params.AverageFuelConsumption
	}

	level := ambulance.FuelLevel - distanceKm*rate
	if level < 0 {
		level = 0
	}
	if err := l.ambulances.UpdateAmbulanceFuel(ctx, ambulanceID, level); err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{
		"ambulance_id": ambulanceID,
		"distance_km":  distanceKm,
		"fuel_level":   level,
	}).Debug("Debited fuel")
	return level, nil
}

// SetFuelLevel sets the absolute fuel level, clamped to [0,100]. Used when a
// vehicle refuels or a gauge reading is corrected.
func (l *Ledger) SetFuelLevel(ctx context.Context, ambulanceID string, level float64) (float64, error) {
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}

	m := l.lockFor(ambulanceID)
	m.Lock()
	defer m.Unlock()

	if err := l.ambulances.UpdateAmbulanceFuel(ctx, ambulanceID, level); err != nil {
		return 0, err
	}
	return level, nil
}

// AccrueTripCost prices a completed trip with the ambulance's own consumption
// rate and folds it into the cumulative ledger. Returns the breakdown and the
// derived savings estimate. Ledger fields only ever grow.
func (l *Ledger) AccrueTripCost(ctx context.Context, ambulanceID string, distanceKm float64) (cost.Breakdown, float64, error) {
	m := l.lockFor(ambulanceID)
	m.Lock()
	defer m.Unlock()

	ambulance, err := l.ambulances.FindAmbulanceByID(ctx, ambulanceID)
	if err != nil {
		return cost.Breakdown{}, 0, err
	}

	breakdown := l.costs.TripCost(distanceKm, ambulance.FuelConsumptionRate)
	savings := l.costs.EstimateSavings(breakdown)

	if err := l.ambulances.ApplyTripAccrual(ctx, ambulanceID, distanceKm, breakdown.FuelCostKsh, savings); err != nil {
		return cost.Breakdown{}, 0, err
	}

	log.WithFields(log.Fields{
		"ambulance_id":   ambulanceID,
		"distance_km":    distanceKm,
		"total_cost_ksh": breakdown.TotalCostKsh,
		"savings_ksh":    savings,
	}).Info("Accrued trip cost")
	return breakdown, savings, nil
}

// RecordLocation appends a position log entry and moves the ambulance's last
// known position. Updates older than the stored position are rejected with
// db.ErrStaleLocation rather than applied last-writer-wins. When the update
// reports distance covered, fuel is debited proportionally.
func (l *Ledger) RecordLocation(ctx context.Context, update models.LocationUpdate) error {
	if update.Timestamp.IsZero() {
		update.Timestamp = time.Now()
	}

	m := l.lockFor(update.AmbulanceID)
	m.Lock()
	defer m.Unlock()

	err := l.ambulances.UpdateAmbulancePosition(ctx, update.AmbulanceID, update.Position, update.LocationName, update.Timestamp)
	if err != nil {
		return err
	}

	if err := l.locations.InsertLocationUpdate(ctx, update); err != nil {
		return err
	}

	if update.DistanceKm > 0 {
		if _, err := l.debitFuel(ctx, update.AmbulanceID, update.DistanceKm); err != nil {
			return err
		}
	}
	return nil
}

// LastKnownPosition returns the newest entry in the position log, or nil when
// the ambulance has never reported.
func (l *Ledger) LastKnownPosition(ctx context.Context, ambulanceID string) (*models.LocationUpdate, error) {
	return l.locations.FindLatestLocation(ctx, ambulanceID)
}
