package models

import (
	"time"
)

// AmbulanceStatus enumerates the operational states of a fleet vehicle.
type AmbulanceStatus string

const (
	AmbulanceAvailable   AmbulanceStatus = "Available"
	AmbulanceOnTransfer  AmbulanceStatus = "On Transfer"
	AmbulanceOnBreak     AmbulanceStatus = "On Break"
	AmbulanceMaintenance AmbulanceStatus = "Maintenance"
)

// FuelStatus classifies a fuel level for the fleet views.
type FuelStatus string

const (
	FuelGood     FuelStatus = "Good"
	FuelLow      FuelStatus = "Low"
	FuelCritical FuelStatus = "Critical"
)

// Ambulance represents a fleet vehicle keyed by its registration plate.
// The cost fields form a cumulative ledger and are never reset.
type Ambulance struct {
	ID              string          `bson:"_id" json:"id"`
	CurrentLocation string          `bson:"current_location" json:"current_location"`
	Position        *Location       `bson:"position,omitempty" json:"position,omitempty"`
	Status          AmbulanceStatus `bson:"status" json:"status"`
	DriverName      string          `bson:"driver_name" json:"driver_name"`
	DriverContact   string          `bson:"driver_contact" json:"driver_contact"`
	// CurrentPatient is set iff Status is On Transfer.
	CurrentPatient        string    `bson:"current_patient,omitempty" json:"current_patient,omitempty"`
	Destination           string    `bson:"destination,omitempty" json:"destination,omitempty"`
	FuelLevel             float64   `bson:"fuel_level" json:"fuel_level"`                         // percentage, clamped to [0,100]
	FuelConsumptionRate   float64   `bson:"fuel_consumption_rate" json:"fuel_consumption_rate"`  // liters per km
	TotalFuelCost         float64   `bson:"total_fuel_cost" json:"total_fuel_cost"`              // KSh
	TotalDistanceTraveled float64   `bson:"total_distance_traveled" json:"total_distance_traveled"` // km
	CostSavings           float64   `bson:"cost_savings" json:"cost_savings"` // KSh
	LastLocationUpdate    time.Time `bson:"last_location_update" json:"last_location_update"`
	CreatedAt             time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt             time.Time `bson:"updated_at" json:"updated_at"`
}

// FuelStatus returns the dashboard band for the current fuel level.
func (a *Ambulance) FuelStatus() FuelStatus {
	switch {
	case a.FuelLevel > 50:
		return FuelGood
	case a.FuelLevel > 20:
		return FuelLow
	default:
		return FuelCritical
	}
}

// HasKnownPosition reports whether the ambulance has ever reported coordinates.
func (a *Ambulance) HasKnownPosition() bool {
	return a.Position != nil
}
