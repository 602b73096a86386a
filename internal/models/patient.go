package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PatientStatus enumerates the referral lifecycle states. A referral only
// moves forward; there is no cancellation or abandonment state.
type PatientStatus string

const (
	StatusReferred     PatientStatus = "Referred"
	StatusAssigned     PatientStatus = "Ambulance Assigned"
	StatusDispatched   PatientStatus = "Ambulance Dispatched"
	StatusPickedUp     PatientStatus = "Patient Picked Up"
	StatusTransporting PatientStatus = "Transporting to Destination"
	StatusArrived      PatientStatus = "Arrived at Destination"
	StatusCompleted    PatientStatus = "Completed"
)

// validTransitions is the forward-only edge set of the lifecycle. The
// Transporting state may be skipped: Picked Up can go straight to Arrived.
var validTransitions = map[PatientStatus][]PatientStatus{
	StatusReferred:     {StatusAssigned},
	StatusAssigned:     {StatusDispatched},
	StatusDispatched:   {StatusPickedUp},
	StatusPickedUp:     {StatusTransporting, StatusArrived},
	StatusTransporting: {StatusArrived},
	StatusArrived:      {StatusCompleted},
}

// CanTransitionTo reports whether the lifecycle permits moving to next.
func (s PatientStatus) CanTransitionTo(next PatientStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the referral has finished.
func (s PatientStatus) IsTerminal() bool {
	return s == StatusCompleted
}

// IsActive reports whether an ambulance assignment is in force.
func (s PatientStatus) IsActive() bool {
	switch s {
	case StatusAssigned, StatusDispatched, StatusPickedUp, StatusTransporting:
		return true
	}
	return false
}

// Patient represents a referral record. Clinical fields are immutable after
// creation except vital signs; status and trip cost fields are mutated only
// by lifecycle transitions.
type Patient struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name               string             `bson:"name" json:"name"`
	Age                int                `bson:"age" json:"age"`
	Condition          string             `bson:"condition" json:"condition"`
	ReferringHospital  string             `bson:"referring_hospital" json:"referring_hospital"`
	ReceivingHospital  string             `bson:"receiving_hospital" json:"receiving_hospital"`
	ReferringPhysician string             `bson:"referring_physician" json:"referring_physician"`
	ReceivingPhysician string             `bson:"receiving_physician,omitempty" json:"receiving_physician,omitempty"`
	Notes              string             `bson:"notes,omitempty" json:"notes,omitempty"`
	VitalSigns         map[string]string  `bson:"vital_signs,omitempty" json:"vital_signs,omitempty"`
	MedicalHistory     string             `bson:"medical_history,omitempty" json:"medical_history,omitempty"`
	CurrentMedications string             `bson:"current_medications,omitempty" json:"current_medications,omitempty"`
	Allergies          string             `bson:"allergies,omitempty" json:"allergies,omitempty"`
	ReferralTime       time.Time          `bson:"referral_time" json:"referral_time"`
	Status             PatientStatus      `bson:"status" json:"status"`
	AssignedAmbulance  string             `bson:"assigned_ambulance,omitempty" json:"assigned_ambulance,omitempty"`
	CreatedBy          string             `bson:"created_by" json:"created_by"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updated_at"`

	ReferringPosition *Location `bson:"referring_position,omitempty" json:"referring_position,omitempty"`
	ReceivingPosition *Location `bson:"receiving_position,omitempty" json:"receiving_position,omitempty"`

	// Trip cost fields are unset when either endpoint's coordinates are unknown.
	TripDistance    *float64 `bson:"trip_distance,omitempty" json:"trip_distance,omitempty"`         // km
	TripFuelCost    *float64 `bson:"trip_fuel_cost,omitempty" json:"trip_fuel_cost,omitempty"`       // KSh
	TripCostSavings float64  `bson:"trip_cost_savings" json:"trip_cost_savings"`                     // KSh
}
