package db

import (
	"context"
	"time"

	"github.com/kisumu-dev/referral-dispatch/internal/models"
)

// PatientCollection defines the record-store operations on referral records.
type PatientCollection interface {
	InsertPatient(ctx context.Context, patient models.Patient) (string, error)
	FindPatientByID(ctx context.Context, id string) (*models.Patient, error)
	FindPatients(ctx context.Context) ([]models.Patient, error)
	UpdatePatientStatus(ctx context.Context, id string, status models.PatientStatus) error
	AssignPatientAmbulance(ctx context.Context, id, ambulanceID string) error
	SetPatientVitals(ctx context.Context, id string, vitals map[string]string) error
	SetPatientTripOutcome(ctx context.Context, id string, totalCost, savings float64) error
}

// AmbulanceCollection defines the record-store operations on fleet vehicles.
type AmbulanceCollection interface {
	InsertAmbulance(ctx context.Context, ambulance models.Ambulance) error
	FindAmbulanceByID(ctx context.Context, id string) (*models.Ambulance, error)
	FindAmbulances(ctx context.Context) ([]models.Ambulance, error)
	FindAvailableAmbulances(ctx context.Context) ([]models.Ambulance, error)
	// ReserveAmbulance flips Available -> On Transfer for the given patient in
	// one conditional update; ErrAmbulanceNotAvailable when already taken.
	ReserveAmbulance(ctx context.Context, id, patientID string) error
	// SetAmbulanceAssignment assigns unconditionally (manual-selection path).
	SetAmbulanceAssignment(ctx context.Context, id, patientID, destination string) error
	// ReleaseAmbulance returns the vehicle to Available and clears its patient.
	ReleaseAmbulance(ctx context.Context, id string) error
	UpdateAmbulanceStatus(ctx context.Context, id string, status models.AmbulanceStatus) error
	UpdateAmbulanceFuel(ctx context.Context, id string, level float64) error
	// ApplyTripAccrual increments the cumulative ledger fields.
	ApplyTripAccrual(ctx context.Context, id string, distanceKm, fuelCostKsh, savingsKsh float64) error
	// UpdateAmbulancePosition writes a position only when ts is newer than the
	// stored last_location_update; ErrStaleLocation otherwise.
	UpdateAmbulancePosition(ctx context.Context, id string, pos models.Location, name string, ts time.Time) error
}

// LocationCollection is the append-only position log.
type LocationCollection interface {
	InsertLocationUpdate(ctx context.Context, update models.LocationUpdate) error
	FindLatestLocation(ctx context.Context, ambulanceID string) (*models.LocationUpdate, error)
}

// CommunicationCollection stores referral messages and notification records.
type CommunicationCollection interface {
	InsertCommunication(ctx context.Context, comm models.Communication) error
	FindCommunicationsForPatient(ctx context.Context, patientID string) ([]models.Communication, error)
	FindCommunicationsForAmbulance(ctx context.Context, ambulanceID string) ([]models.Communication, error)
}

// HandoverCollection stores handover forms.
type HandoverCollection interface {
	InsertHandover(ctx context.Context, form models.HandoverForm) error
}

// UserCollection defines the operations on system users.
type UserCollection interface {
	InsertUser(ctx context.Context, user models.User) error
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id string) error
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error
}
