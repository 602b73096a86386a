// Package dbtest provides an in-memory record store implementing the db
// collection interfaces, mirroring their conditional-update semantics, for
// tests that don't want a running MongoDB.
package dbtest

import (
	"context"
	"sync"
	"time"

	"github.com/kisumu-dev/referral-dispatch/internal/db"
	"github.com/kisumu-dev/referral-dispatch/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemStore holds all records in memory. The zero value is not usable; call
// NewMemStore.
type MemStore struct {
	mu sync.Mutex

	patients       map[string]models.Patient
	ambulances     map[string]models.Ambulance
	ambulanceOrder []string
	locations      []models.LocationUpdate
	comms          []models.Communication
	handovers      []models.HandoverForm
	users          map[string]models.User
}

// NewMemStore returns an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		patients:   make(map[string]models.Patient),
		ambulances: make(map[string]models.Ambulance),
		users:      make(map[string]models.User),
	}
}

// ---- PatientCollection ----

func (m *MemStore) InsertPatient(_ context.Context, patient models.Patient) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if patient.ID.IsZero() {
		patient.ID = primitive.NewObjectID()
	}
	id := patient.ID.Hex()
	m.patients[id] = patient
	return id, nil
}

func (m *MemStore) FindPatientByID(_ context.Context, id string) (*models.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.patients[id]
	if !ok {
		return nil, db.ErrPatientNotFound
	}
	return &p, nil
}

func (m *MemStore) FindPatients(_ context.Context) ([]models.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Patient, 0, len(m.patients))
	for _, p := range m.patients {
		out = append(out, p)
	}
	return out, nil
}

func (m *MemStore) UpdatePatientStatus(_ context.Context, id string, status models.PatientStatus) error {
	return m.mutatePatient(id, func(p *models.Patient) {
		p.Status = status
	})
}

func (m *MemStore) AssignPatientAmbulance(_ context.Context, id, ambulanceID string) error {
	return m.mutatePatient(id, func(p *models.Patient) {
		p.AssignedAmbulance = ambulanceID
		p.Status = models.StatusAssigned
	})
}

func (m *MemStore) SetPatientVitals(_ context.Context, id string, vitals map[string]string) error {
	return m.mutatePatient(id, func(p *models.Patient) {
		p.VitalSigns = vitals
	})
}

func (m *MemStore) SetPatientTripOutcome(_ context.Context, id string, totalCost, savings float64) error {
	return m.mutatePatient(id, func(p *models.Patient) {
		p.TripFuelCost = &totalCost
		p.TripCostSavings = savings
	})
}

func (m *MemStore) mutatePatient(id string, fn func(*models.Patient)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.patients[id]
	if !ok {
		return db.ErrPatientNotFound
	}
	fn(&p)
	p.UpdatedAt = time.Now()
	m.patients[id] = p
	return nil
}

// ---- AmbulanceCollection ----

func (m *MemStore) InsertAmbulance(_ context.Context, ambulance models.Ambulance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.ambulances[ambulance.ID]; !exists {
		m.ambulanceOrder = append(m.ambulanceOrder, ambulance.ID)
	}
	m.ambulances[ambulance.ID] = ambulance
	return nil
}

func (m *MemStore) FindAmbulanceByID(_ context.Context, id string) (*models.Ambulance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.ambulances[id]
	if !ok {
		return nil, db.ErrAmbulanceNotFound
	}
	return &a, nil
}

func (m *MemStore) FindAmbulances(_ context.Context) ([]models.Ambulance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Ambulance, 0, len(m.ambulanceOrder))
	for _, id := range m.ambulanceOrder {
		out = append(out, m.ambulances[id])
	}
	return out, nil
}

func (m *MemStore) FindAvailableAmbulances(_ context.Context) ([]models.Ambulance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Ambulance
	for _, id := range m.ambulanceOrder {
		if a := m.ambulances[id]; a.Status == models.AmbulanceAvailable {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MemStore) ReserveAmbulance(_ context.Context, id, patientID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.ambulances[id]
	if !ok {
		return db.ErrAmbulanceNotFound
	}
	if a.Status != models.AmbulanceAvailable {
		return db.ErrAmbulanceNotAvailable
	}
	a.Status = models.AmbulanceOnTransfer
	a.CurrentPatient = patientID
	m.ambulances[id] = a
	return nil
}

func (m *MemStore) SetAmbulanceAssignment(_ context.Context, id, patientID, destination string) error {
	return m.mutateAmbulance(id, func(a *models.Ambulance) {
		a.Status = models.AmbulanceOnTransfer
		a.CurrentPatient = patientID
		a.Destination = destination
	})
}

func (m *MemStore) ReleaseAmbulance(_ context.Context, id string) error {
	return m.mutateAmbulance(id, func(a *models.Ambulance) {
		a.Status = models.AmbulanceAvailable
		a.CurrentPatient = ""
		a.Destination = ""
	})
}

func (m *MemStore) UpdateAmbulanceStatus(_ context.Context, id string, status models.AmbulanceStatus) error {
	return m.mutateAmbulance(id, func(a *models.Ambulance) {
		a.Status = status
	})
}

func (m *MemStore) UpdateAmbulanceFuel(_ context.Context, id string, level float64) error {
	return m.mutateAmbulance(id, func(a *models.Ambulance) {
		a.FuelLevel = level
	})
}

func (m *MemStore) ApplyTripAccrual(_ context.Context, id string, distanceKm, fuelCostKsh, savingsKsh float64) error {
	return m.mutateAmbulance(id, func(a *models.Ambulance) {
		a.TotalDistanceTraveled += distanceKm
		a.TotalFuelCost += fuelCostKsh
		a.CostSavings += savingsKsh
	})
}

func (m *MemStore) UpdateAmbulancePosition(_ context.Context, id string, pos models.Location, name string, ts time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.ambulances[id]
	if !ok {
		return db.ErrAmbulanceNotFound
	}
	if !ts.After(a.LastLocationUpdate) {
		return db.ErrStaleLocation
	}
	a.Position = &pos
	a.CurrentLocation = name
	a.LastLocationUpdate = ts
	m.ambulances[id] = a
	return nil
}

func (m *MemStore) mutateAmbulance(id string, fn func(*models.Ambulance)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.ambulances[id]
	if !ok {
		return db.ErrAmbulanceNotFound
	}
	fn(&a)
	a.UpdatedAt = time.Now()
	m.ambulances[id] = a
	return nil
}

// ---- LocationCollection ----

func (m *MemStore) InsertLocationUpdate(_ context.Context, update models.LocationUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations = append(m.locations, update)
	return nil
}

func (m *MemStore) FindLatestLocation(_ context.Context, ambulanceID string) (*models.LocationUpdate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *models.LocationUpdate
	for i := range m.locations {
		u := m.locations[i]
		if u.AmbulanceID != ambulanceID {
			continue
		}
		if latest == nil || u.Timestamp.After(latest.Timestamp) {
			latest = &u
		}
	}
	return latest, nil
}

// LocationLog returns a copy of the position log.
func (m *MemStore) LocationLog() []models.LocationUpdate {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.LocationUpdate, len(m.locations))
	copy(out, m.locations)
	return out
}

// ---- CommunicationCollection ----

func (m *MemStore) InsertCommunication(_ context.Context, comm models.Communication) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comms = append(m.comms, comm)
	return nil
}

func (m *MemStore) FindCommunicationsForPatient(_ context.Context, patientID string) ([]models.Communication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Communication
	for _, c := range m.comms {
		if c.PatientID == patientID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MemStore) FindCommunicationsForAmbulance(_ context.Context, ambulanceID string) ([]models.Communication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Communication
	for _, c := range m.comms {
		if c.AmbulanceID == ambulanceID {
			out = append(out, c)
		}
	}
	return out, nil
}

// ---- HandoverCollection ----

func (m *MemStore) InsertHandover(_ context.Context, form models.HandoverForm) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handovers = append(m.handovers, form)
	return nil
}

// Handovers returns a copy of the stored handover forms.
func (m *MemStore) Handovers() []models.HandoverForm {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.HandoverForm, len(m.handovers))
	copy(out, m.handovers)
	return out
}

// ---- UserCollection ----

func (m *MemStore) InsertUser(_ context.Context, user models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	m.users[user.ID.Hex()] = user
	return nil
}

func (m *MemStore) FindUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, db.ErrUserNotFound
	}
	return &u, nil
}

func (m *MemStore) FindUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, db.ErrUserNotFound
}

func (m *MemStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, db.ErrUserNotFound
}

func (m *MemStore) UpdateLastLogin(_ context.Context, id string) error {
	return m.mutateUser(id, func(u *models.User) {
		now := time.Now()
		u.LastLogin = &now
	})
}

func (m *MemStore) UpdateUserPassword(_ context.Context, id, passwordHash string) error {
	return m.mutateUser(id, func(u *models.User) {
		u.PasswordHash = passwordHash
	})
}

func (m *MemStore) mutateUser(id string, fn func(*models.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return db.ErrUserNotFound
	}
	fn(&u)
	u.UpdatedAt = time.Now()
	m.users[id] = u
	return nil
}
