// Package mission drives a referral from intake to handover. All status
// moves go through this service so the forward-only lifecycle and the fleet
// ledger stay consistent.
package mission

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/kisumu-dev/referral-dispatch/internal/cost"
	"github.com/kisumu-dev/referral-dispatch/internal/db"
	"github.com/kisumu-dev/referral-dispatch/internal/directory"
	"github.com/kisumu-dev/referral-dispatch/internal/dispatch"
	"github.com/kisumu-dev/referral-dispatch/internal/fleet"
	"github.com/kisumu-dev/referral-dispatch/internal/geo"
	"github.com/kisumu-dev/referral-dispatch/internal/models"
	"github.com/kisumu-dev/referral-dispatch/internal/notify"
)

// ErrInvalidTransition is returned when a status move is not permitted by the
// referral lifecycle.
var ErrInvalidTransition = errors.New("invalid status transition")

// Service coordinates referral intake, ambulance assignment, and trip
// completion.
type Service struct {
	patients   db.PatientCollection
	ambulances db.AmbulanceCollection
	comms      db.CommunicationCollection
	handovers  db.HandoverCollection

	facilities *directory.Directory
	planner    *dispatch.Planner
	ledger     *fleet.Ledger
	costs      *cost.Model
	notifier   notify.Notifier
}

// NewService wires the lifecycle service.
func NewService(
	patients db.PatientCollection,
	ambulances db.AmbulanceCollection,
	comms db.CommunicationCollection,
	handovers db.HandoverCollection,
	facilities *directory.Directory,
	planner *dispatch.Planner,
	ledger *fleet.Ledger,
	costs *cost.Model,
	notifier notify.Notifier,
) *Service {
	return &Service{
		patients:   patients,
		ambulances: ambulances,
		comms:      comms,
		handovers:  handovers,
		facilities: facilities,
		planner:    planner,
		ledger:     ledger,
		costs:      costs,
		notifier:   notifier,
	}
}

// CreateReferral validates the facilities, prices the trip when both
// endpoints have coordinates, and records the referral. Returns the new
// referral's id.
func (s *Service) CreateReferral(ctx context.Context, patient models.Patient) (string, error) {
	if err := s.facilities.Validate(patient.ReferringHospital); err != nil {
		return "", err
	}
	if err := s.facilities.Validate(patient.ReceivingHospital); err != nil {
		return "", err
	}

	patient.Status = models.StatusReferred
	if patient.ReferralTime.IsZero() {
		patient.ReferralTime = time.Now()
	}
	patient.ReferringPosition = s.facilities.Position(patient.ReferringHospital)
	patient.ReceivingPosition = s.facilities.Position(patient.ReceivingHospital)

	if patient.ReferringPosition != nil && patient.ReceivingPosition != nil {
		d := geo.DistanceKm(*patient.ReferringPosition, *patient.ReceivingPosition)
		breakdown := s.costs.TripCost(d, 0)
		patient.TripDistance = &d
		patient.TripFuelCost = &breakdown.TotalCostKsh
		patient.TripCostSavings = s.costs.EstimateSavings(breakdown)
	}

	id, err := s.patients.InsertPatient(ctx, patient)
	if err != nil {
		return "", err
	}

	s.record(ctx, models.Communication{
		PatientID:   id,
		Sender:      patient.ReferringHospital,
		Receiver:    patient.ReceivingHospital,
		Message:     fmt.Sprintf("New referral for %s (%s)", patient.Name, patient.Condition),
		MessageType: models.MessageHospitalHospital,
	})
	s.alert(patient.ReceivingHospital, "Incoming referral",
		fmt.Sprintf("%s is referring %s, condition: %s", patient.ReferringHospital, patient.Name, patient.Condition))

	log.WithFields(log.Fields{
		"patient_id":         id,
		"referring_hospital": patient.ReferringHospital,
		"receiving_hospital": patient.ReceivingHospital,
	}).Info("Created referral")
	return id, nil
}

// AutoAssignNearest books the closest eligible ambulance for the referral.
// Returns false with no error when no vehicle currently qualifies; the
// referral stays in Referred and can be retried or assigned manually.
func (s *Service) AutoAssignNearest(ctx context.Context, patientID string) (bool, error) {
	patient, err := s.patients.FindPatientByID(ctx, patientID)
	if err != nil {
		return false, err
	}
	if !patient.Status.CanTransitionTo(models.StatusAssigned) {
		return false, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, patient.Status, models.StatusAssigned)
	}
	if patient.ReferringPosition == nil {
		return false, fmt.Errorf("referring facility %q has no coordinates", patient.ReferringHospital)
	}

	// Reservation is conditional, so a candidate taken between ranking and
	// booking just moves us to the next one.
	candidates, err := s.planner.RankCandidates(ctx, *patient.ReferringPosition)
	if err != nil {
		return false, err
	}
	for _, c := range candidates {
		err := s.planner.Reserve(ctx, c.Ambulance.ID, patientID)
		if errors.Is(err, db.ErrAmbulanceNotAvailable) {
			continue
		}
		if err != nil {
			return false, err
		}
		// Reserve flipped the status; this records the destination.
		if err := s.ambulances.SetAmbulanceAssignment(ctx, c.Ambulance.ID, patientID, patient.ReceivingHospital); err != nil {
			return false, err
		}
		if err := s.bindAssignment(ctx, patient, c.Ambulance.ID); err != nil {
			return false, err
		}
		log.WithFields(log.Fields{
			"patient_id":   patientID,
			"ambulance_id": c.Ambulance.ID,
			"distance_km":  c.DistanceKm,
		}).Info("Auto-assigned nearest ambulance")
		return true, nil
	}
	return false, nil
}

// AssignAmbulance books a specific vehicle chosen by staff, regardless of its
// current status.
func (s *Service) AssignAmbulance(ctx context.Context, patientID, ambulanceID string) error {
	patient, err := s.patients.FindPatientByID(ctx, patientID)
	if err != nil {
		return err
	}
	if !patient.Status.CanTransitionTo(models.StatusAssigned) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, patient.Status, models.StatusAssigned)
	}
	if err := s.planner.Assign(ctx, ambulanceID, patientID, patient.ReceivingHospital); err != nil {
		return err
	}
	return s.bindAssignment(ctx, patient, ambulanceID)
}

func (s *Service) bindAssignment(ctx context.Context, patient *models.Patient, ambulanceID string) error {
	id := patient.ID.Hex()
	if err := s.patients.AssignPatientAmbulance(ctx, id, ambulanceID); err != nil {
		return err
	}
	s.record(ctx, models.Communication{
		PatientID:   id,
		AmbulanceID: ambulanceID,
		Sender:      "system",
		Receiver:    patient.ReferringHospital,
		Message:     fmt.Sprintf("Ambulance %s assigned to %s", ambulanceID, patient.Name),
		MessageType: models.MessageSystem,
	})
	if amb, err := s.ambulances.FindAmbulanceByID(ctx, ambulanceID); err == nil && amb.DriverContact != "" && s.notifier != nil {
		if err := s.notifier.Notify(amb.DriverContact, "New transfer",
			fmt.Sprintf("Pick up %s at %s, destination %s", patient.Name, patient.ReferringHospital, patient.ReceivingHospital)); err != nil {
			log.WithError(err).WithField("ambulance_id", ambulanceID).Warn("Driver notification failed")
		}
	}
	return nil
}

// MarkDispatched records that the assigned ambulance has left for pickup.
func (s *Service) MarkDispatched(ctx context.Context, patientID string) error {
	return s.advance(ctx, patientID, models.StatusDispatched, nil)
}

// MarkPickedUp records the patient on board and alerts the receiving
// facility that the transfer is en route.
func (s *Service) MarkPickedUp(ctx context.Context, patientID string) error {
	return s.advance(ctx, patientID, models.StatusPickedUp, func(p *models.Patient) {
		s.alert(p.ReceivingHospital, "Transfer en route",
			fmt.Sprintf("%s picked up from %s, ambulance %s en route", p.Name, p.ReferringHospital, p.AssignedAmbulance))
	})
}

// MarkTransporting records the ambulance traveling to the destination.
func (s *Service) MarkTransporting(ctx context.Context, patientID string) error {
	return s.advance(ctx, patientID, models.StatusTransporting, nil)
}

// CompleteMission records arrival at the receiving facility: the ambulance is
// released back to Available, the trip cost is folded into the fleet ledger,
// and the referral's trip outcome is stored.
func (s *Service) CompleteMission(ctx context.Context, patientID string) error {
	patient, err := s.patients.FindPatientByID(ctx, patientID)
	if err != nil {
		return err
	}
	if !patient.Status.CanTransitionTo(models.StatusArrived) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, patient.Status, models.StatusArrived)
	}

	if patient.AssignedAmbulance != "" && patient.TripDistance != nil {
		breakdown, savings, err := s.ledger.AccrueTripCost(ctx, patient.AssignedAmbulance, *patient.TripDistance)
		if err != nil {
			return err
		}
		if err := s.patients.SetPatientTripOutcome(ctx, patientID, breakdown.TotalCostKsh, savings); err != nil {
			return err
		}
	}
	if patient.AssignedAmbulance != "" {
		if err := s.ambulances.ReleaseAmbulance(ctx, patient.AssignedAmbulance); err != nil {
			return err
		}
	}
	if err := s.patients.UpdatePatientStatus(ctx, patientID, models.StatusArrived); err != nil {
		return err
	}

	s.record(ctx, models.Communication{
		PatientID:   patientID,
		AmbulanceID: patient.AssignedAmbulance,
		Sender:      "system",
		Receiver:    patient.ReferringHospital,
		Message:     fmt.Sprintf("%s arrived at %s", patient.Name, patient.ReceivingHospital),
		MessageType: models.MessageSystem,
	})
	s.alert(patient.ReferringHospital, "Transfer arrived",
		fmt.Sprintf("%s arrived at %s", patient.Name, patient.ReceivingHospital))
	s.alert(patient.ReceivingHospital, "Transfer arrived",
		fmt.Sprintf("%s has arrived from %s", patient.Name, patient.ReferringHospital))

	log.WithFields(log.Fields{
		"patient_id":   patientID,
		"ambulance_id": patient.AssignedAmbulance,
	}).Info("Completed mission")
	return nil
}

// CompleteHandover stores the clinical handover form and closes the referral.
func (s *Service) CompleteHandover(ctx context.Context, patientID string, form models.HandoverForm) error {
	patient, err := s.patients.FindPatientByID(ctx, patientID)
	if err != nil {
		return err
	}
	if !patient.Status.CanTransitionTo(models.StatusCompleted) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, patient.Status, models.StatusCompleted)
	}

	form.PatientID = patientID
	form.PatientName = patient.Name
	form.Age = patient.Age
	form.Condition = patient.Condition
	form.ReferringHospital = patient.ReferringHospital
	form.ReceivingHospital = patient.ReceivingHospital
	form.ReferringPhysician = patient.ReferringPhysician
	form.AmbulanceID = patient.AssignedAmbulance
	if form.TransferTime.IsZero() {
		form.TransferTime = time.Now()
	}
	if form.VitalSigns == nil {
		form.VitalSigns = patient.VitalSigns
	}

	if err := s.handovers.InsertHandover(ctx, form); err != nil {
		return err
	}
	if err := s.patients.UpdatePatientStatus(ctx, patientID, models.StatusCompleted); err != nil {
		return err
	}
	log.WithField("patient_id", patientID).Info("Completed handover")
	return nil
}

// SendMessage appends a message to the referral communication log.
func (s *Service) SendMessage(ctx context.Context, comm models.Communication) error {
	if comm.PatientID != "" {
		if _, err := s.patients.FindPatientByID(ctx, comm.PatientID); err != nil {
			return err
		}
	}
	if comm.Timestamp.IsZero() {
		comm.Timestamp = time.Now()
	}
	return s.comms.InsertCommunication(ctx, comm)
}

// advance moves a referral to next after checking the lifecycle permits it.
func (s *Service) advance(ctx context.Context, patientID string, next models.PatientStatus, after func(*models.Patient)) error {
	patient, err := s.patients.FindPatientByID(ctx, patientID)
	if err != nil {
		return err
	}
	if !patient.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, patient.Status, next)
	}
	if err := s.patients.UpdatePatientStatus(ctx, patientID, next); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"patient_id": patientID,
		"status":     next,
	}).Info("Advanced referral")
	if after != nil {
		after(patient)
	}
	return nil
}

// record stores a system communication entry; failures are logged only.
func (s *Service) record(ctx context.Context, comm models.Communication) {
	if comm.Timestamp.IsZero() {
		comm.Timestamp = time.Now()
	}
	if err := s.comms.InsertCommunication(ctx, comm); err != nil {
		log.WithError(err).Warn("Failed to record communication")
	}
}

// alert sends a best-effort notification; failures are logged only.
func (s *Service) alert(facility, subject, body string) {
	if s.notifier == nil {
		return
	}
	recipient := facility
	if h, ok := s.facilities.Lookup(facility); ok && h.ContactNumber != "" {
		recipient = h.ContactNumber
	}
	if err := s.notifier.Notify(recipient, subject, body); err != nil {
		log.WithError(err).WithField("facility", facility).Warn("Notification failed")
	}
}
