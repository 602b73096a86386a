package mission

import (
	"context"
	"errors"
	"testing"

	"github.com/kisumu-dev/referral-dispatch/internal/config"
	"github.com/kisumu-dev/referral-dispatch/internal/cost"
	"github.com/kisumu-dev/referral-dispatch/internal/db"
	"github.com/kisumu-dev/referral-dispatch/internal/db/dbtest"
	"github.com/kisumu-dev/referral-dispatch/internal/directory"
	"github.com/kisumu-dev/referral-dispatch/internal/dispatch"
	"github.com/kisumu-dev/referral-dispatch/internal/fleet"
	"github.com/kisumu-dev/referral-dispatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	sent []string
	fail bool
}

func (n *recordingNotifier) Notify(recipient, subject, body string) error {
	if n.fail {
		return errors.New("relay down")
	}
	n.sent = append(n.sent, subject)
	return nil
}

func newTestService(t *testing.T) (*Service, *dbtest.MemStore, *recordingNotifier) {
	t.Helper()
	store := dbtest.NewMemStore()
	params := config.Cost{FuelPricePerLiter: 180, AverageFuelConsumption: 0.12, BaseOperatingCostPerKm: 50}
	model := cost.NewModel(params, nil)
	ledger := fleet.NewLedger(store, store, model, params)
	planner := dispatch.NewPlanner(store, 20)
	notifier := &recordingNotifier{}
	svc := NewService(store, store, store, store, directory.Kisumu(), planner, ledger, model, notifier)
	return svc, store, notifier
}

func newReferral() models.Patient {
	return models.Patient{
		Name:               "Akinyi Otieno",
		Age:                34,
		Condition:          "Pre-eclampsia",
		ReferringHospital:  "Lumumba Sub-County Hospital",
		ReceivingHospital:  "Jaramogi Oginga Odinga Teaching & Referral Hospital (JOOTRH)",
		ReferringPhysician: "Dr. Owuor",
	}
}

func seedAvailable(t *testing.T, store *dbtest.MemStore, id string, pos models.Location) {
	t.Helper()
	require.NoError(t, store.InsertAmbulance(context.Background(), models.Ambulance{
		ID: id, Status: models.AmbulanceAvailable, FuelLevel: 80,
		FuelConsumptionRate: 0.12, Position: &pos,
	}))
}

func TestCreateReferral(t *testing.T) {
	svc, store, notifier := newTestService(t)
	ctx := context.Background()

	id, err := svc.CreateReferral(ctx, newReferral())
	require.NoError(t, err)

	p, err := store.FindPatientByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReferred, p.Status)
	require.NotNil(t, p.TripDistance)
	assert.InDelta(t, 3.6, *p.TripDistance, 0.2)
	require.NotNil(t, p.TripFuelCost)
	assert.Greater(t, *p.TripFuelCost, 0.0)
	assert.Greater(t, p.TripCostSavings, 0.0)
	assert.False(t, p.ReferralTime.IsZero())

	comms, err := store.FindCommunicationsForPatient(ctx, id)
	require.NoError(t, err)
	require.Len(t, comms, 1)
	assert.Equal(t, models.MessageHospitalHospital, comms[0].MessageType)

	assert.Equal(t, []string{"Incoming referral"}, notifier.sent)
}

func TestCreateReferral_UnknownFacility(t *testing.T) {
	svc, _, _ := newTestService(t)

	p := newReferral()
	p.ReceivingHospital = "St Elsewhere"
	_, err := svc.CreateReferral(context.Background(), p)
	assert.ErrorIs(t, err, directory.ErrUnknownFacility)
}

func TestCreateReferral_NotifierFailureIsNonFatal(t *testing.T) {
	svc, _, notifier := newTestService(t)
	notifier.fail = true

	_, err := svc.CreateReferral(context.Background(), newReferral())
	assert.NoError(t, err)
}

func TestAutoAssignNearest(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	seedAvailable(t, store, "KBA 453D", models.Location{Lat: -0.0754, Lon: 34.7695})
	seedAvailable(t, store, "KBC 217F", models.Location{Lat: -0.1091, Lon: 34.7541}) // closest to Lumumba

	id, err := svc.CreateReferral(ctx, newReferral())
	require.NoError(t, err)

	ok, err := svc.AutoAssignNearest(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	p, err := store.FindPatientByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAssigned, p.Status)
	assert.Equal(t, "KBC 217F", p.AssignedAmbulance)

	amb, err := store.FindAmbulanceByID(ctx, "KBC 217F")
	require.NoError(t, err)
	assert.Equal(t, models.AmbulanceOnTransfer, amb.Status)
	assert.Equal(t, id, amb.CurrentPatient)
	assert.Equal(t, p.ReceivingHospital, amb.Destination)
}

func TestAutoAssignNearest_NoCandidates(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	id, err := svc.CreateReferral(ctx, newReferral())
	require.NoError(t, err)

	ok, err := svc.AutoAssignNearest(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	p, err := store.FindPatientByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReferred, p.Status)
	assert.Empty(t, p.AssignedAmbulance)
}

func TestAutoAssignNearest_UnknownPatient(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.AutoAssignNearest(context.Background(), "000000000000000000000000")
	assert.ErrorIs(t, err, db.ErrPatientNotFound)
}

func TestAssignAmbulance_Manual(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	// manual assignment overrides an Off-duty vehicle
	require.NoError(t, store.InsertAmbulance(ctx, models.Ambulance{
		ID: "KBD 389G", Status: models.AmbulanceOnBreak, FuelLevel: 60,
	}))

	id, err := svc.CreateReferral(ctx, newReferral())
	require.NoError(t, err)

	require.NoError(t, svc.AssignAmbulance(ctx, id, "KBD 389G"))

	p, err := store.FindPatientByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAssigned, p.Status)
	assert.Equal(t, "KBD 389G", p.AssignedAmbulance)

	// assigning again violates the lifecycle
	err = svc.AssignAmbulance(ctx, id, "KBD 389G")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestLifecycle_FullTrip(t *testing.T) {
	svc, store, notifier := newTestService(t)
	ctx := context.Background()

	seedAvailable(t, store, "KBA 453D", models.Location{Lat: -0.1058, Lon: 34.7568})

	id, err := svc.CreateReferral(ctx, newReferral())
	require.NoError(t, err)

	ok, err := svc.AutoAssignNearest(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, svc.MarkDispatched(ctx, id))
	require.NoError(t, svc.MarkPickedUp(ctx, id))
	require.NoError(t, svc.MarkTransporting(ctx, id))
	require.NoError(t, svc.CompleteMission(ctx, id))

	p, err := store.FindPatientByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusArrived, p.Status)
	require.NotNil(t, p.TripFuelCost)
	assert.Greater(t, *p.TripFuelCost, 0.0)
	assert.Greater(t, p.TripCostSavings, 0.0)

	// ambulance released and its ledger accrued
	amb, err := store.FindAmbulanceByID(ctx, "KBA 453D")
	require.NoError(t, err)
	assert.Equal(t, models.AmbulanceAvailable, amb.Status)
	assert.Empty(t, amb.CurrentPatient)
	assert.Greater(t, amb.TotalDistanceTraveled, 0.0)
	assert.Greater(t, amb.TotalFuelCost, 0.0)

	require.NoError(t, svc.CompleteHandover(ctx, id, models.HandoverForm{
		ReceivingPhysician: "Dr. Achieng",
		Notes:              "stable on arrival",
		CreatedBy:          "nurse.odhiambo",
	}))

	p, err = store.FindPatientByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, p.Status)

	forms := store.Handovers()
	require.Len(t, forms, 1)
	assert.Equal(t, "Akinyi Otieno", forms[0].PatientName)
	assert.Equal(t, "KBA 453D", forms[0].AmbulanceID)
	assert.False(t, forms[0].TransferTime.IsZero())

	assert.Contains(t, notifier.sent, "Transfer en route")
	assert.Contains(t, notifier.sent, "Transfer arrived")
}

func TestLifecycle_SkipTransporting(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	seedAvailable(t, store, "KBA 453D", models.Location{Lat: -0.1058, Lon: 34.7568})

	id, err := svc.CreateReferral(ctx, newReferral())
	require.NoError(t, err)
	ok, err := svc.AutoAssignNearest(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, svc.MarkDispatched(ctx, id))
	require.NoError(t, svc.MarkPickedUp(ctx, id))

	// Picked Up may go straight to Arrived
	assert.NoError(t, svc.CompleteMission(ctx, id))
}

func TestLifecycle_RejectsSkippedStates(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	id, err := svc.CreateReferral(ctx, newReferral())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.MarkDispatched(ctx, id), ErrInvalidTransition)
	assert.ErrorIs(t, svc.MarkPickedUp(ctx, id), ErrInvalidTransition)
	assert.ErrorIs(t, svc.CompleteMission(ctx, id), ErrInvalidTransition)
	assert.ErrorIs(t, svc.CompleteHandover(ctx, id, models.HandoverForm{}), ErrInvalidTransition)
}

func TestLifecycle_NotFoundLeavesNoTrace(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	err := svc.MarkDispatched(ctx, "000000000000000000000000")
	assert.ErrorIs(t, err, db.ErrPatientNotFound)
	assert.Empty(t, store.Handovers())
	assert.Empty(t, store.LocationLog())
}

func TestSendMessage(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	id, err := svc.CreateReferral(ctx, newReferral())
	require.NoError(t, err)

	require.NoError(t, svc.SendMessage(ctx, models.Communication{
		PatientID:   id,
		Sender:      "driver.okoth",
		Receiver:    "Jaramogi Oginga Odinga Teaching & Referral Hospital (JOOTRH)",
		Message:     "ETA 10 minutes",
		MessageType: models.MessageDriverHospital,
	}))

	comms, err := store.FindCommunicationsForPatient(ctx, id)
	require.NoError(t, err)
	require.Len(t, comms, 2) // referral record + driver message
	assert.Equal(t, "ETA 10 minutes", comms[1].Message)
	assert.False(t, comms[1].Timestamp.IsZero())

	err = svc.SendMessage(ctx, models.Communication{PatientID: "000000000000000000000000"})
	assert.ErrorIs(t, err, db.ErrPatientNotFound)
}
