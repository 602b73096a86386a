package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/kisumu-dev/referral-dispatch/internal/db"
	"github.com/kisumu-dev/referral-dispatch/internal/directory"
	"github.com/kisumu-dev/referral-dispatch/internal/middleware"
	"github.com/kisumu-dev/referral-dispatch/internal/mission"
	"github.com/kisumu-dev/referral-dispatch/internal/models"
)

// ReferralHandler serves the referral lifecycle endpoints.
type ReferralHandler struct {
	missions *mission.Service
	patients db.PatientCollection
	comms    db.CommunicationCollection
}

// NewReferralHandler creates a referral handler.
func NewReferralHandler(missions *mission.Service, patients db.PatientCollection, comms db.CommunicationCollection) *ReferralHandler {
	return &ReferralHandler{missions: missions, patients: patients, comms: comms}
}

// Create handles POST /api/referrals
func (h *ReferralHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var patient models.Patient
	if err := json.Unmarshal(body, &patient); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if patient.Name == "" || patient.ReferringHospital == "" || patient.ReceivingHospital == "" {
		http.Error(w, "Name, referring hospital and receiving hospital are required", http.StatusBadRequest)
		return
	}

	if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
		patient.CreatedBy = claims.Username
	}

	id, err := h.missions.CreateReferral(r.Context(), patient)
	if err != nil {
		if errors.Is(err, directory.ErrUnknownFacility) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to create referral", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"id": id})
}

// List handles GET /api/referrals
func (h *ReferralHandler) List(w http.ResponseWriter, r *http.Request) {
	patients, err := h.patients.FindPatients(r.Context())
	if err != nil {
		http.Error(w, "Failed to list referrals", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(patients)
}

// Get handles GET /api/referrals/{id}
func (h *ReferralHandler) Get(w http.ResponseWriter, r *http.Request) {
	patient, err := h.patients.FindPatientByID(r.Context(), r.PathValue("id"))
	if err != nil {
		http.Error(w, "Referral not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(patient)
}

// Assign handles POST /api/referrals/{id}/assign. An explicit ambulance id
// books that vehicle; an empty body auto-assigns the nearest eligible one.
func (h *ReferralHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req struct {
		AmbulanceID string `json:"ambulance_id"`
	}
	if body, err := io.ReadAll(r.Body); err == nil && len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
	}

	if req.AmbulanceID != "" {
		if err := h.missions.AssignAmbulance(r.Context(), id, req.AmbulanceID); err != nil {
			writeLifecycleError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"ambulance_id": req.AmbulanceID})
		return
	}

	assigned, err := h.missions.AutoAssignNearest(r.Context(), id)
	if err != nil {
		writeLifecycleError(w, err)
		return
	}
	if !assigned {
		http.Error(w, "No eligible ambulance available", http.StatusConflict)
		return
	}

	patient, err := h.patients.FindPatientByID(r.Context(), id)
	if err != nil {
		http.Error(w, "Referral not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"ambulance_id": patient.AssignedAmbulance})
}

// Dispatch handles POST /api/referrals/{id}/dispatch
func (h *ReferralHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.missions.MarkDispatched)
}

// Pickup handles POST /api/referrals/{id}/pickup
func (h *ReferralHandler) Pickup(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.missions.MarkPickedUp)
}

// Transport handles POST /api/referrals/{id}/transport
func (h *ReferralHandler) Transport(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.missions.MarkTransporting)
}

// Arrive handles POST /api/referrals/{id}/arrive
func (h *ReferralHandler) Arrive(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.missions.CompleteMission)
}

// Handover handles POST /api/referrals/{id}/handover
func (h *ReferralHandler) Handover(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var form models.HandoverForm
	if len(body) > 0 {
		if err := json.Unmarshal(body, &form); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
	}
	if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
		form.CreatedBy = claims.Username
	}

	if err := h.missions.CompleteHandover(r.Context(), r.PathValue("id"), form); err != nil {
		writeLifecycleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": string(models.StatusCompleted)})
}

// UpdateVitals handles PUT /api/referrals/{id}/vitals
func (h *ReferralHandler) UpdateVitals(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var vitals map[string]string
	if err := json.Unmarshal(body, &vitals); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if err := h.patients.SetPatientVitals(r.Context(), r.PathValue("id"), vitals); err != nil {
		writeLifecycleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Communications handles GET /api/referrals/{id}/communications
func (h *ReferralHandler) Communications(w http.ResponseWriter, r *http.Request) {
	comms, err := h.comms.FindCommunicationsForPatient(r.Context(), r.PathValue("id"))
	if err != nil {
		http.Error(w, "Failed to list communications", http.StatusInternalServerError)
		return
	}
	if comms == nil {
		comms = []models.Communication{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(comms)
}

// SendMessage handles POST /api/communications
func (h *ReferralHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var comm models.Communication
	if err := json.Unmarshal(body, &comm); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if comm.Message == "" {
		http.Error(w, "Message is required", http.StatusBadRequest)
		return
	}
	if comm.MessageType == "" {
		comm.MessageType = models.MessageDriverHospital
	}
	if claims, ok := middleware.GetUserFromContext(r.Context()); ok && comm.Sender == "" {
		comm.Sender = claims.Username
	}

	if err := h.missions.SendMessage(r.Context(), comm); err != nil {
		writeLifecycleError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (h *ReferralHandler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id string) error) {
	if err := fn(r.Context(), r.PathValue("id")); err != nil {
		writeLifecycleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeLifecycleError maps service errors to HTTP statuses.
func writeLifecycleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, db.ErrPatientNotFound), errors.Is(err, db.ErrAmbulanceNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, db.ErrAmbulanceNotAvailable):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, mission.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, directory.ErrUnknownFacility):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
