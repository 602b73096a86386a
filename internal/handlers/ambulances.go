package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/kisumu-dev/referral-dispatch/internal/db"
	"github.com/kisumu-dev/referral-dispatch/internal/dispatch"
	"github.com/kisumu-dev/referral-dispatch/internal/fleet"
	"github.com/kisumu-dev/referral-dispatch/internal/models"
)

// fleetVehicle decorates an ambulance record with its fuel band for the
// dashboard views.
type fleetVehicle struct {
	models.Ambulance
	FuelStatus models.FuelStatus `json:"fuel_status"`
}

// AmbulanceHandler serves the fleet endpoints.
type AmbulanceHandler struct {
	ambulances db.AmbulanceCollection
	ledger     *fleet.Ledger
	planner    *dispatch.Planner
}

// NewAmbulanceHandler creates a fleet handler.
func NewAmbulanceHandler(ambulances db.AmbulanceCollection, ledger *fleet.Ledger, planner *dispatch.Planner) *AmbulanceHandler {
	return &AmbulanceHandler{ambulances: ambulances, ledger: ledger, planner: planner}
}

// Register handles POST /api/ambulances
func (h *AmbulanceHandler) Register(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var ambulance models.Ambulance
	if err := json.Unmarshal(body, &ambulance); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if ambulance.ID == "" {
		http.Error(w, "Registration plate is required", http.StatusBadRequest)
		return
	}
	if ambulance.Status == "" {
		ambulance.Status = models.AmbulanceAvailable
	}

	if err := h.ambulances.InsertAmbulance(r.Context(), ambulance); err != nil {
		http.Error(w, "Failed to register ambulance", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"id": ambulance.ID})
}

// List handles GET /api/ambulances
func (h *AmbulanceHandler) List(w http.ResponseWriter, r *http.Request) {
	ambulances, err := h.ambulances.FindAmbulances(r.Context())
	if err != nil {
		http.Error(w, "Failed to list ambulances", http.StatusInternalServerError)
		return
	}

	out := make([]fleetVehicle, 0, len(ambulances))
	for i := range ambulances {
		out = append(out, fleetVehicle{Ambulance: ambulances[i], FuelStatus: ambulances[i].FuelStatus()})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// Get handles GET /api/ambulances/{id}
func (h *AmbulanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	ambulance, err := h.ambulances.FindAmbulanceByID(r.Context(), r.PathValue("id"))
	if err != nil {
		http.Error(w, "Ambulance not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(fleetVehicle{Ambulance: *ambulance, FuelStatus: ambulance.FuelStatus()})
}

// Nearest handles GET /api/ambulances/nearest?lat=&lon=
func (h *AmbulanceHandler) Nearest(w http.ResponseWriter, r *http.Request) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if errLat != nil || errLon != nil {
		http.Error(w, "lat and lon query parameters are required", http.StatusBadRequest)
		return
	}

	candidate, err := h.planner.FindNearest(r.Context(), models.Location{Lat: lat, Lon: lon})
	if err != nil {
		http.Error(w, "Failed to search fleet", http.StatusInternalServerError)
		return
	}
	if candidate == nil {
		http.Error(w, "No eligible ambulance available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(candidate)
}

// ReportLocation handles POST /api/ambulances/{id}/location. This is the
// HTTP fallback for drivers when the MQTT feed is unreachable.
func (h *AmbulanceHandler) ReportLocation(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var update models.LocationUpdate
	if err := json.Unmarshal(body, &update); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	update.AmbulanceID = r.PathValue("id")

	if err := h.ledger.RecordLocation(r.Context(), update); err != nil {
		switch {
		case errors.Is(err, db.ErrAmbulanceNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, db.ErrStaleLocation):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, "Failed to record location", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// LastLocation handles GET /api/ambulances/{id}/location
func (h *AmbulanceHandler) LastLocation(w http.ResponseWriter, r *http.Request) {
	update, err := h.ledger.LastKnownPosition(r.Context(), r.PathValue("id"))
	if err != nil {
		http.Error(w, "Failed to fetch location", http.StatusInternalServerError)
		return
	}
	if update == nil {
		http.Error(w, "No position reported", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(update)
}

// SetFuel handles PUT /api/ambulances/{id}/fuel
func (h *AmbulanceHandler) SetFuel(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req struct {
		FuelLevel float64 `json:"fuel_level"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	level, err := h.ledger.SetFuelLevel(r.Context(), r.PathValue("id"), req.FuelLevel)
	if err != nil {
		if errors.Is(err, db.ErrAmbulanceNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to set fuel level", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]float64{"fuel_level": level})
}

// SetStatus handles PUT /api/ambulances/{id}/status
func (h *AmbulanceHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req struct {
		Status models.AmbulanceStatus `json:"status"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	switch req.Status {
	case models.AmbulanceAvailable, models.AmbulanceOnTransfer, models.AmbulanceOnBreak, models.AmbulanceMaintenance:
	default:
		http.Error(w, "Invalid status", http.StatusBadRequest)
		return
	}

	if err := h.ambulances.UpdateAmbulanceStatus(r.Context(), r.PathValue("id"), req.Status); err != nil {
		if errors.Is(err, db.ErrAmbulanceNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to update status", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
