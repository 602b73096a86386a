package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/kisumu-dev/referral-dispatch/internal/directory"
	"github.com/kisumu-dev/referral-dispatch/internal/fleet"
)

// KPIHandler serves the reporting endpoints.
type KPIHandler struct {
	analytics  *fleet.Analytics
	facilities *directory.Directory
}

// NewKPIHandler creates a reporting handler.
func NewKPIHandler(analytics *fleet.Analytics, facilities *directory.Directory) *KPIHandler {
	return &KPIHandler{analytics: analytics, facilities: facilities}
}

// Snapshot handles GET /api/kpis
func (h *KPIHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	kpis, err := h.analytics.Snapshot(r.Context())
	if err != nil {
		http.Error(w, "Failed to compute KPIs", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(kpis)
}

// ReferralsByHospital handles GET /api/kpis/referrals-by-hospital
func (h *KPIHandler) ReferralsByHospital(w http.ResponseWriter, r *http.Request) {
	counts, err := h.analytics.ReferralCountsByHospital(r.Context())
	if err != nil {
		http.Error(w, "Failed to compute referral counts", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(counts)
}

// Hospitals handles GET /api/hospitals
func (h *KPIHandler) Hospitals(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.facilities.All())
}
