package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/kisumu-dev/referral-dispatch/internal/middleware"
	"github.com/kisumu-dev/referral-dispatch/internal/models"
)

// NewRouter assembles the API surface with authentication, per-action
// permissions, and rate limiting applied.
func NewRouter(
	authHandler *AuthHandler,
	referrals *ReferralHandler,
	ambulances *AmbulanceHandler,
	kpis *KPIHandler,
	authMW *middleware.AuthMiddleware,
	rateMW *middleware.RateLimitMiddleware,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("GET /api/auth/profile", authHandler.GetProfile)
	mux.HandleFunc("POST /api/auth/change-password", authHandler.ChangePassword)

	perm := func(action string, h http.HandlerFunc) http.Handler {
		return authMW.RequirePermission(action)(h)
	}

	mux.Handle("POST /api/referrals", perm("create_referral", referrals.Create))
	mux.Handle("GET /api/referrals", perm("view_referrals", referrals.List))
	mux.Handle("GET /api/referrals/{id}", perm("view_referrals", referrals.Get))
	mux.Handle("POST /api/referrals/{id}/assign", perm("assign_ambulance", referrals.Assign))
	mux.Handle("POST /api/referrals/{id}/dispatch", perm("assign_ambulance", referrals.Dispatch))
	mux.Handle("POST /api/referrals/{id}/pickup", perm("mark_picked_up", referrals.Pickup))
	mux.Handle("POST /api/referrals/{id}/transport", perm("mark_picked_up", referrals.Transport))
	mux.Handle("POST /api/referrals/{id}/arrive", perm("complete_mission", referrals.Arrive))
	mux.Handle("POST /api/referrals/{id}/handover", perm("complete_mission", referrals.Handover))
	mux.Handle("PUT /api/referrals/{id}/vitals", perm("create_referral", referrals.UpdateVitals))
	mux.Handle("GET /api/referrals/{id}/communications", perm("view_communications", referrals.Communications))
	mux.Handle("POST /api/communications", perm("send_message", referrals.SendMessage))

	mux.Handle("POST /api/ambulances", authMW.RequireRole(models.RoleAdmin)(http.HandlerFunc(ambulances.Register)))
	mux.Handle("GET /api/ambulances", perm("view_fleet", ambulances.List))
	mux.Handle("GET /api/ambulances/nearest", perm("view_fleet", ambulances.Nearest))
	mux.Handle("GET /api/ambulances/{id}", perm("view_fleet", ambulances.Get))
	mux.Handle("POST /api/ambulances/{id}/location", perm("update_location", ambulances.ReportLocation))
	mux.Handle("GET /api/ambulances/{id}/location", perm("view_fleet", ambulances.LastLocation))
	mux.Handle("PUT /api/ambulances/{id}/fuel", perm("update_location", ambulances.SetFuel))
	mux.Handle("PUT /api/ambulances/{id}/status", perm("assign_ambulance", ambulances.SetStatus))

	mux.Handle("GET /api/kpis", perm("view_kpis", kpis.Snapshot))
	mux.Handle("GET /api/kpis/referrals-by-hospital", perm("view_kpis", kpis.ReferralsByHospital))
	mux.Handle("GET /api/hospitals", perm("view_referrals", kpis.Hospitals))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	return rateMW.RateLimit(300, 60)(authMW.Authenticate(mux))
}
