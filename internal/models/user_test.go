package models

import (
	"testing"
)

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		expected bool
	}{
		{"admin role", RoleAdmin, true},
		{"staff role", RoleStaff, true},
		{"driver role", RoleDriver, true},
		{"viewer role", RoleViewer, true},
		{"invalid role", "dispatcher", false},
		{"empty role", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidRole(tt.role)
			if result != tt.expected {
				t.Errorf("IsValidRole(%s) = %v, want %v", tt.role, result, tt.expected)
			}
		})
	}
}

func TestUser_HasPermission(t *testing.T) {
	admin := &User{Role: RoleAdmin}
	staff := &User{Role: RoleStaff}
	driver := &User{Role: RoleDriver}
	viewer := &User{Role: RoleViewer}

	tests := []struct {
		name     string
		user     *User
		action   string
		expected bool
	}{
		// Admin - everything
		{"admin can manage users", admin, "manage_users", true},
		{"admin can create referral", admin, "create_referral", true},
		{"admin can update location", admin, "update_location", true},

		// Hospital staff - everything except user management and driver location reports
		{"staff can create referral", staff, "create_referral", true},
		{"staff can assign ambulance", staff, "assign_ambulance", true},
		{"staff can view kpis", staff, "view_kpis", true},
		{"staff cannot manage users", staff, "manage_users", false},
		{"staff cannot update location", staff, "update_location", false},

		// Driver - operational mission actions only
		{"driver can update location", driver, "update_location", true},
		{"driver can mark picked up", driver, "mark_picked_up", true},
		{"driver can complete mission", driver, "complete_mission", true},
		{"driver can send message", driver, "send_message", true},
		{"driver cannot create referral", driver, "create_referral", false},
		{"driver cannot assign ambulance", driver, "assign_ambulance", false},

		// Viewer - read-only
		{"viewer can view referrals", viewer, "view_referrals", true},
		{"viewer can view fleet", viewer, "view_fleet", true},
		{"viewer can view kpis", viewer, "view_kpis", true},
		{"viewer cannot create referral", viewer, "create_referral", false},
		{"viewer cannot complete mission", viewer, "complete_mission", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.user.HasPermission(tt.action)
			if result != tt.expected {
				t.Errorf("User with role %s HasPermission(%s) = %v, want %v",
					tt.user.Role, tt.action, result, tt.expected)
			}
		})
	}
}
