package models

import (
	"testing"
)

func TestPatientStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name     string
		from     PatientStatus
		to       PatientStatus
		expected bool
	}{
		{"referred to assigned", StatusReferred, StatusAssigned, true},
		{"assigned to dispatched", StatusAssigned, StatusDispatched, true},
		{"dispatched to picked up", StatusDispatched, StatusPickedUp, true},
		{"picked up to transporting", StatusPickedUp, StatusTransporting, true},
		{"picked up straight to arrived", StatusPickedUp, StatusArrived, true},
		{"transporting to arrived", StatusTransporting, StatusArrived, true},
		{"arrived to completed", StatusArrived, StatusCompleted, true},
		{"no skipping assignment", StatusReferred, StatusDispatched, false},
		{"no skipping pickup", StatusAssigned, StatusPickedUp, false},
		{"no going backwards", StatusPickedUp, StatusAssigned, false},
		{"completed is terminal", StatusCompleted, StatusReferred, false},
		{"no self loop", StatusReferred, StatusReferred, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.expected {
				t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.expected)
			}
		})
	}
}

func TestPatientStatus_IsActive(t *testing.T) {
	active := []PatientStatus{StatusAssigned, StatusDispatched, StatusPickedUp, StatusTransporting}
	for _, s := range active {
		if !s.IsActive() {
			t.Errorf("expected %s to be active", s)
		}
	}
	inactive := []PatientStatus{StatusReferred, StatusArrived, StatusCompleted}
	for _, s := range inactive {
		if s.IsActive() {
			t.Errorf("expected %s to be inactive", s)
		}
	}
}
