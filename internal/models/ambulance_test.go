package models

import (
	"testing"
)

func TestAmbulance_FuelStatus(t *testing.T) {
	tests := []struct {
		level    float64
		expected FuelStatus
	}{
		{100, FuelGood},
		{50.1, FuelGood},
		{50, FuelLow},
		{20.5, FuelLow},
		{20, FuelCritical},
		{0, FuelCritical},
	}
	for _, tt := range tests {
		a := &Ambulance{FuelLevel: tt.level}
		if got := a.FuelStatus(); got != tt.expected {
			t.Errorf("FuelStatus at %.1f%% = %s, want %s", tt.level, got, tt.expected)
		}
	}
}
