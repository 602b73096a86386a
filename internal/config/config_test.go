package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 180.0, cfg.Cost.FuelPricePerLiter)
	assert.Equal(t, 0.12, cfg.Cost.AverageFuelConsumption)
	assert.Equal(t, 50.0, cfg.Cost.BaseOperatingCostPerKm)
	assert.Equal(t, 20.0, cfg.MinFuelLevel)
	assert.Equal(t, 5*time.Second, cfg.UpdateInterval)
	assert.NotEmpty(t, cfg.MongoURI)
	assert.NotEmpty(t, cfg.Port)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("FUEL_PRICE_PER_LITER", "195.5")
	t.Setenv("MIN_FUEL_LEVEL", "25")
	t.Setenv("LOCATION_UPDATE_INTERVAL", "2s")
	t.Setenv("SMTP_PORT", "2525")

	cfg := Load()

	assert.Equal(t, 195.5, cfg.Cost.FuelPricePerLiter)
	assert.Equal(t, 25.0, cfg.MinFuelLevel)
	assert.Equal(t, 2*time.Second, cfg.UpdateInterval)
	assert.Equal(t, 2525, cfg.SMTPPort)
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("FUEL_PRICE_PER_LITER", "not-a-number")
	t.Setenv("SMTP_PORT", "???")

	cfg := Load()

	assert.Equal(t, 180.0, cfg.Cost.FuelPricePerLiter)
	assert.Equal(t, 587, cfg.SMTPPort)
}
