package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Location represents a geographical location with latitude and longitude coordinates.
type Location struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lon float64 `bson:"lon" json:"lon"`
}

// LocationUpdate is one entry in the append-only position log for an ambulance.
// Entries are never mutated; the newest timestamp is the last known position.
type LocationUpdate struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AmbulanceID  string             `bson:"ambulance_id" json:"ambulance_id"`
	Position     Location           `bson:"position" json:"position"`
	LocationName string             `bson:"location_name" json:"location_name"`
	Timestamp    time.Time          `bson:"timestamp" json:"timestamp"`
	PatientID    string             `bson:"patient_id,omitempty" json:"patient_id,omitempty"`
	// DistanceKm is the distance covered since the previous update, reported by
	// the feed so fuel can be debited proportionally.
	DistanceKm float64 `bson:"distance_km,omitempty" json:"distance_km,omitempty"`
}
