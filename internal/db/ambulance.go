package db

import (
	"context"
	"fmt"
	"time"

	"github.com/kisumu-dev/referral-dispatch/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// AmbulanceStore wraps the ambulances collection. Vehicles are keyed by
// registration plate, so _id is the natural string key.
type AmbulanceStore struct {
	Collection *mongo.Collection
}

// InsertAmbulance inserts a fleet vehicle record.
func (s *AmbulanceStore) InsertAmbulance(ctx context.Context, ambulance models.Ambulance) error {
	if s.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	now := time.Now()
	ambulance.CreatedAt = now
	ambulance.UpdatedAt = now
	_, err := s.Collection.InsertOne(ctx, ambulance)
	return err
}

// FindAmbulanceByID finds a vehicle by registration.
func (s *AmbulanceStore) FindAmbulanceByID(ctx context.Context, id string) (*models.Ambulance, error) {
	if s.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	var ambulance models.Ambulance
	err := s.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ambulance)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrAmbulanceNotFound
		}
		return nil, err
	}
	return &ambulance, nil
}

// FindAmbulances returns the whole fleet.
func (s *AmbulanceStore) FindAmbulances(ctx context.Context) ([]models.Ambulance, error) {
	return s.findFiltered(ctx, bson.M{})
}

// FindAvailableAmbulances returns vehicles with status Available, in _id
// order so dispatch tie-breaks are deterministic.
func (s *AmbulanceStore) FindAvailableAmbulances(ctx context.Context) ([]models.Ambulance, error) {
	return s.findFiltered(ctx, bson.M{"status": models.AmbulanceAvailable})
}

func (s *AmbulanceStore) findFiltered(ctx context.Context, filter bson.M) ([]models.Ambulance, error) {
	if s.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	cursor, err := s.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var ambulances []models.Ambulance
	if err := cursor.All(ctx, &ambulances); err != nil {
		return nil, err
	}
	return ambulances, nil
}

// ReserveAmbulance atomically flips Available -> On Transfer. The status
// filter means two concurrent dispatches cannot double-book one vehicle.
func (s *AmbulanceStore) ReserveAmbulance(ctx context.Context, id, patientID string) error {
	if s.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	res, err := s.Collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.AmbulanceAvailable},
		bson.M{"$set": bson.M{
			"status":          models.AmbulanceOnTransfer,
			"current_patient": patientID,
			"updated_at":      time.Now(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// distinguish missing vehicle from a lost race
		if _, err := s.FindAmbulanceByID(ctx, id); err != nil {
			return err
		}
		return ErrAmbulanceNotAvailable
	}
	return nil
}

// SetAmbulanceAssignment assigns without checking eligibility. This is the
// manual-selection path: staff can deliberately dispatch a low-fuel or
// off-duty vehicle.
func (s *AmbulanceStore) SetAmbulanceAssignment(ctx context.Context, id, patientID, destination string) error {
	return s.setFields(ctx, id, bson.M{
		"status":          models.AmbulanceOnTransfer,
		"current_patient": patientID,
		"destination":     destination,
	})
}

// ReleaseAmbulance returns the vehicle to service.
func (s *AmbulanceStore) ReleaseAmbulance(ctx context.Context, id string) error {
	if s.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	res, err := s.Collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$set":   bson.M{"status": models.AmbulanceAvailable, "updated_at": time.Now()},
			"$unset": bson.M{"current_patient": "", "destination": ""},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrAmbulanceNotFound
	}
	return nil
}

// UpdateAmbulanceStatus sets the operational status.
func (s *AmbulanceStore) UpdateAmbulanceStatus(ctx context.Context, id string, status models.AmbulanceStatus) error {
	return s.setFields(ctx, id, bson.M{"status": status})
}

// UpdateAmbulanceFuel sets the absolute fuel level. Callers clamp.
func (s *AmbulanceStore) UpdateAmbulanceFuel(ctx context.Context, id string, level float64) error {
	return s.setFields(ctx, id, bson.M{"fuel_level": level})
}

// ApplyTripAccrual increments the cumulative cost ledger.
func (s *AmbulanceStore) ApplyTripAccrual(ctx context.Context, id string, distanceKm, fuelCostKsh, savingsKsh float64) error {
	if s.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	res, err := s.Collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{
				"total_distance_traveled": distanceKm,
				"total_fuel_cost":         fuelCostKsh,
				"cost_savings":            savingsKsh,
			},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrAmbulanceNotFound
	}
	return nil
}

// UpdateAmbulancePosition records a position only when ts is newer than the
// stored last_location_update, so the GPS feed and manual reports cannot
// clobber each other out of order.
func (s *AmbulanceStore) UpdateAmbulancePosition(ctx context.Context, id string, pos models.Location, name string, ts time.Time) error {
	if s.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	res, err := s.Collection.UpdateOne(ctx,
		bson.M{"_id": id, "last_location_update": bson.M{"$lt": ts}},
		bson.M{"$set": bson.M{
			"position":             pos,
			"current_location":     name,
			"last_location_update": ts,
			"updated_at":           time.Now(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, err := s.FindAmbulanceByID(ctx, id); err != nil {
			return err
		}
		return ErrStaleLocation
	}
	return nil
}

func (s *AmbulanceStore) setFields(ctx context.Context, id string, fields bson.M) error {
	if s.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	fields["updated_at"] = time.Now()
	res, err := s.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrAmbulanceNotFound
	}
	return nil
}
