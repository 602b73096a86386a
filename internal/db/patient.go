package db

import (
	"context"
	"fmt"
	"time"

	"github.com/kisumu-dev/referral-dispatch/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// PatientStore wraps the patients collection.
type PatientStore struct {
	Collection *mongo.Collection
}

// InsertPatient inserts a referral record and returns its id.
func (s *PatientStore) InsertPatient(ctx context.Context, patient models.Patient) (string, error) {
	if s.Collection == nil {
		return "", fmt.Errorf("mongo collection is nil")
	}
	patient.UpdatedAt = time.Now()
	res, err := s.Collection.InsertOne(ctx, patient)
	if err != nil {
		return "", err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

// FindPatientByID finds a referral by its id.
func (s *PatientStore) FindPatientByID(ctx context.Context, id string) (*models.Patient, error) {
	if s.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid patient ID: %w", err)
	}
	var patient models.Patient
	err = s.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&patient)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	return &patient, nil
}

// FindPatients returns all referral records.
func (s *PatientStore) FindPatients(ctx context.Context) ([]models.Patient, error) {
	if s.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	cursor, err := s.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var patients []models.Patient
	if err := cursor.All(ctx, &patients); err != nil {
		return nil, err
	}
	return patients, nil
}

// UpdatePatientStatus sets the lifecycle status.
func (s *PatientStore) UpdatePatientStatus(ctx context.Context, id string, status models.PatientStatus) error {
	return s.setFields(ctx, id, bson.M{"status": status})
}

// AssignPatientAmbulance records the ambulance assignment and moves the
// referral to Ambulance Assigned in a single update.
func (s *PatientStore) AssignPatientAmbulance(ctx context.Context, id, ambulanceID string) error {
	return s.setFields(ctx, id, bson.M{
		"assigned_ambulance": ambulanceID,
		"status":             models.StatusAssigned,
	})
}

// SetPatientVitals updates the vital signs; the rest of the clinical record
// is immutable after creation.
func (s *PatientStore) SetPatientVitals(ctx context.Context, id string, vitals map[string]string) error {
	return s.setFields(ctx, id, bson.M{"vital_signs": vitals})
}

// SetPatientTripOutcome copies the final trip cost and savings onto the
// referral record.
func (s *PatientStore) SetPatientTripOutcome(ctx context.Context, id string, totalCost, savings float64) error {
	return s.setFields(ctx, id, bson.M{
		"trip_fuel_cost":    totalCost,
		"trip_cost_savings": savings,
	})
}

func (s *PatientStore) setFields(ctx context.Context, id string, fields bson.M) error {
	if s.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid patient ID: %w", err)
	}
	fields["updated_at"] = time.Now()
	res, err := s.Collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrPatientNotFound
	}
	return nil
}
