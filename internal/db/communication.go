package db

import (
	"context"
	"fmt"
	"time"

	"github.com/kisumu-dev/referral-dispatch/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CommunicationStore wraps the communications collection.
type CommunicationStore struct {
	Collection *mongo.Collection
}

// InsertCommunication appends a message log entry.
func (s *CommunicationStore) InsertCommunication(ctx context.Context, comm models.Communication) error {
	if s.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	if comm.Timestamp.IsZero() {
		comm.Timestamp = time.Now()
	}
	_, err := s.Collection.InsertOne(ctx, comm)
	return err
}

// FindCommunicationsForPatient returns the message history for a referral,
// oldest first.
func (s *CommunicationStore) FindCommunicationsForPatient(ctx context.Context, patientID string) ([]models.Communication, error) {
	return s.findFiltered(ctx, bson.M{"patient_id": patientID})
}

// FindCommunicationsForAmbulance returns the message history for a vehicle,
// oldest first.
func (s *CommunicationStore) FindCommunicationsForAmbulance(ctx context.Context, ambulanceID string) ([]models.Communication, error) {
	return s.findFiltered(ctx, bson.M{"ambulance_id": ambulanceID})
}

func (s *CommunicationStore) findFiltered(ctx context.Context, filter bson.M) ([]models.Communication, error) {
	if s.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := s.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var comms []models.Communication
	if err := cursor.All(ctx, &comms); err != nil {
		return nil, err
	}
	return comms, nil
}

// HandoverStore wraps the handover_forms collection.
type HandoverStore struct {
	Collection *mongo.Collection
}

// InsertHandover stores a handover form.
func (s *HandoverStore) InsertHandover(ctx context.Context, form models.HandoverForm) error {
	if s.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	if form.TransferTime.IsZero() {
		form.TransferTime = time.Now()
	}
	_, err := s.Collection.InsertOne(ctx, form)
	return err
}
