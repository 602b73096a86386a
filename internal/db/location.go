package db

import (
	"context"
	"fmt"

	"github.com/kisumu-dev/referral-dispatch/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LocationStore wraps the location_updates collection. Append-only.
type LocationStore struct {
	Collection *mongo.Collection
}

// InsertLocationUpdate appends a position log entry.
func (s *LocationStore) InsertLocationUpdate(ctx context.Context, update models.LocationUpdate) error {
	if s.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	_, err := s.Collection.InsertOne(ctx, update)
	return err
}

// FindLatestLocation returns the newest log entry for an ambulance.
func (s *LocationStore) FindLatestLocation(ctx context.Context, ambulanceID string) (*models.LocationUpdate, error) {
	if s.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	var update models.LocationUpdate
	err := s.Collection.FindOne(ctx, bson.M{"ambulance_id": ambulanceID}, opts).Decode(&update)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &update, nil
}
