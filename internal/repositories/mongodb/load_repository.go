package mongodb

import (
	"context"
	"fmt"
	"time"

	"loadpulse/internal/models"
	"loadpulse/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type loadRepository struct {
	collection *mongo.Collection
}

func NewLoadRepository(db *mongo.Database) interfaces.LoadRepository {
	return &loadRepository{
		collection: db.Collection("loads"),
	}
}

func (r *loadRepository) Create(ctx context.Context, load *models.Load) error {
	load.ID = primitive.NewObjectID()
	load.Status = models.LoadStatusPosted
	load.CreatedAt = time.Now()
	load.UpdatedAt = load.CreatedAt

	_, err := r.collection.InsertOne(ctx, load)
	if err != nil {
		return fmt.Errorf("failed to create load: %w", err)
	}

	return nil
}

func (r *loadRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Load, error) {
	var load models.Load
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&load)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("load %s: %w", id.Hex(), interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get load: %w", err)
	}

	return &load, nil
}

func (r *loadRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.LoadStatus, carrierID *primitive.ObjectID) error {
	update := bson.M{
		"status":     status,
		"updated_at": time.Now(),
	}
	if carrierID != nil {
		update["carrier_id"] = *carrierID
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		return fmt.Errorf("failed to update load status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("load %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	return nil
}

type locationRepository struct {
	collection *mongo.Collection
}

func NewLocationRepository(db *mongo.Database) interfaces.LocationRepository {
	return &locationRepository{
		collection: db.Collection("locations"),
	}
}

func (r *locationRepository) Create(ctx context.Context, location *models.Location) error {
	location.ID = primitive.NewObjectID()
	location.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, location)
	if err != nil {
		return fmt.Errorf("failed to create location: %w", err)
	}

	return nil
}

func (r *locationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Location, error) {
	var location models.Location
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&location)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("location %s: %w", id.Hex(), interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get location: %w", err)
	}

	return &location, nil
}
