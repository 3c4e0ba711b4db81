package interfaces

import (
	"context"

	"loadpulse/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LoadRepository interface {
	Create(ctx context.Context, load *models.Load) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Load, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.LoadStatus, carrierID *primitive.ObjectID) error
}

type LocationRepository interface {
	Create(ctx context.Context, location *models.Location) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Location, error)
}
