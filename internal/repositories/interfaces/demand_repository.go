package interfaces

import (
	"context"

	"loadpulse/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DemandRepository interface {
	// Raw hourly records and lane rows, append-only.
	CreateDemandRecord(ctx context.Context, record *models.LoadDemandRecord) error
	CreateLaneData(ctx context.Context, lane *models.LoadLaneData) error
	GetHourlyRecordsByDay(ctx context.Context, year, month, day int) ([]*models.LoadDemandRecord, error)

	// Daily aggregates, upserted by the aggregator via query-then-patch.
	GetAggregation(ctx context.Context, aggType models.AggregationType, key string, year, month, day int) (*models.LoadDemandAggregation, error)
	CreateAggregation(ctx context.Context, agg *models.LoadDemandAggregation) error
	ReplaceAggregation(ctx context.Context, id primitive.ObjectID, agg *models.LoadDemandAggregation) error
	GetLatestAggregationForDay(ctx context.Context, year, month, day int) (*models.LoadDemandAggregation, error)
	ListAggregationsByDay(ctx context.Context, aggType models.AggregationType, year, month, day int) ([]*models.LoadDemandAggregation, error)
}
