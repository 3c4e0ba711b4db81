package mongodb

import (
	"context"
	"fmt"

	"loadpulse/internal/models"
	"loadpulse/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type demandRepository struct {
	recordsCollection      *mongo.Collection
	lanesCollection        *mongo.Collection
	aggregationsCollection *mongo.Collection
}

func NewDemandRepository(db *mongo.Database) interfaces.DemandRepository {
	return &demandRepository{
		recordsCollection:      db.Collection("load_demand_records"),
		lanesCollection:        db.Collection("load_lane_data"),
		aggregationsCollection: db.Collection("load_demand_aggregations"),
	}
}

func (r *demandRepository) CreateDemandRecord(ctx context.Context, record *models.LoadDemandRecord) error {
	record.ID = primitive.NewObjectID()

	_, err := r.recordsCollection.InsertOne(ctx, record)
	if err != nil {
		return fmt.Errorf("failed to create demand record: %w", err)
	}

	return nil
}

func (r *demandRepository) CreateLaneData(ctx context.Context, lane *models.LoadLaneData) error {
	lane.ID = primitive.NewObjectID()

	_, err := r.lanesCollection.InsertOne(ctx, lane)
	if err != nil {
		return fmt.Errorf("failed to create lane data: %w", err)
	}

	return nil
}

func (r *demandRepository) GetHourlyRecordsByDay(ctx context.Context, year, month, day int) ([]*models.LoadDemandRecord, error) {
	filter := bson.M{
		"timeframe": models.TimeframeHourly,
		"year":      year,
		"month":     month,
		"day":       day,
	}

	cursor, err := r.recordsCollection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find demand records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*models.LoadDemandRecord
	for cursor.Next(ctx) {
		var record models.LoadDemandRecord
		if err := cursor.Decode(&record); err != nil {
			return nil, fmt.Errorf("failed to decode demand record: %w", err)
		}
		records = append(records, &record)
	}

	return records, nil
}

func (r *demandRepository) GetAggregation(ctx context.Context, aggType models.AggregationType, key string, year, month, day int) (*models.LoadDemandAggregation, error) {
	filter := bson.M{
		"aggregation_type": aggType,
		"timeframe":        models.TimeframeDaily,
		"year":             year,
		"month":            month,
		"day":              day,
	}
	switch aggType {
	case models.AggregationTypeGeohash:
		filter["geohash"] = key
	case models.AggregationTypeRegion:
		filter["region_id"] = key
	}

	var agg models.LoadDemandAggregation
	err := r.aggregationsCollection.FindOne(ctx, filter).Decode(&agg)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("aggregation %s/%s: %w", aggType, key, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get aggregation: %w", err)
	}

	return &agg, nil
}

func (r *demandRepository) CreateAggregation(ctx context.Context, agg *models.LoadDemandAggregation) error {
	agg.ID = primitive.NewObjectID()

	_, err := r.aggregationsCollection.InsertOne(ctx, agg)
	if err != nil {
		return fmt.Errorf("failed to create aggregation: %w", err)
	}

	return nil
}

func (r *demandRepository) ReplaceAggregation(ctx context.Context, id primitive.ObjectID, agg *models.LoadDemandAggregation) error {
	agg.ID = id

	_, err := r.aggregationsCollection.ReplaceOne(ctx, bson.M{"_id": id}, agg)
	if err != nil {
		return fmt.Errorf("failed to replace aggregation: %w", err)
	}

	return nil
}

func (r *demandRepository) GetLatestAggregationForDay(ctx context.Context, year, month, day int) (*models.LoadDemandAggregation, error) {
	filter := bson.M{
		"timeframe": models.TimeframeDaily,
		"year":      year,
		"month":     month,
		"day":       day,
	}

	opts := options.FindOne().SetSort(bson.D{{Key: "last_updated", Value: -1}})

	var agg models.LoadDemandAggregation
	err := r.aggregationsCollection.FindOne(ctx, filter, opts).Decode(&agg)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("aggregation for %04d-%02d-%02d: %w", year, month, day, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get latest aggregation: %w", err)
	}

	return &agg, nil
}

func (r *demandRepository) ListAggregationsByDay(ctx context.Context, aggType models.AggregationType, year, month, day int) ([]*models.LoadDemandAggregation, error) {
	filter := bson.M{
		"aggregation_type": aggType,
		"timeframe":        models.TimeframeDaily,
		"year":             year,
		"month":            month,
		"day":              day,
	}

	cursor, err := r.aggregationsCollection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "total_loads", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find aggregations: %w", err)
	}
	defer cursor.Close(ctx)

	var aggs []*models.LoadDemandAggregation
	for cursor.Next(ctx) {
		var agg models.LoadDemandAggregation
		if err := cursor.Decode(&agg); err != nil {
			return nil, fmt.Errorf("failed to decode aggregation: %w", err)
		}
		aggs = append(aggs, &agg)
	}

	return aggs, nil
}
