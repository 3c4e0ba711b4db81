package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Migration struct {
	Version     int
	Description string
	Up          func(*mongo.Database) error
}

type Migrator struct {
	db         *mongo.Database
	migrations []Migration
}

func NewMigrator(db *mongo.Database) *Migrator {
	return &Migrator{
		db:         db,
		migrations: getMigrations(),
	}
}

func (m *Migrator) Up() error {
	currentVersion, err := m.getCurrentVersion()
	if err != nil {
		return err
	}

	for _, migration := range m.migrations {
		if migration.Version > currentVersion {
			log.Printf("Running migration %d: %s", migration.Version, migration.Description)

			if err := migration.Up(m.db); err != nil {
				return fmt.Errorf("migration %d failed: %w", migration.Version, err)
			}

			if err := m.updateVersion(migration.Version); err != nil {
				return fmt.Errorf("failed to update migration version: %w", err)
			}
		}
	}

	return nil
}

func (m *Migrator) getCurrentVersion() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var result struct {
		Version int `bson:"version"`
	}

	opts := options.FindOne().SetSort(bson.D{{Key: "version", Value: -1}})
	err := m.db.Collection("migrations").FindOne(ctx, bson.M{}, opts).Decode(&result)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get current migration version: %w", err)
	}

	return result.Version, nil
}

func (m *Migrator) updateVersion(version int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := m.db.Collection("migrations").InsertOne(ctx, bson.M{
		"version":    version,
		"applied_at": time.Now(),
	})
	return err
}

func getMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "demand record day-bucket index",
			Up: func(db *mongo.Database) error {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				_, err := db.Collection("load_demand_records").Indexes().CreateOne(ctx, mongo.IndexModel{
					Keys: bson.D{
						{Key: "timeframe", Value: 1},
						{Key: "year", Value: 1},
						{Key: "month", Value: 1},
						{Key: "day", Value: 1},
					},
				})
				return err
			},
		},
		{
			Version:     2,
			Description: "aggregation key index",
			Up: func(db *mongo.Database) error {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				_, err := db.Collection("load_demand_aggregations").Indexes().CreateOne(ctx, mongo.IndexModel{
					Keys: bson.D{
						{Key: "aggregation_type", Value: 1},
						{Key: "timeframe", Value: 1},
						{Key: "year", Value: 1},
						{Key: "month", Value: 1},
						{Key: "day", Value: 1},
					},
				})
				return err
			},
		},
		{
			Version:     3,
			Description: "load status and lane source indexes",
			Up: func(db *mongo.Database) error {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if _, err := db.Collection("loads").Indexes().CreateOne(ctx, mongo.IndexModel{
					Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
				}); err != nil {
					return err
				}

				_, err := db.Collection("load_lane_data").Indexes().CreateOne(ctx, mongo.IndexModel{
					Keys: bson.D{{Key: "source_load_id", Value: 1}},
				})
				return err
			},
		},
	}
}
