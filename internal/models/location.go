package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Location struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Latitude  float64            `json:"latitude" bson:"latitude" validate:"required"`
	Longitude float64            `json:"longitude" bson:"longitude" validate:"required"`
	Address   string             `json:"address" bson:"address"`
	City      string             `json:"city" bson:"city"`
	State     string             `json:"state" bson:"state"`
	ZipCode   string             `json:"zip_code" bson:"zip_code"`
	Country   string             `json:"country" bson:"country"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}
