package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LoadStatus string

const (
	LoadStatusPosted   LoadStatus = "posted"
	LoadStatusAccepted LoadStatus = "accepted"
	LoadStatusRejected LoadStatus = "rejected"
)

type Load struct {
	ID                  primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	ReferenceNumber     string              `json:"reference_number" bson:"reference_number"`
	ShipperID           primitive.ObjectID  `json:"shipper_id" bson:"shipper_id"`
	CarrierID           *primitive.ObjectID `json:"carrier_id" bson:"carrier_id,omitempty"`
	PickupLocationID    primitive.ObjectID  `json:"pickup_location_id" bson:"pickup_location_id" validate:"required"`
	DeliveryLocationID  primitive.ObjectID  `json:"delivery_location_id" bson:"delivery_location_id" validate:"required"`
	Weight              float64             `json:"weight" bson:"weight"`
	Rate                float64             `json:"rate" bson:"rate"`
	EquipmentType       string              `json:"equipment_type" bson:"equipment_type"`
	LoadType            string              `json:"load_type" bson:"load_type"`
	Hazmat              bool                `json:"hazmat" bson:"hazmat"`
	Commodity           string              `json:"commodity" bson:"commodity"`
	PickupWindowStart   time.Time           `json:"pickup_window_start" bson:"pickup_window_start"`
	PickupWindowEnd     time.Time           `json:"pickup_window_end" bson:"pickup_window_end"`
	DeliveryWindowStart time.Time           `json:"delivery_window_start" bson:"delivery_window_start"`
	DeliveryWindowEnd   time.Time           `json:"delivery_window_end" bson:"delivery_window_end"`
	Status              LoadStatus          `json:"status" bson:"status"`
	CreatedAt           time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at" bson:"updated_at"`
}
