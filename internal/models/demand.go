package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DemandType string

const (
	DemandTypePickup   DemandType = "pickup"
	DemandTypeDelivery DemandType = "delivery"
)

type Timeframe string

const (
	TimeframeHourly Timeframe = "hourly"
	TimeframeDaily  Timeframe = "daily"
)

type AggregationType string

const (
	AggregationTypeGeohash AggregationType = "geohash"
	AggregationTypeRegion  AggregationType = "region"
)

// LoadDemandRecord is one hourly-granularity demand observation, written once
// per load per endpoint (pickup and delivery) and never mutated afterwards.
type LoadDemandRecord struct {
	ID primitive.ObjectID `json:"id" bson:"_id,omitempty"`

	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
	Geohash   string  `json:"geohash" bson:"geohash"`
	Region    string  `json:"region" bson:"region"`

	Timestamp  int64     `json:"timestamp" bson:"timestamp"`
	Timeframe  Timeframe `json:"timeframe" bson:"timeframe"`
	Year       int       `json:"year" bson:"year"`
	Month      int       `json:"month" bson:"month"`
	Day        int       `json:"day" bson:"day"`
	Hour       int       `json:"hour" bson:"hour"`
	WeekNumber int       `json:"week_number" bson:"week_number"`

	LoadCount      int      `json:"load_count" bson:"load_count"`
	TotalWeight    float64  `json:"total_weight" bson:"total_weight"`
	AvgRate        float64  `json:"avg_rate" bson:"avg_rate"`
	EquipmentTypes []string `json:"equipment_types" bson:"equipment_types"`
	LoadTypes      []string `json:"load_types" bson:"load_types"`

	IsAggregated  bool                 `json:"is_aggregated" bson:"is_aggregated"`
	SourceLoadIDs []primitive.ObjectID `json:"source_load_ids" bson:"source_load_ids"`

	DemandType         DemandType `json:"demand_type" bson:"demand_type"`
	CityName           string     `json:"city_name" bson:"city_name"`
	ZipCode            string     `json:"zip_code" bson:"zip_code"`
	HazmatRequired     bool       `json:"hazmat_required" bson:"hazmat_required"`
	DistanceToDelivery float64    `json:"distance_to_delivery" bson:"distance_to_delivery"`
	CommodityType      string     `json:"commodity_type" bson:"commodity_type"`
	UrgencyScore       float64    `json:"urgency_score" bson:"urgency_score"`
	MarketSegment      string     `json:"market_segment" bson:"market_segment"`
	SeasonalFactor     float64    `json:"seasonal_factor" bson:"seasonal_factor"`
	MarketDemandScore  float64    `json:"market_demand_score" bson:"market_demand_score"`
}

// LoadLaneData is one row per load describing the pickup-to-delivery pair at
// coarser (precision 4) geohash resolution.
type LoadLaneData struct {
	ID primitive.ObjectID `json:"id" bson:"_id,omitempty"`

	OriginGeohash      string `json:"origin_geohash" bson:"origin_geohash"`
	DestinationGeohash string `json:"destination_geohash" bson:"destination_geohash"`
	OriginRegion       string `json:"origin_region" bson:"origin_region"`
	DestinationRegion  string `json:"destination_region" bson:"destination_region"`
	OriginCity         string `json:"origin_city" bson:"origin_city"`
	DestinationCity    string `json:"destination_city" bson:"destination_city"`

	Timestamp  int64 `json:"timestamp" bson:"timestamp"`
	Year       int   `json:"year" bson:"year"`
	Month      int   `json:"month" bson:"month"`
	Day        int   `json:"day" bson:"day"`
	WeekNumber int   `json:"week_number" bson:"week_number"`

	LoadCount         int     `json:"load_count" bson:"load_count"`
	TotalWeight       float64 `json:"total_weight" bson:"total_weight"`
	AvgRate           float64 `json:"avg_rate" bson:"avg_rate"`
	Distance          float64 `json:"distance" bson:"distance"`
	RatePerMile       float64 `json:"rate_per_mile" bson:"rate_per_mile"`
	TransitTime       float64 `json:"transit_time" bson:"transit_time"`
	EquipmentType     string  `json:"equipment_type" bson:"equipment_type"`
	LoadType          string  `json:"load_type" bson:"load_type"`
	Hazmat            bool    `json:"hazmat" bson:"hazmat"`
	CommodityType     string  `json:"commodity_type" bson:"commodity_type"`
	MarketDemandScore float64 `json:"market_demand_score" bson:"market_demand_score"`

	SourceLoadID primitive.ObjectID `json:"source_load_id" bson:"source_load_id"`
}

// LoadDemandAggregation is a recomputable daily rollup over the hourly demand
// records. At most one row exists per (aggregation_type, key, year, month, day);
// the upsert is query-then-patch-or-insert, not a database constraint.
type LoadDemandAggregation struct {
	ID primitive.ObjectID `json:"id" bson:"_id,omitempty"`

	AggregationType AggregationType `json:"aggregation_type" bson:"aggregation_type"`
	Geohash         string          `json:"geohash,omitempty" bson:"geohash,omitempty"`
	RegionID        string          `json:"region_id,omitempty" bson:"region_id,omitempty"`
	CityName        string          `json:"city_name" bson:"city_name"`
	ZipCode         string          `json:"zip_code" bson:"zip_code"`
	Latitude        float64         `json:"latitude" bson:"latitude"`
	Longitude       float64         `json:"longitude" bson:"longitude"`

	Timeframe Timeframe `json:"timeframe" bson:"timeframe"`
	Year      int       `json:"year" bson:"year"`
	Month     int       `json:"month" bson:"month"`
	Day       int       `json:"day" bson:"day"`

	TotalLoads           int     `json:"total_loads" bson:"total_loads"`
	TotalWeight          float64 `json:"total_weight" bson:"total_weight"`
	AvgRate              float64 `json:"avg_rate" bson:"avg_rate"`
	AvgUrgencyScore      float64 `json:"avg_urgency_score" bson:"avg_urgency_score"`
	AvgMarketDemandScore float64 `json:"avg_market_demand_score" bson:"avg_market_demand_score"`
	AvgSeasonalFactor    float64 `json:"avg_seasonal_factor" bson:"avg_seasonal_factor"`

	EquipmentBreakdown     map[string]int `json:"equipment_breakdown" bson:"equipment_breakdown"`
	LoadTypeBreakdown      map[string]int `json:"load_type_breakdown" bson:"load_type_breakdown"`
	CommodityTypeBreakdown map[string]int `json:"commodity_type_breakdown" bson:"commodity_type_breakdown"`
	HazmatBreakdown        map[string]int `json:"hazmat_breakdown" bson:"hazmat_breakdown"`
	DemandTypeBreakdown    map[string]int `json:"demand_type_breakdown" bson:"demand_type_breakdown"`

	DataPoints  int   `json:"data_points" bson:"data_points"`
	LastUpdated int64 `json:"last_updated" bson:"last_updated"`
}
