package config

import (
	"time"

	"loadpulse/internal/utils"
)

type DemandConfig struct {
	PointGeohashPrecision int           `yaml:"point_geohash_precision"`
	LaneGeohashPrecision  int           `yaml:"lane_geohash_precision"`
	AggregationThrottle   time.Duration `yaml:"aggregation_throttle"`
	RealTimeUpdates       bool          `yaml:"real_time_updates"`
	HeatmapChannel        string        `yaml:"heatmap_channel"`
	NotificationChannel   string        `yaml:"notification_channel"`
}

func loadDemandConfig() *DemandConfig {
	return &DemandConfig{
		PointGeohashPrecision: getEnvAsInt("DEMAND_POINT_GEOHASH_PRECISION", utils.DemandGeohashPrecision),
		LaneGeohashPrecision:  getEnvAsInt("DEMAND_LANE_GEOHASH_PRECISION", utils.LaneGeohashPrecision),
		AggregationThrottle:   getEnvAsDuration("DEMAND_AGGREGATION_THROTTLE", time.Hour),
		RealTimeUpdates:       getEnvAsBool("DEMAND_REAL_TIME_UPDATES", true),
		HeatmapChannel:        getEnv("DEMAND_HEATMAP_CHANNEL", "demand:heatmap"),
		NotificationChannel:   getEnv("DEMAND_NOTIFICATION_CHANNEL", "demand:notifications"),
	}
}
