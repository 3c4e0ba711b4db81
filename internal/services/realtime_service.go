package services

import (
	"context"
	"fmt"

	"loadpulse/pkg/cache"
	"loadpulse/pkg/logger"
	"loadpulse/pkg/websocket"
)

// RealtimeService pushes demand heatmap deltas to live dashboard viewers.
type RealtimeService interface {
	PublishHeatmapUpdate(ctx context.Context, region string, data map[string]interface{}) error
}

type realtimeService struct {
	ws      *websocket.Handler
	cache   *cache.RedisCache
	channel string
	logger  *logger.Logger
}

func NewRealtimeService(ws *websocket.Handler, redisCache *cache.RedisCache, channel string, log *logger.Logger) RealtimeService {
	return &realtimeService{
		ws:      ws,
		cache:   redisCache,
		channel: channel,
		logger:  log,
	}
}

// PublishHeatmapUpdate fans the update out to viewers of the affected region
// room, to the global overview, and onto the Redis channel other instances
// subscribe to.
func (s *realtimeService) PublishHeatmapUpdate(ctx context.Context, region string, data map[string]interface{}) error {
	if s.ws != nil {
		s.ws.SendRegionUpdate(region, "demand_update", data)
		s.ws.SendGlobalUpdate("demand_update", data)
	}

	if s.cache != nil {
		payload := map[string]interface{}{
			"region": region,
			"data":   data,
		}
		if err := s.cache.Publish(ctx, s.channel, payload); err != nil {
			return fmt.Errorf("failed to publish heatmap update: %w", err)
		}
	}

	s.logger.WithField("region", region).Debug("Heatmap update published")
	return nil
}
