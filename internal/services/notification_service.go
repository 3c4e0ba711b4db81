package services

import (
	"context"
	"fmt"
	"time"

	"loadpulse/pkg/cache"
	"loadpulse/pkg/logger"
)

// NotificationService tells interested carriers that demand shifted in a
// region. Delivery is fire-and-forget from the pipeline's point of view.
type NotificationService interface {
	NotifyDemandChange(ctx context.Context, region string, data map[string]interface{}) error
}

type notificationService struct {
	cache   *cache.RedisCache
	channel string
	logger  *logger.Logger
}

func NewNotificationService(redisCache *cache.RedisCache, channel string, log *logger.Logger) NotificationService {
	return &notificationService{
		cache:   redisCache,
		channel: channel,
		logger:  log,
	}
}

func (s *notificationService) NotifyDemandChange(ctx context.Context, region string, data map[string]interface{}) error {
	if s.cache == nil {
		return nil
	}

	payload := map[string]interface{}{
		"type":      "demand_change",
		"region":    region,
		"data":      data,
		"timestamp": time.Now().UnixMilli(),
	}

	if err := s.cache.Publish(ctx, s.channel, payload); err != nil {
		return fmt.Errorf("failed to publish demand notification: %w", err)
	}

	s.logger.WithField("region", region).Debug("Demand notification published")
	return nil
}
