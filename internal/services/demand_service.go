package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"loadpulse/internal/config"
	"loadpulse/internal/models"
	"loadpulse/internal/repositories/interfaces"
	"loadpulse/internal/utils"
	"loadpulse/pkg/cache"
	"loadpulse/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DemandService is the load demand pipeline: it records per-load demand
// observations at creation time, rolls them up into daily aggregates, and
// fans updates out to dashboards.
type DemandService interface {
	RecordLoadDemand(ctx context.Context, loadID primitive.ObjectID) (*DemandDataResult, error)
	// AggregateDailyDemand reports whether the recompute actually ran; a
	// throttled skip returns false with no error.
	AggregateDailyDemand(ctx context.Context, opts AggregateOptions) (bool, error)
	HookIntoLoadCreation(ctx context.Context, opts LoadCreationHookOptions) (*LoadCreationHookResult, error)
	ListAggregations(ctx context.Context, aggType models.AggregationType, date time.Time) ([]*models.LoadDemandAggregation, error)
}

// DemandDataResult holds the rows written for one load: an hourly record per
// endpoint plus one lane row.
type DemandDataResult struct {
	PickupRecord   *models.LoadDemandRecord
	DeliveryRecord *models.LoadDemandRecord
	Lane           *models.LoadLaneData
}

type AggregateOptions struct {
	// Date selects the day to aggregate; nil means today.
	Date *time.Time
	// ForceRefresh bypasses the throttle.
	ForceRefresh bool
}

type LoadCreationHookOptions struct {
	LoadID          primitive.ObjectID
	SkipAggregation bool
	// EnableRealTimeUpdates overrides the configured default when non-nil.
	EnableRealTimeUpdates *bool
	EnableNotifications   bool
	// EnableLLMInsights is accepted but inert; insight generation runs in a
	// separate pipeline.
	EnableLLMInsights bool
}

type LoadCreationHookResult struct {
	Success         bool `json:"success"`
	Aggregated      bool `json:"aggregated"`
	RealTimeUpdated bool `json:"real_time_updated"`
}

type demandService struct {
	loadRepo     interfaces.LoadRepository
	locationRepo interfaces.LocationRepository
	demandRepo   interfaces.DemandRepository
	realtime     RealtimeService
	notifier     NotificationService
	cache        *cache.RedisCache
	config       *config.DemandConfig
	logger       *logger.Logger

	// Injected clock and jitter source so recording passes are reproducible
	// in tests.
	now    func() time.Time
	jitter func() float64
}

func NewDemandService(
	loadRepo interfaces.LoadRepository,
	locationRepo interfaces.LocationRepository,
	demandRepo interfaces.DemandRepository,
	realtime RealtimeService,
	notifier NotificationService,
	redisCache *cache.RedisCache,
	cfg *config.DemandConfig,
	log *logger.Logger,
) DemandService {
	return &demandService{
		loadRepo:     loadRepo,
		locationRepo: locationRepo,
		demandRepo:   demandRepo,
		realtime:     realtime,
		notifier:     notifier,
		cache:        redisCache,
		config:       cfg,
		logger:       log,
		now:          time.Now,
		jitter: func() float64 {
			return 0.95 + rand.Float64()*0.1
		},
	}
}

// RecordLoadDemand writes the demand footprint of one load: a pickup record,
// a delivery record and a lane row, all stamped with a single captured
// observation time.
func (s *demandService) RecordLoadDemand(ctx context.Context, loadID primitive.ObjectID) (*DemandDataResult, error) {
	load, err := s.loadRepo.GetByID(ctx, loadID)
	if err != nil {
		return nil, fmt.Errorf("failed to load demand source: %w", err)
	}

	pickupLoc, err := s.locationRepo.GetByID(ctx, load.PickupLocationID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve pickup location: %w", err)
	}

	deliveryLoc, err := s.locationRepo.GetByID(ctx, load.DeliveryLocationID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve delivery location: %w", err)
	}

	asOf := s.now()
	distance := utils.CalculateDistanceInMiles(
		pickupLoc.Latitude, pickupLoc.Longitude,
		deliveryLoc.Latitude, deliveryLoc.Longitude,
	)
	commodityType := CategorizeCommodity(load.Commodity)

	pickupRecord := s.buildDemandRecord(load, pickupLoc, models.DemandTypePickup, asOf, commodityType)
	pickupRecord.DistanceToDelivery = distance
	pickupRecord.UrgencyScore = CalculateUrgencyScore(load.PickupWindowStart, load.PickupWindowEnd, asOf)

	deliveryRecord := s.buildDemandRecord(load, deliveryLoc, models.DemandTypeDelivery, asOf, commodityType)
	deliveryRecord.UrgencyScore = CalculateUrgencyScore(load.DeliveryWindowStart, load.DeliveryWindowEnd, asOf)

	lane := &models.LoadLaneData{
		OriginGeohash:      utils.EncodeGeohash(pickupLoc.Latitude, pickupLoc.Longitude, s.config.LaneGeohashPrecision),
		DestinationGeohash: utils.EncodeGeohash(deliveryLoc.Latitude, deliveryLoc.Longitude, s.config.LaneGeohashPrecision),
		OriginRegion:       pickupLoc.State,
		DestinationRegion:  deliveryLoc.State,
		OriginCity:         pickupLoc.City,
		DestinationCity:    deliveryLoc.City,
		Timestamp:          utils.EpochMillis(asOf),
		Year:               asOf.Year(),
		Month:              int(asOf.Month()),
		Day:                asOf.Day(),
		WeekNumber:         utils.WeekNumber(asOf),
		LoadCount:          1,
		TotalWeight:        load.Weight,
		AvgRate:            load.Rate,
		Distance:           distance,
		RatePerMile:        RatePerMile(load.Rate, distance),
		TransitTime:        EstimateTransitTime(distance, load.LoadType),
		EquipmentType:      load.EquipmentType,
		LoadType:           load.LoadType,
		Hazmat:             load.Hazmat,
		CommodityType:      commodityType,
		MarketDemandScore:  MarketDemandScore(pickupLoc.State, asOf, s.jitter),
		SourceLoadID:       load.ID,
	}

	if err := s.demandRepo.CreateDemandRecord(ctx, pickupRecord); err != nil {
		return nil, fmt.Errorf("failed to record pickup demand: %w", err)
	}
	if err := s.demandRepo.CreateDemandRecord(ctx, deliveryRecord); err != nil {
		return nil, fmt.Errorf("failed to record delivery demand: %w", err)
	}
	if err := s.demandRepo.CreateLaneData(ctx, lane); err != nil {
		return nil, fmt.Errorf("failed to record lane data: %w", err)
	}

	s.logger.LogDemandEvent(load.ID, "demand_recorded", map[string]interface{}{
		"pickup_geohash":   pickupRecord.Geohash,
		"delivery_geohash": deliveryRecord.Geohash,
		"distance_miles":   distance,
	})

	return &DemandDataResult{
		PickupRecord:   pickupRecord,
		DeliveryRecord: deliveryRecord,
		Lane:           lane,
	}, nil
}

func (s *demandService) buildDemandRecord(load *models.Load, loc *models.Location, demandType models.DemandType, asOf time.Time, commodityType string) *models.LoadDemandRecord {
	return &models.LoadDemandRecord{
		Latitude:          loc.Latitude,
		Longitude:         loc.Longitude,
		Geohash:           utils.EncodeGeohash(loc.Latitude, loc.Longitude, s.config.PointGeohashPrecision),
		Region:            loc.State,
		Timestamp:         utils.EpochMillis(asOf),
		Timeframe:         models.TimeframeHourly,
		Year:              asOf.Year(),
		Month:             int(asOf.Month()),
		Day:               asOf.Day(),
		Hour:              asOf.Hour(),
		WeekNumber:        utils.WeekNumber(asOf),
		LoadCount:         1,
		TotalWeight:       load.Weight,
		AvgRate:           load.Rate,
		EquipmentTypes:    []string{load.EquipmentType},
		LoadTypes:         []string{load.LoadType},
		IsAggregated:      false,
		SourceLoadIDs:     []primitive.ObjectID{load.ID},
		DemandType:        demandType,
		CityName:          loc.City,
		ZipCode:           loc.ZipCode,
		HazmatRequired:    load.Hazmat,
		CommodityType:     commodityType,
		MarketSegment:     DetermineMarketSegment(load.Weight, commodityType),
		SeasonalFactor:    SeasonalFactor(asOf),
		MarketDemandScore: MarketDemandScore(loc.State, asOf, s.jitter),
	}
}

// AggregateDailyDemand recomputes the daily rollups for one day from the raw
// hourly records. The computation is idempotent: re-running it patches the
// existing rows rather than duplicating them. The bool return is true only
// when the recompute ran; a throttled skip yields (false, nil) so callers can
// report honestly that the rollups did not move.
func (s *demandService) AggregateDailyDemand(ctx context.Context, opts AggregateOptions) (bool, error) {
	asOf := s.now()
	target := asOf
	if opts.Date != nil {
		target = *opts.Date
	}

	year, month, day := target.Year(), int(target.Month()), target.Day()

	if !opts.ForceRefresh {
		skip, err := s.shouldThrottle(ctx, asOf, year, month, day)
		if err != nil {
			return false, err
		}
		if skip {
			s.logger.WithFields(map[string]interface{}{
				"year": year, "month": month, "day": day,
			}).Debug("Aggregation throttled, skipping")
			return false, nil
		}
	}

	records, err := s.demandRepo.GetHourlyRecordsByDay(ctx, year, month, day)
	if err != nil {
		return false, fmt.Errorf("failed to fetch hourly records: %w", err)
	}
	if len(records) == 0 {
		s.logger.WithFields(map[string]interface{}{
			"year": year, "month": month, "day": day,
		}).Debug("No demand records for day, nothing to aggregate")
		return true, nil
	}

	byGeohash := make(map[string][]*models.LoadDemandRecord)
	byRegion := make(map[string][]*models.LoadDemandRecord)
	for _, r := range records {
		byGeohash[r.Geohash] = append(byGeohash[r.Geohash], r)
		if r.Region != "" {
			byRegion[r.Region] = append(byRegion[r.Region], r)
		}
	}

	lastUpdated := utils.EpochMillis(asOf)

	for geohash, group := range byGeohash {
		agg := summarizeRecords(group)
		agg.AggregationType = models.AggregationTypeGeohash
		agg.Geohash = geohash
		agg.Year, agg.Month, agg.Day = year, month, day
		agg.LastUpdated = lastUpdated

		if err := s.upsertAggregation(ctx, agg); err != nil {
			return false, err
		}
	}

	for region, group := range byRegion {
		agg := summarizeRecords(group)
		agg.AggregationType = models.AggregationTypeRegion
		agg.RegionID = region
		agg.Year, agg.Month, agg.Day = year, month, day
		agg.LastUpdated = lastUpdated

		if err := s.upsertAggregation(ctx, agg); err != nil {
			return false, err
		}
	}

	s.invalidateAggregationCache(ctx, year, month, day)

	s.logger.WithFields(map[string]interface{}{
		"year": year, "month": month, "day": day,
		"records":   len(records),
		"geohashes": len(byGeohash),
		"regions":   len(byRegion),
	}).Info("Daily demand aggregation complete")

	return true, nil
}

// shouldThrottle reports whether an aggregation ran recently enough to skip
// this one. The persisted last_updated stamp is the source of truth; the
// Redis stamp additionally serializes concurrent instances.
func (s *demandService) shouldThrottle(ctx context.Context, asOf time.Time, year, month, day int) (bool, error) {
	latest, err := s.demandRepo.GetLatestAggregationForDay(ctx, year, month, day)
	if err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		return false, fmt.Errorf("failed to check aggregation freshness: %w", err)
	}
	if latest != nil {
		age := time.Duration(asOf.UnixMilli()-latest.LastUpdated) * time.Millisecond
		if age < s.config.AggregationThrottle {
			return true, nil
		}
	}

	if s.cache != nil {
		key := fmt.Sprintf("demand:aggregate:%04d-%02d-%02d", year, month, day)
		acquired, err := s.cache.SetNX(ctx, key, asOf.UnixMilli(), s.config.AggregationThrottle)
		if err != nil {
			// Redis being down never blocks aggregation.
			s.logger.WithError(err).Warn("Aggregation throttle stamp unavailable")
			return false, nil
		}
		if !acquired {
			return true, nil
		}
	}

	return false, nil
}

func summarizeRecords(group []*models.LoadDemandRecord) *models.LoadDemandAggregation {
	agg := &models.LoadDemandAggregation{
		Timeframe:              models.TimeframeDaily,
		EquipmentBreakdown:     make(map[string]int),
		LoadTypeBreakdown:      make(map[string]int),
		CommodityTypeBreakdown: make(map[string]int),
		HazmatBreakdown:        make(map[string]int),
		DemandTypeBreakdown:    make(map[string]int),
	}

	var rateSum, urgencySum, marketSum, seasonalSum float64

	for _, r := range group {
		agg.TotalLoads += r.LoadCount
		agg.TotalWeight += r.TotalWeight
		rateSum += r.AvgRate * float64(r.LoadCount)
		urgencySum += r.UrgencyScore * float64(r.LoadCount)
		marketSum += r.MarketDemandScore * float64(r.LoadCount)
		seasonalSum += r.SeasonalFactor * float64(r.LoadCount)

		for _, et := range r.EquipmentTypes {
			agg.EquipmentBreakdown[et] += r.LoadCount
		}
		for _, lt := range r.LoadTypes {
			agg.LoadTypeBreakdown[lt] += r.LoadCount
		}
		agg.CommodityTypeBreakdown[r.CommodityType] += r.LoadCount
		if r.HazmatRequired {
			agg.HazmatBreakdown["hazmat"] += r.LoadCount
		} else {
			agg.HazmatBreakdown["non_hazmat"] += r.LoadCount
		}
		agg.DemandTypeBreakdown[string(r.DemandType)] += r.LoadCount
	}

	agg.DataPoints = len(group)

	if agg.TotalLoads > 0 {
		n := float64(agg.TotalLoads)
		agg.AvgRate = roundTo2(rateSum / n)
		agg.AvgUrgencyScore = roundTo2(urgencySum / n)
		agg.AvgMarketDemandScore = roundTo2(marketSum / n)
		agg.AvgSeasonalFactor = roundTo2(seasonalSum / n)
	}

	// The first record of the group supplies the representative point.
	first := group[0]
	agg.CityName = first.CityName
	agg.ZipCode = first.ZipCode
	agg.Latitude = first.Latitude
	agg.Longitude = first.Longitude

	return agg
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

// upsertAggregation patches the existing daily row for the key if one exists,
// otherwise inserts a fresh one. On patch the representative location fields
// of the stored row win.
func (s *demandService) upsertAggregation(ctx context.Context, agg *models.LoadDemandAggregation) error {
	key := agg.Geohash
	if agg.AggregationType == models.AggregationTypeRegion {
		key = agg.RegionID
	}

	existing, err := s.demandRepo.GetAggregation(ctx, agg.AggregationType, key, agg.Year, agg.Month, agg.Day)
	if err != nil {
		if !errors.Is(err, interfaces.ErrNotFound) {
			return fmt.Errorf("failed to look up aggregation: %w", err)
		}
		if err := s.demandRepo.CreateAggregation(ctx, agg); err != nil {
			return err
		}
		return nil
	}

	agg.CityName = existing.CityName
	agg.ZipCode = existing.ZipCode
	agg.Latitude = existing.Latitude
	agg.Longitude = existing.Longitude

	if err := s.demandRepo.ReplaceAggregation(ctx, existing.ID, agg); err != nil {
		return err
	}
	return nil
}

// HookIntoLoadCreation runs the demand pipeline for a freshly created load.
// Recording is the only hard dependency; aggregation, realtime updates and
// notifications degrade to logged warnings so load creation never fails on
// them.
func (s *demandService) HookIntoLoadCreation(ctx context.Context, opts LoadCreationHookOptions) (*LoadCreationHookResult, error) {
	result := &LoadCreationHookResult{}

	data, err := s.RecordLoadDemand(ctx, opts.LoadID)
	if err != nil {
		return result, fmt.Errorf("demand recording failed: %w", err)
	}
	result.Success = true

	if !opts.SkipAggregation {
		ran, err := s.AggregateDailyDemand(ctx, AggregateOptions{})
		if err != nil {
			s.logger.WithLoadID(opts.LoadID).WithError(err).Warn("Post-creation aggregation failed")
		}
		// A throttled skip leaves the rollups untouched, so the flag stays
		// false.
		result.Aggregated = ran
	}

	realtimeEnabled := s.config.RealTimeUpdates
	if opts.EnableRealTimeUpdates != nil {
		realtimeEnabled = *opts.EnableRealTimeUpdates
	}

	if realtimeEnabled && s.realtime != nil {
		update := map[string]interface{}{
			"geohash":             data.PickupRecord.Geohash,
			"region":              data.PickupRecord.Region,
			"city":                data.PickupRecord.CityName,
			"market_demand_score": data.PickupRecord.MarketDemandScore,
			"urgency_score":       data.PickupRecord.UrgencyScore,
		}
		if err := s.realtime.PublishHeatmapUpdate(ctx, data.PickupRecord.Region, update); err != nil {
			s.logger.WithLoadID(opts.LoadID).WithError(err).Warn("Realtime heatmap update failed")
		} else {
			result.RealTimeUpdated = true
		}
	}

	if opts.EnableNotifications && s.notifier != nil {
		notice := map[string]interface{}{
			"region":  data.PickupRecord.Region,
			"city":    data.PickupRecord.CityName,
			"geohash": data.PickupRecord.Geohash,
		}
		if err := s.notifier.NotifyDemandChange(ctx, data.PickupRecord.Region, notice); err != nil {
			s.logger.WithLoadID(opts.LoadID).WithError(err).Warn("Demand notification failed")
		}
	}

	if opts.EnableLLMInsights {
		s.logger.WithLoadID(opts.LoadID).Debug("Insight generation requested but not enabled")
	}

	return result, nil
}

// How long a listed rollup set stays cached before readers fall back to the
// repository. Aggregation runs invalidate it early.
const aggregationListCacheTTL = 5 * time.Minute

// ListAggregations returns the daily rollups of one type for a day, busiest
// first. Results are served from the Redis cache between aggregation runs.
func (s *demandService) ListAggregations(ctx context.Context, aggType models.AggregationType, date time.Time) ([]*models.LoadDemandAggregation, error) {
	year, month, day := date.Year(), int(date.Month()), date.Day()
	key := aggregationListCacheKey(aggType, year, month, day)

	if s.cache != nil {
		var cached []*models.LoadDemandAggregation
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	aggs, err := s.demandRepo.ListAggregationsByDay(ctx, aggType, year, month, day)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && len(aggs) > 0 {
		if err := s.cache.Set(ctx, key, aggs, aggregationListCacheTTL); err != nil {
			s.logger.WithError(err).Warn("Failed to cache aggregation listing")
		}
	}

	return aggs, nil
}

func aggregationListCacheKey(aggType models.AggregationType, year, month, day int) string {
	return fmt.Sprintf("demand:aggs:%s:%04d-%02d-%02d", aggType, year, month, day)
}

// invalidateAggregationCache drops the cached listings for a day after its
// rollups move.
func (s *demandService) invalidateAggregationCache(ctx context.Context, year, month, day int) {
	if s.cache == nil {
		return
	}

	err := s.cache.Delete(ctx,
		aggregationListCacheKey(models.AggregationTypeGeohash, year, month, day),
		aggregationListCacheKey(models.AggregationTypeRegion, year, month, day),
	)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to invalidate aggregation cache")
	}
}
