package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"loadpulse/internal/config"
	"loadpulse/internal/models"
	"loadpulse/internal/repositories/interfaces"
	"loadpulse/internal/utils"
	"loadpulse/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeLoadRepo struct {
	loads map[primitive.ObjectID]*models.Load
}

func newFakeLoadRepo() *fakeLoadRepo {
	return &fakeLoadRepo{loads: make(map[primitive.ObjectID]*models.Load)}
}

func (f *fakeLoadRepo) Create(ctx context.Context, load *models.Load) error {
	load.ID = primitive.NewObjectID()
	load.Status = models.LoadStatusPosted
	f.loads[load.ID] = load
	return nil
}

func (f *fakeLoadRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Load, error) {
	load, ok := f.loads[id]
	if !ok {
		return nil, fmt.Errorf("load %s: %w", id.Hex(), interfaces.ErrNotFound)
	}
	return load, nil
}

func (f *fakeLoadRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.LoadStatus, carrierID *primitive.ObjectID) error {
	load, ok := f.loads[id]
	if !ok {
		return fmt.Errorf("load %s: %w", id.Hex(), interfaces.ErrNotFound)
	}
	load.Status = status
	if carrierID != nil {
		load.CarrierID = carrierID
	}
	return nil
}

type fakeLocationRepo struct {
	locations map[primitive.ObjectID]*models.Location
}

func newFakeLocationRepo() *fakeLocationRepo {
	return &fakeLocationRepo{locations: make(map[primitive.ObjectID]*models.Location)}
}

func (f *fakeLocationRepo) Create(ctx context.Context, location *models.Location) error {
	location.ID = primitive.NewObjectID()
	f.locations[location.ID] = location
	return nil
}

func (f *fakeLocationRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Location, error) {
	location, ok := f.locations[id]
	if !ok {
		return nil, fmt.Errorf("location %s: %w", id.Hex(), interfaces.ErrNotFound)
	}
	return location, nil
}

type fakeDemandRepo struct {
	records []*models.LoadDemandRecord
	lanes   []*models.LoadLaneData
	aggs    []*models.LoadDemandAggregation
}

func (f *fakeDemandRepo) CreateDemandRecord(ctx context.Context, record *models.LoadDemandRecord) error {
	record.ID = primitive.NewObjectID()
	f.records = append(f.records, record)
	return nil
}

func (f *fakeDemandRepo) CreateLaneData(ctx context.Context, lane *models.LoadLaneData) error {
	lane.ID = primitive.NewObjectID()
	f.lanes = append(f.lanes, lane)
	return nil
}

func (f *fakeDemandRepo) GetHourlyRecordsByDay(ctx context.Context, year, month, day int) ([]*models.LoadDemandRecord, error) {
	var result []*models.LoadDemandRecord
	for _, r := range f.records {
		if r.Timeframe == models.TimeframeHourly && r.Year == year && r.Month == month && r.Day == day {
			result = append(result, r)
		}
	}
	return result, nil
}

func (f *fakeDemandRepo) GetAggregation(ctx context.Context, aggType models.AggregationType, key string, year, month, day int) (*models.LoadDemandAggregation, error) {
	for _, a := range f.aggs {
		if a.AggregationType != aggType || a.Year != year || a.Month != month || a.Day != day {
			continue
		}
		if (aggType == models.AggregationTypeGeohash && a.Geohash == key) ||
			(aggType == models.AggregationTypeRegion && a.RegionID == key) {
			return a, nil
		}
	}
	return nil, fmt.Errorf("aggregation %s/%s: %w", aggType, key, interfaces.ErrNotFound)
}

func (f *fakeDemandRepo) CreateAggregation(ctx context.Context, agg *models.LoadDemandAggregation) error {
	agg.ID = primitive.NewObjectID()
	f.aggs = append(f.aggs, agg)
	return nil
}

func (f *fakeDemandRepo) ReplaceAggregation(ctx context.Context, id primitive.ObjectID, agg *models.LoadDemandAggregation) error {
	for i, a := range f.aggs {
		if a.ID == id {
			agg.ID = id
			f.aggs[i] = agg
			return nil
		}
	}
	return fmt.Errorf("aggregation %s: %w", id.Hex(), interfaces.ErrNotFound)
}

func (f *fakeDemandRepo) GetLatestAggregationForDay(ctx context.Context, year, month, day int) (*models.LoadDemandAggregation, error) {
	var latest *models.LoadDemandAggregation
	for _, a := range f.aggs {
		if a.Year != year || a.Month != month || a.Day != day {
			continue
		}
		if latest == nil || a.LastUpdated > latest.LastUpdated {
			latest = a
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("aggregation for %04d-%02d-%02d: %w", year, month, day, interfaces.ErrNotFound)
	}
	return latest, nil
}

func (f *fakeDemandRepo) ListAggregationsByDay(ctx context.Context, aggType models.AggregationType, year, month, day int) ([]*models.LoadDemandAggregation, error) {
	var result []*models.LoadDemandAggregation
	for _, a := range f.aggs {
		if a.AggregationType == aggType && a.Year == year && a.Month == month && a.Day == day {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].TotalLoads > result[j].TotalLoads })
	return result, nil
}

type stubRealtime struct {
	err   error
	calls int
}

func (s *stubRealtime) PublishHeatmapUpdate(ctx context.Context, region string, data map[string]interface{}) error {
	s.calls++
	return s.err
}

type stubNotifier struct {
	err   error
	calls int
}

func (s *stubNotifier) NotifyDemandChange(ctx context.Context, region string, data map[string]interface{}) error {
	s.calls++
	return s.err
}

type demandFixture struct {
	service    *demandService
	loadRepo   *fakeLoadRepo
	locRepo    *fakeLocationRepo
	demandRepo *fakeDemandRepo
	realtime   *stubRealtime
	notifier   *stubNotifier
	now        time.Time
}

func newDemandFixture(t *testing.T) *demandFixture {
	t.Helper()

	log, err := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Format: "text"})
	require.NoError(t, err)

	fixture := &demandFixture{
		loadRepo:   newFakeLoadRepo(),
		locRepo:    newFakeLocationRepo(),
		demandRepo: &fakeDemandRepo{},
		realtime:   &stubRealtime{},
		notifier:   &stubNotifier{},
		now:        time.Date(2026, time.March, 10, 14, 0, 0, 0, time.UTC),
	}

	fixture.service = &demandService{
		loadRepo:     fixture.loadRepo,
		locationRepo: fixture.locRepo,
		demandRepo:   fixture.demandRepo,
		realtime:     fixture.realtime,
		notifier:     fixture.notifier,
		config: &config.DemandConfig{
			PointGeohashPrecision: 6,
			LaneGeohashPrecision:  4,
			AggregationThrottle:   time.Hour,
			RealTimeUpdates:       true,
		},
		logger: log,
		now:    func() time.Time { return fixture.now },
		jitter: func() float64 { return 1.0 },
	}

	return fixture
}

func (f *demandFixture) seedLoad(t *testing.T) *models.Load {
	t.Helper()
	ctx := context.Background()

	pickup := &models.Location{
		Latitude:  41.8781,
		Longitude: -87.6298,
		City:      "Chicago",
		State:     "IL",
		ZipCode:   "60601",
	}
	delivery := &models.Location{
		Latitude:  43.0389,
		Longitude: -87.9065,
		City:      "Milwaukee",
		State:     "WI",
		ZipCode:   "53202",
	}
	require.NoError(t, f.locRepo.Create(ctx, pickup))
	require.NoError(t, f.locRepo.Create(ctx, delivery))

	load := &models.Load{
		ShipperID:           primitive.NewObjectID(),
		PickupLocationID:    pickup.ID,
		DeliveryLocationID:  delivery.ID,
		Weight:              42000,
		Rate:                950,
		EquipmentType:       "dry_van",
		LoadType:            "ftl",
		Commodity:           "Packaged food products",
		PickupWindowStart:   f.now.Add(48 * time.Hour),
		PickupWindowEnd:     f.now.Add(53 * time.Hour),
		DeliveryWindowStart: f.now.Add(72 * time.Hour),
		DeliveryWindowEnd:   f.now.Add(77 * time.Hour),
	}
	require.NoError(t, f.loadRepo.Create(ctx, load))
	return load
}

func TestRecordLoadDemand(t *testing.T) {
	t.Run("writes two records and one lane row", func(t *testing.T) {
		f := newDemandFixture(t)
		load := f.seedLoad(t)

		result, err := f.service.RecordLoadDemand(context.Background(), load.ID)

		require.NoError(t, err)
		assert.Len(t, f.demandRepo.records, 2)
		assert.Len(t, f.demandRepo.lanes, 1)

		pickup := result.PickupRecord
		assert.Equal(t, models.DemandTypePickup, pickup.DemandType)
		assert.Equal(t, utils.EncodeGeohash(41.8781, -87.6298, 6), pickup.Geohash)
		assert.Equal(t, "IL", pickup.Region)
		assert.Equal(t, "Chicago", pickup.CityName)
		assert.Equal(t, 81.4, pickup.DistanceToDelivery)
		assert.Equal(t, "food", pickup.CommodityType)
		assert.Equal(t, "heavy_freight", pickup.MarketSegment)
		assert.Equal(t, 1, pickup.LoadCount)
		assert.Equal(t, []primitive.ObjectID{load.ID}, pickup.SourceLoadIDs)
		assert.Equal(t, models.TimeframeHourly, pickup.Timeframe)
		assert.Equal(t, 14, pickup.Hour)

		delivery := result.DeliveryRecord
		assert.Equal(t, models.DemandTypeDelivery, delivery.DemandType)
		assert.Equal(t, "WI", delivery.Region)
		assert.Equal(t, 0.0, delivery.DistanceToDelivery)

		lane := result.Lane
		assert.Equal(t, utils.EncodeGeohash(41.8781, -87.6298, 4), lane.OriginGeohash)
		assert.Equal(t, utils.EncodeGeohash(43.0389, -87.9065, 4), lane.DestinationGeohash)
		assert.Equal(t, 81.4, lane.Distance)
		assert.Equal(t, RatePerMile(950, 81.4), lane.RatePerMile)
		assert.Equal(t, load.ID, lane.SourceLoadID)
	})

	t.Run("one captured timestamp drives all rows", func(t *testing.T) {
		f := newDemandFixture(t)
		load := f.seedLoad(t)

		result, err := f.service.RecordLoadDemand(context.Background(), load.ID)

		require.NoError(t, err)
		expected := f.now.UnixMilli()
		assert.Equal(t, expected, result.PickupRecord.Timestamp)
		assert.Equal(t, expected, result.DeliveryRecord.Timestamp)
		assert.Equal(t, expected, result.Lane.Timestamp)
	})

	t.Run("urgency differs per endpoint window", func(t *testing.T) {
		f := newDemandFixture(t)
		load := f.seedLoad(t)

		result, err := f.service.RecordLoadDemand(context.Background(), load.ID)

		require.NoError(t, err)
		// Pickup opens in 48h, delivery in 72h.
		assert.Greater(t, result.PickupRecord.UrgencyScore, result.DeliveryRecord.UrgencyScore)
	})

	t.Run("unknown load propagates not found", func(t *testing.T) {
		f := newDemandFixture(t)

		_, err := f.service.RecordLoadDemand(context.Background(), primitive.NewObjectID())

		require.Error(t, err)
		assert.True(t, errors.Is(err, interfaces.ErrNotFound))
		assert.Empty(t, f.demandRepo.records)
	})
}

func TestAggregateDailyDemand(t *testing.T) {
	t.Run("rolls up by geohash and region", func(t *testing.T) {
		f := newDemandFixture(t)
		ctx := context.Background()

		first := f.seedLoad(t)
		second := f.seedLoad(t)
		_, err := f.service.RecordLoadDemand(ctx, first.ID)
		require.NoError(t, err)
		_, err = f.service.RecordLoadDemand(ctx, second.ID)
		require.NoError(t, err)

		ran, err := f.service.AggregateDailyDemand(ctx, AggregateOptions{ForceRefresh: true})
		require.NoError(t, err)
		assert.True(t, ran)

		chicagoHash := utils.EncodeGeohash(41.8781, -87.6298, 6)
		agg, err := f.demandRepo.GetAggregation(ctx, models.AggregationTypeGeohash, chicagoHash, 2026, 3, 10)
		require.NoError(t, err)
		assert.Equal(t, 2, agg.TotalLoads)
		assert.Equal(t, 84000.0, agg.TotalWeight)
		assert.Equal(t, 950.0, agg.AvgRate)
		assert.Equal(t, 2, agg.EquipmentBreakdown["dry_van"])
		assert.Equal(t, 2, agg.DemandTypeBreakdown["pickup"])
		assert.Equal(t, 2, agg.HazmatBreakdown["non_hazmat"])
		assert.Equal(t, 2, agg.DataPoints)
		assert.Equal(t, "Chicago", agg.CityName)
		assert.Equal(t, models.TimeframeDaily, agg.Timeframe)

		regionAgg, err := f.demandRepo.GetAggregation(ctx, models.AggregationTypeRegion, "IL", 2026, 3, 10)
		require.NoError(t, err)
		assert.Equal(t, 2, regionAgg.TotalLoads)
		assert.Equal(t, "IL", regionAgg.RegionID)

		wiAgg, err := f.demandRepo.GetAggregation(ctx, models.AggregationTypeRegion, "WI", 2026, 3, 10)
		require.NoError(t, err)
		assert.Equal(t, 2, wiAgg.TotalLoads)
	})

	t.Run("idempotent re-run keeps one row per key", func(t *testing.T) {
		f := newDemandFixture(t)
		ctx := context.Background()

		load := f.seedLoad(t)
		_, err := f.service.RecordLoadDemand(ctx, load.ID)
		require.NoError(t, err)

		_, err = f.service.AggregateDailyDemand(ctx, AggregateOptions{ForceRefresh: true})
		require.NoError(t, err)
		countAfterFirst := len(f.demandRepo.aggs)

		_, err = f.service.AggregateDailyDemand(ctx, AggregateOptions{ForceRefresh: true})
		require.NoError(t, err)

		assert.Equal(t, countAfterFirst, len(f.demandRepo.aggs))

		chicagoHash := utils.EncodeGeohash(41.8781, -87.6298, 6)
		agg, err := f.demandRepo.GetAggregation(ctx, models.AggregationTypeGeohash, chicagoHash, 2026, 3, 10)
		require.NoError(t, err)
		assert.Equal(t, 1, agg.TotalLoads)
	})

	t.Run("throttled within the window", func(t *testing.T) {
		f := newDemandFixture(t)
		ctx := context.Background()

		load := f.seedLoad(t)
		_, err := f.service.RecordLoadDemand(ctx, load.ID)
		require.NoError(t, err)
		ran, err := f.service.AggregateDailyDemand(ctx, AggregateOptions{})
		require.NoError(t, err)
		assert.True(t, ran)

		// New demand arrives minutes later; the rollup must not move yet.
		second := f.seedLoad(t)
		f.now = f.now.Add(10 * time.Minute)
		_, err = f.service.RecordLoadDemand(ctx, second.ID)
		require.NoError(t, err)
		ran, err = f.service.AggregateDailyDemand(ctx, AggregateOptions{})
		require.NoError(t, err)
		assert.False(t, ran)

		chicagoHash := utils.EncodeGeohash(41.8781, -87.6298, 6)
		agg, aerr := f.demandRepo.GetAggregation(ctx, models.AggregationTypeGeohash, chicagoHash, 2026, 3, 10)
		require.NoError(t, aerr)
		assert.Equal(t, 1, agg.TotalLoads)

		// Past the throttle window it catches up.
		f.now = f.now.Add(2 * time.Hour)
		ran, err = f.service.AggregateDailyDemand(ctx, AggregateOptions{})
		require.NoError(t, err)
		assert.True(t, ran)
		agg, aerr = f.demandRepo.GetAggregation(ctx, models.AggregationTypeGeohash, chicagoHash, 2026, 3, 10)
		require.NoError(t, aerr)
		assert.Equal(t, 2, agg.TotalLoads)
	})

	t.Run("force refresh bypasses the throttle", func(t *testing.T) {
		f := newDemandFixture(t)
		ctx := context.Background()

		load := f.seedLoad(t)
		_, err := f.service.RecordLoadDemand(ctx, load.ID)
		require.NoError(t, err)
		_, err = f.service.AggregateDailyDemand(ctx, AggregateOptions{})
		require.NoError(t, err)

		second := f.seedLoad(t)
		_, err = f.service.RecordLoadDemand(ctx, second.ID)
		require.NoError(t, err)
		ran, err := f.service.AggregateDailyDemand(ctx, AggregateOptions{ForceRefresh: true})
		require.NoError(t, err)
		assert.True(t, ran)

		chicagoHash := utils.EncodeGeohash(41.8781, -87.6298, 6)
		agg, aerr := f.demandRepo.GetAggregation(ctx, models.AggregationTypeGeohash, chicagoHash, 2026, 3, 10)
		require.NoError(t, aerr)
		assert.Equal(t, 2, agg.TotalLoads)
	})

	t.Run("no records is a no-op", func(t *testing.T) {
		f := newDemandFixture(t)

		_, err := f.service.AggregateDailyDemand(context.Background(), AggregateOptions{ForceRefresh: true})
		require.NoError(t, err)

		assert.Empty(t, f.demandRepo.aggs)
	})

	t.Run("explicit date targets that day only", func(t *testing.T) {
		f := newDemandFixture(t)
		ctx := context.Background()

		load := f.seedLoad(t)
		_, err := f.service.RecordLoadDemand(ctx, load.ID)
		require.NoError(t, err)

		yesterday := f.now.Add(-24 * time.Hour)
		_, err = f.service.AggregateDailyDemand(ctx, AggregateOptions{Date: &yesterday, ForceRefresh: true})
		require.NoError(t, err)

		assert.Empty(t, f.demandRepo.aggs)
	})
}

func TestListAggregations(t *testing.T) {
	f := newDemandFixture(t)
	ctx := context.Background()

	load := f.seedLoad(t)
	_, err := f.service.RecordLoadDemand(ctx, load.ID)
	require.NoError(t, err)
	_, err = f.service.AggregateDailyDemand(ctx, AggregateOptions{ForceRefresh: true})
	require.NoError(t, err)

	aggs, err := f.service.ListAggregations(ctx, models.AggregationTypeRegion, f.now)
	require.NoError(t, err)
	require.Len(t, aggs, 2)
	// Busiest first; both regions carry one load here, either order is valid.
	for _, agg := range aggs {
		assert.Equal(t, models.AggregationTypeRegion, agg.AggregationType)
		assert.Equal(t, 1, agg.TotalLoads)
	}

	empty, err := f.service.ListAggregations(ctx, models.AggregationTypeRegion, f.now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestHookIntoLoadCreation(t *testing.T) {
	t.Run("full pipeline", func(t *testing.T) {
		f := newDemandFixture(t)
		load := f.seedLoad(t)

		result, err := f.service.HookIntoLoadCreation(context.Background(), LoadCreationHookOptions{
			LoadID:              load.ID,
			EnableNotifications: true,
		})

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.True(t, result.Aggregated)
		assert.True(t, result.RealTimeUpdated)
		assert.Equal(t, 1, f.realtime.calls)
		assert.Equal(t, 1, f.notifier.calls)
		assert.NotEmpty(t, f.demandRepo.aggs)
	})

	t.Run("throttled second hook reports aggregated false", func(t *testing.T) {
		f := newDemandFixture(t)
		ctx := context.Background()

		first := f.seedLoad(t)
		r1, err := f.service.HookIntoLoadCreation(ctx, LoadCreationHookOptions{LoadID: first.ID})
		require.NoError(t, err)
		assert.True(t, r1.Aggregated)

		rollups := len(f.demandRepo.aggs)
		chicagoHash := utils.EncodeGeohash(41.8781, -87.6298, 6)
		before, aerr := f.demandRepo.GetAggregation(ctx, models.AggregationTypeGeohash, chicagoHash, 2026, 3, 10)
		require.NoError(t, aerr)

		// A second load lands five minutes later, well inside the throttle
		// window.
		f.now = f.now.Add(5 * time.Minute)
		second := f.seedLoad(t)
		r2, err := f.service.HookIntoLoadCreation(ctx, LoadCreationHookOptions{LoadID: second.ID})

		require.NoError(t, err)
		assert.True(t, r2.Success)
		assert.False(t, r2.Aggregated)
		assert.Equal(t, rollups, len(f.demandRepo.aggs))

		after, aerr := f.demandRepo.GetAggregation(ctx, models.AggregationTypeGeohash, chicagoHash, 2026, 3, 10)
		require.NoError(t, aerr)
		assert.Equal(t, before.TotalLoads, after.TotalLoads)
		assert.Equal(t, before.LastUpdated, after.LastUpdated)
	})

	t.Run("skip aggregation leaves rollups untouched", func(t *testing.T) {
		f := newDemandFixture(t)
		load := f.seedLoad(t)

		result, err := f.service.HookIntoLoadCreation(context.Background(), LoadCreationHookOptions{
			LoadID:          load.ID,
			SkipAggregation: true,
		})

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.False(t, result.Aggregated)
		assert.True(t, result.RealTimeUpdated)
		assert.Empty(t, f.demandRepo.aggs)
		assert.Len(t, f.demandRepo.records, 2)
	})

	t.Run("realtime failure is swallowed", func(t *testing.T) {
		f := newDemandFixture(t)
		f.realtime.err = errors.New("hub unavailable")
		load := f.seedLoad(t)

		result, err := f.service.HookIntoLoadCreation(context.Background(), LoadCreationHookOptions{
			LoadID: load.ID,
		})

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.False(t, result.RealTimeUpdated)
	})

	t.Run("realtime opt-out", func(t *testing.T) {
		f := newDemandFixture(t)
		load := f.seedLoad(t)
		disabled := false

		result, err := f.service.HookIntoLoadCreation(context.Background(), LoadCreationHookOptions{
			LoadID:                load.ID,
			EnableRealTimeUpdates: &disabled,
		})

		require.NoError(t, err)
		assert.False(t, result.RealTimeUpdated)
		assert.Zero(t, f.realtime.calls)
	})

	t.Run("recording failure fails the hook", func(t *testing.T) {
		f := newDemandFixture(t)

		result, err := f.service.HookIntoLoadCreation(context.Background(), LoadCreationHookOptions{
			LoadID: primitive.NewObjectID(),
		})

		require.Error(t, err)
		assert.False(t, result.Success)
		assert.Zero(t, f.realtime.calls)
	})
}
