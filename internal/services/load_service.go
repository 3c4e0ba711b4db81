package services

import (
	"context"
	"fmt"

	"loadpulse/internal/models"
	"loadpulse/internal/repositories/interfaces"
	"loadpulse/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LoadService interface {
	CreateLoad(ctx context.Context, load *models.Load, hookOpts LoadCreationHookOptions) (*models.Load, *LoadCreationHookResult, error)
	GetLoad(ctx context.Context, id primitive.ObjectID) (*models.Load, error)
	AcceptLoad(ctx context.Context, id, carrierID primitive.ObjectID) error
	RejectLoad(ctx context.Context, id primitive.ObjectID) error
}

type loadService struct {
	loadRepo     interfaces.LoadRepository
	locationRepo interfaces.LocationRepository
	demand       DemandService
	logger       *logger.Logger
}

func NewLoadService(loadRepo interfaces.LoadRepository, locationRepo interfaces.LocationRepository, demand DemandService, log *logger.Logger) LoadService {
	return &loadService{
		loadRepo:     loadRepo,
		locationRepo: locationRepo,
		demand:       demand,
		logger:       log,
	}
}

// CreateLoad persists the load and runs the demand pipeline for it. A hook
// failure is reported in the result but never rolls the load back.
func (s *loadService) CreateLoad(ctx context.Context, load *models.Load, hookOpts LoadCreationHookOptions) (*models.Load, *LoadCreationHookResult, error) {
	if _, err := s.locationRepo.GetByID(ctx, load.PickupLocationID); err != nil {
		return nil, nil, fmt.Errorf("invalid pickup location: %w", err)
	}
	if _, err := s.locationRepo.GetByID(ctx, load.DeliveryLocationID); err != nil {
		return nil, nil, fmt.Errorf("invalid delivery location: %w", err)
	}

	if err := s.loadRepo.Create(ctx, load); err != nil {
		return nil, nil, err
	}

	hookOpts.LoadID = load.ID
	hookResult, err := s.demand.HookIntoLoadCreation(ctx, hookOpts)
	if err != nil {
		s.logger.WithLoadID(load.ID).WithError(err).Warn("Demand hook failed after load creation")
	}

	return load, hookResult, nil
}

func (s *loadService) GetLoad(ctx context.Context, id primitive.ObjectID) (*models.Load, error) {
	return s.loadRepo.GetByID(ctx, id)
}

func (s *loadService) AcceptLoad(ctx context.Context, id, carrierID primitive.ObjectID) error {
	return s.loadRepo.UpdateStatus(ctx, id, models.LoadStatusAccepted, &carrierID)
}

func (s *loadService) RejectLoad(ctx context.Context, id primitive.ObjectID) error {
	return s.loadRepo.UpdateStatus(ctx, id, models.LoadStatusRejected, nil)
}

type LocationService interface {
	CreateLocation(ctx context.Context, location *models.Location) (*models.Location, error)
	GetLocation(ctx context.Context, id primitive.ObjectID) (*models.Location, error)
}

type locationService struct {
	locationRepo interfaces.LocationRepository
}

func NewLocationService(locationRepo interfaces.LocationRepository) LocationService {
	return &locationService{locationRepo: locationRepo}
}

func (s *locationService) CreateLocation(ctx context.Context, location *models.Location) (*models.Location, error) {
	if err := s.locationRepo.Create(ctx, location); err != nil {
		return nil, err
	}
	return location, nil
}

func (s *locationService) GetLocation(ctx context.Context, id primitive.ObjectID) (*models.Location, error) {
	return s.locationRepo.GetByID(ctx, id)
}
