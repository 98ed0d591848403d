package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/haulmatch/dispatch-api/internal/core/domain"
	"github.com/haulmatch/dispatch-api/internal/core/ports"
)

type TruckService struct {
	repo   ports.TruckRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewTruckService(repo ports.TruckRepository, logger zerolog.Logger) *TruckService {
	return &TruckService{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Register onboards a truck at its current position, available for offers.
func (s *TruckService) Register(ctx context.Context, in ports.RegisterTruckInput) (*domain.Truck, error) {
	if !in.Caller.ActsForTruck(in.TruckID) {
		return nil, domain.ErrForbidden
	}
	if !domain.ValidCoordinates(in.Lat, in.Lon) {
		return nil, domain.ErrInvalidCoordinates
	}

	now := s.now()
	truck := &domain.Truck{
		ID:                in.TruckID,
		OwnerID:           in.Caller.Subject,
		Plate:             in.Plate,
		CapacityKg:        in.CapacityKg,
		Available:         true,
		Location:          domain.NewGeoPoint(in.Lat, in.Lon),
		LocationUpdatedAt: now,
		CreatedAt:         now,
	}
	if err := s.repo.Create(ctx, truck); err != nil {
		return nil, err
	}

	s.logger.Info().Str("truck_id", truck.ID).Str("owner_id", truck.OwnerID).Msg("truck registered")
	return truck, nil
}

// UpdateLocation stores the truck's latest reported position.
func (s *TruckService) UpdateLocation(ctx context.Context, in ports.LocationUpdateInput) error {
	if !in.Caller.ActsForTruck(in.TruckID) {
		return domain.ErrForbidden
	}
	if !domain.ValidCoordinates(in.Lat, in.Lon) {
		return domain.ErrInvalidCoordinates
	}

	if err := s.repo.UpdateLocation(ctx, in.TruckID, domain.NewGeoPoint(in.Lat, in.Lon), s.now()); err != nil {
		return err
	}

	s.logger.Debug().
		Str("truck_id", in.TruckID).
		Float64("lat", in.Lat).
		Float64("lon", in.Lon).
		Msg("truck location updated")
	return nil
}

// SetAvailability toggles whether the truck is considered by nearby searches.
func (s *TruckService) SetAvailability(ctx context.Context, p domain.Principal, truckID string, available bool) error {
	if !p.ActsForTruck(truckID) {
		return domain.ErrForbidden
	}
	return s.repo.SetAvailability(ctx, truckID, available)
}

func (s *TruckService) Get(ctx context.Context, truckID string) (*domain.Truck, error) {
	return s.repo.FindByID(ctx, truckID)
}
