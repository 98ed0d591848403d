package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/haulmatch/dispatch-api/internal/core/domain"
	"github.com/haulmatch/dispatch-api/internal/core/ports"
)

// SearchStrategy controls how results from successive radii are combined.
type SearchStrategy string

const (
	// SearchReplace keeps only the result of the last radius queried.
	SearchReplace SearchStrategy = "replace"
	// SearchAccumulate keeps every truck seen across radii, nearest radius first.
	SearchAccumulate SearchStrategy = "accumulate"
)

// DefaultRadii are the search radii in metres, tried in ascending order.
var DefaultRadii = []int{10000, 20000, 40000, 50000}

// DispatchConfig tunes the nearby-truck search.
type DispatchConfig struct {
	Radii          []int
	OutreachFactor float64
	Strategy       SearchStrategy
}

type DispatchService struct {
	orders   ports.OrderRepository
	offers   ports.OfferRepository
	trucks   ports.TruckRepository
	notifier ports.Notifier
	idem     ports.IdempotencyStore
	cfg      DispatchConfig
	logger   zerolog.Logger
	now      func() time.Time
}

// NewDispatchService wires the dispatch flow. idem may be nil, in which case
// replays are detected through the order store alone.
func NewDispatchService(
	orders ports.OrderRepository,
	offers ports.OfferRepository,
	trucks ports.TruckRepository,
	notifier ports.Notifier,
	idem ports.IdempotencyStore,
	cfg DispatchConfig,
	logger zerolog.Logger,
) *DispatchService {
	if len(cfg.Radii) == 0 {
		cfg.Radii = DefaultRadii
	}
	if cfg.OutreachFactor < 1 {
		cfg.OutreachFactor = domain.DefaultOutreachFactor
	}
	if cfg.Strategy == "" {
		cfg.Strategy = SearchReplace
	}
	return &DispatchService{
		orders:   orders,
		offers:   offers,
		trucks:   trucks,
		notifier: notifier,
		idem:     idem,
		cfg:      cfg,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// PostOrder stores a new order and offers it to the nearest trucks. Orders
// and offers are written as one unit: if any write fails, the partial state
// is removed before the error is returned.
func (s *DispatchService) PostOrder(ctx context.Context, in ports.PostOrderInput) (*ports.DispatchResult, error) {
	if !in.Caller.ActsForShipper(in.ShipperID) {
		return nil, domain.ErrForbidden
	}
	if in.RequiredTrucks < 1 || in.RequiredTrucks > domain.MaxRequiredTrucks {
		return nil, domain.ErrInvalidOrder
	}
	if !domain.ValidCoordinates(in.PickupLat, in.PickupLon) {
		return nil, domain.ErrInvalidCoordinates
	}

	if in.IdempotencyKey != "" {
		if res, ok, err := s.replay(ctx, in); ok || err != nil {
			return res, err
		}
	}

	outreach := domain.OutreachCount(in.RequiredTrucks, s.cfg.OutreachFactor)
	pickup := domain.NewGeoPoint(in.PickupLat, in.PickupLon)

	found, radius, err := s.searchTrucks(ctx, pickup, outreach)
	if err != nil {
		return nil, fmt.Errorf("post order: %w", err)
	}
	if len(found) == 0 {
		s.logger.Info().
			Str("shipper_id", in.ShipperID).
			Int("radius", radius).
			Msg("no trucks found for order")
		return nil, domain.ErrNoTrucksFound
	}
	selected := found[:min(outreach, len(found))]

	now := s.now()
	order := &domain.Order{
		ID:             uuid.NewString(),
		ShipperID:      in.ShipperID,
		Pickup:         pickup,
		RequiredTrucks: in.RequiredTrucks,
		OutreachCount:  outreach,
		RadiusUsed:     radius,
		Status:         domain.OrderDispatching,
		IdempotencyKey: in.IdempotencyKey,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	offers := make([]*domain.Offer, 0, len(selected))
	for _, t := range selected {
		offers = append(offers, &domain.Offer{
			ID:        uuid.NewString(),
			OrderID:   order.ID,
			TruckID:   t.ID,
			ShipperID: in.ShipperID,
			Status:    domain.OfferPending,
			CreatedAt: now,
		})
	}

	if err := s.persist(ctx, order, offers); err != nil {
		if errors.Is(err, domain.ErrDuplicateOrder) && in.IdempotencyKey != "" {
			if res, ok, replayErr := s.replay(ctx, in); ok || replayErr != nil {
				return res, replayErr
			}
		}
		return nil, fmt.Errorf("post order: %w", err)
	}

	if in.IdempotencyKey != "" && s.idem != nil {
		if err := s.idem.Remember(ctx, in.ShipperID, in.IdempotencyKey, order.ID); err != nil {
			s.logger.Warn().Err(err).Str("order_id", order.ID).Msg("failed to record idempotency key")
		}
	}

	s.notifyTrucks(ctx, order, offers)

	s.logger.Info().
		Str("order_id", order.ID).
		Str("shipper_id", order.ShipperID).
		Int("outreach", outreach).
		Int("offers", len(offers)).
		Int("radius", radius).
		Msg("order dispatched")

	return &ports.DispatchResult{
		Order:         order,
		OutreachCount: outreach,
		TrucksFound:   len(offers),
		RadiusUsed:    radius,
	}, nil
}

// GetOrder returns an order visible to p.
func (s *DispatchService) GetOrder(ctx context.Context, p domain.Principal, orderID string) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !p.ActsForShipper(order.ShipperID) {
		return nil, domain.ErrForbidden
	}
	return order, nil
}

// searchTrucks walks the radii in ascending order and stops at the first one
// whose result meets outreach. It returns the trucks kept under the configured
// strategy and the last radius queried.
func (s *DispatchService) searchTrucks(ctx context.Context, pickup domain.GeoPoint, outreach int) ([]*domain.Truck, int, error) {
	var (
		found  []*domain.Truck
		radius int
		seen   = make(map[string]struct{})
	)
	for _, r := range s.cfg.Radii {
		radius = r
		batch, err := s.trucks.FindNearby(ctx, pickup, r)
		if err != nil {
			return nil, radius, err
		}

		switch s.cfg.Strategy {
		case SearchAccumulate:
			for _, t := range batch {
				if _, dup := seen[t.ID]; dup {
					continue
				}
				seen[t.ID] = struct{}{}
				found = append(found, t)
			}
		default:
			found = batch
		}

		if len(found) >= outreach {
			break
		}
	}
	return found, radius, nil
}

// persist writes the order, its offers and the dispatched marker. Every step
// after the order insert is compensated on failure.
func (s *DispatchService) persist(ctx context.Context, order *domain.Order, offers []*domain.Offer) error {
	if err := s.orders.Create(ctx, order); err != nil {
		return err
	}

	if err := s.offers.CreateMany(ctx, offers); err != nil {
		s.compensate(ctx, order.ID)
		return fmt.Errorf("create offers: %w", err)
	}

	dispatchedAt := s.now()
	if err := s.orders.MarkDispatched(ctx, order.ID, len(offers), dispatchedAt); err != nil {
		s.compensate(ctx, order.ID)
		return fmt.Errorf("mark dispatched: %w", err)
	}

	order.Status = domain.OrderDispatched
	order.OffersSent = len(offers)
	order.UpdatedAt = dispatchedAt
	return nil
}

// compensate removes a partially dispatched order. It ignores cancellation
// of the request context so a client disconnect cannot strand the order.
func (s *DispatchService) compensate(ctx context.Context, orderID string) {
	ctx = context.WithoutCancel(ctx)
	if err := s.offers.DeleteByOrder(ctx, orderID); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID).Msg("compensation: delete offers failed")
	}
	if err := s.orders.Delete(ctx, orderID); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID).Msg("compensation: delete order failed")
	}
}

// replay returns the earlier result for the request's idempotency key, if
// there is one. A key already used for a different pickup or truck count
// yields domain.ErrIdempotencyMismatch.
func (s *DispatchService) replay(ctx context.Context, in ports.PostOrderInput) (*ports.DispatchResult, bool, error) {
	shipperID, key := in.ShipperID, in.IdempotencyKey
	var (
		order *domain.Order
		err   error
	)
	if s.idem != nil {
		id, ok, lookupErr := s.idem.Lookup(ctx, shipperID, key)
		if lookupErr != nil {
			s.logger.Warn().Err(lookupErr).Str("shipper_id", shipperID).Msg("idempotency lookup failed, checking order store")
		}
		if ok {
			order, err = s.orders.FindByID(ctx, id)
		}
	}
	if order == nil {
		order, err = s.orders.FindByIdempotencyKey(ctx, shipperID, key)
	}
	if err != nil || order == nil || order.Status != domain.OrderDispatched {
		return nil, false, nil
	}
	if !order.Matches(in.ShipperID, in.PickupLat, in.PickupLon, in.RequiredTrucks) {
		s.logger.Warn().Str("idempotency_key", key).Str("order_id", order.ID).Msg("idempotency key reused for a different order")
		return nil, false, domain.ErrIdempotencyMismatch
	}

	s.logger.Info().Str("idempotency_key", key).Str("order_id", order.ID).Msg("idempotent replay")
	return &ports.DispatchResult{
		Order:         order,
		OutreachCount: order.OutreachCount,
		TrucksFound:   order.OffersSent,
		RadiusUsed:    order.RadiusUsed,
		Replayed:      true,
	}, true, nil
}

// notifyTrucks pushes one offer:new event per truck. Delivery is best effort:
// the offers are already committed and stay listable through the API.
func (s *DispatchService) notifyTrucks(ctx context.Context, order *domain.Order, offers []*domain.Offer) {
	for _, o := range offers {
		payload := ports.OfferNewPayload{
			OfferID:        o.ID,
			OrderID:        order.ID,
			ShipperID:      order.ShipperID,
			PickupLat:      order.Pickup.Lat(),
			PickupLon:      order.Pickup.Lon(),
			RequiredTrucks: order.RequiredTrucks,
			CreatedAt:      o.CreatedAt,
		}
		if err := s.notifier.Notify(ctx, domain.TruckRoom(o.TruckID), domain.EventOfferNew, payload); err != nil {
			s.logger.Warn().Err(err).Str("truck_id", o.TruckID).Str("offer_id", o.ID).Msg("offer notification failed")
		}
	}
}
