package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/haulmatch/dispatch-api/internal/core/domain"
	"github.com/haulmatch/dispatch-api/internal/core/ports"
)

type OfferService struct {
	offers   ports.OfferRepository
	orders   ports.OrderRepository
	notifier ports.Notifier
	logger   zerolog.Logger
	now      func() time.Time
}

func NewOfferService(offers ports.OfferRepository, orders ports.OrderRepository, notifier ports.Notifier, logger zerolog.Logger) *OfferService {
	return &OfferService{
		offers:   offers,
		orders:   orders,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Respond records a truck's answer and tells the shipper. Only a pending
// offer can be answered; later answers fail with ErrOfferAlreadyResponded.
func (s *OfferService) Respond(ctx context.Context, in ports.RespondOfferInput) (*domain.Offer, error) {
	status, err := domain.ParseOfferResponse(in.Response)
	if err != nil {
		return nil, err
	}

	current, err := s.offers.FindByID(ctx, in.OfferID)
	if err != nil {
		return nil, err
	}
	if !in.Caller.ActsForTruck(current.TruckID) {
		return nil, domain.ErrForbidden
	}
	if !current.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("respond offer: %w (status %s)", domain.ErrOfferAlreadyResponded, current.Status)
	}

	// The store re-checks the pending status so two concurrent answers
	// cannot both win.
	offer, err := s.offers.Respond(ctx, in.OfferID, status, s.now())
	if err != nil {
		if errors.Is(err, domain.ErrOfferAlreadyResponded) {
			return nil, fmt.Errorf("respond offer: %w", err)
		}
		return nil, err
	}

	shipperID := offer.ShipperID
	order, err := s.orders.FindByID(ctx, offer.OrderID)
	if err != nil {
		s.logger.Warn().Err(err).Str("order_id", offer.OrderID).Msg("parent order lookup failed, using offer shipper")
	} else {
		shipperID = order.ShipperID
	}

	respondedAt := s.now()
	if offer.RespondedAt != nil {
		respondedAt = *offer.RespondedAt
	}
	payload := ports.OfferRespondedPayload{
		OfferID:     offer.ID,
		OrderID:     offer.OrderID,
		TruckID:     offer.TruckID,
		Status:      string(offer.Status),
		RespondedAt: respondedAt,
	}
	if err := s.notifier.Notify(ctx, domain.ShipperRoom(shipperID), domain.EventOfferResponded, payload); err != nil {
		s.logger.Warn().Err(err).Str("offer_id", offer.ID).Msg("offer response notification failed")
	}

	s.logger.Info().
		Str("offer_id", offer.ID).
		Str("truck_id", offer.TruckID).
		Str("status", string(offer.Status)).
		Msg("offer responded")

	return offer, nil
}

// ListForOrder returns the offers of an order owned by the caller.
func (s *OfferService) ListForOrder(ctx context.Context, p domain.Principal, orderID string) ([]*domain.Offer, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !p.ActsForShipper(order.ShipperID) {
		return nil, domain.ErrForbidden
	}
	return s.offers.ListByOrder(ctx, orderID)
}

// ListForTruck returns a truck's offers, optionally filtered by status.
func (s *OfferService) ListForTruck(ctx context.Context, p domain.Principal, truckID, status string) ([]*domain.Offer, error) {
	if !p.ActsForTruck(truckID) {
		return nil, domain.ErrForbidden
	}
	return s.offers.ListByTruck(ctx, truckID, domain.OfferStatus(status))
}
