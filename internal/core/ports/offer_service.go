package ports

import (
	"context"

	"github.com/haulmatch/dispatch-api/internal/core/domain"
)

// RespondOfferInput carries a truck's answer to an offer.
type RespondOfferInput struct {
	OfferID  string
	Response string
	Caller   domain.Principal
}

// OfferService handles truck responses and offer listings.
type OfferService interface {
	Respond(ctx context.Context, in RespondOfferInput) (*domain.Offer, error)
	ListForOrder(ctx context.Context, p domain.Principal, orderID string) ([]*domain.Offer, error)
	ListForTruck(ctx context.Context, p domain.Principal, truckID, status string) ([]*domain.Offer, error)
}
