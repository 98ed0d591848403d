package ports

import (
	"context"
	"time"

	"github.com/haulmatch/dispatch-api/internal/core/domain"
)

// OfferRepository defines persistence operations for offers.
type OfferRepository interface {
	CreateMany(ctx context.Context, offers []*domain.Offer) error
	FindByID(ctx context.Context, id string) (*domain.Offer, error)
	ListByOrder(ctx context.Context, orderID string) ([]*domain.Offer, error)
	// ListByTruck returns the truck's offers; an empty status means any.
	ListByTruck(ctx context.Context, truckID string, status domain.OfferStatus) ([]*domain.Offer, error)
	// Respond moves a pending offer to status. It returns
	// domain.ErrOfferAlreadyResponded when the offer is no longer pending and
	// domain.ErrOfferNotFound when it does not exist.
	Respond(ctx context.Context, id string, status domain.OfferStatus, at time.Time) (*domain.Offer, error)
	DeleteByOrder(ctx context.Context, orderID string) error
}
