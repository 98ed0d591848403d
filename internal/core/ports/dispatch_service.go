package ports

import (
	"context"

	"github.com/haulmatch/dispatch-api/internal/core/domain"
)

// PostOrderInput is the DTO passed from the transport layer to DispatchService.
type PostOrderInput struct {
	ShipperID      string
	PickupLat      float64
	PickupLon      float64
	RequiredTrucks int
	IdempotencyKey string
	Caller         domain.Principal
}

// DispatchResult summarises a dispatched order.
type DispatchResult struct {
	Order         *domain.Order
	OutreachCount int
	TrucksFound   int
	RadiusUsed    int
	// Replayed is true when the Idempotency-Key matched an earlier order.
	Replayed bool
}

// DispatchService creates orders and fans offers out to nearby trucks.
type DispatchService interface {
	PostOrder(ctx context.Context, in PostOrderInput) (*DispatchResult, error)
	GetOrder(ctx context.Context, p domain.Principal, orderID string) (*domain.Order, error)
}
