package ports

import (
	"context"
	"time"

	"github.com/haulmatch/dispatch-api/internal/core/domain"
)

// OrderRepository defines persistence operations for orders.
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	// FindByIdempotencyKey returns the shipper's order created with key.
	FindByIdempotencyKey(ctx context.Context, shipperID, key string) (*domain.Order, error)
	// MarkDispatched promotes a dispatching order once its offers are stored.
	MarkDispatched(ctx context.Context, id string, offersSent int, at time.Time) error
	Delete(ctx context.Context, id string) error
}
