package ports

import (
	"context"
	"time"

	"github.com/haulmatch/dispatch-api/internal/core/domain"
)

// TruckRepository defines persistence and proximity search for trucks.
type TruckRepository interface {
	Create(ctx context.Context, t *domain.Truck) error
	FindByID(ctx context.Context, id string) (*domain.Truck, error)
	// FindNearby returns available trucks within radiusMeters of point,
	// nearest first.
	FindNearby(ctx context.Context, point domain.GeoPoint, radiusMeters int) ([]*domain.Truck, error)
	UpdateLocation(ctx context.Context, id string, point domain.GeoPoint, at time.Time) error
	SetAvailability(ctx context.Context, id string, available bool) error
}
