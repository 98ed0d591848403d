package ports

import (
	"context"

	"github.com/haulmatch/dispatch-api/internal/core/domain"
)

// RegisterTruckInput carries the fields needed to onboard a truck.
type RegisterTruckInput struct {
	TruckID    string
	Plate      string
	CapacityKg float64
	Lat        float64
	Lon        float64
	Caller     domain.Principal
}

// LocationUpdateInput is a position report from a truck.
type LocationUpdateInput struct {
	TruckID string
	Lat     float64
	Lon     float64
	Caller  domain.Principal
}

// TruckService manages trucks and their reported positions.
type TruckService interface {
	Register(ctx context.Context, in RegisterTruckInput) (*domain.Truck, error)
	UpdateLocation(ctx context.Context, in LocationUpdateInput) error
	SetAvailability(ctx context.Context, p domain.Principal, truckID string, available bool) error
	Get(ctx context.Context, truckID string) (*domain.Truck, error)
}
