package ports

import (
	"context"
	"time"
)

// Notifier pushes an event to every subscriber of a realtime room.
type Notifier interface {
	Notify(ctx context.Context, room, event string, payload any) error
}

// IdempotencyStore remembers which order a shipper created for a client key.
type IdempotencyStore interface {
	// Lookup returns the order id recorded for (shipperID, key), if any.
	Lookup(ctx context.Context, shipperID, key string) (string, bool, error)
	Remember(ctx context.Context, shipperID, key, orderID string) error
}

// OfferNewPayload is pushed to a truck room when the truck receives an offer.
type OfferNewPayload struct {
	OfferID        string    `json:"offer_id"`
	OrderID        string    `json:"order_id"`
	ShipperID      string    `json:"shipper_id"`
	PickupLat      float64   `json:"pickup_lat"`
	PickupLon      float64   `json:"pickup_lon"`
	RequiredTrucks int       `json:"required_trucks"`
	CreatedAt      time.Time `json:"created_at"`
}

// OfferRespondedPayload is pushed to a shipper room when a truck answers.
type OfferRespondedPayload struct {
	OfferID     string    `json:"offer_id"`
	OrderID     string    `json:"order_id"`
	TruckID     string    `json:"truck_id"`
	Status      string    `json:"status"`
	RespondedAt time.Time `json:"responded_at"`
}
