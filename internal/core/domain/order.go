package domain

import (
	"errors"
	"math"
	"time"
)

// OrderStatus represents the lifecycle state of a dispatch order.
type OrderStatus string

const (
	// OrderDispatching is set while offers are being written. An order never
	// stays in this state: it is either promoted or compensated away.
	OrderDispatching OrderStatus = "dispatching"
	OrderDispatched  OrderStatus = "dispatched"
)

const (
	// DefaultOutreachFactor over-provisions offers to absorb declines.
	DefaultOutreachFactor = 1.5
	// MaxRequiredTrucks caps a single order.
	MaxRequiredTrucks = 1000
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrNoTrucksFound  = errors.New("no trucks found nearby")
	ErrInvalidOrder   = errors.New("required_trucks must be between 1 and 1000")
	ErrDuplicateOrder = errors.New("order already exists for idempotency key")

	// ErrIdempotencyMismatch means a key was reused for a different request.
	ErrIdempotencyMismatch = errors.New("idempotency key already used for a different order")
)

// GeoPoint is a GeoJSON point. Coordinates are ordered [lon, lat].
type GeoPoint struct {
	Type        string     `json:"type" bson:"type"`
	Coordinates [2]float64 `json:"coordinates" bson:"coordinates"`
}

// NewGeoPoint builds a GeoJSON point from latitude and longitude.
func NewGeoPoint(lat, lon float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: [2]float64{lon, lat}}
}

func (p GeoPoint) Lat() float64 { return p.Coordinates[1] }
func (p GeoPoint) Lon() float64 { return p.Coordinates[0] }

// Order is a shipper's request for a number of trucks at a pickup point.
type Order struct {
	ID             string      `json:"id" bson:"_id"`
	ShipperID      string      `json:"shipper_id" bson:"shipper_id"`
	Pickup         GeoPoint    `json:"pickup" bson:"pickup"`
	RequiredTrucks int         `json:"required_trucks" bson:"required_trucks"`
	OutreachCount  int         `json:"outreach_count" bson:"outreach_count"`
	OffersSent     int         `json:"offers_sent" bson:"offers_sent"`
	RadiusUsed     int         `json:"radius_used" bson:"radius_used"`
	Status         OrderStatus `json:"status" bson:"status"`
	IdempotencyKey string      `json:"-" bson:"idempotency_key,omitempty"`
	CreatedAt      time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" bson:"updated_at"`
}

// OutreachCount returns how many trucks should be offered an order that
// needs required trucks: ceil(required * factor), saturating at math.MaxInt.
func OutreachCount(required int, factor float64) int {
	if required <= 0 {
		return 0
	}
	if factor < 1 {
		factor = DefaultOutreachFactor
	}
	n := math.Ceil(float64(required) * factor)
	if n >= math.MaxInt {
		return math.MaxInt
	}
	return int(n)
}

// Matches reports whether o was created from the same request fields.
func (o *Order) Matches(shipperID string, lat, lon float64, required int) bool {
	return o.ShipperID == shipperID &&
		o.RequiredTrucks == required &&
		o.Pickup.Lat() == lat &&
		o.Pickup.Lon() == lon
}
