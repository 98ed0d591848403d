package domain

import (
	"errors"
	"time"
)

var (
	ErrTruckNotFound      = errors.New("truck not found")
	ErrTruckExists        = errors.New("truck already exists")
	ErrInvalidCoordinates = errors.New("coordinates out of range")
)

// Truck is a vehicle that can receive offers.
type Truck struct {
	ID                string    `json:"id" bson:"_id"`
	OwnerID           string    `json:"owner_id" bson:"owner_id"`
	Plate             string    `json:"plate" bson:"plate"`
	CapacityKg        float64   `json:"capacity_kg" bson:"capacity_kg"`
	Available         bool      `json:"available" bson:"available"`
	Location          GeoPoint  `json:"location" bson:"location"`
	LocationUpdatedAt time.Time `json:"location_updated_at" bson:"location_updated_at"`
	CreatedAt         time.Time `json:"created_at" bson:"created_at"`
}

// ValidCoordinates reports whether lat/lon lie on the globe.
func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
