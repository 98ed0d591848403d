package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin   = "admin"
	RoleShipper = "shipper"
	RoleTruck   = "truck"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("access forbidden")
	ErrTruckClaimed       = errors.New("truck already bound to another account")
)

// User models an authenticated actor. Shippers are identified by ID; truck
// users carry the TruckID they operate.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	TruckID      string    `json:"truck_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Principal is the caller identity derived from a verified token.
type Principal struct {
	Subject  string
	Username string
	Role     string
	TruckID  string
}

// ActsForShipper reports whether p may act on behalf of the shipper.
func (p Principal) ActsForShipper(shipperID string) bool {
	return p.Role == RoleAdmin || (p.Role == RoleShipper && p.Subject == shipperID)
}

// ActsForTruck reports whether p may act on behalf of the truck.
func (p Principal) ActsForTruck(truckID string) bool {
	return p.Role == RoleAdmin || (p.Role == RoleTruck && p.TruckID == truckID)
}
