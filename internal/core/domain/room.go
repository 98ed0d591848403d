package domain

import "strings"

// Realtime event names pushed to rooms.
const (
	EventOfferNew       = "offer:new"
	EventOfferResponded = "offer:responded"
)

const (
	truckRoomPrefix   = "truck_"
	shipperRoomPrefix = "shipper_"
)

func TruckRoom(truckID string) string     { return truckRoomPrefix + truckID }
func ShipperRoom(shipperID string) string { return shipperRoomPrefix + shipperID }

// CanJoinRoom decides whether an authenticated principal may subscribe to
// room. Trucks only see their own room, shippers only theirs, admins any.
func CanJoinRoom(role, subject, truckID, room string) bool {
	switch {
	case role == RoleAdmin:
		return strings.HasPrefix(room, truckRoomPrefix) || strings.HasPrefix(room, shipperRoomPrefix)
	case role == RoleTruck && truckID != "":
		return room == TruckRoom(truckID)
	case role == RoleShipper && subject != "":
		return room == ShipperRoom(subject)
	}
	return false
}
