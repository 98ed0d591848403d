package domain

import (
	"errors"
	"time"
)

// OfferStatus is the outcome of an offer sent to a single truck.
type OfferStatus string

const (
	OfferPending  OfferStatus = "pending"
	OfferAccepted OfferStatus = "accepted"
	OfferDeclined OfferStatus = "declined"
)

// validOfferTransitions defines the allowed state machine transitions.
// Accepted and declined are terminal.
var validOfferTransitions = map[OfferStatus][]OfferStatus{
	OfferPending: {OfferAccepted, OfferDeclined},
}

var (
	ErrOfferNotFound         = errors.New("offer not found")
	ErrOfferAlreadyResponded = errors.New("offer already responded")
	ErrInvalidResponse       = errors.New("response must be accepted or declined")
)

// CanTransitionTo reports whether a transition from the current status to next is valid.
func (s OfferStatus) CanTransitionTo(next OfferStatus) bool {
	for _, allowed := range validOfferTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseOfferResponse converts a truck's response into a terminal status.
func ParseOfferResponse(s string) (OfferStatus, error) {
	switch OfferStatus(s) {
	case OfferAccepted, OfferDeclined:
		return OfferStatus(s), nil
	}
	return "", ErrInvalidResponse
}

// Offer is a proposal sent to one truck for one order.
type Offer struct {
	ID          string      `json:"id" bson:"_id"`
	OrderID     string      `json:"order_id" bson:"order_id"`
	TruckID     string      `json:"truck_id" bson:"truck_id"`
	ShipperID   string      `json:"shipper_id" bson:"shipper_id"`
	Status      OfferStatus `json:"status" bson:"status"`
	CreatedAt   time.Time   `json:"created_at" bson:"created_at"`
	RespondedAt *time.Time  `json:"responded_at,omitempty" bson:"responded_at,omitempty"`
}
