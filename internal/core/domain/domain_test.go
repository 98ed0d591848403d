package domain

import (
	"math"
	"testing"
)

func TestOutreachCount(t *testing.T) {
	cases := []struct {
		required int
		want     int
	}{
		{0, 0},
		{1, 2},
		{2, 3},
		{3, 5},
		{4, 6},
		{10, 15},
	}
	for _, tc := range cases {
		if got := OutreachCount(tc.required, DefaultOutreachFactor); got != tc.want {
			t.Errorf("OutreachCount(%d) = %d, want %d", tc.required, got, tc.want)
		}
	}
}

func TestOutreachCount_FactorBelowOneFallsBack(t *testing.T) {
	if got := OutreachCount(4, 0); got != 6 {
		t.Fatalf("expected default factor to apply, got %d", got)
	}
}

func TestOutreachCount_SaturatesInsteadOfOverflowing(t *testing.T) {
	if got := OutreachCount(6148914691236517206, DefaultOutreachFactor); got != math.MaxInt {
		t.Fatalf("expected math.MaxInt, got %d", got)
	}
	if got := OutreachCount(MaxRequiredTrucks, 1e300); got != math.MaxInt {
		t.Fatalf("expected math.MaxInt for huge factor, got %d", got)
	}
}

func TestOrder_Matches(t *testing.T) {
	o := &Order{ShipperID: "s1", Pickup: NewGeoPoint(19.43, -99.13), RequiredTrucks: 4}

	if !o.Matches("s1", 19.43, -99.13, 4) {
		t.Error("identical request must match")
	}
	if o.Matches("s1", 19.43, -99.13, 5) {
		t.Error("different truck count must not match")
	}
	if o.Matches("s1", 20, -99.13, 4) {
		t.Error("different pickup must not match")
	}
}

func TestOfferStatus_Transitions(t *testing.T) {
	if !OfferPending.CanTransitionTo(OfferAccepted) {
		t.Error("pending -> accepted must be allowed")
	}
	if !OfferPending.CanTransitionTo(OfferDeclined) {
		t.Error("pending -> declined must be allowed")
	}
	for _, from := range []OfferStatus{OfferAccepted, OfferDeclined} {
		for _, to := range []OfferStatus{OfferPending, OfferAccepted, OfferDeclined} {
			if from.CanTransitionTo(to) {
				t.Errorf("%s -> %s must be rejected", from, to)
			}
		}
	}
}

func TestParseOfferResponse(t *testing.T) {
	if s, err := ParseOfferResponse("accepted"); err != nil || s != OfferAccepted {
		t.Fatalf("accepted: got %q, %v", s, err)
	}
	if s, err := ParseOfferResponse("declined"); err != nil || s != OfferDeclined {
		t.Fatalf("declined: got %q, %v", s, err)
	}
	for _, bad := range []string{"", "pending", "ACCEPTED", "maybe"} {
		if _, err := ParseOfferResponse(bad); err != ErrInvalidResponse {
			t.Errorf("%q: expected ErrInvalidResponse, got %v", bad, err)
		}
	}
}

func TestCanJoinRoom(t *testing.T) {
	cases := []struct {
		name    string
		role    string
		subject string
		truckID string
		room    string
		want    bool
	}{
		{"truck own room", RoleTruck, "u1", "t1", "truck_t1", true},
		{"truck other room", RoleTruck, "u1", "t1", "truck_t2", false},
		{"truck shipper room", RoleTruck, "u1", "t1", "shipper_u1", false},
		{"truck without truck id", RoleTruck, "u1", "", "truck_", false},
		{"shipper own room", RoleShipper, "s1", "", "shipper_s1", true},
		{"shipper other room", RoleShipper, "s1", "", "shipper_s2", false},
		{"shipper truck room", RoleShipper, "s1", "", "truck_t1", false},
		{"admin truck room", RoleAdmin, "a", "", "truck_t9", true},
		{"admin shipper room", RoleAdmin, "a", "", "shipper_s9", true},
		{"admin arbitrary room", RoleAdmin, "a", "", "lobby", false},
		{"unknown role", "guest", "g", "", "shipper_g", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanJoinRoom(tc.role, tc.subject, tc.truckID, tc.room); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestGeoPoint_OrderIsLonLat(t *testing.T) {
	p := NewGeoPoint(19.43, -99.13)
	if p.Coordinates[0] != -99.13 || p.Coordinates[1] != 19.43 {
		t.Fatalf("unexpected coordinates: %v", p.Coordinates)
	}
	if p.Lat() != 19.43 || p.Lon() != -99.13 {
		t.Fatalf("accessors disagree with coordinates: %v", p.Coordinates)
	}
}

func TestValidCoordinates(t *testing.T) {
	if !ValidCoordinates(0, 0) || !ValidCoordinates(-90, 180) {
		t.Fatal("boundary coordinates must be valid")
	}
	if ValidCoordinates(90.1, 0) || ValidCoordinates(0, -180.5) {
		t.Fatal("out of range coordinates must be invalid")
	}
}
