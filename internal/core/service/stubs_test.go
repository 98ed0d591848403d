package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/haulmatch/dispatch-api/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

type stubOrderRepo struct {
	byID       map[string]*domain.Order
	createErr  error
	markErr    error
	deleted    []string
	createCall int
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{byID: make(map[string]*domain.Order)}
}

func (r *stubOrderRepo) Create(_ context.Context, o *domain.Order) error {
	r.createCall++
	if r.createErr != nil {
		return r.createErr
	}
	clone := *o
	r.byID[o.ID] = &clone
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id string) (*domain.Order, error) {
	o, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	clone := *o
	return &clone, nil
}

func (r *stubOrderRepo) FindByIdempotencyKey(_ context.Context, shipperID, key string) (*domain.Order, error) {
	for _, o := range r.byID {
		if o.ShipperID == shipperID && o.IdempotencyKey == key {
			clone := *o
			return &clone, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (r *stubOrderRepo) MarkDispatched(_ context.Context, id string, offersSent int, at time.Time) error {
	if r.markErr != nil {
		return r.markErr
	}
	o, ok := r.byID[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.Status = domain.OrderDispatched
	o.OffersSent = offersSent
	o.UpdatedAt = at
	return nil
}

func (r *stubOrderRepo) Delete(_ context.Context, id string) error {
	r.deleted = append(r.deleted, id)
	delete(r.byID, id)
	return nil
}

type stubOfferRepo struct {
	byID      map[string]*domain.Offer
	order     []string // insertion order of ids
	createErr error
	deleted   []string
}

func newStubOfferRepo() *stubOfferRepo {
	return &stubOfferRepo{byID: make(map[string]*domain.Offer)}
}

func (r *stubOfferRepo) CreateMany(_ context.Context, offers []*domain.Offer) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, o := range offers {
		clone := *o
		r.byID[o.ID] = &clone
		r.order = append(r.order, o.ID)
	}
	return nil
}

func (r *stubOfferRepo) FindByID(_ context.Context, id string) (*domain.Offer, error) {
	o, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrOfferNotFound
	}
	clone := *o
	return &clone, nil
}

func (r *stubOfferRepo) ListByOrder(_ context.Context, orderID string) ([]*domain.Offer, error) {
	var out []*domain.Offer
	for _, id := range r.order {
		if o := r.byID[id]; o != nil && o.OrderID == orderID {
			clone := *o
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubOfferRepo) ListByTruck(_ context.Context, truckID string, status domain.OfferStatus) ([]*domain.Offer, error) {
	var out []*domain.Offer
	for _, id := range r.order {
		o := r.byID[id]
		if o == nil || o.TruckID != truckID {
			continue
		}
		if status != "" && o.Status != status {
			continue
		}
		clone := *o
		out = append(out, &clone)
	}
	return out, nil
}

// Respond mirrors the real store: the update only matches pending offers.
func (r *stubOfferRepo) Respond(_ context.Context, id string, status domain.OfferStatus, at time.Time) (*domain.Offer, error) {
	o, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrOfferNotFound
	}
	if o.Status != domain.OfferPending {
		return nil, domain.ErrOfferAlreadyResponded
	}
	o.Status = status
	o.RespondedAt = &at
	clone := *o
	return &clone, nil
}

func (r *stubOfferRepo) DeleteByOrder(_ context.Context, orderID string) error {
	r.deleted = append(r.deleted, orderID)
	for id, o := range r.byID {
		if o.OrderID == orderID {
			delete(r.byID, id)
		}
	}
	return nil
}

// stubTruckRepo answers FindNearby from a fixed table keyed by radius.
type stubTruckRepo struct {
	byRadius map[int][]*domain.Truck
	byID     map[string]*domain.Truck
	queried  []int
	findErr  error
}

func newStubTruckRepo() *stubTruckRepo {
	return &stubTruckRepo{
		byRadius: make(map[int][]*domain.Truck),
		byID:     make(map[string]*domain.Truck),
	}
}

func (r *stubTruckRepo) Create(_ context.Context, t *domain.Truck) error {
	if _, ok := r.byID[t.ID]; ok {
		return domain.ErrTruckExists
	}
	clone := *t
	r.byID[t.ID] = &clone
	return nil
}

func (r *stubTruckRepo) FindByID(_ context.Context, id string) (*domain.Truck, error) {
	t, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrTruckNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *stubTruckRepo) FindNearby(_ context.Context, _ domain.GeoPoint, radius int) ([]*domain.Truck, error) {
	r.queried = append(r.queried, radius)
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.byRadius[radius], nil
}

func (r *stubTruckRepo) UpdateLocation(_ context.Context, id string, p domain.GeoPoint, at time.Time) error {
	t, ok := r.byID[id]
	if !ok {
		return domain.ErrTruckNotFound
	}
	t.Location = p
	t.LocationUpdatedAt = at
	return nil
}

func (r *stubTruckRepo) SetAvailability(_ context.Context, id string, available bool) error {
	t, ok := r.byID[id]
	if !ok {
		return domain.ErrTruckNotFound
	}
	t.Available = available
	return nil
}

type notification struct {
	room    string
	event   string
	payload any
}

type stubNotifier struct {
	mu   sync.Mutex
	sent []notification
	err  error
}

func (n *stubNotifier) Notify(_ context.Context, room, event string, payload any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, notification{room: room, event: event, payload: payload})
	return nil
}

type stubIdempotency struct {
	keys      map[string]string
	lookupErr error
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{keys: make(map[string]string)}
}

func (s *stubIdempotency) Lookup(_ context.Context, shipperID, key string) (string, bool, error) {
	if s.lookupErr != nil {
		return "", false, s.lookupErr
	}
	id, ok := s.keys[shipperID+":"+key]
	return id, ok, nil
}

func (s *stubIdempotency) Remember(_ context.Context, shipperID, key, orderID string) error {
	s.keys[shipperID+":"+key] = orderID
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func trucks(prefix string, n int) []*domain.Truck {
	out := make([]*domain.Truck, n)
	for i := range out {
		out[i] = &domain.Truck{ID: fmt.Sprintf("%s%d", prefix, i+1), Available: true}
	}
	return out
}

func shipper(id string) domain.Principal {
	return domain.Principal{Subject: id, Role: domain.RoleShipper}
}

func truckUser(truckID string) domain.Principal {
	return domain.Principal{Subject: "user-" + truckID, Role: domain.RoleTruck, TruckID: truckID}
}
