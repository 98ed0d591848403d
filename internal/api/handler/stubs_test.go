package handler

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/haulmatch/dispatch-api/internal/api/middleware"
	"github.com/haulmatch/dispatch-api/internal/core/domain"
	"github.com/haulmatch/dispatch-api/internal/core/ports"
)

// ---- Stub services ----

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, username, password string) (string, *domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, username, password)
}

type stubDispatchService struct {
	postFn func(ctx context.Context, in ports.PostOrderInput) (*ports.DispatchResult, error)
	getFn  func(ctx context.Context, p domain.Principal, id string) (*domain.Order, error)
}

func (s *stubDispatchService) PostOrder(ctx context.Context, in ports.PostOrderInput) (*ports.DispatchResult, error) {
	return s.postFn(ctx, in)
}

func (s *stubDispatchService) GetOrder(ctx context.Context, p domain.Principal, id string) (*domain.Order, error) {
	return s.getFn(ctx, p, id)
}

type stubOfferService struct {
	respondFn   func(ctx context.Context, in ports.RespondOfferInput) (*domain.Offer, error)
	listOrderFn func(ctx context.Context, p domain.Principal, orderID string) ([]*domain.Offer, error)
	listTruckFn func(ctx context.Context, p domain.Principal, truckID, status string) ([]*domain.Offer, error)
}

func (s *stubOfferService) Respond(ctx context.Context, in ports.RespondOfferInput) (*domain.Offer, error) {
	return s.respondFn(ctx, in)
}

func (s *stubOfferService) ListForOrder(ctx context.Context, p domain.Principal, orderID string) ([]*domain.Offer, error) {
	return s.listOrderFn(ctx, p, orderID)
}

func (s *stubOfferService) ListForTruck(ctx context.Context, p domain.Principal, truckID, status string) ([]*domain.Offer, error) {
	return s.listTruckFn(ctx, p, truckID, status)
}

type stubTruckService struct {
	registerFn     func(ctx context.Context, in ports.RegisterTruckInput) (*domain.Truck, error)
	locationFn     func(ctx context.Context, in ports.LocationUpdateInput) error
	availabilityFn func(ctx context.Context, p domain.Principal, truckID string, available bool) error
	getFn          func(ctx context.Context, truckID string) (*domain.Truck, error)
}

func (s *stubTruckService) Register(ctx context.Context, in ports.RegisterTruckInput) (*domain.Truck, error) {
	return s.registerFn(ctx, in)
}

func (s *stubTruckService) UpdateLocation(ctx context.Context, in ports.LocationUpdateInput) error {
	return s.locationFn(ctx, in)
}

func (s *stubTruckService) SetAvailability(ctx context.Context, p domain.Principal, truckID string, available bool) error {
	return s.availabilityFn(ctx, p, truckID, available)
}

func (s *stubTruckService) Get(ctx context.Context, truckID string) (*domain.Truck, error) {
	return s.getFn(ctx, truckID)
}

// ---- Helpers ----

func newJSONContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func as(c echo.Context, p domain.Principal) {
	c.Set(middleware.CtxSubject, p.Subject)
	c.Set(middleware.CtxUsername, p.Username)
	c.Set(middleware.CtxRole, p.Role)
	c.Set(middleware.CtxTruckID, p.TruckID)
}

func shipperP(id string) domain.Principal {
	return domain.Principal{Subject: id, Role: domain.RoleShipper}
}

func truckP(truckID string) domain.Principal {
	return domain.Principal{Subject: "user-" + truckID, Role: domain.RoleTruck, TruckID: truckID}
}

// statusOf returns the HTTP status carried by an *echo.HTTPError.
func statusOf(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %T: %v", err, err)
	}
	return he.Code
}

func mustNotCall(t *testing.T) {
	t.Helper()
	t.Fatal("service should not be called")
}
