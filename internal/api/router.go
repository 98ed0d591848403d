package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/haulmatch/dispatch-api/internal/api/handler"
	"github.com/haulmatch/dispatch-api/internal/api/middleware"
	"github.com/haulmatch/dispatch-api/internal/core/domain"
	"github.com/haulmatch/dispatch-api/internal/core/ports"
	"github.com/haulmatch/dispatch-api/internal/infrastructure/realtime"

	_ "github.com/haulmatch/dispatch-api/docs"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Auth     ports.AuthService
	Dispatch ports.DispatchService
	Offers   ports.OfferService
	Trucks   ports.TruckService
	Hub      *realtime.Hub
	Checks   map[string]handler.Check

	JWTSecret      string
	AllowedOrigins []string
	Logger         zerolog.Logger
	// Registry receives the HTTP request metrics. Nil uses the default
	// Prometheus registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "dispatch",
		Subsystem:  "http",
		Registerer: registerer,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	orderHandler := handler.NewOrderHandler(d.Dispatch, d.Offers)
	offerHandler := handler.NewOfferHandler(d.Offers)
	truckHandler := handler.NewTruckHandler(d.Trucks)
	realtimeHandler := handler.NewRealtimeHandler(d.Hub, d.AllowedOrigins, d.Logger)
	healthHandler := handler.NewHealthHandler(d.Checks)

	// --- Probes, metrics, docs (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/api/v1")

	// --- Auth routes ---
	v1.POST("/auth/register", authHandler.Register)
	v1.POST("/auth/login", authHandler.Login)

	booking := v1.Group("/booking", middleware.Auth(d.JWTSecret))
	shippers := middleware.RBAC(domain.RoleShipper, domain.RoleAdmin)
	trucks := middleware.RBAC(domain.RoleTruck, domain.RoleAdmin)

	// --- Orders ---
	booking.POST("/orders", orderHandler.Create, shippers)
	booking.GET("/orders/:id", orderHandler.Get, shippers)
	booking.GET("/orders/:id/offers", orderHandler.ListOffers, shippers)

	// --- Offers ---
	booking.POST("/offers/respond", offerHandler.Respond, trucks)

	// --- Trucks ---
	booking.POST("/trucks", truckHandler.Register, trucks)
	booking.POST("/trucks/location-update", truckHandler.UpdateLocation, trucks)
	booking.GET("/trucks/:id", truckHandler.Get)
	booking.GET("/trucks/:id/offers", offerHandler.ListForTruck, trucks)
	booking.PATCH("/trucks/:id/availability", truckHandler.SetAvailability, trucks)

	// --- Realtime ---
	e.GET("/ws", realtimeHandler.Connect, middleware.WebSocketAuth(d.JWTSecret))

	return e
}
