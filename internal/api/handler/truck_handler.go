package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/haulmatch/dispatch-api/internal/api/metrics"
	"github.com/haulmatch/dispatch-api/internal/core/domain"
	"github.com/haulmatch/dispatch-api/internal/core/ports"
)

type TruckHandler struct {
	service ports.TruckService
}

func NewTruckHandler(service ports.TruckService) *TruckHandler {
	return &TruckHandler{service: service}
}

type registerTruckRequest struct {
	TruckID    string   `json:"truck_id"`
	Plate      string   `json:"plate" validate:"required"`
	CapacityKg float64  `json:"capacity_kg" validate:"gte=0"`
	Lat        *float64 `json:"lat" validate:"required,latitude"`
	Lon        *float64 `json:"lon" validate:"required,longitude"`
}

type locationUpdateRequest struct {
	TruckID string   `json:"truck_id"`
	Lat     *float64 `json:"lat" validate:"required,latitude"`
	Lon     *float64 `json:"lon" validate:"required,longitude"`
}

type availabilityRequest struct {
	Available *bool `json:"available" validate:"required"`
}

// truckIDFor resolves the target truck. Truck tokens may omit truck_id; it
// defaults to the truck in the token.
func truckIDFor(p domain.Principal, requested string) (string, error) {
	if requested != "" {
		return requested, nil
	}
	if p.Role == domain.RoleTruck {
		return p.TruckID, nil
	}
	return "", echo.NewHTTPError(http.StatusBadRequest, "truck_id is required")
}

// Register handles POST /api/v1/booking/trucks.
//
// @Summary      Register a truck
// @Tags         trucks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      registerTruckRequest  true  "Truck details"
// @Success      201   {object}  successResponse{data=domain.Truck}
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/v1/booking/trucks [post]
func (h *TruckHandler) Register(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req registerTruckRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	truckID, err := truckIDFor(p, req.TruckID)
	if err != nil {
		return err
	}

	truck, err := h.service.Register(c.Request().Context(), ports.RegisterTruckInput{
		TruckID:    truckID,
		Plate:      req.Plate,
		CapacityKg: req.CapacityKg,
		Lat:        *req.Lat,
		Lon:        *req.Lon,
		Caller:     p,
	})
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, "truck registered", truck)
}

// Get handles GET /api/v1/booking/trucks/:id.
//
// @Summary      Get a truck
// @Tags         trucks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Truck ID"
// @Success      200  {object}  successResponse{data=domain.Truck}
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/booking/trucks/{id} [get]
func (h *TruckHandler) Get(c echo.Context) error {
	truck, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, "truck retrieved", truck)
}

// UpdateLocation handles POST /api/v1/booking/trucks/location-update.
//
// @Summary      Report a truck's position
// @Tags         trucks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      locationUpdateRequest  true  "Current position"
// @Success      200   {object}  successResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/v1/booking/trucks/location-update [post]
func (h *TruckHandler) UpdateLocation(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req locationUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	truckID, err := truckIDFor(p, req.TruckID)
	if err != nil {
		return err
	}

	if err := h.service.UpdateLocation(c.Request().Context(), ports.LocationUpdateInput{
		TruckID: truckID,
		Lat:     *req.Lat,
		Lon:     *req.Lon,
		Caller:  p,
	}); err != nil {
		return err
	}

	metrics.TruckLocationUpdatesTotal.Inc()
	return success(c, http.StatusOK, "location updated", nil)
}

// SetAvailability handles PATCH /api/v1/booking/trucks/:id/availability.
//
// @Summary      Toggle whether a truck receives offers
// @Tags         trucks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Truck ID"
// @Param        body  body      availabilityRequest  true  "Availability"
// @Success      200   {object}  successResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/v1/booking/trucks/{id}/availability [patch]
func (h *TruckHandler) SetAvailability(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req availabilityRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.service.SetAvailability(c.Request().Context(), p, c.Param("id"), *req.Available); err != nil {
		return err
	}
	return success(c, http.StatusOK, "availability updated", map[string]bool{"available": *req.Available})
}
