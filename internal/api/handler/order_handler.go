package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/haulmatch/dispatch-api/internal/api/metrics"
	"github.com/haulmatch/dispatch-api/internal/core/domain"
	"github.com/haulmatch/dispatch-api/internal/core/ports"
)

// HeaderIdempotencyKey lets a shipper retry an order submission safely.
const HeaderIdempotencyKey = "Idempotency-Key"

// OrderHandler handles HTTP requests for order dispatch.
type OrderHandler struct {
	dispatch ports.DispatchService
	offers   ports.OfferService
}

func NewOrderHandler(dispatch ports.DispatchService, offers ports.OfferService) *OrderHandler {
	return &OrderHandler{dispatch: dispatch, offers: offers}
}

type postOrderRequest struct {
	// ShipperID defaults to the caller for shipper tokens.
	ShipperID      string   `json:"shipper_id"`
	PickupLat      *float64 `json:"pickup_lat" validate:"required,latitude"`
	PickupLon      *float64 `json:"pickup_lon" validate:"required,longitude"`
	RequiredTrucks int      `json:"required_trucks" validate:"min=1,max=1000"`
}

// dispatchData keeps the field names existing clients read.
type dispatchData struct {
	Order         *domain.Order `json:"order"`
	OutreachCount int           `json:"outreachCount"`
	TrucksFound   int           `json:"trucksFound"`
	RadiusUsed    int           `json:"radiusUsed"`
}

// Create handles POST /api/v1/booking/orders.
//
// @Summary      Post an order and offer it to nearby trucks
// @Description  Searches 10, 20, 40 and 50 km around the pickup until enough trucks are found,
// @Description  then sends each selected truck an offer. Replays with the same Idempotency-Key
// @Description  return the original order with status 200; reusing a key for a different
// @Description  pickup or truck count is rejected with 409.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string            false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      postOrderRequest  true   "Order details"
// @Success      201              {object}  successResponse{data=dispatchData}
// @Success      200              {object}  successResponse{data=dispatchData}
// @Failure      400              {object}  errorResponse
// @Failure      403              {object}  errorResponse
// @Failure      404              {object}  errorResponse  "No trucks found nearby"
// @Failure      409              {object}  errorResponse  "Idempotency key reused for a different order"
// @Failure      500              {object}  errorResponse
// @Router       /api/v1/booking/orders [post]
func (h *OrderHandler) Create(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req postOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.ShipperID == "" && p.Role == domain.RoleShipper {
		req.ShipperID = p.Subject
	}
	if req.ShipperID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "shipper_id is required")
	}

	res, err := h.dispatch.PostOrder(c.Request().Context(), ports.PostOrderInput{
		ShipperID:      req.ShipperID,
		PickupLat:      *req.PickupLat,
		PickupLon:      *req.PickupLon,
		RequiredTrucks: req.RequiredTrucks,
		IdempotencyKey: c.Request().Header.Get(HeaderIdempotencyKey),
		Caller:         p,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNoTrucksFound) {
			metrics.OrdersDispatchedTotal.WithLabelValues("no_trucks").Inc()
		}
		return err
	}

	data := dispatchData{
		Order:         res.Order,
		OutreachCount: res.OutreachCount,
		TrucksFound:   res.TrucksFound,
		RadiusUsed:    res.RadiusUsed,
	}
	if res.Replayed {
		metrics.OrdersDispatchedTotal.WithLabelValues("replayed").Inc()
		c.Response().Header().Set("Idempotent-Replayed", "true")
		return success(c, http.StatusOK, "order already dispatched", data)
	}

	metrics.OrdersDispatchedTotal.WithLabelValues("dispatched").Inc()
	metrics.OffersSentTotal.Add(float64(res.TrucksFound))
	metrics.DispatchRadiusMeters.Observe(float64(res.RadiusUsed))

	c.Response().Header().Set(echo.HeaderLocation, "/api/v1/booking/orders/"+res.Order.ID)
	return success(c, http.StatusCreated, "order dispatched to nearby trucks", data)
}

// Get handles GET /api/v1/booking/orders/:id.
//
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  successResponse{data=domain.Order}
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/booking/orders/{id} [get]
func (h *OrderHandler) Get(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	order, err := h.dispatch.GetOrder(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, "order retrieved", order)
}

// ListOffers handles GET /api/v1/booking/orders/:id/offers.
//
// @Summary      List the offers sent for an order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  successResponse{data=[]domain.Offer}
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/booking/orders/{id}/offers [get]
func (h *OrderHandler) ListOffers(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	offers, err := h.offers.ListForOrder(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, "offers retrieved", offers)
}
