package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/haulmatch/dispatch-api/internal/api/metrics"
	"github.com/haulmatch/dispatch-api/internal/core/domain"
	"github.com/haulmatch/dispatch-api/internal/core/ports"
)

type OfferHandler struct {
	service ports.OfferService
}

func NewOfferHandler(service ports.OfferService) *OfferHandler {
	return &OfferHandler{service: service}
}

type respondOfferRequest struct {
	OfferID  string `json:"offer_id" validate:"required"`
	Response string `json:"response" validate:"required,oneof=accepted declined"`
}

// Respond handles POST /api/v1/booking/offers/respond.
//
// @Summary      Accept or decline an offer
// @Description  An offer can be answered once: the first accepted or declined wins and any
// @Description  later response gets 409 instead of overwriting it. The shipper is notified in realtime.
// @Tags         offers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      respondOfferRequest  true  "Offer response"
// @Success      200   {object}  successResponse{data=domain.Offer}
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse  "Offer already responded"
// @Router       /api/v1/booking/offers/respond [post]
func (h *OfferHandler) Respond(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req respondOfferRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	offer, err := h.service.Respond(c.Request().Context(), ports.RespondOfferInput{
		OfferID:  req.OfferID,
		Response: req.Response,
		Caller:   p,
	})
	if err != nil {
		if errors.Is(err, domain.ErrOfferAlreadyResponded) {
			metrics.OffersRespondedTotal.WithLabelValues("conflict").Inc()
		}
		return err
	}

	metrics.OffersRespondedTotal.WithLabelValues(string(offer.Status)).Inc()
	return success(c, http.StatusOK, "offer "+string(offer.Status), offer)
}

// ListForTruck handles GET /api/v1/booking/trucks/:id/offers.
//
// @Summary      List a truck's offers
// @Tags         offers
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string  true   "Truck ID"
// @Param        status  query     string  false  "Filter by status"  Enums(pending, accepted, declined)
// @Success      200     {object}  successResponse{data=[]domain.Offer}
// @Failure      400     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Router       /api/v1/booking/trucks/{id}/offers [get]
func (h *OfferHandler) ListForTruck(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	status := c.QueryParam("status")
	switch domain.OfferStatus(status) {
	case "", domain.OfferPending, domain.OfferAccepted, domain.OfferDeclined:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "status must be one of: pending accepted declined")
	}

	offers, err := h.service.ListForTruck(c.Request().Context(), p, c.Param("id"), status)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, "offers retrieved", offers)
}
