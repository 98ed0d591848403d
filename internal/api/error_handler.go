package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/haulmatch/dispatch-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
// Status is "fail" for client errors and "error" for server errors.
type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// domainErrors maps sentinel errors to HTTP status codes. The sentinel's own
// text is rendered so wrapping context never leaks to clients.
var domainErrors = []struct {
	err  error
	code int
}{
	{domain.ErrNoTrucksFound, http.StatusNotFound},
	{domain.ErrOrderNotFound, http.StatusNotFound},
	{domain.ErrOfferNotFound, http.StatusNotFound},
	{domain.ErrTruckNotFound, http.StatusNotFound},
	{domain.ErrUserNotFound, http.StatusNotFound},
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized},
	{domain.ErrOfferAlreadyResponded, http.StatusConflict},
	{domain.ErrDuplicateOrder, http.StatusConflict},
	{domain.ErrTruckExists, http.StatusConflict},
	{domain.ErrUserExists, http.StatusConflict},
	{domain.ErrTruckClaimed, http.StatusConflict},
	{domain.ErrIdempotencyMismatch, http.StatusConflict},
	{domain.ErrInvalidOrder, http.StatusBadRequest},
	{domain.ErrInvalidResponse, http.StatusBadRequest},
	{domain.ErrInvalidCoordinates, http.StatusBadRequest},
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Reports data-layer failures as 400 with the store's message.
//   - Logs unexpected errors without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		status := "fail"
		if code >= http.StatusInternalServerError {
			status = "error"
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Status: status, Message: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	for _, m := range domainErrors {
		if errors.Is(err, m.err) {
			return m.code, m.err.Error()
		}
	}

	var se *domain.StoreError
	if errors.As(err, &se) {
		log.Warn().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("data layer error")
		return http.StatusBadRequest, se.Error()
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
