package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// successResponse is the envelope for every 2xx JSON body.
type successResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// errorResponse documents the envelope rendered by the HTTP error handler.
type errorResponse struct {
	Status  string `json:"status" example:"fail"`
	Message string `json:"message"`
}

func success(c echo.Context, code int, message string, data any) error {
	return c.JSON(code, successResponse{Status: "success", Message: message, Data: data})
}

// bindAndValidate decodes the body into req and runs its validate tags.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
