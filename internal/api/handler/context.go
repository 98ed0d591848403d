package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/haulmatch/dispatch-api/internal/api/middleware"
	"github.com/haulmatch/dispatch-api/internal/core/domain"
)

// ctxPrincipal rebuilds the caller identity injected by the Auth middleware.
// A missing role means the route was mounted without Auth.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	p := domain.Principal{}
	p.Subject, _ = c.Get(middleware.CtxSubject).(string)
	p.Username, _ = c.Get(middleware.CtxUsername).(string)
	p.Role, _ = c.Get(middleware.CtxRole).(string)
	p.TruckID, _ = c.Get(middleware.CtxTruckID).(string)

	if p.Role == "" || p.Subject == "" {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return p, nil
}
