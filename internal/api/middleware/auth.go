package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/haulmatch/dispatch-api/internal/core/domain"
)

// Context keys populated by Auth.
const (
	CtxSubject  = "sub"
	CtxUsername = "username"
	CtxRole     = "role"
	CtxTruckID  = "truck_id"
)

var errIncompleteClaims = errors.New("token missing identity claims")

// Claims is the JWT payload issued at login.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	TruckID  string `json:"truck_id,omitempty"`
	jwt.RegisteredClaims
}

// ParseToken verifies an HS256 token and returns the identity it carries.
func ParseToken(jwtSecret, raw string) (domain.Principal, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte(jwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return domain.Principal{}, err
	}
	if !tkn.Valid {
		return domain.Principal{}, jwt.ErrTokenSignatureInvalid
	}
	if claims.Subject == "" || claims.Role == "" {
		return domain.Principal{}, errIncompleteClaims
	}
	if claims.Role == domain.RoleTruck && claims.TruckID == "" {
		return domain.Principal{}, errIncompleteClaims
	}
	return domain.Principal{
		Subject:  claims.Subject,
		Username: claims.Username,
		Role:     claims.Role,
		TruckID:  claims.TruckID,
	}, nil
}

// Auth validates the bearer token and injects its claims into context.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return authenticate(jwtSecret, false)
}

// WebSocketAuth is Auth that also accepts a "token" query parameter, since
// browsers cannot set headers on a WebSocket handshake.
func WebSocketAuth(jwtSecret string) echo.MiddlewareFunc {
	return authenticate(jwtSecret, true)
}

func authenticate(jwtSecret string, allowQuery bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := bearerToken(c, allowQuery)
			if err != nil {
				return err
			}

			p, err := ParseToken(jwtSecret, raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(CtxSubject, p.Subject)
			c.Set(CtxUsername, p.Username)
			c.Set(CtxRole, p.Role)
			c.Set(CtxTruckID, p.TruckID)

			return next(c)
		}
	}
}

func bearerToken(c echo.Context, allowQuery bool) (string, error) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		if allowQuery {
			if t := c.QueryParam("token"); t != "" {
				return t, nil
			}
		}
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}
	return parts[1], nil
}
