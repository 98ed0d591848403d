package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/haulmatch/dispatch-api/internal/infrastructure/realtime"
)

// RealtimeHandler upgrades authenticated requests to WebSocket connections.
type RealtimeHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewRealtimeHandler accepts browser origins listed in allowedOrigins ("*"
// for any). With no list, only same-host origins are accepted.
func NewRealtimeHandler(hub *realtime.Hub, allowedOrigins []string, log zerolog.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
		log: log,
	}
}

func checkOrigin(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// Connect handles GET /ws.
//
// @Summary      Open a realtime connection
// @Description  Upgrades to WebSocket. Frames are {"event": string, "data": any}.
// @Description  Send {"event":"join","data":"truck_<id>"} or "shipper_<id>" to subscribe;
// @Description  the server pushes offer:new and offer:responded events.
// @Tags         realtime
// @Security     BearerAuth
// @Param        token  query  string  false  "JWT, for clients that cannot set headers"
// @Success      101
// @Failure      401  {object}  errorResponse
// @Router       /ws [get]
func (h *RealtimeHandler) Connect(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already written the HTTP error.
		h.log.Debug().Err(err).Str("sub", p.Subject).Msg("websocket upgrade failed")
		return nil
	}

	h.hub.Serve(conn, p)
	return nil
}
