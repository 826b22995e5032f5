package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/nnomo/apartment-reservations/internal/realtime"
	"github.com/nnomo/apartment-reservations/internal/utils"
)

// WSHandler upgrades authenticated dashboard clients onto the live event
// hub.  Browsers cannot set headers on a WebSocket handshake, so the token
// travels in the query string.
type WSHandler struct {
	Hub      *realtime.Hub
	Secret   string
	Upgrader websocket.Upgrader
	Log      *slog.Logger
}

// NewWSHandler builds a WSHandler.  An empty origin accepts any origin.
func NewWSHandler(hub *realtime.Hub, secret, origin string, log *slog.Logger) *WSHandler {
	if log == nil {
		log = slog.Default()
	}
	return &WSHandler{
		Hub:    hub,
		Secret: secret,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return origin == "" || r.Header.Get("Origin") == "" || r.Header.Get("Origin") == origin
			},
		},
		Log: log.With("component", "ws"),
	}
}

// Serve handles GET /v1/ws?token=<jwt>.  It blocks until the client leaves.
func (h *WSHandler) Serve(c echo.Context) error {
	raw := c.QueryParam("token")
	if raw == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing token"})
	}
	claims, err := utils.ParseAccessToken(h.Secret, raw)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}
	conn, err := h.Upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader already answered the client
		h.Log.Debug("ws upgrade failed", "error", err)
		return nil
	}
	h.Log.Info("ws client connected", "admin_id", claims.Subject, "clients", h.Hub.Clients()+1)
	h.Hub.Serve(conn)
	h.Log.Info("ws client disconnected", "admin_id", claims.Subject)
	return nil
}
