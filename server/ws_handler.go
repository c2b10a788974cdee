package server

import (
	"net/http"

	"EchoFM/core/auth"
	"EchoFM/core/presence"
	"EchoFM/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler upgrades the connection and attaches the client to the
// presence hub. The token is validated before the hub sees the client, so a
// rejected handshake never mutates presence state.
func (h *APIHandler) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusUnauthorized, "Token is required")
		return
	}

	claims, err := auth.ParseToken(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", logger.ErrorField(err))
		return
	}

	client := presence.NewClient(h.hub, conn, uuid.NewString(), claims.UserID, claims.Username)
	h.hub.Connect(client)

	go client.WritePump()
	go client.ReadPump()
}
