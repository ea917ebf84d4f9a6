package push

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"tasknotify/internal/constants"
	"tasknotify/internal/logger"
)

const writeTimeout = 10 * time.Second

// wsConnection adapts a gorilla connection to the hub's Connection interface.
// gorilla allows a single concurrent writer, so sends are serialized.
type wsConnection struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConnection) SendJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(v)
}

func (c *wsConnection) close(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
	c.conn.Close()
}

type Handler struct {
	hub       *Hub
	validator *TokenValidator
	logger    logger.Logger
	upgrader  websocket.Upgrader
}

func NewHandler(hub *Hub, validator *TokenValidator, log logger.Logger) *Handler {
	return &Handler{
		hub:       hub,
		validator: validator,
		logger:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The handshake is authenticated by the bearer token, not
			// by origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/ws/tasks", h.Serve)
}

// Serve upgrades the request and runs the push channel protocol: token
// validation, connection.established, then ping/pong until disconnect.
func (h *Handler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warnw("Push channel upgrade failed", "error", err)
		return
	}

	ws := &wsConnection{conn: conn}

	userID, err := h.validator.Validate(c.Query("token"))
	if err != nil {
		h.logger.Warnw("Push channel rejected", "error", err)
		ws.close(constants.CloseCodeInvalidToken, "invalid or missing token")
		return
	}

	h.hub.Register(ws, userID)
	defer func() {
		h.hub.Unregister(ws, userID)
		conn.Close()
	}()

	if err := ws.SendJSON(Message{
		Type: "connection.established",
		Data: map[string]string{"userId": userID},
	}); err != nil {
		h.logger.Warnw("Failed to confirm push channel", "user_id", userID, "error", err)
		return
	}

	h.readLoop(ws, userID)
}

func (h *Handler) readLoop(ws *wsConnection, userID string) {
	for {
		_, raw, err := ws.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warnw("Push channel read error", "user_id", userID, "error", err)
			}
			return
		}

		var msg struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &msg); err != nil {
			// Malformed inbound messages are ignored, not fatal.
			continue
		}

		if msg.Type == "ping" {
			if err := ws.SendJSON(map[string]string{"type": "pong"}); err != nil {
				return
			}
		}
	}
}
