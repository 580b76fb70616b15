package push

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	jwtsvc "trafficportal/internal/pkg/jwt"
	"trafficportal/internal/pkg/response"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // Allow all origins (configure in prod)
}

// Handler admits authenticated WebSocket connections into the hub.
type Handler struct {
	hub        *Hub
	jwtService *jwtsvc.Service
	log        logrus.FieldLogger
}

func NewHandler(hub *Hub, jwtService *jwtsvc.Service, log logrus.FieldLogger) *Handler {
	return &Handler{hub: hub, jwtService: jwtService, log: log}
}

// HandleWebSocket serves GET /ws/notifications?token=JWT.
//
// Authentication goes through a query parameter because browsers cannot set
// headers on WebSocket handshakes. A connection with no resolvable user
// identity is never admitted: a missing or invalid token is rejected before
// the upgrade, and a valid token without a usable user id is closed right
// after it, in both cases before any group join.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Token is required. Use ?token=YOUR_JWT_TOKEN")
		return
	}

	claims, err := h.jwtService.ValidateToken(token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	if claims.UserID <= 0 {
		h.log.WithField("remote", conn.RemoteAddr().String()).Warn("websocket connection without user identity, aborting")
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "no user identity")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		conn.Close()
		return
	}

	cn := &connection{
		id:     uuid.NewString(),
		userID: claims.UserID,
		group:  GroupForUser(claims.UserID),
		conn:   conn,
		send:   make(chan []byte, 256),
	}
	h.hub.add(cn)

	h.log.WithFields(logrus.Fields{
		"conn_id": cn.id,
		"user_id": cn.userID,
		"group":   cn.group,
	}).Info("websocket connected")

	go h.writePump(cn)
	h.readPump(cn) // blocks until disconnect

	h.log.WithFields(logrus.Fields{
		"conn_id": cn.id,
		"user_id": cn.userID,
		"group":   cn.group,
	}).Info("websocket disconnected")
}

// readPump consumes client frames until the connection dies. Group removal
// sits in the deferred cleanup so it runs on every disconnect path,
// graceful or abrupt.
func (h *Handler) readPump(c *connection) {
	defer func() {
		h.hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
				websocket.CloseAbnormalClosure) {
				h.log.WithError(err).WithField("conn_id", c.id).Warn("websocket read error")
			}
			return
		}

		var frame struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(msg, &frame); err != nil {
			continue
		}

		// The push channel is one-way; the only client frame we answer is
		// the application-level ping.
		if frame.Type == "ping" {
			pong, _ := json.Marshal(envelope{Event: "pong"})
			select {
			case c.send <- pong:
			default:
			}
		}
	}
}

func (h *Handler) writePump(c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
