package bridge

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Vars so tests can shrink the keepalive windows. The server pings ahead of
// the pong deadline: a client that only listens for status pushes must stay
// connected indefinitely without sending anything.
var (
	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	pingPeriod   = 54 * time.Second
)

// loopback only; the bridge is a local companion process, never exposed
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// NewHTTPServer wires the WebSocket endpoint, the health probe and the
// metrics endpoint onto one echo instance. The caller binds it to loopback.
func NewHTTPServer(actor *CardActor, hub *Hub) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.GET("/", func(c echo.Context) error {
		return serveWS(c, actor, hub)
	})

	e.GET("/health", func(c echo.Context) error {
		status := actor.Status()
		return c.JSON(http.StatusOK, map[string]any{
			"status": "ok",
			"card":   status,
		})
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}

// serveWS upgrades the connection and runs the read loop inline. Responses
// and unsolicited pushes share the client's outbound queue, so writes on the
// socket are serialized by the write pump.
func serveWS(c echo.Context, actor *CardActor, hub *Hub) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	cl := &client{send: make(chan []byte, clientQueueSize)}
	hub.register(cl)
	defer hub.unregister(cl)

	go writePump(conn, cl)

	conn.SetReadDeadline(time.Now().Add(pongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.WithError(err).Debug("Bridge client read failed")
			}
			return nil
		}
		conn.SetReadDeadline(time.Now().Add(pongTimeout))

		var req Request
		if err := json.Unmarshal(raw, &req); err != nil {
			enqueue(cl, Response{Type: "error", Success: false, Error: "malformed JSON command"})
			continue
		}
		enqueue(cl, Handle(actor, req))
	}
}

func enqueue(cl *client, resp Response) {
	payload, err := json.Marshal(resp)
	if err != nil {
		logrus.WithError(err).Error("Could not encode bridge response")
		return
	}
	select {
	case cl.send <- payload:
	default:
		logrus.Warn("Bridge client queue full, dropping response")
	}
}

func writePump(conn *websocket.Conn, cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer conn.Close()

	for {
		select {
		case payload, ok := <-cl.send:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
