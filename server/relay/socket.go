package relay

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/marcopiovanello/tubedrop/server/internal"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 512
	sendBuffer     = 64
)

const (
	EventConnect  = "connect"
	EventProgress = "download_progress"
)

// Frame is the envelope of every message pushed to the browser.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type handshake struct {
	ID string `json:"id"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// same policy as the REST api, which allows every origin
	CheckOrigin: func(r *http.Request) bool { return true },
}

type client struct {
	id   string
	ws   *websocket.Conn
	send chan Frame
	done chan struct{}
	once sync.Once
}

// enqueue never blocks: a full buffer drops the frame.
func (c *client) enqueue(f Frame) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- f:
		return true
	case <-c.done:
		return false
	default:
		slog.Warn("push buffer full, dropping frame", slog.String("id", c.id), slog.String("event", f.Event))
		return false
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.ws.Close()
	})
}

// ServeWS opens a push channel, assigns it a connection identifier and sends
// the identifier as the first frame.
func (r *Relay) ServeWS(w http.ResponseWriter, req *http.Request) {
	ws, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", slog.Any("err", err))
		return
	}

	c := &client{
		id:   uuid.NewString(),
		ws:   ws,
		send: make(chan Frame, sendBuffer),
		done: make(chan struct{}),
	}

	r.add(c)
	cancel := r.Subscribe(c.id, func(ev internal.ProgressEvent) {
		c.enqueue(Frame{Event: EventProgress, Data: ev})
	})

	slog.Info("client connected", slog.String("id", c.id), slog.String("remote", req.RemoteAddr))

	c.enqueue(Frame{Event: EventConnect, Data: handshake{ID: c.id}})

	go c.writePump()
	c.readPump()

	cancel()
	c.close()
	r.remove(c)

	slog.Info("client disconnected", slog.String("id", c.id))
}

// readPump discards client frames; it only exists to notice the peer going
// away and to process pongs.
func (c *client) readPump() {
	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket closed unexpectedly", slog.String("id", c.id), slog.Any("err", err))
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			return
		case f := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(f); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
