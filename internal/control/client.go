package control

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ctenhank/viscactl/internal/defs"
	"github.com/ctenhank/viscactl/internal/logger"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Time allowed to deliver a packet to the camera.
	sendWait = 2 * time.Second
)

var (
	newline = []byte{'\n'}
	space   = []byte{' '}
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// client is a middleman between the websocket connection and the hub.
type client struct {
	id   uuid.UUID
	room *ptzRoom

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan []byte
}

func (c *client) log(level logger.Level, format string, args ...interface{}) {
	c.room.control.Log(level, "[ptz "+c.room.name+"] [client "+c.id.String()+"] "+format, args...)
}

// readPump reads operator actions, applies them and forwards the results to the hub.
//
// There is at most one reader on a connection.
func (c *client) readPump() {
	defer c.room.wg.Done()
	defer func() {
		c.room.hub.unregister(c)
		c.conn.Close()
		c.log(logger.Info, "disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log(logger.Warn, "%v", err)
			}
			return
		}

		message = bytes.TrimSpace(bytes.Replace(message, newline, space, -1))

		var req defs.APIPTZRequest
		err = json.Unmarshal(message, &req)
		if err != nil {
			c.fail(req, err)
			continue
		}

		c.handleAction(req)
	}
}

func (c *client) handleAction(req defs.APIPTZRequest) {
	ctx, ctxCancel := context.WithTimeout(context.Background(), sendWait)
	defer ctxCancel()

	packet, err := c.room.control.apply(ctx, c.room.name, req)
	if err != nil {
		c.fail(req, err)
		return
	}

	c.log(logger.Debug, "applied %s", req.Action)

	c.room.broadcastResult(defs.APIPTZResult{
		Camera: c.room.name,
		Action: req.Action,
		Packet: hexPacket(packet),
		Client: c.id.String(),
	})
}

// fail reports an error to the sender only.
func (c *client) fail(req defs.APIPTZRequest, err error) {
	c.log(logger.Warn, "%v", err)

	byts, _ := json.Marshal(defs.APIPTZResult{
		Camera: c.room.name,
		Action: req.Action,
		Client: c.id.String(),
		Error:  err.Error(),
	})
	c.room.hub.reply(c, byts)
}

// writePump pumps messages from the hub to the websocket connection.
//
// There is at most one writer to a connection.
func (c *client) writePump() {
	defer c.room.wg.Done()

	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write(newline)
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
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

// serveWs handles websocket requests from the peer.
func (r *ptzRoom) serveWs(w http.ResponseWriter, req *http.Request) {
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.control.Log(logger.Warn, "%v", err)
		return
	}

	cl := &client{
		id:   uuid.New(),
		room: r,
		conn: conn,
		send: make(chan []byte, 256),
	}

	if !r.addPumps() {
		conn.Close()
		return
	}

	if !r.hub.register(cl) {
		r.wg.Add(-2)
		conn.Close()
		return
	}

	cl.log(logger.Info, "connected")

	byts, _ := json.Marshal(defs.APIPTZJoin{
		Camera: r.name,
		Client: cl.id.String(),
	})
	r.hub.reply(cl, byts)

	go cl.writePump()
	go cl.readPump()
}
