package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer; a dense note batch is a few
	// kilobytes, so this is generous without being unbounded
	maxMessageSize = 1 << 20
)

// conn pairs one WebSocket with its outbound queue. The relay sends no pings;
// a peer that goes silent is discovered on the next failed write.
type conn struct {
	hub  *Hub
	ws   *websocket.Conn
	id   string
	send chan []byte
}

// readPump pumps inbound frames from the WebSocket into the dispatcher.
func (c *conn) readPump() {
	defer func() {
		c.hub.dropConnection(c.id, c.send)
		c.ws.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.hub.logger.WithError(err).WithField("client_id", c.id).Debug("WebSocket read error")
			}
			break
		}

		if !c.hub.dispatchBatch(c.id, message) {
			break
		}
	}
}

// writePump drains the outbound queue onto the WebSocket. It exits when the
// queue is closed, either by replacement or teardown, after flushing whatever
// was already enqueued.
func (c *conn) writePump() {
	defer c.ws.Close()

	for message := range c.send {
		c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}

	// Queue closed: tell the peer this was deliberate.
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
