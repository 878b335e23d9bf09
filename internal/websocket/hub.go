// Package websocket implements the relay hub: connection lifecycle, verb
// dispatch, and channel broadcasts.
package websocket

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"pianoworks/shantyman/internal/config"
	"pianoworks/shantyman/internal/identity"
	"pianoworks/shantyman/internal/metrics"
	"pianoworks/shantyman/internal/protocol"
	"pianoworks/shantyman/internal/state"
	"pianoworks/shantyman/pkg/logging"
)

// Hub owns the live relay state: the entity registry, one bounded outbound
// queue per connection, and the quota ticker. Lock order is queues before
// nothing: the queue lock never wraps a registry or channel call that blocks.
type Hub struct {
	cfg     config.Config
	logger  logging.Logger
	metrics *metrics.Metrics

	registry *state.Registry

	// quotaTick is the quota refill cadence, one second outside tests.
	quotaTick time.Duration

	queuesMu sync.RWMutex
	queues   map[string]chan []byte

	upgrader websocket.Upgrader
}

// NewHub creates the hub and seeds the lobby so the channel list is never
// empty.
func NewHub(cfg config.Config, logger logging.Logger, m *metrics.Metrics) *Hub {
	h := &Hub{
		cfg:       cfg,
		logger:    logger,
		metrics:   m,
		registry:  state.NewRegistry(),
		quotaTick: time.Second,
		queues:    make(map[string]chan []byte),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	h.registry.GetOrCreateChannel(state.LobbyID, "", nowMS())
	h.metrics.Channels.WithLabelValues(metrics.KindSpecial).Inc()

	return h
}

// Run drives the periodic quota refill until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.quotaTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for _, client := range h.registry.Clients() {
				client.TickQuota()
			}
		}
	}
}

// Stats reports connected clients and live channels.
func (h *Hub) Stats() (clients, channels int) {
	return h.registry.ClientCount(), h.registry.ChannelCount()
}

// ServeWS upgrades the request and starts the connection's pumps. A second
// connection with the same identity replaces the first.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Error("Failed to upgrade WebSocket connection")
		return
	}

	id := identity.DeriveID(remoteIP(r), h.cfg.Salt1, h.cfg.Salt2, h.cfg.Production)

	// The queue is attached before the client record is ensured: once the new
	// queue owns the slot, a late teardown from a replaced connection fails
	// its ownership check instead of removing the record created here.
	queue := make(chan []byte, h.cfg.SendQueueSize)
	h.attachQueue(id, queue)
	h.registry.GetOrCreateClient(id)

	c := &conn{
		hub:  h,
		ws:   ws,
		id:   id,
		send: queue,
	}

	h.metrics.Connections.Inc()
	h.logger.WithFields(logging.Fields{
		"client_id":    id,
		"remote_addr":  r.RemoteAddr,
		"client_count": h.registry.ClientCount(),
	}).Info("Client connected")

	go c.writePump()
	go c.readPump()
}

// attachQueue registers a connection's outbound queue. Closing a displaced
// queue ends the previous connection's write pump, which tears the old socket
// down without touching the shared client record.
func (h *Hub) attachQueue(id string, queue chan []byte) {
	h.queuesMu.Lock()
	old := h.queues[id]
	h.queues[id] = queue
	h.queuesMu.Unlock()

	if old != nil {
		close(old)
		h.metrics.Connections.Dec()
		h.logger.WithField("client_id", id).Info("Replaced connection for identity")
	}
}

// dropConnection tears down a connection. Only the connection that still owns
// the registered queue may tear down the shared client state; a replaced
// connection finds its queue gone and exits quietly.
func (h *Hub) dropConnection(id string, queue chan []byte) {
	h.queuesMu.Lock()
	current, ok := h.queues[id]
	owns := ok && current == queue
	if owns {
		delete(h.queues, id)
		close(current)
	}
	h.queuesMu.Unlock()

	if !owns {
		return
	}
	h.metrics.Connections.Dec()

	client, ok := h.registry.RemoveClient(id)
	if !ok {
		return
	}

	if channelID := client.ChannelID(); channelID != "" {
		h.leaveChannel(id, channelID)
		h.broadcastList()
	}
	h.registry.UnsubscribeLS(id)

	h.logger.WithFields(logging.Fields{
		"client_id":    id,
		"client_count": h.registry.ClientCount(),
	}).Info("Client disconnected")
}

// leaveChannel removes a client from a room: crown drop, bye broadcast, and
// empty-room deletion. Callers refresh the channel list afterwards.
func (h *Hub) leaveChannel(id, channelID string) {
	ch, ok := h.registry.GetChannel(channelID)
	if !ok {
		return
	}

	removed, empty := ch.Leave(id, nowMS())
	if !removed {
		return
	}

	h.broadcastChannel(channelID, id, protocol.NewPresenceLeave(id))

	if empty && h.registry.DeleteChannelIfEmpty(channelID) {
		h.metrics.Channels.WithLabelValues(metrics.KindNormal).Dec()
	}
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func nowMS() int64 {
	return time.Now().UnixMilli()
}
