package websocket

import (
	"pianoworks/shantyman/internal/protocol"
	"pianoworks/shantyman/pkg/logging"
)

// dispatchBatch decodes one wire message and runs each element's handler in
// order. The returned flag turns false once the client has asked to leave;
// anything after a bye in the same batch is discarded.
func (h *Hub) dispatchBatch(id string, data []byte) bool {
	for _, msg := range protocol.DecodeBatch(data) {
		h.metrics.MessagesIn.WithLabelValues(verbLabel(msg.Verb)).Inc()
		if msg.Verb == protocol.VerbBye {
			return false
		}
		h.dispatch(id, msg)
	}
	return true
}

// verbLabel names the metric label for a wire verb. Unrecognized verbs all
// count as "unknown"; the label set stays fixed no matter what clients send.
func verbLabel(verb string) string {
	switch verb {
	case protocol.VerbHello, protocol.VerbBye, protocol.VerbSubscribe, protocol.VerbUnsubscribe,
		protocol.VerbTime, protocol.VerbChat, protocol.VerbNote, protocol.VerbCursor,
		protocol.VerbUserset, protocol.VerbJoin, protocol.VerbChset, protocol.VerbChown,
		protocol.VerbKickban, protocol.VerbUnban, protocol.VerbDevices:
		return verb
	}
	return "unknown"
}

// dispatch routes one inbound element. A malformed element is dropped here or
// in its handler; the connection itself is never punished for one bad frame.
func (h *Hub) dispatch(id string, msg protocol.Inbound) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.WithFields(logging.Fields{
				"client_id": id,
				"verb":      msg.Verb,
				"panic":     rec,
			}).Error("Handler panic")
		}
	}()

	switch msg.Verb {
	case protocol.VerbHello:
		h.handleHello(id)
	case protocol.VerbSubscribe:
		h.handleSubscribeList(id)
	case protocol.VerbUnsubscribe:
		h.handleUnsubscribeList(id)
	case protocol.VerbTime:
		h.handleTime(id, msg.Raw)
	case protocol.VerbChat:
		h.handleChat(id, msg.Raw)
	case protocol.VerbNote:
		h.handleNote(id, msg.Raw)
	case protocol.VerbCursor:
		h.handleCursor(id, msg.Raw)
	case protocol.VerbUserset:
		h.handleUserset(id, msg.Raw)
	case protocol.VerbJoin:
		h.handleJoin(id, msg.Raw)
	case protocol.VerbChset:
		h.handleChset(id, msg.Raw)
	case protocol.VerbChown:
		h.handleChown(id, msg.Raw)
	case protocol.VerbKickban:
		h.handleKickban(id, msg.Raw)
	case protocol.VerbUnban:
		h.handleUnban(id, msg.Raw)
	case protocol.VerbDevices:
		// Accepted for client compatibility; carries nothing we relay.
	default:
		h.logger.WithFields(logging.Fields{
			"client_id": id,
			"verb":      msg.Verb,
		}).Debug("Unknown verb")
	}
}

// sendTo enqueues one serialized message for a client without ever blocking.
// A full queue means the consumer is too slow to keep its view consistent, so
// the connection is dropped.
func (h *Hub) sendTo(id string, payload []byte) {
	var slow chan []byte

	h.queuesMu.RLock()
	if queue, ok := h.queues[id]; ok {
		select {
		case queue <- payload:
			h.metrics.MessagesOut.Inc()
		default:
			slow = queue
		}
	}
	h.queuesMu.RUnlock()

	if slow != nil {
		h.metrics.SlowConsumers.Inc()
		h.logger.WithField("client_id", id).Warn("Outbound queue full, dropping connection")
		go h.dropConnection(id, slow)
	}
}

// sendFrames serializes a batch for a single recipient.
func (h *Hub) sendFrames(id string, frames ...interface{}) {
	payload, err := protocol.EncodeBatch(frames...)
	if err != nil {
		h.logger.WithError(err).Error("Failed to encode frames")
		return
	}
	h.sendTo(id, payload)
}

// broadcastChannel fans a batch out to a channel's members, serializing once.
// The recipient set is a snapshot; members joining mid-broadcast catch up
// through the state they read on join.
func (h *Hub) broadcastChannel(channelID, excludeID string, frames ...interface{}) {
	ch, ok := h.registry.GetChannel(channelID)
	if !ok {
		return
	}

	payload, err := protocol.EncodeBatch(frames...)
	if err != nil {
		h.logger.WithError(err).Error("Failed to encode broadcast")
		return
	}

	sent := 0
	for _, pid := range ch.ParticipantIDs() {
		if pid == excludeID {
			continue
		}
		h.sendTo(pid, payload)
		sent++
	}
	h.metrics.BroadcastFanout.Observe(float64(sent))
}

// broadcastList pushes a fresh complete channel snapshot to every list
// subscriber.
func (h *Hub) broadcastList() {
	subs := h.registry.LSSubscribers()
	if len(subs) == 0 {
		return
	}

	payload, err := protocol.EncodeBatch(protocol.NewChannelList(h.registry.VisibleChannels()))
	if err != nil {
		h.logger.WithError(err).Error("Failed to encode channel list")
		return
	}
	for _, id := range subs {
		h.sendTo(id, payload)
	}
}
