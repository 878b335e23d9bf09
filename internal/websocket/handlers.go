package websocket

import (
	"encoding/json"

	"pianoworks/shantyman/internal/metrics"
	"pianoworks/shantyman/internal/protocol"
	"pianoworks/shantyman/internal/state"
	"pianoworks/shantyman/pkg/logging"
)

// handleHello replies with the client's own projection and the quota
// parameters. Saying hi twice is harmless; the profile persists.
func (h *Hub) handleHello(id string) {
	client, ok := h.registry.GetClient(id)
	if !ok {
		return
	}

	p := client.Profile()
	allowance, max, histLen := client.QuotaParams()
	h.sendFrames(id,
		protocol.NewHello(p, nowMS(), h.cfg.MOTD),
		protocol.NewQuotaParams(allowance, max, histLen),
	)
}

// handleSubscribeList puts the client on the channel-list feed and primes it
// with a complete snapshot.
func (h *Hub) handleSubscribeList(id string) {
	h.registry.SubscribeLS(id)
	h.sendFrames(id, protocol.NewChannelList(h.registry.VisibleChannels()))
}

func (h *Hub) handleUnsubscribeList(id string) {
	h.registry.UnsubscribeLS(id)
}

// handleTime answers a clock sync probe, echoing the client payload next to
// the server time.
func (h *Hub) handleTime(id string, raw json.RawMessage) {
	echo, ok := protocol.DecodeTime(raw)
	if !ok {
		return
	}
	h.sendFrames(id, protocol.NewTimeReply(nowMS(), echo))
}

// handleChat appends to the channel backlog and broadcasts to everyone in the
// room, sender included.
func (h *Hub) handleChat(id string, raw json.RawMessage) {
	text, ok := protocol.DecodeChat(raw)
	if !ok {
		return
	}
	client, ok := h.registry.GetClient(id)
	if !ok {
		return
	}
	channelID := client.ChannelID()
	if channelID == "" {
		return
	}
	ch, ok := h.registry.GetChannel(channelID)
	if !ok {
		return
	}
	if !ch.Settings().Chat {
		return
	}
	p, ok := ch.Participant(id)
	if !ok {
		return
	}

	msg := state.ChatMessage{
		M: protocol.VerbChat,
		A: text,
		P: state.ChatAuthor{ID: p.ID, Name: p.Name, Color: p.Color},
		T: nowMS(),
	}
	ch.AppendChat(msg)
	h.broadcastChannel(channelID, "", msg)
}

// handleNote charges the quota, then relays the batch to everyone else in the
// room. The quota is charged before any channel checks, so channel-less
// spamming still drains it.
func (h *Hub) handleNote(id string, raw json.RawMessage) {
	notes, ok := protocol.DecodeNotes(raw)
	if !ok {
		return
	}
	client, ok := h.registry.GetClient(id)
	if !ok {
		return
	}

	spent, firstDenial := client.SpendQuota(len(notes))
	if !spent {
		h.metrics.NoteBatches.WithLabelValues(metrics.OutcomeDenied).Inc()
		if firstDenial {
			h.sendFrames(id, protocol.ThrottleNotification())
		}
		return
	}

	channelID := client.ChannelID()
	if channelID == "" {
		return
	}
	ch, ok := h.registry.GetChannel(channelID)
	if !ok {
		return
	}
	if ch.Settings().Crownsolo && !ch.HoldsCrown(id) {
		h.metrics.NoteBatches.WithLabelValues(metrics.OutcomeBlocked).Inc()
		return
	}

	h.metrics.NoteBatches.WithLabelValues(metrics.OutcomeRelayed).Inc()
	h.broadcastChannel(channelID, id, protocol.NewNoteBroadcast(nowMS(), notes, id))
}

// handleCursor relays a cursor move to the rest of the room, rate limited per
// client.
func (h *Hub) handleCursor(id string, raw json.RawMessage) {
	x, y, ok := protocol.DecodeCursor(raw)
	if !ok {
		return
	}
	client, ok := h.registry.GetClient(id)
	if !ok {
		return
	}
	if !client.ThrottleCursor(nowMS()) {
		return
	}
	client.SetCursor(x, y)

	channelID := client.ChannelID()
	if channelID == "" {
		return
	}
	ch, ok := h.registry.GetChannel(channelID)
	if !ok {
		return
	}
	if !ch.SetCursor(id, x, y) {
		return
	}
	h.broadcastChannel(channelID, id, protocol.NewCursorUpdate(id, x, y))
}

// handleUserset updates the client's public profile and announces it to the
// room, sender included.
func (h *Hub) handleUserset(id string, raw json.RawMessage) {
	name, color, ok := protocol.DecodeUserset(raw)
	if !ok {
		return
	}
	client, ok := h.registry.GetClient(id)
	if !ok {
		return
	}
	if _, ok := client.SetProfile(name, color); !ok {
		return
	}

	channelID := client.ChannelID()
	if channelID == "" {
		return
	}
	ch, ok := h.registry.GetChannel(channelID)
	if !ok {
		return
	}
	updated, ok := ch.SetProfile(id, name, color)
	if !ok {
		return
	}
	h.broadcastChannel(channelID, "", protocol.NewPresence(updated))
}

func (h *Hub) handleJoin(id string, raw json.RawMessage) {
	target, ok := protocol.DecodeJoin(raw)
	if !ok {
		return
	}
	h.joinChannel(id, target)
}

// joinChannel moves a client into a channel, enforcing bans, capacity, and
// crown claims. Also the landing path for kickban's forced move.
func (h *Hub) joinChannel(id, target string) {
	client, ok := h.registry.GetClient(id)
	if !ok {
		return
	}
	now := nowMS()

	if h.registry.ActiveBan(id, target, now) {
		target = state.BanChannelID
	}

	if oldID := client.ChannelID(); oldID != "" && oldID != target {
		h.leaveChannel(id, oldID)
		client.SetChannelID("")
	}

	p := client.Profile()
	for {
		ch, created := h.registry.GetOrCreateChannel(target, id, now)
		joined, claimed, alive := ch.Join(p, now)
		if !alive {
			// Lost a race against deletion; the next lookup recreates.
			continue
		}
		if created {
			kind := metrics.KindNormal
			if ch.Special() {
				kind = metrics.KindSpecial
			}
			h.metrics.Channels.WithLabelValues(kind).Inc()
		}
		if !joined {
			// Channel full; the client stays channel-less.
			break
		}

		client.SetChannelID(target)
		if claimed {
			h.logger.WithFields(logging.Fields{
				"client_id": id,
				"channel":   target,
			}).Debug("Crown claimed on join")
		}

		meta, ppl := ch.Snapshot()
		h.sendFrames(id,
			protocol.NewChannelUpdate(meta, ppl, id),
			protocol.NewChatHistory(ch.ChatHistory()),
		)
		if joinedP, ok := ch.Participant(id); ok {
			h.broadcastChannel(target, id, protocol.NewPresence(joinedP))
		}
		break
	}

	h.broadcastList()
}

// handleChset lets the crown holder reconfigure a regular channel.
func (h *Hub) handleChset(id string, raw json.RawMessage) {
	patch, ok := protocol.DecodeChset(raw)
	if !ok {
		return
	}
	ch, ok := h.crownChannel(id)
	if !ok {
		return
	}

	if !ch.UpdateSettings(patch) {
		return
	}
	meta, ppl := ch.Snapshot()
	h.broadcastChannel(ch.ID(), "", protocol.NewChannelUpdate(meta, ppl, ""))
	h.broadcastList()
}

// handleChown transfers the crown to another member, or drops it at the
// holder's cursor when no target is given.
func (h *Hub) handleChown(id string, raw json.RawMessage) {
	target, hasTarget, ok := protocol.DecodeChown(raw)
	if !ok {
		return
	}
	ch, ok := h.crownChannel(id)
	if !ok {
		return
	}
	now := nowMS()

	if hasTarget {
		if !ch.TransferCrown(id, target, now) {
			return
		}
	} else {
		if !ch.DropCrown(id, now) {
			return
		}
	}

	meta, ppl := ch.Snapshot()
	h.broadcastChannel(ch.ID(), "", protocol.NewChannelUpdate(meta, ppl, ""))
	h.broadcastList()
}

// handleKickban bans a fellow participant from the channel and exiles them to
// the ban channel.
func (h *Hub) handleKickban(id string, raw json.RawMessage) {
	target, ms, ok := protocol.DecodeKickban(raw)
	if !ok {
		return
	}
	ch, ok := h.crownChannel(id)
	if !ok {
		return
	}
	channelID := ch.ID()

	// The target must be in the banner's channel right now.
	targetClient, ok := h.registry.GetClient(target)
	if !ok || targetClient.ChannelID() != channelID {
		return
	}
	targetP, ok := ch.Participant(target)
	if !ok {
		return
	}
	bannerP, ok := ch.Participant(id)
	if !ok {
		return
	}

	now := nowMS()
	seconds := ms / 1000
	h.registry.SetBan(target, channelID, now+ms)

	h.joinChannel(target, state.BanChannelID)
	h.sendFrames(target, protocol.BanNotification(now, channelID, seconds))

	announcement := protocol.BanAnnouncement(now, bannerP.Name, targetP.Name, seconds)
	if target == id {
		announcement = protocol.SelfBanAnnouncement(now, bannerP.Name)
	}
	h.broadcastChannel(channelID, "", announcement)

	h.logger.WithFields(logging.Fields{
		"client_id": id,
		"target":    target,
		"channel":   channelID,
		"ms":        ms,
	}).Info("Participant kickbanned")
}

// handleUnban lifts the target's ban for the holder's channel.
func (h *Hub) handleUnban(id string, raw json.RawMessage) {
	target, ok := protocol.DecodeUnban(raw)
	if !ok {
		return
	}
	ch, ok := h.crownChannel(id)
	if !ok {
		return
	}

	if h.registry.RemoveBan(target, ch.ID()) {
		h.broadcastChannel(ch.ID(), "", protocol.UnbanAnnouncement(nowMS(), target))
	}
}

// crownChannel resolves the caller's channel when the caller wears its crown.
// Special channels have no crown, so moderation verbs never fire there.
func (h *Hub) crownChannel(id string) (*state.Channel, bool) {
	client, ok := h.registry.GetClient(id)
	if !ok {
		return nil, false
	}
	channelID := client.ChannelID()
	if channelID == "" {
		return nil, false
	}
	ch, ok := h.registry.GetChannel(channelID)
	if !ok {
		return nil, false
	}
	if ch.Special() || !ch.HoldsCrown(id) {
		return nil, false
	}
	return ch, true
}
