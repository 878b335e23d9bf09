package state

import (
	"sort"
	"sync"
)

// Ban records a user's exclusion from one channel.
type Ban struct {
	ChannelID string
	Expiry    int64
}

// Registry is the top-level relay state: channels, clients, channel-list
// subscribers, and bans. Lookups take the read lock only; per-channel
// mutation happens under the channel's own lock. Where both locks nest, the
// registry lock is taken first.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]*Channel
	clients  map[string]*Client
	lsSubs   map[string]struct{}
	bans     map[string]Ban
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		channels: make(map[string]*Channel),
		clients:  make(map[string]*Client),
		lsSubs:   make(map[string]struct{}),
		bans:     make(map[string]Ban),
	}
}

// Clients

// GetOrCreateClient returns the record for a user id, creating it on first
// sight. A reconnecting user keeps their profile and quota.
func (r *Registry) GetOrCreateClient(userID string) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clients[userID]; ok {
		return c
	}
	c := NewClient(userID)
	r.clients[userID] = c
	return c
}

// GetClient looks up a connected client.
func (r *Registry) GetClient(userID string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[userID]
	return c, ok
}

// RemoveClient atomically takes a client out of the registry. The boolean
// makes concurrent teardowns race safely: only one caller wins the removal.
func (r *Registry) RemoveClient(userID string) (*Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[userID]
	if !ok {
		return nil, false
	}
	delete(r.clients, userID)
	return c, true
}

// Clients returns a snapshot of all connected clients.
func (r *Registry) Clients() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	return out
}

// ClientCount returns the number of connected clients.
func (r *Registry) ClientCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Channels

// GetChannel looks up a live channel.
func (r *Registry) GetChannel(id string) (*Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.channels[id]
	return ch, ok
}

// GetOrCreateChannel returns the channel with the given id, creating it if
// absent. creatorUserID seeds the crown of a newly created regular channel.
func (r *Registry) GetOrCreateChannel(id, creatorUserID string, now int64) (*Channel, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ch, ok := r.channels[id]; ok {
		return ch, false
	}
	ch := NewChannel(id, creatorUserID, now)
	r.channels[id] = ch
	return ch, true
}

// DeleteChannelIfEmpty removes an unoccupied regular channel. The channel is
// tombstoned under both locks, so a join racing the deletion either lands
// before the emptiness check or observes the tombstone and retries against a
// fresh channel.
func (r *Registry) DeleteChannelIfEmpty(id string) bool {
	if IsSpecial(id) {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.channels[id]
	if !ok {
		return false
	}
	if !ch.killIfEmpty() {
		return false
	}
	delete(r.channels, id)
	return true
}

// ChannelCount returns the number of live channels.
func (r *Registry) ChannelCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels)
}

// VisibleChannels returns list entries for all visible channels, ordered by
// id for stable output.
func (r *Registry) VisibleChannels() []ChannelInfo {
	r.mu.RLock()
	snapshot := make([]*Channel, 0, len(r.channels))
	for _, ch := range r.channels {
		snapshot = append(snapshot, ch)
	}
	r.mu.RUnlock()

	out := make([]ChannelInfo, 0, len(snapshot))
	for _, ch := range snapshot {
		info := ch.Info()
		if !info.Settings.Visible {
			continue
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Channel-list subscriptions

// SubscribeLS adds a client to the channel-list feed. Subscribing twice is
// the same as subscribing once.
func (r *Registry) SubscribeLS(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lsSubs[userID] = struct{}{}
}

// UnsubscribeLS removes a client from the channel-list feed.
func (r *Registry) UnsubscribeLS(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.lsSubs, userID)
}

// LSSubscribers returns the subscribed client ids.
func (r *Registry) LSSubscribers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.lsSubs))
	for id := range r.lsSubs {
		out = append(out, id)
	}
	return out
}

// Bans

// SetBan records a user's exclusion from a channel until expiry, replacing
// any previous ban for that user.
func (r *Registry) SetBan(userID, channelID string, expiry int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bans[userID] = Ban{ChannelID: channelID, Expiry: expiry}
}

// RemoveBan lifts a user's ban, but only the one for the given channel.
func (r *Registry) RemoveBan(userID, channelID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bans[userID]
	if !ok || b.ChannelID != channelID {
		return false
	}
	delete(r.bans, userID)
	return true
}

// ActiveBan reports whether userID is currently banned from channelID.
// Expired bans are deleted lazily on the way through.
func (r *Registry) ActiveBan(userID, channelID string, now int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bans[userID]
	if !ok {
		return false
	}
	if b.Expiry <= now {
		delete(r.bans, userID)
		return false
	}
	return b.ChannelID == channelID
}
