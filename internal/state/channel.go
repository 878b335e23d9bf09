package state

import (
	"sort"
	"strings"
	"sync"
)

const (
	// LobbyID is the default channel every fresh client is pointed at.
	LobbyID = "lobby"

	// BanChannelID is where banned join attempts land.
	BanChannelID = "test/awkward"

	// DefaultCapacity is the participant limit per channel.
	DefaultCapacity = 20

	// ChatHistoryMax bounds the retained chat backlog per channel.
	ChatHistoryMax = 32
)

// IsSpecial reports whether id names a built-in channel: such channels have
// frozen settings, no crown, and are never garbage collected.
func IsSpecial(id string) bool {
	return id == LobbyID || strings.HasPrefix(id, "test/")
}

// ChatMessage is one chat entry, both as broadcast and as history.
type ChatMessage struct {
	M string     `json:"m"`
	A string     `json:"a"`
	P ChatAuthor `json:"p"`
	T int64      `json:"t"`
}

// ChatAuthor is the reduced participant projection stored with a message.
type ChatAuthor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ChannelInfo is a channel-list entry.
type ChannelInfo struct {
	ID       string   `json:"_id"`
	Count    int      `json:"count"`
	Crown    *Crown   `json:"crown,omitempty"`
	Settings Settings `json:"settings"`
}

// ChannelMeta is the channel header sent in ch frames.
type ChannelMeta struct {
	ID       string   `json:"_id"`
	Settings Settings `json:"settings"`
	Crown    *Crown   `json:"crown,omitempty"`
}

// Channel is one named room: participants, settings, chat backlog, and crown.
// All access goes through methods holding the channel lock; the registry lock
// may be held around these calls but never the reverse.
type Channel struct {
	id string

	mu           sync.RWMutex
	dead         bool
	settings     Settings
	crown        *Crown
	participants map[string]*Participant
	chat         []ChatMessage
}

// NewChannel creates a channel with default settings. Regular channels start
// with a dropped crown owned by the creator, so the creator claims it on the
// join that follows creation.
func NewChannel(id, creatorUserID string, now int64) *Channel {
	ch := &Channel{
		id:           id,
		participants: make(map[string]*Participant),
	}
	if IsSpecial(id) {
		ch.settings = defaultSettings(true)
	} else {
		ch.settings = defaultSettings(false)
		ch.crown = &Crown{UserID: creatorUserID, Time: now}
	}
	return ch
}

// ID returns the channel name.
func (ch *Channel) ID() string {
	return ch.id
}

// Special reports whether this is a built-in channel.
func (ch *Channel) Special() bool {
	return IsSpecial(ch.id)
}

// Join inserts or refreshes a participant. New entrants are refused once the
// channel is full or deleted; a member rejoining always succeeds. claimed
// reports whether the joiner picked up the crown.
func (ch *Channel) Join(p Participant, now int64) (joined, claimed, alive bool) {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	if ch.dead {
		return false, false, false
	}
	if _, member := ch.participants[p.ID]; !member && len(ch.participants) >= DefaultCapacity {
		return false, false, true
	}

	cp := p
	ch.participants[p.ID] = &cp

	if ch.crown != nil && ch.crown.ClaimableBy(p.UserID, now) {
		ch.crown.claim(cp)
		claimed = true
	}
	return true, claimed, true
}

// Leave removes a participant, dropping any crown they held in place. empty
// reports whether the room is now unoccupied.
func (ch *Channel) Leave(participantID string, now int64) (removed, empty bool) {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	p, ok := ch.participants[participantID]
	if !ok {
		return false, len(ch.participants) == 0
	}
	delete(ch.participants, participantID)

	if ch.crown != nil && ch.crown.HeldBy(participantID) {
		ch.crown.dropOnLeave(p.UserID, now)
	}
	return true, len(ch.participants) == 0
}

// killIfEmpty tombstones an unoccupied channel so late joiners holding a
// stale pointer fail and retry. Returns whether the tombstone was placed.
func (ch *Channel) killIfEmpty() bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	if ch.dead || len(ch.participants) > 0 {
		return false
	}
	ch.dead = true
	return true
}

// Has reports whether participantID is a member.
func (ch *Channel) Has(participantID string) bool {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	_, ok := ch.participants[participantID]
	return ok
}

// Participant returns a copy of one member.
func (ch *Channel) Participant(participantID string) (Participant, bool) {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	p, ok := ch.participants[participantID]
	if !ok {
		return Participant{}, false
	}
	return *p, true
}

// Participants returns a snapshot of all members, ordered by id.
func (ch *Channel) Participants() []Participant {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	out := make([]Participant, 0, len(ch.participants))
	for _, p := range ch.participants {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ParticipantIDs returns the current member ids.
func (ch *Channel) ParticipantIDs() []string {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	out := make([]string, 0, len(ch.participants))
	for id := range ch.participants {
		out = append(out, id)
	}
	return out
}

// Count returns the number of members.
func (ch *Channel) Count() int {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return len(ch.participants)
}

// SetProfile updates a member's public name and color. An empty color keeps
// the current one.
func (ch *Channel) SetProfile(participantID, name, color string) (Participant, bool) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	p, ok := ch.participants[participantID]
	if !ok {
		return Participant{}, false
	}
	p.Name = name
	if color != "" {
		p.Color = color
	}
	return *p, true
}

// SetCursor moves a member's cursor.
func (ch *Channel) SetCursor(participantID string, x, y float64) bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	p, ok := ch.participants[participantID]
	if !ok {
		return false
	}
	p.X = x
	p.Y = y
	return true
}

// Crown returns a copy of the crown state, or nil for special channels.
func (ch *Channel) Crown() *Crown {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	if ch.crown == nil {
		return nil
	}
	c := *ch.crown
	return &c
}

// HoldsCrown reports whether participantID currently wears the crown.
func (ch *Channel) HoldsCrown(participantID string) bool {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return ch.crown != nil && ch.crown.HeldBy(participantID)
}

// DropCrown is the holder's voluntary release; the crown lands at the
// holder's cursor and starts its reclaim window.
func (ch *Channel) DropCrown(holderID string, now int64) bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.crown == nil || !ch.crown.HeldBy(holderID) {
		return false
	}
	holder, ok := ch.participants[holderID]
	if !ok {
		return false
	}
	ch.crown.dropAt(*holder, now)
	return true
}

// TransferCrown hands the crown from its holder to another member.
func (ch *Channel) TransferCrown(holderID, targetID string, now int64) bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.crown == nil || !ch.crown.HeldBy(holderID) {
		return false
	}
	holder, ok := ch.participants[holderID]
	if !ok {
		return false
	}
	target, ok := ch.participants[targetID]
	if !ok {
		return false
	}
	ch.crown.transfer(*holder, *target, now)
	return true
}

// AppendChat adds a message to the backlog, evicting the oldest entries
// beyond the cap.
func (ch *Channel) AppendChat(msg ChatMessage) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.chat = append(ch.chat, msg)
	if len(ch.chat) > ChatHistoryMax {
		ch.chat = ch.chat[len(ch.chat)-ChatHistoryMax:]
	}
}

// ChatHistory returns the backlog, oldest first.
func (ch *Channel) ChatHistory() []ChatMessage {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	out := make([]ChatMessage, len(ch.chat))
	copy(out, ch.chat)
	return out
}

// UpdateSettings merges a validated patch. Special channels are frozen.
func (ch *Channel) UpdateSettings(patch SettingsPatch) bool {
	if ch.Special() {
		return false
	}
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.settings.apply(patch)
	return true
}

// Settings returns a copy of the current settings.
func (ch *Channel) Settings() Settings {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return ch.settings
}

// Info returns the channel-list entry.
func (ch *Channel) Info() ChannelInfo {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	info := ChannelInfo{
		ID:       ch.id,
		Count:    len(ch.participants),
		Settings: ch.settings,
	}
	if ch.crown != nil {
		c := *ch.crown
		info.Crown = &c
	}
	return info
}

// Meta returns the ch-frame header.
func (ch *Channel) Meta() ChannelMeta {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	meta := ChannelMeta{
		ID:       ch.id,
		Settings: ch.settings,
	}
	if ch.crown != nil {
		c := *ch.crown
		meta.Crown = &c
	}
	return meta
}

// Snapshot returns the ch-frame header and the member list in one lock
// acquisition, so the pair is mutually consistent.
func (ch *Channel) Snapshot() (ChannelMeta, []Participant) {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	meta := ChannelMeta{
		ID:       ch.id,
		Settings: ch.settings,
	}
	if ch.crown != nil {
		c := *ch.crown
		meta.Crown = &c
	}

	ppl := make([]Participant, 0, len(ch.participants))
	for _, p := range ch.participants {
		ppl = append(ppl, *p)
	}
	sort.Slice(ppl, func(i, j int) bool { return ppl[i].ID < ppl[j].ID })

	return meta, ppl
}
