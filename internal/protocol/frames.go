package protocol

import (
	"encoding/json"
	"fmt"

	"pianoworks/shantyman/internal/state"
)

// Version is the protocol version reported in the hello reply.
const Version = "1.0.0"

// Hello greets a client with its own projection and the server time.
type Hello struct {
	M    string            `json:"m"`
	U    state.Participant `json:"u"`
	T    int64             `json:"t"`
	V    string            `json:"v"`
	MOTD string            `json:"motd,omitempty"`
}

// NewHello builds the hi reply.
func NewHello(p state.Participant, now int64, motd string) Hello {
	return Hello{M: VerbHello, U: p, T: now, V: Version, MOTD: motd}
}

// QuotaParams advertises the note quota so clients can pace themselves.
type QuotaParams struct {
	M          string `json:"m"`
	Allowance  int    `json:"allowance"`
	Max        int    `json:"max"`
	MaxHistLen int    `json:"maxHistLen"`
}

// NewQuotaParams builds the nq frame.
func NewQuotaParams(allowance, max, histLen int) QuotaParams {
	return QuotaParams{M: VerbQuota, Allowance: allowance, Max: max, MaxHistLen: histLen}
}

// TimeReply answers a time sync request, echoing the client payload.
type TimeReply struct {
	M string          `json:"m"`
	T int64           `json:"t"`
	E json.RawMessage `json:"e"`
}

// NewTimeReply builds the t reply.
func NewTimeReply(now int64, echo json.RawMessage) TimeReply {
	return TimeReply{M: VerbTime, T: now, E: echo}
}

// ChannelList is a complete snapshot of the visible channels.
type ChannelList struct {
	M        string              `json:"m"`
	Complete bool                `json:"c"`
	U        []state.ChannelInfo `json:"u"`
}

// NewChannelList builds the ls frame.
func NewChannelList(channels []state.ChannelInfo) ChannelList {
	return ChannelList{M: VerbList, Complete: true, U: channels}
}

// ChannelUpdate describes one channel: header, member list, and optionally
// the recipient's own participant id.
type ChannelUpdate struct {
	M   string              `json:"m"`
	Ch  state.ChannelMeta   `json:"ch"`
	PPL []state.Participant `json:"ppl"`
	P   string              `json:"p,omitempty"`
}

// NewChannelUpdate builds the ch frame. self is empty in broadcasts.
func NewChannelUpdate(meta state.ChannelMeta, ppl []state.Participant, self string) ChannelUpdate {
	return ChannelUpdate{M: VerbJoin, Ch: meta, PPL: ppl, P: self}
}

// ChatHistory delivers the chat backlog on join.
type ChatHistory struct {
	M string              `json:"m"`
	C []state.ChatMessage `json:"c"`
}

// NewChatHistory builds the c frame.
func NewChatHistory(history []state.ChatMessage) ChatHistory {
	if history == nil {
		history = []state.ChatMessage{}
	}
	return ChatHistory{M: VerbHistory, C: history}
}

// Presence announces a participant's appearance or profile change.
type Presence struct {
	M string `json:"m"`
	state.Participant
}

// NewPresence builds the p frame.
func NewPresence(p state.Participant) Presence {
	return Presence{M: VerbPresence, Participant: p}
}

// PresenceLeave announces a participant's departure.
type PresenceLeave struct {
	M string `json:"m"`
	P string `json:"p"`
}

// NewPresenceLeave builds the bye frame.
func NewPresenceLeave(participantID string) PresenceLeave {
	return PresenceLeave{M: VerbBye, P: participantID}
}

// CursorUpdate relays a participant's cursor movement.
type CursorUpdate struct {
	M  string  `json:"m"`
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// NewCursorUpdate builds the m frame.
func NewCursorUpdate(participantID string, x, y float64) CursorUpdate {
	return CursorUpdate{M: VerbCursor, ID: participantID, X: x, Y: y}
}

// NoteBroadcast relays a note batch with the server receive time.
type NoteBroadcast struct {
	M string `json:"m"`
	T int64  `json:"t"`
	N []Note `json:"n"`
	P string `json:"p"`
}

// NewNoteBroadcast builds the n frame.
func NewNoteBroadcast(now int64, notes []Note, participantID string) NoteBroadcast {
	return NoteBroadcast{M: VerbNote, T: now, N: notes, P: participantID}
}

// Notification is a transient client-side message box.
type Notification struct {
	M        string `json:"m"`
	ID       string `json:"id,omitempty"`
	Title    string `json:"title,omitempty"`
	Text     string `json:"text"`
	Class    string `json:"class"`
	Duration int64  `json:"duration"`
}

// ThrottleNotification warns a client its notes are being dropped.
func ThrottleNotification() Notification {
	return Notification{
		M:        VerbNotification,
		Text:     "You're playing too fast! Slow down.",
		Class:    "short",
		Duration: 2000,
	}
}

// BanNotification tells the banned user what happened.
func BanNotification(now int64, channelID string, seconds int64) Notification {
	return Notification{
		M:        VerbNotification,
		ID:       fmt.Sprintf("ban-%d", now),
		Text:     fmt.Sprintf("You have been banned from %s for %d seconds.", channelID, seconds),
		Class:    "short",
		Duration: 5000,
	}
}

// BanAnnouncement tells the channel who banned whom.
func BanAnnouncement(now int64, bannerName, targetName string, seconds int64) Notification {
	return Notification{
		M:        VerbNotification,
		ID:       fmt.Sprintf("ban-%d", now),
		Text:     fmt.Sprintf("%s banned %s for %d seconds.", bannerName, targetName, seconds),
		Class:    "short",
		Duration: 5000,
	}
}

// SelfBanAnnouncement covers the crown holder banning themselves.
func SelfBanAnnouncement(now int64, name string) Notification {
	return Notification{
		M:        VerbNotification,
		ID:       fmt.Sprintf("ban-%d", now),
		Text:     fmt.Sprintf("Let it be known that %s kickbanned him/her self.", name),
		Class:    "short",
		Duration: 5000,
	}
}

// UnbanAnnouncement tells the channel a ban was lifted.
func UnbanAnnouncement(now int64, targetUserID string) Notification {
	return Notification{
		M:        VerbNotification,
		ID:       fmt.Sprintf("unban-%d", now),
		Text:     fmt.Sprintf("Unbanned user %s", targetUserID),
		Class:    "short",
		Duration: 5000,
	}
}
