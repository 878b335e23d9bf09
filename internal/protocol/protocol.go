// Package protocol defines the relay's wire format: every WebSocket text
// message is a JSON array of frames, and every frame is an object whose "m"
// key names the verb.
package protocol

import "encoding/json"

// Verbs accepted from clients.
const (
	VerbHello       = "hi"
	VerbBye         = "bye"
	VerbSubscribe   = "+ls"
	VerbUnsubscribe = "-ls"
	VerbTime        = "t"
	VerbChat        = "a"
	VerbNote        = "n"
	VerbCursor      = "m"
	VerbUserset     = "userset"
	VerbJoin        = "ch"
	VerbChset       = "chset"
	VerbChown       = "chown"
	VerbKickban     = "kickban"
	VerbUnban       = "unban"
	VerbDevices     = "devices"
)

// Verbs only the server emits.
const (
	VerbQuota        = "nq"
	VerbList         = "ls"
	VerbHistory      = "c"
	VerbPresence     = "p"
	VerbNotification = "notification"
)

// Inbound is one element of a client batch, decoded just far enough to route.
type Inbound struct {
	Verb string
	Raw  json.RawMessage
}

// DecodeBatch splits a text frame into routable elements. A malformed payload
// yields no elements; elements that are not objects or lack a string "m" are
// skipped while the rest of the batch survives.
func DecodeBatch(data []byte) []Inbound {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil
	}

	out := make([]Inbound, 0, len(raws))
	for _, raw := range raws {
		var envelope struct {
			M string `json:"m"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil || envelope.M == "" {
			continue
		}
		out = append(out, Inbound{Verb: envelope.M, Raw: raw})
	}
	return out
}

// EncodeBatch serializes frames into one wire message.
func EncodeBatch(frames ...interface{}) ([]byte, error) {
	return json.Marshal(frames)
}
