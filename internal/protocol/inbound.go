package protocol

import (
	"encoding/json"

	"pianoworks/shantyman/internal/state"
)

// Ban duration bounds in milliseconds. A kickban without a duration gets the
// default; anything outside the range is clamped.
const (
	DefaultBanMS = 30 * 60 * 1000
	MaxBanMS     = 7 * 24 * 60 * 60 * 1000
)

// Note is one piano event inside an n frame, relayed as received.
type Note struct {
	Name     string          `json:"n"`
	Delay    *float64        `json:"d,omitempty"`
	Velocity *float64        `json:"v,omitempty"`
	Stop     json.RawMessage `json:"s,omitempty"`
}

// DecodeTime extracts the echo payload of a t frame. The payload is required.
func DecodeTime(raw json.RawMessage) (json.RawMessage, bool) {
	var req struct {
		E json.RawMessage `json:"e"`
	}
	if err := json.Unmarshal(raw, &req); err != nil || len(req.E) == 0 {
		return nil, false
	}
	return req.E, true
}

// DecodeJoin extracts and validates the target channel of a ch frame.
func DecodeJoin(raw json.RawMessage) (string, bool) {
	var req struct {
		ID *string `json:"_id"`
	}
	if err := json.Unmarshal(raw, &req); err != nil || req.ID == nil {
		return "", false
	}
	if !ValidChannelID(*req.ID) {
		return "", false
	}
	return *req.ID, true
}

// DecodeChat extracts and sanitizes the text of an a frame.
func DecodeChat(raw json.RawMessage) (string, bool) {
	var req struct {
		Message *string `json:"message"`
	}
	if err := json.Unmarshal(raw, &req); err != nil || req.Message == nil {
		return "", false
	}
	return SanitizeChat(*req.Message)
}

// DecodeNotes extracts the note list of an n frame. The whole frame is
// refused when any note is malformed.
func DecodeNotes(raw json.RawMessage) ([]Note, bool) {
	var req struct {
		N []Note `json:"n"`
	}
	if err := json.Unmarshal(raw, &req); err != nil || req.N == nil {
		return nil, false
	}
	for _, note := range req.N {
		if note.Name == "" {
			return nil, false
		}
		if note.Velocity != nil && (*note.Velocity < 0 || *note.Velocity > 1) {
			return nil, false
		}
	}
	return req.N, true
}

// DecodeCursor extracts the coordinates of an m frame. Coordinates arrive as
// numbers or numeric strings.
func DecodeCursor(raw json.RawMessage) (x, y float64, ok bool) {
	var req struct {
		X json.RawMessage `json:"x"`
		Y json.RawMessage `json:"y"`
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return 0, 0, false
	}
	x, ok = ParseCoord(req.X)
	if !ok {
		return 0, 0, false
	}
	y, ok = ParseCoord(req.Y)
	if !ok {
		return 0, 0, false
	}
	return x, y, true
}

// DecodeUserset extracts the profile update of a userset frame. The name is
// required; the color is optional and returned empty when absent.
func DecodeUserset(raw json.RawMessage) (name, color string, ok bool) {
	var req struct {
		Set *struct {
			Name  *string `json:"name"`
			Color *string `json:"color"`
		} `json:"set"`
	}
	if err := json.Unmarshal(raw, &req); err != nil || req.Set == nil || req.Set.Name == nil {
		return "", "", false
	}

	name, ok = SanitizeName(*req.Set.Name)
	if !ok {
		return "", "", false
	}
	if req.Set.Color != nil {
		if !ValidColor(*req.Set.Color) {
			return "", "", false
		}
		color = *req.Set.Color
	}
	return name, color, true
}

// DecodeChset extracts the settings patch of a chset frame. Only the allowed
// keys are read; unknown keys are ignored, but a provided key of the wrong
// shape refuses the whole frame.
func DecodeChset(raw json.RawMessage) (state.SettingsPatch, bool) {
	var req struct {
		Set map[string]json.RawMessage `json:"set"`
	}
	if err := json.Unmarshal(raw, &req); err != nil || req.Set == nil {
		return state.SettingsPatch{}, false
	}

	var patch state.SettingsPatch
	for key, value := range req.Set {
		switch key {
		case "color":
			var s string
			if err := json.Unmarshal(value, &s); err != nil || !ValidColor(s) {
				return state.SettingsPatch{}, false
			}
			patch.Color = &s
		case "visible":
			b, ok := decodeBool(value)
			if !ok {
				return state.SettingsPatch{}, false
			}
			patch.Visible = &b
		case "chat":
			b, ok := decodeBool(value)
			if !ok {
				return state.SettingsPatch{}, false
			}
			patch.Chat = &b
		case "crownsolo":
			b, ok := decodeBool(value)
			if !ok {
				return state.SettingsPatch{}, false
			}
			patch.Crownsolo = &b
		}
	}
	return patch, true
}

func decodeBool(raw json.RawMessage) (bool, bool) {
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, false
	}
	return b, true
}

// DecodeChown extracts the optional transfer target of a chown frame.
// hasTarget distinguishes a transfer from a voluntary drop.
func DecodeChown(raw json.RawMessage) (target string, hasTarget, ok bool) {
	var req struct {
		ID *string `json:"id"`
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return "", false, false
	}
	if req.ID == nil {
		return "", false, true
	}
	return *req.ID, true, true
}

// DecodeKickban extracts the target and clamped duration of a kickban frame.
func DecodeKickban(raw json.RawMessage) (target string, ms int64, ok bool) {
	var req struct {
		ID *string  `json:"_id"`
		MS *float64 `json:"ms"`
	}
	if err := json.Unmarshal(raw, &req); err != nil || req.ID == nil || *req.ID == "" {
		return "", 0, false
	}

	ms = DefaultBanMS
	if req.MS != nil {
		// Clamp before the int conversion; converting an out-of-range float
		// is implementation-defined.
		v := *req.MS
		if v < 0 {
			v = 0
		}
		if v > MaxBanMS {
			v = MaxBanMS
		}
		ms = int64(v)
	}
	return *req.ID, ms, true
}

// DecodeUnban extracts the target of an unban frame.
func DecodeUnban(raw json.RawMessage) (string, bool) {
	var req struct {
		ID *string `json:"_id"`
	}
	if err := json.Unmarshal(raw, &req); err != nil || req.ID == nil || *req.ID == "" {
		return "", false
	}
	return *req.ID, true
}
