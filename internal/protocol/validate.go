package protocol

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Wire limits, all in Unicode code points.
const (
	MaxChannelIDLen = 512
	MaxChatLen      = 512
	MaxNameLen      = 40
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ValidColor reports whether s is a #rrggbb hex color.
func ValidColor(s string) bool {
	return colorPattern.MatchString(s)
}

// ValidChannelID enforces the channel naming policy: non-empty, at most 512
// code points, no control characters.
func ValidChannelID(id string) bool {
	if id == "" || utf8.RuneCountInString(id) > MaxChannelIDLen {
		return false
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// SanitizeChat trims surrounding whitespace and truncates overlong messages.
// Messages that are empty after trimming are refused.
func SanitizeChat(s string) (string, bool) {
	t := strings.TrimSpace(s)
	if t == "" {
		return "", false
	}
	return truncateRunes(t, MaxChatLen), true
}

// SanitizeName trims surrounding whitespace and refuses names that are empty
// or too long.
func SanitizeName(s string) (string, bool) {
	t := strings.TrimSpace(s)
	if t == "" || utf8.RuneCountInString(t) > MaxNameLen {
		return "", false
	}
	return t, true
}

// ParseCoord reads a cursor coordinate, accepting a JSON number or a numeric
// string. NaN and infinities are refused so they cannot reach re-encoding.
func ParseCoord(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
