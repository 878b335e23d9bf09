package state

// Participant is the public projection of a client inside a channel. The id
// and _id fields carry the same value; clients key channel members by id and
// ban/crown bookkeeping by _id.
type Participant struct {
	ID     string  `json:"id"`
	UserID string  `json:"_id"`
	Name   string  `json:"name"`
	Color  string  `json:"color"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// NewParticipant builds the default projection for a user id: anonymous, with
// a color derived from the id so the palette is stable per user.
func NewParticipant(userID string) Participant {
	return Participant{
		ID:     userID,
		UserID: userID,
		Name:   "Anonymous",
		Color:  defaultColor(userID),
	}
}

func defaultColor(userID string) string {
	if len(userID) >= 6 {
		return "#" + userID[:6]
	}
	return "#777777"
}
