package state

// CrownGraceMS is how long a dropped crown stays reserved for its previous
// holder. The previous holder may reclaim at any time; everyone else has to
// wait out the window.
const CrownGraceMS = 15000

// Position is a cursor coordinate pair recorded on crown movements.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Crown is the transferable moderation token of a regular channel. With
// ParticipantID set the crown is held. With only UserID set it is dropped and
// waiting to be reclaimed; Time then marks the moment of the drop. Special
// channels carry no crown at all.
type Crown struct {
	ParticipantID string   `json:"participantId,omitempty"`
	UserID        string   `json:"userId,omitempty"`
	Time          int64    `json:"time"`
	StartPos      Position `json:"startPos"`
	EndPos        Position `json:"endPos"`
}

// Held reports whether any participant currently wears the crown.
func (c *Crown) Held() bool {
	return c.ParticipantID != ""
}

// HeldBy reports whether participantID wears the crown.
func (c *Crown) HeldBy(participantID string) bool {
	return c.ParticipantID != "" && c.ParticipantID == participantID
}

// ClaimableBy reports whether userID may pick up the crown at time now.
func (c *Crown) ClaimableBy(userID string, now int64) bool {
	if c.Held() {
		return false
	}
	if c.UserID != "" && c.UserID == userID {
		return true
	}
	return now-c.Time >= CrownGraceMS
}

func (c *Crown) claim(p Participant) {
	c.ParticipantID = p.ID
	c.UserID = p.UserID
}

// dropAt releases the crown at the holder's cursor, as when the holder gives
// it up deliberately.
func (c *Crown) dropAt(holder Participant, now int64) {
	c.ParticipantID = ""
	c.UserID = holder.UserID
	c.Time = now
	c.StartPos = Position{X: holder.X, Y: holder.Y}
	c.EndPos = Position{X: holder.X, Y: holder.Y}
}

// dropOnLeave releases the crown without touching its position, as when the
// holder leaves or disconnects.
func (c *Crown) dropOnLeave(userID string, now int64) {
	c.ParticipantID = ""
	c.UserID = userID
	c.Time = now
}

func (c *Crown) transfer(from, to Participant, now int64) {
	c.ParticipantID = to.ID
	c.UserID = to.UserID
	c.Time = now
	c.StartPos = Position{X: from.X, Y: from.Y}
	c.EndPos = Position{X: to.X, Y: to.Y}
}
