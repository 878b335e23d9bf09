package state

import (
	"sync"

	"pianoworks/shantyman/internal/quota"
)

// CursorThrottleMS is the minimum interval between relayed cursor updates per
// client; faster updates are dropped.
const CursorThrottleMS = 50

// Client is the private server-side record of one connected user: profile,
// current channel, cursor throttle, and note quota. The profile survives
// channel switches.
type Client struct {
	userID string

	mu          sync.Mutex
	profile     *Participant
	channelID   string
	lastMove    int64
	quota       *quota.Quota
	quotaWarned bool
}

// NewClient creates the record for a user id.
func NewClient(userID string) *Client {
	return &Client{
		userID: userID,
		quota:  quota.New(),
	}
}

// UserID returns the public identity.
func (c *Client) UserID() string {
	return c.userID
}

// Profile returns the participant projection, creating the anonymous default
// on first use.
func (c *Client) Profile() Participant {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.profile == nil {
		p := NewParticipant(c.userID)
		c.profile = &p
	}
	return *c.profile
}

// HasProfile reports whether the client ever introduced itself.
func (c *Client) HasProfile() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profile != nil
}

// SetProfile updates the stored name and color. An empty color keeps the
// current one. Fails when no profile exists yet.
func (c *Client) SetProfile(name, color string) (Participant, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.profile == nil {
		return Participant{}, false
	}
	c.profile.Name = name
	if color != "" {
		c.profile.Color = color
	}
	return *c.profile, true
}

// SetCursor records the cursor position on the profile.
func (c *Client) SetCursor(x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.profile == nil {
		return
	}
	c.profile.X = x
	c.profile.Y = y
}

// ChannelID returns the channel the client currently occupies, or "".
func (c *Client) ChannelID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channelID
}

// SetChannelID records the client's current channel.
func (c *Client) SetChannelID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.channelID = id
}

// ThrottleCursor reports whether a cursor update at time now may be relayed,
// recording it when allowed.
func (c *Client) ThrottleCursor(now int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastMove != 0 && now-c.lastMove < CursorThrottleMS {
		return false
	}
	c.lastMove = now
	return true
}

// SpendQuota charges for count notes. firstDenial is true only for the first
// refused spend since the last success or refill, so callers can warn once
// per denial window instead of per message.
func (c *Client) SpendQuota(count int) (ok, firstDenial bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.quota.Spend(count) {
		c.quotaWarned = false
		return true, false
	}
	first := !c.quotaWarned
	c.quotaWarned = true
	return false, first
}

// TickQuota advances the quota by one refill interval.
func (c *Client) TickQuota() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quota.Tick()
	c.quotaWarned = false
}

// QuotaParams returns the advertised quota parameters.
func (c *Client) QuotaParams() (allowance, max, histLen int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quota.Params()
}
