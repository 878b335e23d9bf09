package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientProfileLazyDefault(t *testing.T) {
	c := NewClient("aabbccddeeff001122334455")
	assert.False(t, c.HasProfile())

	_, ok := c.SetProfile("Nils", "#112233")
	assert.False(t, ok, "a profile must exist before it can be renamed")

	p := c.Profile()
	assert.True(t, c.HasProfile())
	assert.Equal(t, "aabbccddeeff001122334455", p.ID)
	assert.Equal(t, "Anonymous", p.Name)
	assert.Equal(t, "#aabbcc", p.Color)

	got, ok := c.SetProfile("Nils", "")
	require.True(t, ok)
	assert.Equal(t, "Nils", got.Name)
	assert.Equal(t, "#aabbcc", got.Color, "empty color keeps the derived one")
}

func TestClientCursorThrottle(t *testing.T) {
	c := NewClient("user1")

	assert.True(t, c.ThrottleCursor(1000))
	assert.False(t, c.ThrottleCursor(1000+CursorThrottleMS-1))
	assert.True(t, c.ThrottleCursor(1000+CursorThrottleMS))
	assert.False(t, c.ThrottleCursor(1000+CursorThrottleMS+10))
}

func TestClientQuotaWarnOncePerDenialWindow(t *testing.T) {
	c := NewClient("user1")

	ok, _ := c.SpendQuota(200)
	require.True(t, ok, "the initial pool covers 200 notes")

	ok, first := c.SpendQuota(1)
	require.False(t, ok)
	assert.True(t, first, "the first refusal of a window warns")

	ok, first = c.SpendQuota(1)
	require.False(t, ok)
	assert.False(t, first, "repeat refusals stay silent")

	// A refill opens a new window.
	c.TickQuota()
	ok, _ = c.SpendQuota(1)
	require.True(t, ok)

	ok, first = c.SpendQuota(10000)
	require.False(t, ok)
	assert.True(t, first)
}

func TestClientChannelTracking(t *testing.T) {
	c := NewClient("user1")
	assert.Empty(t, c.ChannelID())

	c.SetChannelID("my room")
	assert.Equal(t, "my room", c.ChannelID())

	c.SetChannelID("")
	assert.Empty(t, c.ChannelID())
}

func TestClientQuotaParams(t *testing.T) {
	c := NewClient("user1")
	allowance, max, histLen := c.QuotaParams()
	assert.Equal(t, 6, allowance)
	assert.Equal(t, 600, max)
	assert.Equal(t, 3, histLen)
}
