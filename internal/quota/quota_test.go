package quota

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	q := New()
	allowance, max, histLen := q.Params()
	assert.Equal(t, DefaultAllowance, allowance)
	assert.Equal(t, DefaultMax, max)
	assert.Equal(t, DefaultMaxHistLen, histLen)
	assert.Equal(t, DefaultPoints, q.Points())
}

func TestSpendDeducts(t *testing.T) {
	q := New()
	require.True(t, q.Spend(25))
	assert.Equal(t, DefaultPoints-25, q.Points())
}

func TestSpendRefusesWithoutMutating(t *testing.T) {
	q := New()
	require.True(t, q.Spend(DefaultPoints))
	assert.Equal(t, 0, q.Points())

	assert.False(t, q.Spend(1))
	assert.Equal(t, 0, q.Points(), "refused spend must not change the balance")
}

func TestZeroCostAlwaysPasses(t *testing.T) {
	q := New()
	require.True(t, q.Spend(DefaultPoints))
	assert.True(t, q.Spend(0))
}

func TestTickRefillsByInitialGrant(t *testing.T) {
	q := New()
	require.True(t, q.Spend(150))
	assert.Equal(t, 50, q.Points())

	q.Tick()
	assert.Equal(t, 50+DefaultPoints, q.Points())
}

func TestTickClampsAtMax(t *testing.T) {
	q := New()
	for i := 0; i < 10; i++ {
		q.Tick()
	}
	assert.Equal(t, DefaultMax, q.Points())

	// At the ceiling a tick is a no-op.
	q.Tick()
	assert.Equal(t, DefaultMax, q.Points())
}

// drainToPenalty empties the balance at every tick until the history is all
// zeros, leaving a freshly refilled balance with the penalty active.
func drainToPenalty(t *testing.T, q *Quota) {
	t.Helper()
	_, _, histLen := q.Params()
	require.True(t, q.Spend(q.Points()))
	for i := 0; i < histLen-1; i++ {
		q.Tick()
		require.True(t, q.Spend(q.Points()))
	}
	q.Tick()
}

func TestExhaustionPenalty(t *testing.T) {
	q := New()
	drainToPenalty(t, q)

	// History is now all zeros: a single note costs allowance times as much.
	assert.Equal(t, DefaultPoints, q.Points())
	require.True(t, q.Spend(1))
	assert.Equal(t, DefaultPoints-DefaultAllowance, q.Points())
}

func TestPenaltyRefusesOverdraw(t *testing.T) {
	q := NewWithParams(10, 6, 30, 3)
	drainToPenalty(t, q)

	// Balance is 10, penalized cost of 2 notes is 12.
	assert.False(t, q.Spend(2))
	assert.Equal(t, 10, q.Points())
	assert.True(t, q.Spend(1))
	assert.Equal(t, 4, q.Points())
}

func TestRecoveryClearsPenalty(t *testing.T) {
	q := New()
	drainToPenalty(t, q)

	// Idle ticks push nonzero balances back into the history.
	q.Tick()
	q.Tick()

	before := q.Points()
	require.True(t, q.Spend(1))
	assert.Equal(t, before-1, q.Points(), "recovered quota charges face value")
}

func TestFreshQuotaIsNotPenalized(t *testing.T) {
	q := New()
	require.True(t, q.Spend(1))
	assert.Equal(t, DefaultPoints-1, q.Points())
}
