// Package quota implements the per-client note rate limiter.
//
// A quota is a pool of points spent per note and refilled once per second.
// The recent per-tick balances are kept in a short history; when that history
// sums to zero the client has been flat out of points for a while, and every
// subsequent note costs a multiple of its normal price until the pool
// recovers. Sustained flooding therefore throttles harder than a brief burst.
package quota

// Default parameters, also advertised to clients in the nq frame.
const (
	DefaultPoints     = 200
	DefaultAllowance  = 6
	DefaultMax        = 600
	DefaultMaxHistLen = 3
)

// Quota tracks one client's note budget. It is not safe for concurrent use;
// callers serialize access.
type Quota struct {
	points    int
	initial   int
	allowance int
	max       int
	histLen   int
	history   []int
}

// New returns a quota with the relay's default parameters.
func New() *Quota {
	return NewWithParams(DefaultPoints, DefaultAllowance, DefaultMax, DefaultMaxHistLen)
}

// NewWithParams returns a quota with explicit parameters.
func NewWithParams(points, allowance, max, histLen int) *Quota {
	q := &Quota{
		points:    points,
		initial:   points,
		allowance: allowance,
		max:       max,
		histLen:   histLen,
	}
	// The history starts full so a fresh client is not treated as exhausted.
	q.history = make([]int, histLen)
	for i := range q.history {
		q.history[i] = points
	}
	return q
}

// Tick records the current balance in the history and refills the pool by the
// initial point grant, clamped at max. Called once per second.
func (q *Quota) Tick() {
	q.history = append([]int{q.points}, q.history...)
	if len(q.history) > q.histLen {
		q.history = q.history[:q.histLen]
	}

	if q.points < q.max {
		q.points += q.initial
		if q.points > q.max {
			q.points = q.max
		}
	}
}

// Spend deducts the cost of relaying count notes. When the recent history
// sums to zero the cost is multiplied by the allowance factor. A spend that
// would overdraw the pool is refused without mutating it.
func (q *Quota) Spend(count int) bool {
	needed := count
	sum := 0
	for _, h := range q.history {
		sum += h
	}
	if sum <= 0 {
		needed *= q.allowance
	}

	if q.points < needed {
		return false
	}
	q.points -= needed
	return true
}

// Points returns the current balance.
func (q *Quota) Points() int {
	return q.points
}

// Params returns the advertised parameters: allowance factor, point ceiling,
// and history length.
func (q *Quota) Params() (allowance, max, histLen int) {
	return q.allowance, q.max, q.histLen
}
