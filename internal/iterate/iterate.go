// Package iterate drives multi-round review of a single section against a
// continuous agent session. The controller is externally driven: it never
// revises content itself, it only sequences rounds between caller-provided
// revisions, tracking issue counts and detecting approval, stagnation, and
// convergence stalls.
package iterate

import (
	"errors"
	"time"

	"github.com/dshills/doccritic/internal/feedback"
	"github.com/dshills/doccritic/internal/role"
)

// Reason records why iteration stopped.
type Reason string

const (
	NotTerminated    Reason = "NOT_TERMINATED"
	Approved         Reason = "APPROVED"
	MaxRoundsReached Reason = "MAX_ROUNDS_REACHED"
	Stagnant         Reason = "STAGNANT"
)

func (r Reason) Valid() bool {
	switch r {
	case NotTerminated, Approved, MaxRoundsReached, Stagnant:
		return true
	}
	return false
}

// Terminal reports whether the reason ends iteration.
func (r Reason) Terminal() bool { return r != NotTerminated }

// ErrTerminated is returned when a round is requested after termination.
var ErrTerminated = errors.New("iterate: iteration already terminated")

// ErrStagnant is surfaced to the top-level caller when two consecutive
// rounds fail unrecoverably.
var ErrStagnant = errors.New("iterate: review stagnant after consecutive failures")

// DefaultMaxRounds caps iteration when the caller does not say otherwise.
const DefaultMaxRounds = 3

// Options configures one section's iteration.
type Options struct {
	Role      role.Role
	MaxRounds int           // default DefaultMaxRounds
	Timeout   time.Duration // per-round invocation deadline
	Context   string        // reference material carried into every round
}

// Round is the recorded outcome of one iteration round.
type Round struct {
	Number             int
	Result             feedback.ReviewResult
	Unacknowledged     int  // finding count excluding acknowledged findings
	ContinuityLost     bool // the session was replaced during this round
	ConvergenceWarning bool // unacknowledged count stopped decreasing
}

// State is the iteration history for one section. Rounds are append-only and
// round-ordered; Reason is NotTerminated for every round except possibly the
// last.
type State struct {
	Rounds  []Round
	Session string // current session handle; empty when none
	Reason  Reason
}

// CurrentRound returns the number of completed rounds.
func (s State) CurrentRound() int { return len(s.Rounds) }

// Counts returns the per-round unacknowledged finding counts in round order.
func (s State) Counts() []int {
	counts := make([]int, len(s.Rounds))
	for i, r := range s.Rounds {
		counts[i] = r.Unacknowledged
	}
	return counts
}
