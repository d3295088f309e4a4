package iterate

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/doccritic/internal/artifact"
	"github.com/dshills/doccritic/internal/feedback"
	"github.com/dshills/doccritic/internal/invoke"
	"github.com/dshills/doccritic/internal/render"
)

// round1Followup frames the multi-round protocol for the opening review.
const round1Followup = `After your review, I will revise the section and show you the updated
version. You will then evaluate whether your concerns were addressed. We may
go through multiple rounds of this.`

// Controller runs the round state machine for one section. It owns the
// section's Session handle exclusively for the duration of the iteration;
// rounds are strictly sequential.
type Controller struct {
	name    string // section display name
	slug    string // artifact identifier
	invoker *invoke.Invoker
	store   artifact.Store
	opts    Options
	log     *zap.Logger

	state      State
	failStreak int // consecutive rounds whose invocation failed
}

// New creates a controller in the Created state. store may be nil to skip
// artifact persistence.
func New(name, slug string, invoker *invoke.Invoker, store artifact.Store, opts Options, log *zap.Logger) *Controller {
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = DefaultMaxRounds
	}
	if opts.Timeout <= 0 {
		opts.Timeout = invoke.DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		name:    name,
		slug:    slug,
		invoker: invoker,
		store:   store,
		opts:    opts,
		log:     log,
		state:   State{Reason: NotTerminated},
	}
}

// State returns a copy of the iteration history.
func (c *Controller) State() State {
	st := c.state
	st.Rounds = append([]Round(nil), c.state.Rounds...)
	return st
}

// Done reports whether iteration has reached a terminal state.
func (c *Controller) Done() bool { return c.state.Reason.Terminal() }

// Reason returns the current termination reason.
func (c *Controller) Reason() Reason { return c.state.Reason }

// Round executes the next review round against the given (possibly revised)
// section content. Round 1 starts a fresh session; later rounds continue the
// session from the previous round and carry its findings so the agent can
// classify each as resolved or not.
//
// A caller-cancelled invocation returns an error with the state untouched,
// as if the round never started. A failed invocation is retried once within
// the round; two consecutive failed rounds terminate with Stagnant.
func (c *Controller) Round(ctx context.Context, content string) (Round, error) {
	if c.Done() {
		return Round{}, ErrTerminated
	}

	num := len(c.state.Rounds) + 1
	req := invoke.Request{
		Role:    c.opts.Role,
		Content: content,
		Slug:    c.slug,
		Session: c.state.Session,
		Context: c.opts.Context,
	}
	if num == 1 {
		req.Followup = round1Followup
		if c.store != nil {
			if err := c.store.ResetIteration(c.slug); err != nil {
				return Round{}, err
			}
		}
	} else {
		req.PriorFindings = c.state.Rounds[num-2].Result.Findings
	}

	result, err := c.invoker.Invoke(ctx, req, c.opts.Timeout)
	if err != nil {
		return Round{}, err
	}
	if !result.Success {
		// One retry within the same round before the failure counts.
		c.log.Warn("round invocation failed, retrying",
			zap.String("section", c.slug), zap.Int("round", num))
		result, err = c.invoker.Invoke(ctx, req, c.opts.Timeout)
		if err != nil {
			return Round{}, err
		}
	}

	round := Round{
		Number:         num,
		Result:         result,
		Unacknowledged: result.Unacknowledged(),
		ContinuityLost: result.ContinuityLost,
	}

	// A replaced session is never reused, even when the reviewer handed back
	// no fresh handle to continue on.
	if result.ContinuityLost {
		c.state.Session = ""
	}

	if !result.Success {
		c.failStreak++
	} else {
		c.failStreak = 0
		if result.Session != "" {
			c.state.Session = result.Session
		}
	}

	// Convergence check: from round 3 on, compare against two rounds prior.
	if num >= 3 && result.Success {
		prior := c.state.Rounds[num-3].Unacknowledged
		if round.Unacknowledged >= prior {
			round.ConvergenceWarning = true
			c.log.Warn("findings not decreasing, manual intervention may be needed",
				zap.String("section", c.slug),
				zap.Int("round", num),
				zap.Int("count", round.Unacknowledged),
				zap.Int("two_rounds_prior", prior))
		}
	}

	c.state.Rounds = append(c.state.Rounds, round)

	switch {
	case c.failStreak >= 2:
		c.state.Reason = Stagnant
	case result.Approved:
		c.state.Reason = Approved
	case num >= c.opts.MaxRounds:
		c.state.Reason = MaxRoundsReached
	}

	if err := c.persist(round); err != nil {
		return round, err
	}
	if c.state.Reason == Stagnant {
		return round, fmt.Errorf("%w: section %s, rounds %d-%d", ErrStagnant, c.slug, num-1, num)
	}
	return round, nil
}

// persist writes the round artifact, and the summary once terminated.
// History is already recorded; a persistence failure never corrupts it.
func (c *Controller) persist(round Round) error {
	if c.store == nil {
		return nil
	}
	body := render.Round(c.name, string(c.opts.Role), round.Number, round.Result.Raw, time.Now())
	if err := c.store.PutRound(c.slug, round.Number, body); err != nil {
		return err
	}
	if c.state.Reason.Terminal() {
		return c.store.PutIterationSummary(c.slug, c.Summary())
	}
	return nil
}

// Summary renders the round-by-round unacknowledged counts and the final
// termination reason, so a human can decide whether to continue manually.
func (c *Controller) Summary() string {
	counts := make([]render.RoundCount, len(c.state.Rounds))
	for i, r := range c.state.Rounds {
		counts[i] = render.RoundCount{
			Round:          r.Number,
			Unacknowledged: r.Unacknowledged,
			Success:        r.Result.Success,
			ContinuityLost: r.ContinuityLost,
		}
	}
	return render.IterationSummary(c.name, string(c.opts.Role), string(c.state.Reason), counts)
}

// LastFindings returns the most recent round's findings, for callers that
// need them to guide the next revision.
func (c *Controller) LastFindings() []feedback.Finding {
	if len(c.state.Rounds) == 0 {
		return nil
	}
	return c.state.Rounds[len(c.state.Rounds)-1].Result.Findings
}
