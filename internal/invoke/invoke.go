// Package invoke wraps a single call to the external review agent: it builds
// the outbound prompt from a role template, enforces the per-invocation
// timeout, and handles session-continuity fallback.
package invoke

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/doccritic/internal/agent"
	"github.com/dshills/doccritic/internal/artifact"
	"github.com/dshills/doccritic/internal/feedback"
	"github.com/dshills/doccritic/internal/role"
)

// DefaultTimeout is the per-invocation deadline for section reviews.
const DefaultTimeout = 120 * time.Second

// HolisticTimeout is the longer default for full-document reviews.
const HolisticTimeout = 180 * time.Second

// Request describes one review invocation. Constructed per call; not
// persisted beyond it.
type Request struct {
	Role    role.Role
	Content string // section or full-document text
	Slug    string // artifact identifier for persistence; may be empty

	// Session is the prior-session handle to continue; empty starts fresh.
	Session string

	// Context is reference material (related documents, requirements) the
	// reviewer should read before the content under review.
	Context string

	// PriorFindings are the previous round's findings, carried so the agent
	// can classify each as resolved or unresolved.
	PriorFindings []feedback.Finding

	// FeedbackContext is accumulated feedback embedded ahead of the content,
	// used by the holistic pass to verify resolution.
	FeedbackContext string

	// Followup is appended after the content; round 1 of an iteration uses it
	// to frame the multi-round protocol.
	Followup string
}

// Invoker performs review invocations against a Reviewer, persisting session
// handles through the artifact store when one is configured.
type Invoker struct {
	reviewer agent.Reviewer
	store    artifact.Store
	log      *zap.Logger
}

// New creates an Invoker. store may be nil when nothing should be persisted.
func New(reviewer agent.Reviewer, store artifact.Store, log *zap.Logger) *Invoker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Invoker{reviewer: reviewer, store: store, log: log}
}

// Invoke runs one review call with the given timeout. Timeouts and agent
// failures are recoverable and come back as a result with Success=false; the
// returned error is reserved for caller cancellation and configuration
// problems (unknown role), in which case no result is produced.
func (iv *Invoker) Invoke(ctx context.Context, req Request, timeout time.Duration) (feedback.ReviewResult, error) {
	prompt, err := BuildPrompt(req)
	if err != nil {
		return feedback.ReviewResult{}, err
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	resp, err := iv.callWithTimeout(ctx, agent.Request{Prompt: prompt, Session: req.Session}, timeout)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return feedback.ReviewResult{}, err
		}
		iv.log.Warn("invocation failed", zap.String("slug", req.Slug), zap.Error(err))
		return feedback.ReviewResult{Success: false}, nil
	}

	continuityLost := false
	if resp.ContinuityLost {
		// The prior session is gone. Retry once with a fresh, contextless
		// session and the same content; the caller sees the loss via the
		// result flag, never as a failure.
		iv.log.Warn("session continuity lost, retrying fresh", zap.String("slug", req.Slug))
		continuityLost = true
		resp, err = iv.callWithTimeout(ctx, agent.Request{Prompt: prompt}, timeout)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return feedback.ReviewResult{}, err
			}
			return feedback.ReviewResult{ContinuityLost: true, Success: false}, nil
		}
	}

	if resp.TimedOut {
		iv.log.Warn("invocation timed out",
			zap.String("slug", req.Slug), zap.Duration("timeout", timeout))
		return feedback.ReviewResult{ContinuityLost: continuityLost, Success: false}, nil
	}

	result := feedback.Parse(resp.Text)
	result.Session = resp.Session
	result.ContinuityLost = continuityLost

	if iv.store != nil && req.Slug != "" && resp.Session != "" {
		if err := iv.store.PutSession(req.Slug, resp.Session); err != nil {
			iv.log.Warn("persist session handle", zap.String("slug", req.Slug), zap.Error(err))
		}
	}
	return result, nil
}

// callWithTimeout scopes one agent call under its own deadline. The deadline
// context is always cancelled on exit so the underlying invocation is
// released on every path.
func (iv *Invoker) callWithTimeout(ctx context.Context, req agent.Request, timeout time.Duration) (agent.Response, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := iv.reviewer.Review(callCtx, req)
	if err != nil && errors.Is(ctx.Err(), context.Canceled) {
		return agent.Response{}, fmt.Errorf("invoke: %w", context.Canceled)
	}
	return resp, err
}
