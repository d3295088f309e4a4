// Package agent defines the external review agent boundary and its
// implementations. The agent is an opaque capability: given a prompt and an
// optional prior-session handle it returns free-text feedback. Modeling it as
// an interface keeps process management out of the orchestration layers and
// lets tests simulate timeouts and continuity loss.
package agent

import "context"

// Request is one outbound call to the review agent.
type Request struct {
	Prompt  string
	Session string // prior-session handle; empty starts a fresh session
}

// Response is the agent's reply.
type Response struct {
	Text           string
	Session        string // handle usable to continue this conversation
	ContinuityLost bool   // the prior session could not be resumed
	TimedOut       bool   // the agent did not respond before the deadline
}

// Reviewer invokes the external review agent. A Response with TimedOut or
// ContinuityLost set is a recoverable outcome, not an error; errors are
// reserved for unrecoverable invocation failures.
type Reviewer interface {
	Review(ctx context.Context, req Request) (Response, error)
	Name() string
}
