// Package feedback extracts structured findings from free-text review
// responses. Parsing is defined purely by fixed severity markers and a
// stop-at-next-marker rule, so it has no dependency on any particular
// markdown structure in the response.
package feedback

// Severity indicates the weight of a finding.
type Severity string

const (
	SeverityCritical   Severity = "CRITICAL"
	SeverityWarning    Severity = "WARNING"
	SeveritySuggestion Severity = "SUGGESTION"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityWarning, SeveritySuggestion:
		return true
	}
	return false
}

// Blocking reports whether a finding of this severity should block approval
// or count toward convergence. Suggestions never block.
func (s Severity) Blocking() bool {
	return s == SeverityCritical || s == SeverityWarning
}

// Finding is one parsed issue from a review response. Findings exist only as
// parse results; they have no identity beyond their position in the list.
type Finding struct {
	Severity     Severity
	Description  string
	Acknowledged bool // a human marked the finding [ACKNOWLEDGED] in a prior round
}

// ReviewResult is the outcome of a single review invocation.
// Never mutated after creation.
type ReviewResult struct {
	Findings       []Finding
	Raw            string // response text preserved verbatim
	Approved       bool   // response contained the approval sentinel
	Success        bool   // false if the invocation failed or timed out
	ContinuityLost bool   // prior session could not be resumed; a fresh one was used
	Session        string // session handle for continuing the conversation
}

// Count returns the number of findings with the given severity.
func (r ReviewResult) Count(sev Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == sev {
			n++
		}
	}
	return n
}

// Unacknowledged returns the number of findings not marked acknowledged.
// This is the count tracked per round for convergence detection.
func (r ReviewResult) Unacknowledged() int {
	n := 0
	for _, f := range r.Findings {
		if !f.Acknowledged {
			n++
		}
	}
	return n
}
