// Package render produces the Markdown bodies of persisted review artifacts.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/dshills/doccritic/internal/feedback"
)

// SectionReview renders a pass-1 per-section feedback artifact.
func SectionReview(sectionName, roleName, raw string, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Section Review: %s\n", sectionName)
	fmt.Fprintf(&b, "**Review role**: %s\n", roleName)
	fmt.Fprintf(&b, "**Date**: %s\n\n", at.UTC().Format(time.RFC3339))
	b.WriteString(raw)
	b.WriteString("\n")
	return b.String()
}

// Holistic renders the pass-2 full-document feedback artifact.
func Holistic(docName string, pass1Included bool, raw string, at time.Time) string {
	included := "no"
	if pass1Included {
		included = "yes"
	}
	var b strings.Builder
	b.WriteString("# Holistic Review\n")
	fmt.Fprintf(&b, "**Date**: %s\n", at.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "**Document**: %s\n", docName)
	fmt.Fprintf(&b, "**Pass 1 feedback included**: %s\n\n", included)
	b.WriteString(raw)
	b.WriteString("\n")
	return b.String()
}

// Round renders one iteration round's feedback artifact.
func Round(sectionName, roleName string, round int, raw string, at time.Time) string {
	var b strings.Builder
	if round == 1 {
		b.WriteString("# Iteration Round 1: Initial Review\n")
		fmt.Fprintf(&b, "**Section**: %s\n", sectionName)
		fmt.Fprintf(&b, "**Review role**: %s\n", roleName)
	} else {
		fmt.Fprintf(&b, "# Iteration Round %d\n", round)
	}
	fmt.Fprintf(&b, "**Date**: %s\n\n", at.UTC().Format(time.RFC3339))
	b.WriteString(raw)
	b.WriteString("\n")
	return b.String()
}

// RoundCount is one entry in an iteration summary.
type RoundCount struct {
	Round          int
	Unacknowledged int
	Success        bool
	ContinuityLost bool
}

// IterationSummary renders the per-section summary artifact: round-by-round
// unacknowledged finding counts and the final termination reason.
func IterationSummary(sectionName, roleName, reason string, rounds []RoundCount) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Iteration Summary: %s\n\n", sectionName)
	fmt.Fprintf(&b, "- **Review role**: %s\n", roleName)
	fmt.Fprintf(&b, "- **Termination**: %s\n\n", reason)
	b.WriteString("## Round History\n")
	for _, rc := range rounds {
		switch {
		case !rc.Success:
			fmt.Fprintf(&b, "- round %02d: invocation failed\n", rc.Round)
		case rc.ContinuityLost:
			fmt.Fprintf(&b, "- round %02d: %d unacknowledged findings (session reset)\n", rc.Round, rc.Unacknowledged)
		default:
			fmt.Fprintf(&b, "- round %02d: %d unacknowledged findings\n", rc.Round, rc.Unacknowledged)
		}
	}
	return b.String()
}

// Findings renders parsed findings grouped by severity, for terminal output.
func Findings(result feedback.ReviewResult) string {
	var b strings.Builder
	for _, sev := range []feedback.Severity{feedback.SeverityCritical, feedback.SeverityWarning, feedback.SeveritySuggestion} {
		for _, f := range result.Findings {
			if f.Severity != sev {
				continue
			}
			ack := ""
			if f.Acknowledged {
				ack = " (acknowledged)"
			}
			fmt.Fprintf(&b, "%s%s: %s\n", f.Severity, ack, firstLine(f.Description))
		}
	}
	if result.Approved {
		b.WriteString(feedback.ApprovalSentinel + "\n")
	}
	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
