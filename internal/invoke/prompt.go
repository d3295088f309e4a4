package invoke

import (
	"fmt"
	"strings"

	"github.com/dshills/doccritic/internal/feedback"
	"github.com/dshills/doccritic/internal/role"
)

// BuildPrompt assembles the outbound prompt: role template, focus areas,
// carried feedback context, prior findings, and the content under review.
func BuildPrompt(req Request) (string, error) {
	def, err := role.Load(req.Role)
	if err != nil {
		return "", fmt.Errorf("invoke.BuildPrompt: %w", err)
	}

	var b strings.Builder
	b.WriteString(strings.TrimSpace(def.Template))
	b.WriteString("\n")

	if len(def.Focus) > 0 {
		b.WriteString("\nFocus areas:\n")
		for _, f := range def.Focus {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}

	if req.Context != "" {
		b.WriteString("\n## Reference Context\n\n")
		b.WriteString(strings.TrimSpace(req.Context))
		b.WriteString("\n")
	}

	if req.FeedbackContext != "" {
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(req.FeedbackContext))
		b.WriteString("\n")
	}

	if len(req.PriorFindings) > 0 {
		b.WriteString("\n## Previous Findings\n\n")
		b.WriteString("The content below was revised based on your previous feedback. For each\n")
		b.WriteString("finding, classify it as RESOLVED, UNRESOLVED, or SUPERSEDED, then report\n")
		b.WriteString("any new issues using the same severity markers. If no critical or warning\n")
		b.WriteString("issues remain, state exactly: " + feedback.ApprovalSentinel + "\n\n")
		for _, f := range req.PriorFindings {
			fmt.Fprintf(&b, "- %s: %s\n", f.Severity, f.Description)
		}
	}

	b.WriteString("\n---\n\n")
	b.WriteString(contentHeading(req))
	b.WriteString("\n\n")
	b.WriteString(req.Content)

	if req.Followup != "" {
		b.WriteString("\n\n---\n\n")
		b.WriteString(strings.TrimSpace(req.Followup))
		b.WriteString("\n")
	}
	return b.String(), nil
}

// PriorFindingsFrom re-extracts the findings recorded in a persisted round
// artifact, so an externally driven round can carry them forward.
func PriorFindingsFrom(raw string) []feedback.Finding {
	return feedback.Parse(raw).Findings
}

func contentHeading(req Request) string {
	switch {
	case req.Role == role.RoleHolistic:
		return "## Full Document to Review"
	case len(req.PriorFindings) > 0:
		return "## Revised Section"
	default:
		return "## Document Section to Review"
	}
}
