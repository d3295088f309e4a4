package feedback

import "strings"

// ApprovalSentinel is the exact phrase a reviewer emits to approve a section.
// Matching is case-sensitive.
const ApprovalSentinel = "SECTION APPROVED"

// AckMarker flags a finding a human has reviewed and accepted as-is.
const AckMarker = "[ACKNOWLEDGED]"

var markers = []Severity{SeverityCritical, SeverityWarning, SeveritySuggestion}

// Parse scans free-text review feedback for severity markers and the approval
// sentinel. It never fails: marker-free or malformed text yields a result
// with zero findings and the raw text preserved verbatim.
func Parse(raw string) ReviewResult {
	result := ReviewResult{
		Raw:      raw,
		Approved: strings.Contains(raw, ApprovalSentinel),
		Success:  true,
	}

	var cur *Finding
	var desc []string

	flush := func() {
		if cur == nil {
			return
		}
		cur.Description = strings.TrimSpace(strings.Join(desc, "\n"))
		cur.Acknowledged = strings.Contains(cur.Description, AckMarker)
		result.Findings = append(result.Findings, *cur)
		cur = nil
		desc = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		if sev, rest, ok := matchMarker(line); ok {
			flush()
			cur = &Finding{Severity: sev}
			desc = []string{rest}
			continue
		}
		if cur != nil {
			desc = append(desc, line)
		}
	}
	flush()

	return result
}

// matchMarker reports whether a line begins a finding. Leading whitespace and
// list bullets are tolerated; the marker itself must be an exact
// "<SEVERITY>:" prefix.
func matchMarker(line string) (Severity, string, bool) {
	trimmed := strings.TrimLeft(line, " \t")
	trimmed = strings.TrimLeft(trimmed, "-*")
	trimmed = strings.TrimLeft(trimmed, " ")
	for _, sev := range markers {
		prefix := string(sev) + ":"
		if strings.HasPrefix(trimmed, prefix) {
			return sev, strings.TrimSpace(strings.TrimPrefix(trimmed, prefix)), true
		}
	}
	return "", "", false
}
