package render

import (
	"strings"
	"testing"
	"time"

	"github.com/dshills/doccritic/internal/feedback"
)

var testTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func TestSectionReview(t *testing.T) {
	got := SectionReview("Data Model", "architecture", "CRITICAL: x", testTime)
	for _, want := range []string{
		"# Section Review: Data Model",
		"**Review role**: architecture",
		"2026-03-14T09:30:00Z",
		"CRITICAL: x",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestHolistic(t *testing.T) {
	got := Holistic("design.md", true, "feedback body", testTime)
	if !strings.Contains(got, "**Pass 1 feedback included**: yes") {
		t.Error("pass-1 inclusion not recorded")
	}
	got = Holistic("design.md", false, "feedback body", testTime)
	if !strings.Contains(got, "**Pass 1 feedback included**: no") {
		t.Error("pass-1 exclusion not recorded")
	}
}

func TestRoundHeaders(t *testing.T) {
	first := Round("Data Model", "data", 1, "raw", testTime)
	if !strings.Contains(first, "Iteration Round 1: Initial Review") {
		t.Error("round 1 uses the initial-review header")
	}
	if !strings.Contains(first, "**Section**: Data Model") {
		t.Error("round 1 names the section")
	}

	later := Round("Data Model", "data", 3, "raw", testTime)
	if !strings.Contains(later, "# Iteration Round 3") {
		t.Error("later rounds use the plain round header")
	}
	if strings.Contains(later, "**Section**") {
		t.Error("later rounds omit the section header")
	}
}

func TestIterationSummary(t *testing.T) {
	got := IterationSummary("Data Model", "data", "MAX_ROUNDS_REACHED", []RoundCount{
		{Round: 1, Unacknowledged: 5, Success: true},
		{Round: 2, Unacknowledged: 5, Success: true, ContinuityLost: true},
		{Round: 3, Success: false},
	})
	for _, want := range []string{
		"# Iteration Summary: Data Model",
		"**Termination**: MAX_ROUNDS_REACHED",
		"round 01: 5 unacknowledged findings",
		"round 02: 5 unacknowledged findings (session reset)",
		"round 03: invocation failed",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestFindings(t *testing.T) {
	result := feedback.ReviewResult{
		Findings: []feedback.Finding{
			{Severity: feedback.SeveritySuggestion, Description: "rename it"},
			{Severity: feedback.SeverityCritical, Description: "race condition\nlong detail"},
			{Severity: feedback.SeverityWarning, Description: "fragile default", Acknowledged: true},
		},
		Approved: true,
	}
	got := Findings(result)
	lines := strings.Split(strings.TrimSpace(got), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), got)
	}
	// Critical first, only the first line of a multi-line description.
	if lines[0] != "CRITICAL: race condition" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if lines[1] != "WARNING (acknowledged): fragile default" {
		t.Errorf("line 1 = %q", lines[1])
	}
	if lines[3] != feedback.ApprovalSentinel {
		t.Errorf("line 3 = %q", lines[3])
	}
}
