// Package artifact persists review outputs so external tooling can read
// them. The core never touches the filesystem directly; every write is a
// mapping from (pass, section-or-document, round) to content through the
// Store interface.
package artifact

// Store persists review artifacts. Round artifacts are written once per
// (section, round) pair; writers never append to an existing round.
type Store interface {
	// PutSection stores an extracted section's full text (context included).
	PutSection(slug, content string) error
	// PutPass1 stores the raw pass-1 feedback for one section.
	PutPass1(slug, content string) error
	// PutPass2 stores the holistic pass-2 feedback for the whole document.
	PutPass2(content string) error
	// PutRound stores one iteration round's raw feedback for a section.
	PutRound(slug string, round int, content string) error
	// PutIterationSummary stores the round-by-round summary for a section.
	PutIterationSummary(slug, content string) error
	// PutSession stores the latest session handle for a section so an
	// external caller can resume the conversation.
	PutSession(slug, handle string) error
	// ResetIteration clears any previous iteration artifacts for a section.
	// Called before round 1 so stale rounds never mix with a new run.
	ResetIteration(slug string) error
}
