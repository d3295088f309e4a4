// Package section splits a design document into ordered, individually
// reviewable sections. Each section carries enough shared context (document
// title plus a table of contents) that it can be reviewed in isolation
// without losing orientation.
package section

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dshills/doccritic/internal/document"
)

// ErrEmptyDocument is returned when the input document has no content.
var ErrEmptyDocument = errors.New("section: empty document")

// Section is one extracted portion of a document. Immutable once extracted.
type Section struct {
	Name    string // heading text
	Ordinal int    // 1-based position in the document
	Content string // raw section text, heading included
	Context string // shared header: document title + table of contents
}

// Full returns the section content with its shared context prepended,
// which is what gets sent for review.
func (s Section) Full() string {
	return s.Context + s.Content
}

// Slug returns a filesystem-safe identifier for the section,
// e.g. "03-data-model".
func (s Section) Slug() string {
	return fmt.Sprintf("%02d-%s", s.Ordinal, slugify(s.Name))
}

var (
	tocNamePattern = regexp.MustCompile(`(?i)^(table of contents|toc|contents)$`)
	nonSlugPattern = regexp.MustCompile(`[^a-z0-9]+`)
)

func slugify(name string) string {
	return strings.Trim(nonSlugPattern.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

// Split segments a document into ordered sections. It splits on H2 headings,
// falling back to H3 (common in task-list plans), then H1; a document with no
// heading boundaries at all becomes a single whole-document section. A
// table-of-contents section is dropped from the result.
func Split(doc *document.Document) ([]Section, error) {
	if doc == nil || strings.TrimSpace(doc.Raw) == "" {
		return nil, ErrEmptyDocument
	}

	title := docTitle(doc.Lines)

	sections := splitOnHeading(doc.Lines, 2, title)
	if len(sections) == 0 {
		sections = splitOnHeading(doc.Lines, 3, title)
	}
	if len(sections) == 0 {
		sections = splitOnHeading(doc.Lines, 1, title)
	}
	if len(sections) == 0 {
		sections = []Section{{Name: "full-document", Content: doc.Raw}}
	}

	filtered := sections[:0]
	for _, s := range sections {
		if tocNamePattern.MatchString(strings.TrimSpace(s.Name)) {
			continue
		}
		filtered = append(filtered, s)
	}
	sections = filtered

	ctx := contextHeader(title, sections)
	for i := range sections {
		sections[i].Ordinal = i + 1
		sections[i].Context = ctx
	}
	return sections, nil
}

// docTitle returns the first H1 line, or a placeholder when absent.
func docTitle(lines []string) string {
	for _, line := range lines {
		if strings.HasPrefix(line, "# ") {
			return line
		}
	}
	return "# Untitled Document"
}

// contextHeader builds the shared preamble prepended to every section.
func contextHeader(title string, sections []Section) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")
	if len(sections) > 0 {
		b.WriteString("## Document Structure\n")
		for _, s := range sections {
			fmt.Fprintf(&b, "- %s\n", s.Name)
		}
		b.WriteString("\n")
	}
	b.WriteString("---\n")
	b.WriteString("*The following is one section from the above document, extracted for focused review.*\n")
	b.WriteString("---\n\n")
	return b.String()
}

func splitOnHeading(lines []string, level int, title string) []Section {
	prefix := strings.Repeat("#", level) + " "
	var sections []Section
	var name string
	var body []string
	started := false

	flush := func() {
		if started {
			sections = append(sections, Section{
				Name:    name,
				Content: strings.Join(body, "\n"),
			})
		}
	}

	for _, line := range lines {
		if strings.HasPrefix(line, prefix) && !(level == 1 && line == title) {
			flush()
			started = true
			name = strings.TrimSpace(strings.TrimPrefix(line, prefix))
			body = []string{line}
			continue
		}
		if started {
			body = append(body, line)
		}
	}
	flush()
	return sections
}
