package section

import (
	"errors"
	"strings"
	"testing"

	"github.com/dshills/doccritic/internal/document"
)

const sampleDoc = `# My Design

intro paragraph

## Overview

overview body

## Data Model

data model body

## Deployment

deployment body
`

func TestSplitH2(t *testing.T) {
	sections, err := Split(document.New("design.md", sampleDoc))
	if err != nil {
		t.Fatal(err)
	}
	if len(sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(sections))
	}

	wantNames := []string{"Overview", "Data Model", "Deployment"}
	for i, want := range wantNames {
		if sections[i].Name != want {
			t.Errorf("section %d: got %q, want %q", i, sections[i].Name, want)
		}
		if sections[i].Ordinal != i+1 {
			t.Errorf("section %d: ordinal = %d", i, sections[i].Ordinal)
		}
	}
}

// Concatenating section contents reconstructs the document body below the
// first boundary, modulo the injected context.
func TestSplitReconstruction(t *testing.T) {
	sections, err := Split(document.New("design.md", sampleDoc))
	if err != nil {
		t.Fatal(err)
	}
	var parts []string
	for _, s := range sections {
		parts = append(parts, s.Content)
	}
	joined := strings.Join(parts, "\n")
	if !strings.Contains(sampleDoc, joined) {
		t.Errorf("concatenated sections do not reconstruct document:\n%s", joined)
	}
}

func TestSplitContext(t *testing.T) {
	sections, err := Split(document.New("design.md", sampleDoc))
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range sections {
		if !strings.Contains(s.Context, "# My Design") {
			t.Errorf("section %q context missing title", s.Name)
		}
		for _, name := range []string{"Overview", "Data Model", "Deployment"} {
			if !strings.Contains(s.Context, "- "+name) {
				t.Errorf("section %q context missing TOC entry %q", s.Name, name)
			}
		}
		if !strings.HasPrefix(s.Full(), s.Context) {
			t.Errorf("Full() must prepend context")
		}
	}
}

func TestSplitH3Fallback(t *testing.T) {
	doc := document.New("tasks.md", "# Plan\n\n### Task 1\na\n\n### Task 2\nb\n")
	sections, err := Split(doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections via H3 fallback, got %d", len(sections))
	}
	if sections[0].Name != "Task 1" || sections[1].Name != "Task 2" {
		t.Errorf("unexpected names: %q, %q", sections[0].Name, sections[1].Name)
	}
}

func TestSplitH1Fallback(t *testing.T) {
	doc := document.New("multi.md", "# First\na\n\n# Second\nb\n")
	sections, err := Split(doc)
	if err != nil {
		t.Fatal(err)
	}
	// "# First" is the document title, so only "Second" becomes a section.
	if len(sections) != 1 || sections[0].Name != "Second" {
		t.Fatalf("unexpected sections: %+v", sections)
	}
}

func TestSplitNoHeadings(t *testing.T) {
	doc := document.New("plain.md", "just prose\nwith no headings\n")
	sections, err := Split(doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(sections) != 1 {
		t.Fatalf("expected whole-document section, got %d", len(sections))
	}
	if sections[0].Name != "full-document" {
		t.Errorf("unexpected name: %q", sections[0].Name)
	}
	if !strings.Contains(sections[0].Content, "just prose") {
		t.Error("whole document content missing")
	}
}

func TestSplitFiltersTOC(t *testing.T) {
	doc := document.New("toc.md", "# T\n\n## Table of Contents\n- x\n\n## Real\nbody\n")
	sections, err := Split(doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(sections) != 1 || sections[0].Name != "Real" {
		t.Fatalf("TOC section should be filtered, got %+v", sections)
	}
}

func TestSplitEmpty(t *testing.T) {
	for _, raw := range []string{"", "   \n\t\n"} {
		_, err := Split(document.New("empty.md", raw))
		if !errors.Is(err, ErrEmptyDocument) {
			t.Errorf("raw %q: expected ErrEmptyDocument, got %v", raw, err)
		}
	}
	if _, err := Split(nil); !errors.Is(err, ErrEmptyDocument) {
		t.Errorf("nil document: expected ErrEmptyDocument, got %v", err)
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		name    string
		ordinal int
		want    string
	}{
		{"Data Model", 2, "02-data-model"},
		{"3. API & Wire Format", 3, "03-3-api-wire-format"},
		{"Overview", 1, "01-overview"},
	}
	for _, tt := range tests {
		s := Section{Name: tt.name, Ordinal: tt.ordinal}
		if got := s.Slug(); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
