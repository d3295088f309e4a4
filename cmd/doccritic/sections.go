package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/doccritic/internal/section"
)

func newSectionsCmd() *cobra.Command {
	var redactEnabled bool

	cmd := &cobra.Command{
		Use:   "sections <document>",
		Short: "Extract document sections for individual review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSections(args[0], redactEnabled)
		},
	}
	cmd.Flags().BoolVar(&redactEnabled, "redact", true, "Redact secrets before persisting")
	return cmd
}

func runSections(docPath string, redactEnabled bool) error {
	doc, err := loadDocument(docPath, redactEnabled)
	if err != nil {
		return exitError(3, "failed to load document: %v", err)
	}

	sections, err := section.Split(doc)
	if err != nil {
		if errors.Is(err, section.ErrEmptyDocument) {
			return exitError(3, "document is empty: %s", docPath)
		}
		return exitError(3, "failed to split document: %v", err)
	}

	store := reviewStore(docPath)
	for _, sec := range sections {
		if err := store.PutSection(sec.Slug(), sec.Full()); err != nil {
			return fmt.Errorf("persist section %s: %w", sec.Slug(), err)
		}
	}

	fmt.Printf("Extracted %d sections\n", len(sections))
	for _, sec := range sections {
		fmt.Printf("  %s\n", sec.Slug())
	}
	return nil
}
