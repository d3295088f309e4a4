package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/doccritic/internal/feedback"
	"github.com/dshills/doccritic/internal/invoke"
	"github.com/dshills/doccritic/internal/pass"
	"github.com/dshills/doccritic/internal/render"
	"github.com/dshills/doccritic/internal/section"
)

type pass1Flags struct {
	roleName       string
	timeoutSeconds int
	workers        int
	redactEnabled  bool
	contextFiles   []string
}

func newPass1Cmd() *cobra.Command {
	f := &pass1Flags{}

	cmd := &cobra.Command{
		Use:   "pass1 <document>",
		Short: "Review every section independently (pass 1)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			timeout := resolveTimeout(f.timeoutSeconds, cmd.Flags().Changed("timeout"))
			return runPass1(args[0], f, timeout)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.roleName, "role", "architecture", "Review role: architecture, implementation, api, or data")
	flags.IntVar(&f.timeoutSeconds, "timeout", 120, "Per-invocation timeout in seconds")
	flags.IntVar(&f.workers, "workers", 1, "Concurrent section reviews (sections are independent)")
	flags.BoolVar(&f.redactEnabled, "redact", true, "Redact secrets before sending to the agent")
	flags.StringArrayVar(&f.contextFiles, "context", nil, "Reference document to attach to each review (repeatable)")
	return cmd
}

func runPass1(docPath string, f *pass1Flags, timeout time.Duration) error {
	reviewRole, err := parseRole(f.roleName)
	if err != nil {
		return err
	}

	doc, err := loadDocument(docPath, f.redactEnabled)
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

	refContext, err := loadContextFiles(f.contextFiles, f.redactEnabled)
	if err != nil {
		return err
	}

	invoker := invoke.New(newReviewer(), store, logger)
	runner := pass.NewRunner(invoker, store, logger)

	results, err := runner.Pass1(context.Background(), sections, pass.Config{
		Role:    reviewRole,
		Timeout: timeout,
		Workers: f.workers,
		Context: refContext,
	})
	if err != nil {
		return exitError(4, "pass 1 failed: %v", err)
	}

	failed := 0
	for _, sr := range results {
		if !sr.Result.Success {
			failed++
			fmt.Printf("%-30s invocation failed\n", sr.Section.Slug())
			continue
		}
		fmt.Printf("%-30s %d critical, %d warnings, %d suggestions\n",
			sr.Section.Slug(),
			sr.Result.Count(feedback.SeverityCritical),
			sr.Result.Count(feedback.SeverityWarning),
			sr.Result.Count(feedback.SeveritySuggestion))
	}
	if failed > 0 {
		return exitError(4, "%d of %d section reviews failed", failed, len(results))
	}

	for _, sr := range results {
		if out := render.Findings(sr.Result); out != "" {
			fmt.Printf("\n## %s\n%s", sr.Section.Name, out)
		}
	}
	return nil
}
