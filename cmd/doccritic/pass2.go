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

type pass2Flags struct {
	roleName       string
	timeoutSeconds int
	workers        int
	redactEnabled  bool
	skipPass1      bool
	contextFiles   []string
}

func newPass2Cmd() *cobra.Command {
	f := &pass2Flags{}

	cmd := &cobra.Command{
		Use:   "pass2 <document>",
		Short: "Holistic full-document review carrying pass-1 feedback (pass 2)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			timeout := resolveTimeout(f.timeoutSeconds, cmd.Flags().Changed("timeout"))
			return runPass2(args[0], f, timeout)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.roleName, "role", "architecture", "Pass-1 review role")
	flags.IntVar(&f.timeoutSeconds, "timeout", 180, "Holistic invocation timeout in seconds")
	flags.IntVar(&f.workers, "workers", 1, "Concurrent pass-1 section reviews")
	flags.BoolVar(&f.redactEnabled, "redact", true, "Redact secrets before sending to the agent")
	flags.BoolVar(&f.skipPass1, "skip-pass1", false, "Run the holistic review without fresh pass-1 feedback")
	flags.StringArrayVar(&f.contextFiles, "context", nil, "Reference document to attach to each review (repeatable)")
	return cmd
}

func runPass2(docPath string, f *pass2Flags, timeout time.Duration) error {
	doc, err := loadDocument(docPath, f.redactEnabled)
	if err != nil {
		return exitError(3, "failed to load document: %v", err)
	}

	refContext, err := loadContextFiles(f.contextFiles, f.redactEnabled)
	if err != nil {
		return err
	}

	store := reviewStore(docPath)
	invoker := invoke.New(newReviewer(), store, logger)
	runner := pass.NewRunner(invoker, store, logger)
	ctx := context.Background()

	// Pass 2 consumes the aggregate of pass 1, so the per-section reviews run
	// first unless explicitly skipped.
	var pass1Results []pass.SectionResult
	if !f.skipPass1 {
		reviewRole, err := parseRole(f.roleName)
		if err != nil {
			return err
		}
		sections, err := section.Split(doc)
		if err != nil {
			if errors.Is(err, section.ErrEmptyDocument) {
				return exitError(3, "document is empty: %s", docPath)
			}
			return exitError(3, "failed to split document: %v", err)
		}
		pass1Results, err = runner.Pass1(ctx, sections, pass.Config{
			Role:    reviewRole,
			Workers: f.workers,
			Context: refContext,
		})
		if err != nil {
			return exitError(4, "pass 1 failed: %v", err)
		}
	}

	result, err := runner.Pass2(ctx, doc, pass1Results, pass.Config{Timeout: timeout, Context: refContext})
	if err != nil {
		return exitError(4, "pass 2 failed: %v", err)
	}
	if !result.Success {
		return exitError(4, "holistic review did not complete within %s", timeout)
	}

	fmt.Printf("Holistic review: %d critical, %d warnings, %d suggestions\n",
		result.Count(feedback.SeverityCritical),
		result.Count(feedback.SeverityWarning),
		result.Count(feedback.SeveritySuggestion))
	if out := render.Findings(result); out != "" {
		fmt.Print(out)
	}
	return nil
}
