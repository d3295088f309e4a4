package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/doccritic/internal/invoke"
	"github.com/dshills/doccritic/internal/iterate"
	"github.com/dshills/doccritic/internal/redact"
	"github.com/dshills/doccritic/internal/render"
)

type iterateFlags struct {
	roleName       string
	maxRounds      int
	timeoutSeconds int
	noInteractive  bool
	singleRound    int
	redactEnabled  bool
	contextFiles   []string
}

func newIterateCmd() *cobra.Command {
	f := &iterateFlags{}

	cmd := &cobra.Command{
		Use:   "iterate <section-file> <revised-file>",
		Short: "Iteratively review one section across a continuous agent session",
		Long: `Iterate runs review rounds against a single section. Round 1 reviews the
section file; later rounds re-review the revised file, continuing the same
agent session so the reviewer can classify prior findings as resolved.

By default the command pauses between rounds so you can edit the revised
file. With --no-interactive it reads the revised file without pausing, and
with --round N it runs only that round, for loops driven by external
tooling.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			timeout := resolveTimeout(f.timeoutSeconds, cmd.Flags().Changed("timeout"))
			if f.singleRound > 0 {
				return runSingleRound(args[0], args[1], f, timeout)
			}
			return runIterate(args[0], args[1], f, timeout)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.roleName, "role", "architecture", "Review role: architecture, implementation, api, or data")
	flags.IntVar(&f.maxRounds, "max-rounds", iterate.DefaultMaxRounds, "Maximum review rounds")
	flags.IntVar(&f.timeoutSeconds, "timeout", 120, "Per-round invocation timeout in seconds")
	flags.BoolVar(&f.noInteractive, "no-interactive", false, "Do not pause for edits between rounds")
	flags.IntVar(&f.singleRound, "round", 0, "Run only this round number (external loop control)")
	flags.BoolVar(&f.redactEnabled, "redact", true, "Redact secrets before sending to the agent")
	flags.StringArrayVar(&f.contextFiles, "context", nil, "Reference document to attach to each round (repeatable)")
	return cmd
}

func sectionSlug(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func readContent(path string, redactEnabled bool) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	content := string(data)
	if redactEnabled {
		content = redact.Redact(content)
	}
	return content, nil
}

func runIterate(sectionPath, revisedPath string, f *iterateFlags, timeout time.Duration) error {
	reviewRole, err := parseRole(f.roleName)
	if err != nil {
		return err
	}
	content, err := readContent(sectionPath, f.redactEnabled)
	if err != nil {
		return exitError(3, "failed to load section: %v", err)
	}

	refContext, err := loadContextFiles(f.contextFiles, f.redactEnabled)
	if err != nil {
		return err
	}

	slug := sectionSlug(sectionPath)
	store := reviewStore(sectionPath)
	invoker := invoke.New(newReviewer(), store, logger)
	ctrl := iterate.New(slug, slug, invoker, store, iterate.Options{
		Role:      reviewRole,
		MaxRounds: f.maxRounds,
		Timeout:   timeout,
		Context:   refContext,
	}, logger)

	stdin := bufio.NewReader(os.Stdin)
	for !ctrl.Done() {
		num := ctrl.State().CurrentRound() + 1
		if num > 1 {
			if !f.noInteractive {
				fmt.Fprintf(os.Stderr, "\n--- Edit the file: %s ---\n", revisedPath)
				fmt.Fprint(os.Stderr, "Press ENTER when done (or type 'q' to stop): ")
				line, _ := stdin.ReadString('\n')
				if t := strings.TrimSpace(strings.ToLower(line)); t == "q" || t == "quit" {
					fmt.Fprintf(os.Stderr, "Stopped after round %d.\n", num-1)
					break
				}
			}
			content, err = readContent(revisedPath, f.redactEnabled)
			if err != nil {
				return exitError(3, "failed to load revised section: %v", err)
			}
		}

		fmt.Fprintf(os.Stderr, "=== Round %d/%d: %s ===\n", num, f.maxRounds, slug)
		round, err := ctrl.Round(context.Background(), content)
		if errors.Is(err, iterate.ErrStagnant) {
			fmt.Fprint(os.Stderr, ctrl.Summary())
			return exitError(2, "review stagnant: two consecutive rounds failed")
		}
		if err != nil {
			return exitError(4, "round %d failed: %v", num, err)
		}
		reportRound(round)
	}

	fmt.Print(ctrl.Summary())
	return nil
}

func reportRound(round iterate.Round) {
	if !round.Result.Success {
		fmt.Fprintf(os.Stderr, "  round %d: invocation failed\n", round.Number)
		return
	}
	fmt.Fprintf(os.Stderr, "  round %d: %d unacknowledged findings\n", round.Number, round.Unacknowledged)
	if round.ContinuityLost {
		fmt.Fprintln(os.Stderr, "  (prior session lost; continued on a fresh session)")
	}
	if round.ConvergenceWarning {
		fmt.Fprintln(os.Stderr, "  warning: findings are not decreasing; consider manual review")
	}
	if round.Result.Approved {
		fmt.Fprintf(os.Stderr, "  section approved after %d rounds\n", round.Number)
	}
}

// runSingleRound executes exactly one round for loops driven by external
// tooling. State that the in-process controller would carry (session handle,
// prior findings) is reloaded from the persisted artifacts.
func runSingleRound(sectionPath, revisedPath string, f *iterateFlags, timeout time.Duration) error {
	reviewRole, err := parseRole(f.roleName)
	if err != nil {
		return err
	}

	slug := sectionSlug(sectionPath)
	store := reviewStore(sectionPath)
	invoker := invoke.New(newReviewer(), store, logger)

	path := sectionPath
	if f.singleRound > 1 {
		path = revisedPath
	}
	content, err := readContent(path, f.redactEnabled)
	if err != nil {
		return exitError(3, "failed to load content: %v", err)
	}

	refContext, err := loadContextFiles(f.contextFiles, f.redactEnabled)
	if err != nil {
		return err
	}

	req := invoke.Request{Role: reviewRole, Content: content, Slug: slug, Context: refContext}
	if f.singleRound == 1 {
		if err := store.ResetIteration(slug); err != nil {
			return exitError(4, "reset iteration: %v", err)
		}
	} else {
		session, err := store.GetSession(slug)
		if err != nil {
			return exitError(4, "load session: %v", err)
		}
		prev, err := store.GetRound(slug, f.singleRound-1)
		if err != nil {
			return exitError(3, "round %d has no predecessor: %v", f.singleRound, err)
		}
		req.Session = session
		req.PriorFindings = invoke.PriorFindingsFrom(prev)
	}

	result, err := invoker.Invoke(context.Background(), req, timeout)
	if err != nil {
		return exitError(4, "round %d failed: %v", f.singleRound, err)
	}
	if !result.Success {
		return exitError(4, "round %d: agent did not respond within %s", f.singleRound, timeout)
	}

	body := render.Round(slug, f.roleName, f.singleRound, result.Raw, time.Now())
	if err := store.PutRound(slug, f.singleRound, body); err != nil {
		return exitError(4, "persist round: %v", err)
	}

	fmt.Fprintf(os.Stderr, "  round %d: %d unacknowledged findings\n", f.singleRound, result.Unacknowledged())
	if result.Approved {
		fmt.Fprintln(os.Stderr, "  section approved")
	}
	return nil
}
