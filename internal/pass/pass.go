// Package pass sequences the two review passes: pass 1 reviews each section
// independently, pass 2 reviews the full document holistically with the
// aggregated pass-1 feedback carried along so the agent can verify
// resolution.
package pass

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/doccritic/internal/artifact"
	"github.com/dshills/doccritic/internal/document"
	"github.com/dshills/doccritic/internal/feedback"
	"github.com/dshills/doccritic/internal/invoke"
	"github.com/dshills/doccritic/internal/render"
	"github.com/dshills/doccritic/internal/role"
	"github.com/dshills/doccritic/internal/section"
)

// Config controls a pass execution.
type Config struct {
	Role    role.Role
	Timeout time.Duration
	// Context is reference material carried into every invocation of the
	// pass, ahead of the content under review.
	Context string
	// Workers bounds pass-1 concurrency. Zero or one runs sections
	// sequentially; section invocations share no session so they are safe to
	// run in parallel.
	Workers int
}

// SectionResult pairs a section with its review outcome. Pass-1 results are
// always in original section order regardless of completion order.
type SectionResult struct {
	Section section.Section
	Result  feedback.ReviewResult
}

// Runner executes review passes.
type Runner struct {
	invoker *invoke.Invoker
	store   artifact.Store
	log     *zap.Logger
}

// NewRunner creates a pass runner. store may be nil to skip persistence.
func NewRunner(invoker *invoke.Invoker, store artifact.Store, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{invoker: invoker, store: store, log: log}
}

// Pass1 reviews every section once with a fresh, independent session.
// Invocation failures are recorded in the corresponding result, not returned
// as errors; only caller cancellation aborts the pass.
func (r *Runner) Pass1(ctx context.Context, sections []section.Section, cfg Config) ([]SectionResult, error) {
	runID := uuid.NewString()
	r.log.Info("pass 1 starting",
		zap.String("run", runID),
		zap.Int("sections", len(sections)),
		zap.String("role", string(cfg.Role)))

	results := make([]SectionResult, len(sections))

	g, gctx := errgroup.WithContext(ctx)
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)

	for i, sec := range sections {
		i, sec := i, sec
		g.Go(func() error {
			res, err := r.reviewSection(gctx, sec, cfg)
			if err != nil {
				return err
			}
			results[i] = SectionResult{Section: sec, Result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.log.Info("pass 1 complete", zap.String("run", runID))
	return results, nil
}

func (r *Runner) reviewSection(ctx context.Context, sec section.Section, cfg Config) (feedback.ReviewResult, error) {
	r.log.Debug("reviewing section",
		zap.String("section", sec.Slug()), zap.String("role", string(cfg.Role)))

	result, err := r.invoker.Invoke(ctx, invoke.Request{
		Role:    cfg.Role,
		Content: sec.Full(),
		Slug:    sec.Slug(),
		Context: cfg.Context,
	}, cfg.Timeout)
	if err != nil {
		return feedback.ReviewResult{}, err
	}

	if r.store != nil && result.Success {
		body := render.SectionReview(sec.Name, string(cfg.Role), result.Raw, time.Now())
		if err := r.store.PutPass1(sec.Slug(), body); err != nil {
			return feedback.ReviewResult{}, err
		}
	}
	return result, nil
}

// Pass2 runs one holistic review over the full (revised) document. The
// aggregated pass-1 feedback is embedded in the request so the agent can flag
// findings that remain unresolved. Pass-2 findings are reported separately
// from pass 1's; no session continuity spans the two passes.
func (r *Runner) Pass2(ctx context.Context, doc *document.Document, pass1 []SectionResult, cfg Config) (feedback.ReviewResult, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = invoke.HolisticTimeout
	}

	result, err := r.invoker.Invoke(ctx, invoke.Request{
		Role:            role.RoleHolistic,
		Content:         doc.Raw,
		Slug:            "holistic",
		Context:         cfg.Context,
		FeedbackContext: AggregateFeedback(pass1),
	}, timeout)
	if err != nil {
		return feedback.ReviewResult{}, err
	}

	if r.store != nil && result.Success {
		body := render.Holistic(filepath.Base(doc.FilePath), len(pass1) > 0, result.Raw, time.Now())
		if err := r.store.PutPass2(body); err != nil {
			return feedback.ReviewResult{}, err
		}
	}
	return result, nil
}

// AggregateFeedback flattens pass-1 results, in section order, into the
// feedback-context block carried by the holistic request.
func AggregateFeedback(results []SectionResult) string {
	if len(results) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("## Previous Review Findings (Pass 1)\n\n")
	b.WriteString("The following issues were identified in a section-by-section review. ")
	b.WriteString("Verify whether these have been addressed in the current version of the ")
	b.WriteString("document. Flag any that remain unresolved.\n\n")
	for _, sr := range results {
		if !sr.Result.Success {
			fmt.Fprintf(&b, "### %s\n\n(review unavailable: invocation failed)\n\n---\n\n", sr.Section.Name)
			continue
		}
		fmt.Fprintf(&b, "### %s\n\n%s\n\n---\n\n", sr.Section.Name, strings.TrimSpace(sr.Result.Raw))
	}
	return b.String()
}
