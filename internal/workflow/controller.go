// Package workflow drives a chapter through acquisition, AI rewriting,
// automated review, and bounded human decision loops, persisting every
// intermediate artifact as an immutable version.
package workflow

import (
	"context"
	"errors"
	"fmt"

	"bookspin/internal/ai"
	"bookspin/internal/human"
	"bookspin/internal/logging"
	"bookspin/internal/retrieval"
	"bookspin/internal/scraper"
	"bookspin/internal/version"
)

// Status is the terminal state of one chapter run.
type Status string

const (
	// StatusFinalized means a human explicitly accepted a version as done.
	StatusFinalized Status = "finalized"
	// StatusStopped means a human abandoned the chapter mid-run.
	StatusStopped Status = "stopped"
	// StatusExhausted means the iteration budget ran out while work was
	// still ongoing; the last candidate was saved as auto_finished.
	StatusExhausted Status = "exhausted"
	// StatusAcquisitionFailed means the source could not be fetched.
	// Nothing is persisted on this path.
	StatusAcquisitionFailed Status = "acquisition_failed"
)

// Result summarizes a finished run. Outcome is the selector's pick over the
// chapter's full history and is nil only when the history is empty.
type Result struct {
	ChapterID string
	Status    Status
	Outcome   *version.Record
}

// Options bound the two nested loops.
type Options struct {
	// MaxAIIterations caps rewrite-review rounds per chapter.
	MaxAIIterations int
	// MaxHumanSubIterations caps unresolved decision cycles per round, and
	// separately caps redirect re-entries into the same round.
	MaxHumanSubIterations int
}

// DefaultOptions mirrors the interactive defaults.
func DefaultOptions() Options {
	return Options{MaxAIIterations: 3, MaxHumanSubIterations: 2}
}

func (o Options) withDefaults() Options {
	if o.MaxAIIterations <= 0 {
		o.MaxAIIterations = 3
	}
	if o.MaxHumanSubIterations <= 0 {
		o.MaxHumanSubIterations = 2
	}
	return o
}

// Controller owns one chapter workflow at a time. Instances are cheap;
// concurrent chapters get their own Controller over a shared store.
type Controller struct {
	store    version.Store
	acquirer scraper.Acquirer
	rewriter ai.Rewriter
	reviewer ai.Reviewer
	surface  human.Surface
	opts     Options
}

// NewController wires a controller from its collaborators.
func NewController(store version.Store, acquirer scraper.Acquirer, rewriter ai.Rewriter, reviewer ai.Reviewer, surface human.Surface, opts Options) *Controller {
	return &Controller{
		store:    store,
		acquirer: acquirer,
		rewriter: rewriter,
		reviewer: reviewer,
		surface:  surface,
		opts:     opts.withDefaults(),
	}
}

// resolution is the outcome of one human sub-loop.
type resolution int

const (
	resolveApprove resolution = iota
	resolveRedirect
	resolveFinalize
	resolveStop
	resolveAutoProceed
)

// runState is the mutable per-run state the two loops share. baseline is the
// last human-sanctioned text and only moves on approve/auto_proceed; current
// tracks the newest candidate.
type runState struct {
	chapterID string
	label     string
	iteration int
	baseline  string
	current   string
}

// Run drives one chapter from source locator to a terminal status.
// Acquisition failure is surfaced as an error alongside the
// acquisition_failed result; any other collaborator failure aborts the run.
func (c *Controller) Run(ctx context.Context, locator, label string) (Result, error) {
	chapterID := version.ChapterID(label)
	if chapterID == "" {
		return Result{}, fmt.Errorf("chapter label %q normalizes to nothing", label)
	}
	logging.Workflow("Run started: chapter=%s locator=%s", chapterID, locator)

	content, err := c.acquirer.Acquire(ctx, locator, label)
	if err != nil {
		logging.Get(logging.CategoryWorkflow).Error("Acquisition failed for %s: %v", chapterID, err)
		result, selErr := c.finish(ctx, chapterID, StatusAcquisitionFailed)
		if selErr != nil {
			return result, selErr
		}
		return result, fmt.Errorf("acquire %s: %w", locator, err)
	}

	if _, err := c.store.Save(ctx, chapterID, content, version.TypeRaw, 0, nil); err != nil {
		return Result{ChapterID: chapterID}, err
	}

	state := &runState{chapterID: chapterID, label: label, baseline: content, current: content}

	status, err := c.iterate(ctx, state)
	if err != nil {
		return Result{ChapterID: chapterID}, err
	}
	return c.finish(ctx, chapterID, status)
}

// iterate runs the bounded rewrite-review-decide rounds and returns the
// terminal status.
func (c *Controller) iterate(ctx context.Context, state *runState) (Status, error) {
	directive := "" // pending redirect feedback; empty means a fresh round
	redirects := 0

	for {
		if directive == "" {
			if state.iteration >= c.opts.MaxAIIterations {
				// Budget spent with work still ongoing.
				if _, err := c.store.Save(ctx, state.chapterID, state.current, version.TypeAutoFinish, state.iteration, nil); err != nil {
					return "", err
				}
				logging.Workflow("Iteration budget exhausted for %s at iteration %d", state.chapterID, state.iteration)
				return StatusExhausted, nil
			}
			state.iteration++
			redirects = 0
		}

		source := state.current
		if directive != "" {
			// Redirects re-spin from the pre-redirect baseline, not from
			// the rejected candidate.
			source = state.baseline
		}

		spun, err := c.rewriter.Rewrite(ctx, source, directive)
		if err != nil {
			return "", fmt.Errorf("rewrite iteration %d: %w", state.iteration, err)
		}
		directive = ""
		if _, err := c.store.Save(ctx, state.chapterID, spun, version.TypeSpun, state.iteration, nil); err != nil {
			return "", err
		}
		state.current = spun

		review, err := c.reviewer.Review(ctx, state.baseline, spun)
		if err != nil {
			return "", fmt.Errorf("review iteration %d: %w", state.iteration, err)
		}
		if _, err := c.store.Save(ctx, state.chapterID, spun, version.TypeReviewed, state.iteration, review.Metadata()); err != nil {
			return "", err
		}
		logging.Workflow("Iteration %d reviewed for %s: composite=%.2f", state.iteration, state.chapterID, review.Composite())

		outcome, feedback, err := c.humanSubLoop(ctx, state, review)
		if err != nil {
			return "", err
		}

		switch outcome {
		case resolveFinalize:
			if _, err := c.store.Save(ctx, state.chapterID, state.current, version.TypeFinal, state.iteration, nil); err != nil {
				return "", err
			}
			logging.Workflow("Chapter %s finalized at iteration %d", state.chapterID, state.iteration)
			return StatusFinalized, nil
		case resolveStop:
			logging.Workflow("Chapter %s stopped at iteration %d", state.chapterID, state.iteration)
			return StatusStopped, nil
		case resolveRedirect:
			if redirects >= c.opts.MaxHumanSubIterations {
				logging.Workflow("Redirect budget exhausted for %s at iteration %d, proceeding", state.chapterID, state.iteration)
				state.baseline = state.current
				continue
			}
			redirects++
			directive = feedback
			logging.Workflow("Redirect %d at iteration %d for %s: %q", redirects, state.iteration, state.chapterID, feedback)
		case resolveApprove, resolveAutoProceed:
			state.baseline = state.current
		}
	}
}

// humanSubLoop collects feedback and a decision for the current candidate.
// Unresolved cycles (unrecognized decisions) consume the sub-iteration
// budget; edits do not, and redirect re-entry bounds are the caller's.
func (c *Controller) humanSubLoop(ctx context.Context, state *runState, review ai.Review) (resolution, string, error) {
	candidate := human.Candidate{
		Chapter:   state.label,
		Iteration: state.iteration,
		Content:   state.current,
		Review:    review,
	}
	if err := c.surface.PresentCandidate(ctx, candidate); err != nil {
		return 0, "", err
	}

	subIter := 0
	for {
		if subIter >= c.opts.MaxHumanSubIterations {
			logging.Human("Sub-loop budget exhausted at iteration %d, auto-proceeding", state.iteration)
			return resolveAutoProceed, "", nil
		}

		feedback, err := c.surface.PromptFeedback(ctx)
		if err != nil {
			return 0, "", err
		}
		// Typed terminal words short-circuit the option menu.
		switch human.ShortcutDecision(feedback) {
		case human.DecisionApprove:
			return resolveApprove, "", nil
		case human.DecisionFinalize:
			return resolveFinalize, "", nil
		case human.DecisionStop:
			return resolveStop, "", nil
		}

		decision, err := c.surface.PromptDecision(ctx)
		if err != nil {
			return 0, "", err
		}
		logging.Human("Decision at iteration %d: %s", state.iteration, decision)

		switch decision {
		case human.DecisionEdit:
			edited, err := c.surface.PromptManualEdit(ctx, state.current)
			if err != nil {
				return 0, "", err
			}
			if _, err := c.store.Save(ctx, state.chapterID, edited, version.TypeHumanEdited, state.iteration, nil); err != nil {
				return 0, "", err
			}
			state.current = edited
			candidate.Content = edited
			// Edits restart feedback collection without spending budget.
			if err := c.surface.PresentCandidate(ctx, candidate); err != nil {
				return 0, "", err
			}
		case human.DecisionRedirect:
			return resolveRedirect, feedback, nil
		case human.DecisionApprove:
			return resolveApprove, "", nil
		case human.DecisionFinalize:
			return resolveFinalize, "", nil
		case human.DecisionStop:
			return resolveStop, "", nil
		default:
			subIter++
		}
	}
}

// finish runs the selector over the chapter's history and assembles the
// result. An empty history is normal on the acquisition_failed path.
func (c *Controller) finish(ctx context.Context, chapterID string, status Status) (Result, error) {
	best, err := retrieval.BestForChapter(ctx, c.store, chapterID)
	if err != nil && !errors.Is(err, retrieval.ErrNoVersions) {
		return Result{ChapterID: chapterID, Status: status}, err
	}
	logging.Workflow("Run finished: chapter=%s status=%s", chapterID, status)
	return Result{ChapterID: chapterID, Status: status, Outcome: best}, nil
}
