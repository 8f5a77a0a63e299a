// Package human is the review surface between the workflow and a person:
// candidate presentation, feedback capture, and the decision between
// editing, redirecting, approving, finalizing, or stopping.
package human

import (
	"context"
	"strings"

	"bookspin/internal/ai"
)

// Decision is the outcome of one decision prompt.
type Decision int

const (
	// DecisionUnknown means the input mapped to no option. The workflow
	// counts it against the sub-loop budget and asks again.
	DecisionUnknown Decision = iota
	// DecisionEdit replaces the candidate with human-authored text.
	DecisionEdit
	// DecisionRedirect sends the feedback back to the rewriter.
	DecisionRedirect
	// DecisionApprove accepts this iteration and moves to the next.
	DecisionApprove
	// DecisionFinalize marks the chapter done.
	DecisionFinalize
	// DecisionStop abandons the chapter without persisting anything.
	DecisionStop
)

// String returns the decision name as recorded in workflow logs.
func (d Decision) String() string {
	switch d {
	case DecisionEdit:
		return "edit"
	case DecisionRedirect:
		return "redirect"
	case DecisionApprove:
		return "approve"
	case DecisionFinalize:
		return "finalize"
	case DecisionStop:
		return "stop"
	}
	return "unknown"
}

// ShortcutDecision maps free-text feedback onto a terminal decision.
// Typing "approve", "finalize", or "stop" at the feedback prompt skips the
// option menu entirely. Anything else returns DecisionUnknown.
func ShortcutDecision(feedback string) Decision {
	switch strings.ToLower(strings.TrimSpace(feedback)) {
	case "approve":
		return DecisionApprove
	case "finalize", "final", "done":
		return DecisionFinalize
	case "stop":
		return DecisionStop
	}
	return DecisionUnknown
}

// Candidate is everything a reviewer sees before deciding.
type Candidate struct {
	Chapter   string
	Iteration int
	Content   string
	Review    ai.Review
}

// Surface collects human input for the workflow. Implementations must treat
// every prompt as potentially blocking and honor context cancellation.
type Surface interface {
	// PresentCandidate shows the candidate and its review to the reviewer.
	PresentCandidate(ctx context.Context, c Candidate) error
	// PromptFeedback collects free-text feedback. Empty string is valid.
	PromptFeedback(ctx context.Context) (string, error)
	// PromptDecision collects one decision. Unparseable input returns
	// DecisionUnknown, not an error.
	PromptDecision(ctx context.Context) (Decision, error)
	// PromptManualEdit collects a full replacement text for the candidate.
	PromptManualEdit(ctx context.Context, current string) (string, error)
}

// AutoApprove is a non-interactive Surface that accepts every candidate.
// Used by batch runs where no reviewer is present.
type AutoApprove struct{}

func (AutoApprove) PresentCandidate(ctx context.Context, c Candidate) error { return ctx.Err() }

func (AutoApprove) PromptFeedback(ctx context.Context) (string, error) { return "", ctx.Err() }

func (AutoApprove) PromptDecision(ctx context.Context) (Decision, error) {
	return DecisionApprove, ctx.Err()
}

func (AutoApprove) PromptManualEdit(ctx context.Context, current string) (string, error) {
	return current, ctx.Err()
}
