// Package ai provides the rewrite and review engines for the chapter
// workflow: a Gemini-backed implementation and a deterministic simulated
// one for offline runs and tests.
package ai

import (
	"context"

	"bookspin/internal/version"
)

// Rewriter produces a rewritten candidate from source content. Directive is
// optional human guidance folded into the prompt; empty means a plain spin.
type Rewriter interface {
	Rewrite(ctx context.Context, content, directive string) (string, error)
}

// Review is a structured quality assessment of one candidate.
// Scores are on a 1-10 scale.
type Review struct {
	Fidelity    float64
	Readability float64
	Grammar     float64
	Originality float64
	Feedback    string
	Suggestions []string
	Simulated   bool
}

// Composite returns the unweighted average of the four scores.
func (r Review) Composite() float64 {
	return (r.Fidelity + r.Readability + r.Grammar + r.Originality) / 4
}

// Metadata renders the review as version-record metadata.
func (r Review) Metadata() map[string]any {
	meta := map[string]any{
		version.MetaFidelityScore:    r.Fidelity,
		version.MetaReadabilityScore: r.Readability,
		version.MetaGrammarScore:     r.Grammar,
		version.MetaOriginalityScore: r.Originality,
		version.MetaFeedback:         r.Feedback,
	}
	if len(r.Suggestions) > 0 {
		suggestions := make([]any, len(r.Suggestions))
		for i, s := range r.Suggestions {
			suggestions[i] = s
		}
		meta[version.MetaSuggestions] = suggestions
	}
	if r.Simulated {
		meta[version.MetaSimulated] = true
	}
	return meta
}

// Reviewer scores a candidate rewrite against its original.
type Reviewer interface {
	Review(ctx context.Context, original, candidate string) (Review, error)
}
