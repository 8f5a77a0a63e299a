package ai

import (
	"context"
	"fmt"
	"sync"

	"bookspin/internal/logging"
)

// SimulatedEngine implements Rewriter and Reviewer without any network
// calls. Rewrites are marked transforms of the input and review scores
// follow a deterministic cycle, so offline runs still exercise the full
// iterate-score-decide loop with varying composites.
type SimulatedEngine struct {
	mu       sync.Mutex
	rewrites int
	reviews  int
}

// NewSimulatedEngine creates a simulated engine.
func NewSimulatedEngine() *SimulatedEngine {
	return &SimulatedEngine{}
}

// Rewrite returns a visibly transformed copy of the content. Successive
// calls produce distinct output so versions don't collide.
func (s *SimulatedEngine) Rewrite(ctx context.Context, content, directive string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	s.rewrites++
	n := s.rewrites
	s.mu.Unlock()

	logging.Get(logging.CategoryRewriter).Info("Simulated rewrite #%d (directive=%q)", n, directive)

	if directive != "" {
		return fmt.Sprintf("[simulated rewrite #%d, guided by: %s]\n\n%s", n, directive, content), nil
	}
	return fmt.Sprintf("[simulated rewrite #%d]\n\n%s", n, content), nil
}

// Review returns cyclic deterministic scores. Fidelity and originality cycle
// over three values, readability over two, grammar stays fixed, so the
// composite rises and falls across iterations.
func (s *SimulatedEngine) Review(ctx context.Context, original, candidate string) (Review, error) {
	if err := ctx.Err(); err != nil {
		return Review{}, err
	}
	s.mu.Lock()
	n := s.reviews
	s.reviews++
	s.mu.Unlock()

	review := Review{
		Fidelity:    float64(7 + n%3),
		Readability: float64(8 + n%2),
		Grammar:     9,
		Originality: float64(7 + n%3),
		Feedback:    fmt.Sprintf("Simulated review pass %d: structure intact, wording refreshed.", n+1),
		Suggestions: []string{"Vary sentence openings in dialogue-heavy passages."},
		Simulated:   true,
	}
	logging.Get(logging.CategoryReviewer).Info("Simulated review #%d: composite=%.2f", n+1, review.Composite())
	return review, nil
}
