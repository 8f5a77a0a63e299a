// Package retrieval selects the best-known version from a chapter's history.
//
// Histories are heterogeneous: raw, spun, reviewed, human-edited, final, and
// auto-finished records interleave across iterations, and redirect decisions
// leave abandoned branches behind. The selector ranks human authority above
// automated scores and never needs more than one full-history scan.
package retrieval

import (
	"context"
	"errors"

	"bookspin/internal/logging"
	"bookspin/internal/version"
)

// ErrNoVersions is returned when a chapter has zero history. This is a
// normal outcome (e.g. acquisition failed before anything was written),
// not a fault; callers are expected to handle it.
var ErrNoVersions = errors.New("no version available")

// BestVersion returns the single record that best represents a finished,
// internally consistent chapter. Tie-break policy, most authoritative first:
//
//  1. most recent final record (explicit human finalization outranks all)
//  2. most recent human_edited record (direct human authorship)
//  3. reviewed record with the highest composite score, ties by most recent
//  4. an auto_finished record
//  5. most recent record of any type
//
// The input history must be in creation order, as version.Store returns it.
func BestVersion(history []version.Record) (*version.Record, error) {
	if len(history) == 0 {
		return nil, ErrNoVersions
	}

	var (
		lastFinal    *version.Record
		lastEdited   *version.Record
		bestReviewed *version.Record
		bestScore    float64
		lastAutoFin  *version.Record
	)

	for i := range history {
		rec := &history[i]
		switch rec.Type {
		case version.TypeFinal:
			lastFinal = rec
		case version.TypeHumanEdited:
			lastEdited = rec
		case version.TypeReviewed:
			scores, ok := version.ExtractScores(rec.Metadata)
			if !ok {
				continue
			}
			// >= so later records win ties.
			if composite := scores.Composite(); bestReviewed == nil || composite >= bestScore {
				bestReviewed = rec
				bestScore = composite
			}
		case version.TypeAutoFinish:
			lastAutoFin = rec
		}
	}

	switch {
	case lastFinal != nil:
		return lastFinal, nil
	case lastEdited != nil:
		return lastEdited, nil
	case bestReviewed != nil:
		return bestReviewed, nil
	case lastAutoFin != nil:
		return lastAutoFin, nil
	}
	// Degenerate case: workflow aborted before any scored or human-touched
	// output existed.
	return &history[len(history)-1], nil
}

// BestForChapter loads a chapter's history from the store and selects its
// best version.
func BestForChapter(ctx context.Context, s version.Store, chapterID string) (*version.Record, error) {
	timer := logging.StartTimer(logging.CategoryStore, "BestForChapter")
	defer timer.Stop()

	history, err := s.ListVersions(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	best, err := BestVersion(history)
	if err != nil {
		return nil, err
	}
	logging.Store("Selected version %s (type=%s iteration=%d) for chapter=%s",
		best.ID, best.Type, best.Iteration, chapterID)
	return best, nil
}
