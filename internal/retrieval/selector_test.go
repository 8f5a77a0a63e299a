package retrieval

import (
	"errors"
	"testing"

	"bookspin/internal/version"
)

func rec(seq int64, vt version.Type, iteration int, meta map[string]any) version.Record {
	return version.Record{
		Seq:       seq,
		ID:        "v" + string(rune('0'+seq)),
		ChapterID: "ch",
		Content:   "content",
		Type:      vt,
		Iteration: iteration,
		Metadata:  meta,
	}
}

func reviewMeta(fidelity, readability, grammar, originality float64) map[string]any {
	return map[string]any{
		version.MetaFidelityScore:    fidelity,
		version.MetaReadabilityScore: readability,
		version.MetaGrammarScore:     grammar,
		version.MetaOriginalityScore: originality,
	}
}

func TestEmptyHistory(t *testing.T) {
	_, err := BestVersion(nil)
	if !errors.Is(err, ErrNoVersions) {
		t.Fatalf("Expected ErrNoVersions, got %v", err)
	}
}

func TestFinalOutranksHigherScoredReview(t *testing.T) {
	history := []version.Record{
		rec(1, version.TypeRaw, 0, nil),
		rec(2, version.TypeSpun, 1, nil),
		rec(3, version.TypeReviewed, 1, reviewMeta(10, 10, 10, 10)),
		rec(4, version.TypeFinal, 1, nil),
	}
	best, err := BestVersion(history)
	if err != nil {
		t.Fatalf("BestVersion failed: %v", err)
	}
	if best.Type != version.TypeFinal {
		t.Errorf("Expected final to outrank reviewed, got %s", best.Type)
	}
}

func TestMostRecentFinalWins(t *testing.T) {
	history := []version.Record{
		rec(1, version.TypeFinal, 1, nil),
		rec(2, version.TypeFinal, 2, nil),
	}
	best, _ := BestVersion(history)
	if best.Seq != 2 {
		t.Errorf("Expected most recent final (seq 2), got seq %d", best.Seq)
	}
}

func TestHumanEditedOutranksReviewed(t *testing.T) {
	history := []version.Record{
		rec(1, version.TypeReviewed, 1, reviewMeta(9, 9, 9, 9)),
		rec(2, version.TypeHumanEdited, 1, nil),
		rec(3, version.TypeReviewed, 2, reviewMeta(10, 10, 10, 10)),
	}
	best, _ := BestVersion(history)
	if best.Type != version.TypeHumanEdited {
		t.Errorf("Expected human_edited, got %s", best.Type)
	}
}

func TestHighestCompositeReviewWins(t *testing.T) {
	history := []version.Record{
		rec(1, version.TypeRaw, 0, nil),
		rec(2, version.TypeReviewed, 1, reviewMeta(7, 8, 9, 7)),  // 7.75
		rec(3, version.TypeReviewed, 2, reviewMeta(9, 9, 10, 8)), // 9.0
		rec(4, version.TypeReviewed, 3, reviewMeta(6, 6, 7, 5)),  // 6.0
	}
	best, _ := BestVersion(history)
	if best.Seq != 3 {
		t.Errorf("Expected highest-composite review (seq 3), got seq %d", best.Seq)
	}
}

func TestReviewTiesBreakByRecency(t *testing.T) {
	history := []version.Record{
		rec(1, version.TypeReviewed, 1, reviewMeta(8, 8, 8, 8)),
		rec(2, version.TypeReviewed, 2, reviewMeta(8, 8, 8, 8)),
	}
	best, _ := BestVersion(history)
	if best.Seq != 2 {
		t.Errorf("Expected most recent of tied reviews (seq 2), got seq %d", best.Seq)
	}
}

func TestAutoFinishedBeforeFallback(t *testing.T) {
	history := []version.Record{
		rec(1, version.TypeRaw, 0, nil),
		rec(2, version.TypeSpun, 1, nil),
		rec(3, version.TypeAutoFinish, 1, nil),
	}
	best, _ := BestVersion(history)
	if best.Type != version.TypeAutoFinish {
		t.Errorf("Expected auto_finished, got %s", best.Type)
	}
}

func TestRawOnlyHistoryFallsBack(t *testing.T) {
	// Acquisition succeeded, workflow stopped immediately.
	history := []version.Record{rec(1, version.TypeRaw, 0, nil)}
	best, err := BestVersion(history)
	if err != nil {
		t.Fatalf("BestVersion failed: %v", err)
	}
	if best.Type != version.TypeRaw {
		t.Errorf("Expected raw fallback, got %s", best.Type)
	}
}

func TestReviewWithoutScoresIsSkipped(t *testing.T) {
	history := []version.Record{
		rec(1, version.TypeSpun, 1, nil),
		rec(2, version.TypeReviewed, 1, map[string]any{version.MetaFeedback: "no scores here"}),
	}
	best, _ := BestVersion(history)
	// Unscored review cannot rank; falls through to most recent of any type.
	if best.Seq != 2 {
		t.Errorf("Expected fallback to most recent record, got seq %d", best.Seq)
	}
	if best.Type != version.TypeReviewed {
		t.Errorf("Expected most recent record regardless of type, got %s", best.Type)
	}
}

func TestSelectorIdempotence(t *testing.T) {
	history := []version.Record{
		rec(1, version.TypeRaw, 0, nil),
		rec(2, version.TypeSpun, 1, nil),
		rec(3, version.TypeReviewed, 1, reviewMeta(7, 8, 9, 6)),
		rec(4, version.TypeHumanEdited, 1, nil),
	}
	first, err := BestVersion(history)
	if err != nil {
		t.Fatalf("BestVersion failed: %v", err)
	}
	second, err := BestVersion(history)
	if err != nil {
		t.Fatalf("BestVersion failed: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("Selector not idempotent: %s then %s", first.ID, second.ID)
	}
}
