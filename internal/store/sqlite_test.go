package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"bookspin/internal/version"

	"github.com/google/go-cmp/cmp"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndListVersions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	chapter := version.ChapterID("The Gates of Morning - Book 1 Chapter 1")

	rawID, err := s.Save(ctx, chapter, "raw text", version.TypeRaw, 0, nil)
	if err != nil {
		t.Fatalf("Save raw failed: %v", err)
	}
	spunID, err := s.Save(ctx, chapter, "spun text", version.TypeSpun, 1, nil)
	if err != nil {
		t.Fatalf("Save spun failed: %v", err)
	}
	if rawID == spunID {
		t.Fatalf("Expected distinct version ids, got %s twice", rawID)
	}

	records, err := s.ListVersions(ctx, chapter)
	if err != nil {
		t.Fatalf("ListVersions failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].ID != rawID || records[1].ID != spunID {
		t.Errorf("Records out of creation order: %s, %s", records[0].ID, records[1].ID)
	}
	if records[0].Type != version.TypeRaw || records[0].Iteration != 0 {
		t.Errorf("Unexpected first record: type=%s iteration=%d", records[0].Type, records[0].Iteration)
	}
}

func TestListVersionsEmptyChapter(t *testing.T) {
	s := newTestStore(t)

	records, err := s.ListVersions(context.Background(), "never_seen")
	if err != nil {
		t.Fatalf("ListVersions on empty chapter should not error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected empty history, got %d records", len(records))
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	meta := map[string]any{
		version.MetaFidelityScore:    8.0,
		version.MetaReadabilityScore: 9.0,
		version.MetaGrammarScore:     9.0,
		version.MetaOriginalityScore: 7.0,
		version.MetaFeedback:         "good spin",
		version.MetaSimulated:        true,
		"reviewer_model":             "test-oracle-1", // open record: extra fields survive
	}

	if _, err := s.Save(ctx, "ch", "candidate", version.TypeReviewed, 1, meta); err != nil {
		t.Fatalf("Save reviewed failed: %v", err)
	}
	if _, err := s.Save(ctx, "ch", "raw", version.TypeRaw, 0, nil); err != nil {
		t.Fatalf("Save raw failed: %v", err)
	}

	records, err := s.ListVersions(ctx, "ch")
	if err != nil {
		t.Fatalf("ListVersions failed: %v", err)
	}
	if diff := cmp.Diff(meta, records[0].Metadata); diff != "" {
		t.Errorf("Metadata not returned verbatim (-want +got):\n%s", diff)
	}
	if records[1].Metadata != nil {
		t.Errorf("Expected nil metadata on raw record, got %v", records[1].Metadata)
	}
}

func TestSaveRejectsInvalidInputs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Save(ctx, "", "x", version.TypeRaw, 0, nil); err == nil {
		t.Error("Expected error for empty chapter id")
	}
	if _, err := s.Save(ctx, "ch", "x", version.Type("draft"), 0, nil); err == nil {
		t.Error("Expected error for unknown version type")
	}
	if _, err := s.Save(ctx, "ch", "x", version.TypeRaw, -1, nil); err == nil {
		t.Error("Expected error for negative iteration")
	}
}

func TestReturnedRecordsAreSnapshots(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Save(ctx, "ch", "original", version.TypeRaw, 0, nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	first, err := s.ListVersions(ctx, "ch")
	if err != nil {
		t.Fatalf("ListVersions failed: %v", err)
	}
	first[0].Content = "mutated by caller"

	second, err := s.ListVersions(ctx, "ch")
	if err != nil {
		t.Fatalf("ListVersions failed: %v", err)
	}
	if second[0].Content != "original" {
		t.Errorf("Caller mutation leaked into stored record: %q", second[0].Content)
	}
}

func TestChaptersSummary(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Save(ctx, "ch_a", "raw", version.TypeRaw, 0, nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := s.Save(ctx, "ch_a", "spun", version.TypeSpun, 1, nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := s.Save(ctx, "ch_b", "raw", version.TypeRaw, 0, nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	summaries, err := s.Chapters(ctx)
	if err != nil {
		t.Fatalf("Chapters failed: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("Expected 2 chapters, got %d", len(summaries))
	}
	// Most recently updated first.
	if summaries[0].ChapterID != "ch_b" {
		t.Errorf("Expected ch_b first, got %s", summaries[0].ChapterID)
	}
	if summaries[1].ChapterID != "ch_a" || summaries[1].Versions != 2 || summaries[1].LastType != version.TypeSpun {
		t.Errorf("Unexpected ch_a summary: %+v", summaries[1])
	}
}

func TestConcurrentSavesAcrossChapters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const chapters = 4
	const perChapter = 10

	var wg sync.WaitGroup
	errs := make(chan error, chapters*perChapter)
	for c := 0; c < chapters; c++ {
		wg.Add(1)
		go func(c int) {
			defer wg.Done()
			chapter := fmt.Sprintf("chapter_%d", c)
			for i := 0; i < perChapter; i++ {
				if _, err := s.Save(ctx, chapter, fmt.Sprintf("content %d", i), version.TypeSpun, i+1, nil); err != nil {
					errs <- err
				}
			}
		}(c)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("Concurrent save failed: %v", err)
	}

	for c := 0; c < chapters; c++ {
		records, err := s.ListVersions(ctx, fmt.Sprintf("chapter_%d", c))
		if err != nil {
			t.Fatalf("ListVersions failed: %v", err)
		}
		if len(records) != perChapter {
			t.Errorf("chapter_%d: expected %d records, got %d", c, perChapter, len(records))
		}
		for i := 1; i < len(records); i++ {
			if records[i].Seq <= records[i-1].Seq {
				t.Errorf("chapter_%d: records out of order at %d", c, i)
			}
		}
	}
}
