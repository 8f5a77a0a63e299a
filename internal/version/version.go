// Package version defines the chapter version model shared by the store,
// the selector, and the workflow controller. Records are immutable snapshots;
// history is strictly append-only.
package version

import (
	"context"
	"strings"
	"time"
	"unicode"
)

// Type tags a record with its provenance in the revision pipeline.
type Type string

const (
	TypeRaw         Type = "raw"           // initial acquisition, iteration 0
	TypeSpun        Type = "spun"          // AI rewriter output
	TypeReviewed    Type = "reviewed"      // spun content + reviewer metadata
	TypeHumanEdited Type = "human_edited"  // direct human edit
	TypeFinal       Type = "final"         // explicit human finalization
	TypeAutoFinish  Type = "auto_finished" // saved when the iteration budget ran out
)

// Valid reports whether t is one of the known version types.
func (t Type) Valid() bool {
	switch t {
	case TypeRaw, TypeSpun, TypeReviewed, TypeHumanEdited, TypeFinal, TypeAutoFinish:
		return true
	}
	return false
}

// Record is one immutable snapshot of a chapter's content.
// Seq is assigned by the store and orders records within a chapter.
type Record struct {
	Seq       int64          `json:"seq"`
	ID        string         `json:"id"`
	ChapterID string         `json:"chapter_id"`
	Content   string         `json:"content"`
	Type      Type           `json:"version_type"`
	Iteration int            `json:"iteration"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Store is the append-only persistence contract for chapter versions.
// Save assigns a fresh version id and returns it. ListVersions returns a
// chapter's full history in creation order; an unknown chapter yields an
// empty slice, not an error.
type Store interface {
	Save(ctx context.Context, chapterID, content string, vt Type, iteration int, metadata map[string]any) (string, error)
	ListVersions(ctx context.Context, chapterID string) ([]Record, error)
}

// ChapterID derives a stable storage id from a human-readable chapter name.
// Identical names always map to the same id: the name is case-folded and
// whitespace and path-unsafe characters are normalized.
func ChapterID(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	prevSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsSpace(r), r == '/', r == '\\':
			if !prevSep {
				b.WriteByte('_')
				prevSep = true
			}
		case r == ':', r == '*', r == '?', r == '"', r == '<', r == '>', r == '|':
			// dropped outright, matching the publication layout on disk
		default:
			b.WriteRune(r)
			prevSep = false
		}
	}
	return strings.Trim(b.String(), "_")
}
