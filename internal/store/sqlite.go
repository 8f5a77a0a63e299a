// Package store persists chapter versions in SQLite.
//
// The history model is strictly append-only: Save inserts one row and no
// update-in-place operation exists anywhere in this package. Ordering within
// a chapter comes from the autoincrement sequence, so two saves in the same
// wall-clock instant still list in insertion order.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"bookspin/internal/logging"
	"bookspin/internal/version"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements version.Store on a single SQLite database.
// Safe for concurrent use; saves from independent chapter workflows only
// contend on the atomic append.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// NewSQLiteStore initializes the SQLite database at the given path,
// creating parent directories and the schema as needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	timer := logging.StartTimer(logging.CategoryStore, "NewSQLiteStore")
	defer timer.Stop()

	logging.Store("Initializing version store at %s", path)

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite journal_mode=WAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite synchronous=NORMAL: %v", err)
	}

	s := &SQLiteStore{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logging.StoreDebug("Version store schema ready")
	return s, nil
}

// initialize creates the required tables.
func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS chapter_versions (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		chapter_id TEXT NOT NULL,
		content TEXT NOT NULL,
		version_type TEXT NOT NULL,
		iteration INTEGER NOT NULL,
		metadata TEXT,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_versions_chapter ON chapter_versions(chapter_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Save appends one version record and returns its freshly assigned id.
// Metadata is stored as JSON verbatim; the store assigns no semantics to it.
func (s *SQLiteStore) Save(ctx context.Context, chapterID, content string, vt version.Type, iteration int, metadata map[string]any) (string, error) {
	if chapterID == "" {
		return "", fmt.Errorf("chapter id required")
	}
	if !vt.Valid() {
		return "", fmt.Errorf("unknown version type %q", vt)
	}
	if iteration < 0 {
		return "", fmt.Errorf("iteration must be non-negative, got %d", iteration)
	}

	var metaJSON sql.NullString
	if metadata != nil {
		data, err := json.Marshal(metadata)
		if err != nil {
			return "", fmt.Errorf("failed to encode metadata: %w", err)
		}
		metaJSON = sql.NullString{String: string(data), Valid: true}
	}

	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	logging.StoreDebug("Saving version: chapter=%s type=%s iteration=%d content_len=%d",
		chapterID, vt, iteration, len(content))

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chapter_versions (id, chapter_id, content, version_type, iteration, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, chapterID, content, string(vt), iteration, metaJSON, time.Now().UTC(),
	)
	if err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to save version for %s: %v", chapterID, err)
		return "", fmt.Errorf("failed to save version: %w", err)
	}

	logging.StoreDebug("Version saved: chapter=%s id=%s", chapterID, id)
	return id, nil
}

// ListVersions returns a chapter's full history in creation order.
// A chapter with no history yields an empty slice, not an error.
func (s *SQLiteStore) ListVersions(ctx context.Context, chapterID string) ([]version.Record, error) {
	timer := logging.StartTimer(logging.CategoryStore, "ListVersions")
	defer timer.Stop()

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, id, chapter_id, content, version_type, iteration, metadata, created_at
		 FROM chapter_versions
		 WHERE chapter_id = ?
		 ORDER BY seq ASC`,
		chapterID,
	)
	if err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to query versions for %s: %v", chapterID, err)
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	defer rows.Close()

	records := []version.Record{}
	for rows.Next() {
		var rec version.Record
		var vt string
		var metaJSON sql.NullString
		if err := rows.Scan(&rec.Seq, &rec.ID, &rec.ChapterID, &rec.Content, &vt, &rec.Iteration, &metaJSON, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan version row: %w", err)
		}
		rec.Type = version.Type(vt)
		if metaJSON.Valid {
			var meta map[string]any
			if err := json.Unmarshal([]byte(metaJSON.String), &meta); err != nil {
				return nil, fmt.Errorf("failed to decode metadata for version %s: %w", rec.ID, err)
			}
			rec.Metadata = meta
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate versions: %w", err)
	}

	logging.StoreDebug("Listed %d versions for chapter=%s", len(records), chapterID)
	return records, nil
}

// ChapterSummary is one row of the per-chapter overview.
type ChapterSummary struct {
	ChapterID string
	Versions  int
	LastType  version.Type
	UpdatedAt time.Time
}

// Chapters returns an overview of every chapter in the store, most recently
// updated first.
func (s *SQLiteStore) Chapters(ctx context.Context) ([]ChapterSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT chapter_id, COUNT(*), MAX(seq)
		 FROM chapter_versions
		 GROUP BY chapter_id
		 ORDER BY MAX(seq) DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	defer rows.Close()

	var summaries []ChapterSummary
	var lastSeqs []int64
	for rows.Next() {
		var sum ChapterSummary
		var lastSeq int64
		if err := rows.Scan(&sum.ChapterID, &sum.Versions, &lastSeq); err != nil {
			return nil, fmt.Errorf("failed to scan chapter row: %w", err)
		}
		summaries = append(summaries, sum)
		lastSeqs = append(lastSeqs, lastSeq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chapters: %w", err)
	}

	for i, lastSeq := range lastSeqs {
		var vt string
		if err := s.db.QueryRowContext(ctx,
			`SELECT version_type, created_at FROM chapter_versions WHERE seq = ?`, lastSeq,
		).Scan(&vt, &summaries[i].UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to load last version: %w", err)
		}
		summaries[i].LastType = version.Type(vt)
	}
	return summaries, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
