// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package runlog records the outcome of generation jobs in a SQLite ledger.
// Only summary counts are kept; generated text and images are never stored.
package runlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paperforge/internal/pipeline"
)

// ErrNotFound is returned by Get when no entry has the requested id.
var ErrNotFound = errors.New("run not found")

const defaultListLimit = 20

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Entry is one finished job.
type Entry struct {
	JobID      string    `json:"job_id" yaml:"job_id"`
	Topic      string    `json:"topic" yaml:"topic"`
	State      string    `json:"state" yaml:"state"`
	Percent    int       `json:"percent" yaml:"percent"`
	Sections   int       `json:"sections" yaml:"sections"`
	References int       `json:"references" yaml:"references"`
	Images     int       `json:"images" yaml:"images"`
	Reason     string    `json:"reason,omitempty" yaml:"reason,omitempty"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
}

// Duration returns how long the job ran.
func (e Entry) Duration() time.Duration {
	return e.FinishedAt.Sub(e.StartedAt)
}

// FromStatus builds an Entry from a job's final status.
func FromStatus(st pipeline.Status, started time.Time) Entry {
	e := Entry{
		JobID:      st.JobID,
		Topic:      st.Topic,
		State:      st.State.Kind.String(),
		Percent:    st.Percent,
		Reason:     st.State.Reason,
		StartedAt:  started,
		FinishedAt: st.UpdatedAt,
	}
	if doc := st.State.Document; doc != nil {
		e.Sections = len(doc.Sections)
		e.References = len(doc.References)
		e.Images = doc.ImageCount()
	}
	return e
}

// Store manages the ledger database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the ledger at path, creating parent directories
// and the schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			job_id TEXT PRIMARY KEY,
			topic TEXT NOT NULL,
			state TEXT NOT NULL,
			percent INTEGER NOT NULL,
			sections INTEGER NOT NULL,
			refs INTEGER NOT NULL,
			images INTEGER NOT NULL,
			reason TEXT,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_finished_at ON runs(finished_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts e, replacing any earlier entry with the same job id.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.JobID == "" {
		return fmt.Errorf("recording run: empty job id")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (job_id, topic, state, percent, sections, refs, images, reason, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(job_id) DO UPDATE SET
			topic=excluded.topic, state=excluded.state, percent=excluded.percent,
			sections=excluded.sections, refs=excluded.refs, images=excluded.images,
			reason=excluded.reason, started_at=excluded.started_at, finished_at=excluded.finished_at`,
		e.JobID, e.Topic, e.State, e.Percent, e.Sections, e.References, e.Images, e.Reason,
		formatTime(e.StartedAt), formatTime(e.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", e.JobID, err)
	}
	return nil
}

// List returns up to limit entries, most recently finished first. A
// non-positive limit uses the default of 20.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT job_id, topic, state, percent, sections, refs, images, reason, started_at, finished_at
		 FROM runs ORDER BY finished_at DESC, job_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Get returns the entry for jobID, or ErrNotFound.
func (s *Store) Get(ctx context.Context, jobID string) (Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT job_id, topic, state, percent, sections, refs, images, reason, started_at, finished_at
		 FROM runs WHERE job_id = ?`, jobID)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, jobID)
	}
	return e, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (Entry, error) {
	var (
		e                 Entry
		reason            sql.NullString
		started, finished string
	)
	err := sc.Scan(&e.JobID, &e.Topic, &e.State, &e.Percent, &e.Sections, &e.References, &e.Images,
		&reason, &started, &finished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("scanning run: %w", err)
	}
	e.Reason = reason.String
	if e.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return Entry{}, fmt.Errorf("parsing started_at for %s: %w", e.JobID, err)
	}
	if e.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
		return Entry{}, fmt.Errorf("parsing finished_at for %s: %w", e.JobID, err)
	}
	return e, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
