package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// MemoryPath keeps the journal for the lifetime of the process only.
const MemoryPath = ":memory:"

// Journal records what a feed session fetched and which feedback it sent.
type Journal struct {
	db *sql.DB
}

type BatchRecord struct {
	SessionID string
	Trigger   string
	Fetched   int
	Added     int
	OK        bool
}

type FeedbackRecord struct {
	SessionID string
	ItemIndex int
	Action    string
	OK        bool
}

type Summary struct {
	Batches        int
	FailedBatches  int
	ItemsFetched   int
	ItemsAdded     int
	Likes          int
	Skips          int
	FailedFeedback int
}

func NewJournal(path string) (*Journal, error) {
	if path == "" {
		path = MemoryPath
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// An in-memory database exists per connection.
	db.SetMaxOpenConns(1)
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

func (j *Journal) Init(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS batches (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  session_id TEXT NOT NULL,
  trigger TEXT NOT NULL,
  fetched INTEGER NOT NULL,
  added INTEGER NOT NULL,
  ok INTEGER NOT NULL,
  at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS feedback (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  session_id TEXT NOT NULL,
  item_index INTEGER NOT NULL,
  action TEXT NOT NULL,
  ok INTEGER NOT NULL,
  at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_batches_session ON batches(session_id);
CREATE INDEX IF NOT EXISTS idx_feedback_session ON feedback(session_id);
`
	if _, err := j.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (j *Journal) RecordBatch(ctx context.Context, rec BatchRecord) error {
	_, err := j.db.ExecContext(ctx, `
INSERT INTO batches (session_id, trigger, fetched, added, ok, at)
VALUES (?, ?, ?, ?, ?, ?)
`, rec.SessionID, rec.Trigger, rec.Fetched, rec.Added, boolInt(rec.OK), now())
	if err != nil {
		return fmt.Errorf("record batch: %w", err)
	}
	return nil
}

func (j *Journal) RecordFeedback(ctx context.Context, rec FeedbackRecord) error {
	_, err := j.db.ExecContext(ctx, `
INSERT INTO feedback (session_id, item_index, action, ok, at)
VALUES (?, ?, ?, ?, ?)
`, rec.SessionID, rec.ItemIndex, rec.Action, boolInt(rec.OK), now())
	if err != nil {
		return fmt.Errorf("record feedback %d: %w", rec.ItemIndex, err)
	}
	return nil
}

func (j *Journal) Summary(ctx context.Context, sessionID string) (Summary, error) {
	var s Summary
	err := j.db.QueryRowContext(ctx, `
SELECT
  COUNT(*),
  COALESCE(SUM(CASE WHEN ok = 0 THEN 1 ELSE 0 END), 0),
  COALESCE(SUM(fetched), 0),
  COALESCE(SUM(added), 0)
FROM batches
WHERE session_id = ?
`, sessionID).Scan(&s.Batches, &s.FailedBatches, &s.ItemsFetched, &s.ItemsAdded)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize batches: %w", err)
	}

	err = j.db.QueryRowContext(ctx, `
SELECT
  COALESCE(SUM(CASE WHEN ok = 1 AND action = 'like' THEN 1 ELSE 0 END), 0),
  COALESCE(SUM(CASE WHEN ok = 1 AND action = 'skip' THEN 1 ELSE 0 END), 0),
  COALESCE(SUM(CASE WHEN ok = 0 THEN 1 ELSE 0 END), 0)
FROM feedback
WHERE session_id = ?
`, sessionID).Scan(&s.Likes, &s.Skips, &s.FailedFeedback)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize feedback: %w", err)
	}
	return s, nil
}

func (s Summary) String() string {
	return fmt.Sprintf("%d batches (%d failed), %d items fetched, %d new, %d likes, %d unlikes, %d failed feedback",
		s.Batches, s.FailedBatches, s.ItemsFetched, s.ItemsAdded, s.Likes, s.Skips, s.FailedFeedback)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
