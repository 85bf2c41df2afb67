package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ppiankov/memodraft/internal/model"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS feedback_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT NOT NULL,
	topic TEXT NOT NULL,
	cycle_count INTEGER NOT NULL,
	rating INTEGER,
	feedback_text TEXT
);

CREATE TABLE IF NOT EXISTS run_outcomes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT NOT NULL,
	topic TEXT NOT NULL,
	cycle_count INTEGER NOT NULL,
	grounded INTEGER NOT NULL,
	final_decision TEXT NOT NULL,
	run_id TEXT
);
CREATE INDEX IF NOT EXISTS idx_run_outcomes_topic ON run_outcomes(topic);
`

// SQLite stores feedback and outcomes in a SQLite database.
// Each append runs in its own transaction.
type SQLite struct {
	db     *sql.DB
	path   string
	mu     sync.Mutex
	schema bool
}

// OpenSQLite opens (or creates) the database at path. Tables are created on
// first use.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	return &SQLite{db: db, path: path}, nil
}

// Path returns the database file path
func (s *SQLite) Path() string {
	return s.path
}

// Close closes the database connection
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) ensureSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schema {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	s.schema = true
	return nil
}

func (s *SQLite) insert(ctx context.Context, query string, args ...any) (err error) {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// AppendFeedback inserts one feedback row
func (s *SQLite) AppendFeedback(ctx context.Context, rec model.FeedbackRecord) error {
	var rating sql.NullInt64
	if rec.Rating != nil {
		rating = sql.NullInt64{Int64: int64(*rec.Rating), Valid: true}
	}
	var text sql.NullString
	if rec.Text != "" {
		text = sql.NullString{String: rec.Text, Valid: true}
	}

	err := s.insert(ctx,
		`INSERT INTO feedback_log (timestamp, topic, cycle_count, rating, feedback_text) VALUES (?, ?, ?, ?, ?)`,
		formatTime(rec.Timestamp), rec.Topic, rec.Cycle, rating, text,
	)
	if err != nil {
		return fmt.Errorf("append feedback: %w", err)
	}
	return nil
}

// ListFeedback returns every feedback row in insertion order
func (s *SQLite) ListFeedback(ctx context.Context) ([]model.FeedbackRecord, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT timestamp, topic, cycle_count, rating, feedback_text FROM feedback_log ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.FeedbackRecord
	for rows.Next() {
		var (
			ts     string
			rec    model.FeedbackRecord
			rating sql.NullInt64
			text   sql.NullString
		)
		if err := rows.Scan(&ts, &rec.Topic, &rec.Cycle, &rating, &text); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		rec.Timestamp = parseTime(ts)
		if rating.Valid {
			r := int(rating.Int64)
			rec.Rating = &r
		}
		rec.Text = text.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

// AppendOutcome inserts one run outcome row
func (s *SQLite) AppendOutcome(ctx context.Context, outcome model.RunOutcome) error {
	err := s.insert(ctx,
		`INSERT INTO run_outcomes (timestamp, topic, cycle_count, grounded, final_decision, run_id) VALUES (?, ?, ?, ?, ?, ?)`,
		formatTime(outcome.Timestamp), outcome.Topic, outcome.CycleCount, outcome.Grounded, string(outcome.FinalDecision), outcome.RunID,
	)
	if err != nil {
		return fmt.Errorf("append outcome: %w", err)
	}
	return nil
}

// ListOutcomes returns every run outcome in insertion order
func (s *SQLite) ListOutcomes(ctx context.Context) ([]model.RunOutcome, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT timestamp, topic, cycle_count, grounded, final_decision, run_id FROM run_outcomes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var outcomes []model.RunOutcome
	for rows.Next() {
		var (
			ts       string
			decision string
			runID    sql.NullString
			o        model.RunOutcome
		)
		if err := rows.Scan(&ts, &o.Topic, &o.CycleCount, &o.Grounded, &decision, &runID); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		o.Timestamp = parseTime(ts)
		o.FinalDecision = model.FinalDecision(decision)
		o.RunID = runID.String
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
