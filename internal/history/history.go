// Package history archives every question the quiz has ever served, in
// a local sqlite database. The archive backs the stats command and the
// selector's last-resort tier of previously seen material.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/playdailyfive/daily5/internal/source"
)

type Store struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}

	s := &Store{readDB: readDB, writeDB: writeDB}
	if err := s.init(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS questions (
			hash         TEXT PRIMARY KEY,
			text         TEXT NOT NULL,
			correct      TEXT NOT NULL,
			incorrect    TEXT NOT NULL DEFAULT '[]',
			difficulty   TEXT NOT NULL,
			category     TEXT NOT NULL DEFAULT '',
			first_day    TEXT NOT NULL,
			last_day     TEXT NOT NULL,
			run_id       TEXT NOT NULL,
			times_served INTEGER NOT NULL DEFAULT 1,
			served_at    DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_questions_served_at ON questions(served_at);

		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	var errs []error
	if s.readDB != nil {
		errs = append(errs, s.readDB.Close())
	}
	if s.writeDB != nil {
		errs = append(errs, s.writeDB.Close())
	}
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// RecordServed archives the day's selection under a run ID, bumping
// times_served for repeats.
func (s *Store) RecordServed(runID, day string, served map[string]source.Question) error {
	tx, err := s.writeDB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO questions (hash, text, correct, incorrect, difficulty, category, first_day, last_day, run_id, times_served, served_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?)
		ON CONFLICT(hash) DO UPDATE SET
			last_day = excluded.last_day,
			run_id = excluded.run_id,
			times_served = times_served + 1,
			served_at = excluded.served_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for hash, q := range served {
		incorrect, err := json.Marshal(q.Incorrect)
		if err != nil {
			return fmt.Errorf("encoding options for %s: %w", hash, err)
		}
		if _, err := stmt.Exec(hash, q.Text, q.Correct, string(incorrect), string(q.Difficulty), q.Category, day, day, runID, now); err != nil {
			return fmt.Errorf("recording question %s: %w", hash, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	return s.setMeta("last_run", now.Format(time.RFC3339))
}

// Stale returns up to limit archived questions, least recently served
// first, the preferred order for begrudgingly repeating material.
func (s *Store) Stale(limit int) ([]source.Question, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.readDB.Query(`
		SELECT text, correct, incorrect, difficulty, category
		FROM questions ORDER BY served_at ASC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var qs []source.Question
	for rows.Next() {
		var q source.Question
		var incorrect, difficulty string
		if err := rows.Scan(&q.Text, &q.Correct, &incorrect, &difficulty, &q.Category); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		if err := json.Unmarshal([]byte(incorrect), &q.Incorrect); err != nil || len(q.Incorrect) != 3 {
			continue
		}
		q.Difficulty = source.Difficulty(difficulty)
		qs = append(qs, q)
	}
	return qs, rows.Err()
}

// Prune deletes rows last served before the retention window. Returns
// the number removed.
func (s *Store) Prune(retention time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-retention)
	res, err := s.writeDB.Exec("DELETE FROM questions WHERE served_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning history: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Stats returns the row count and the database file size in bytes.
func (s *Store) Stats(dbPath string) (int, int64, error) {
	var count int
	if err := s.readDB.QueryRow("SELECT COUNT(*) FROM questions").Scan(&count); err != nil {
		return 0, 0, fmt.Errorf("counting questions: %w", err)
	}
	info, err := os.Stat(dbPath)
	if err != nil {
		return count, 0, err
	}
	return count, info.Size(), nil
}

// LastRun returns the time of the most recent recorded run.
func (s *Store) LastRun() (time.Time, error) {
	var value string
	if err := s.readDB.QueryRow("SELECT value FROM meta WHERE key = 'last_run'").Scan(&value); err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, value)
}

func (s *Store) setMeta(key, value string) error {
	_, err := s.writeDB.Exec(`
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
