package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Run is one recorded fixture execution.
type Run struct {
	ID      string `json:"id"`
	Fixture string `json:"fixture"`
	Digest  string `json:"digest"`
	Pass    bool   `json:"pass"`
	Error   string `json:"error,omitempty"`
	Seq     int64  `json:"seq"`
}

// RecordRun appends a run and returns it with its assigned seq. The seq is
// one past the highest recorded so far. A run whose ID is already present
// is left untouched and returned as stored.
func (s *Store) RecordRun(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		return Run{}, fmt.Errorf("record run: id is required")
	}
	if run.Fixture == "" {
		return Run{}, fmt.Errorf("record run: fixture is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, fixture, digest, pass, error, seq)
		VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM runs))
		ON CONFLICT(id) DO NOTHING
	`, run.ID, run.Fixture, run.Digest, run.Pass, run.Error)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}

	stored, err := scanRun(tx.QueryRowContext(ctx, `
		SELECT id, fixture, digest, pass, error, seq FROM runs WHERE id = ?
	`, run.ID))
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}
	return stored, nil
}

// ListRuns returns recorded runs in seq order. An empty fixture lists every
// run. Returns an empty slice, not nil, when nothing matches.
func (s *Store) ListRuns(ctx context.Context, fixture string) ([]Run, error) {
	query := `SELECT id, fixture, digest, pass, error, seq FROM runs`
	var args []any
	if fixture != "" {
		query += ` WHERE fixture = ?`
		args = append(args, fixture)
	}
	query += ` ORDER BY seq ASC, id COLLATE BINARY ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// LastRun returns the most recent run of a fixture. ok is false when the
// fixture has never run.
func (s *Store) LastRun(ctx context.Context, fixture string) (run Run, ok bool, err error) {
	run, err = scanRun(s.db.QueryRowContext(ctx, `
		SELECT id, fixture, digest, pass, error, seq FROM runs
		WHERE fixture = ?
		ORDER BY seq DESC
		LIMIT 1
	`, fixture))
	if err == sql.ErrNoRows {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, err
	}
	return run, true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	if err := row.Scan(&run.ID, &run.Fixture, &run.Digest, &run.Pass, &run.Error, &run.Seq); err != nil {
		if err == sql.ErrNoRows {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	return run, nil
}
