package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/fedcrawl"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ fedcrawl.RunService = (*RunService)(nil)

// RunService implements fedcrawl.RunService using SQLite.
type RunService struct {
	db *DB
}

// NewRunService creates a new RunService.
func NewRunService(db *DB) *RunService {
	return &RunService{db: db}
}

// CreateRun creates a new run.
func (s *RunService) CreateRun(ctx context.Context, run *fedcrawl.Run) error {
	if err := run.Validate(); err != nil {
		return err
	}

	run.ID = uuid.New().String()
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, seed, started_at)
		VALUES (?, ?, ?)
	`, run.ID, string(run.Seed), formatTime(run.StartedAt))

	return err
}

// FinishRun stores the final counts of a run.
func (s *RunService) FinishRun(ctx context.Context, run *fedcrawl.Run) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET finished_at = ?, visited = ?, skipped = ?, errored = ?, pending = ?, reason = ?
		WHERE id = ?
	`, formatTime(run.FinishedAt), run.Visited, run.Skipped, run.Errored, run.Pending, run.Reason, run.ID)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fedcrawl.Errorf(fedcrawl.ENOTFOUND, "run not found")
	}
	return nil
}

// FindRunByID retrieves a run by ID.
func (s *RunService) FindRunByID(ctx context.Context, id string) (*fedcrawl.Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seed, started_at, finished_at, visited, skipped, errored, pending, reason
		FROM runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fedcrawl.Errorf(fedcrawl.ENOTFOUND, "run not found")
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// FindRuns retrieves up to limit runs, newest first. A limit of 0 returns all runs.
func (s *RunService) FindRuns(ctx context.Context, limit int) ([]*fedcrawl.Run, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT id, seed, started_at, finished_at, visited, skipped, errored, pending, reason
		FROM runs ORDER BY started_at DESC, rowid DESC`)
	appendLimit(&query, &args, limit)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*fedcrawl.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RecordOutcome appends a domain outcome to a run.
func (s *RunService) RecordOutcome(ctx context.Context, outcome *fedcrawl.Outcome) error {
	if err := outcome.Validate(); err != nil {
		return err
	}
	if outcome.RecordedAt.IsZero() {
		outcome.RecordedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO outcomes (run_id, domain, status, error_kind, recorded_at)
		VALUES (?, ?, ?, ?, ?)
	`, outcome.RunID, string(outcome.Domain), string(outcome.Status), outcome.ErrorKind,
		formatTime(outcome.RecordedAt))

	return err
}

// FindOutcomes retrieves a run's outcomes in recording order.
func (s *RunService) FindOutcomes(ctx context.Context, runID string) ([]*fedcrawl.Outcome, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, domain, status, error_kind, recorded_at
		FROM outcomes
		WHERE run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outcomes []*fedcrawl.Outcome
	for rows.Next() {
		var o fedcrawl.Outcome
		var domain, status, recordedAt string
		if err := rows.Scan(&o.RunID, &domain, &status, &o.ErrorKind, &recordedAt); err != nil {
			return nil, err
		}
		o.Domain = fedcrawl.Domain(domain)
		o.Status = fedcrawl.OutcomeStatus(status)
		if o.RecordedAt, err = parseRFC3339(recordedAt, "recorded_at"); err != nil {
			return nil, err
		}
		outcomes = append(outcomes, &o)
	}
	return outcomes, rows.Err()
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*fedcrawl.Run, error) {
	var run fedcrawl.Run
	var seed, startedAt, finishedAt string

	if err := row.Scan(&run.ID, &seed, &startedAt, &finishedAt,
		&run.Visited, &run.Skipped, &run.Errored, &run.Pending, &run.Reason); err != nil {
		return nil, err
	}
	run.Seed = fedcrawl.Domain(seed)

	var err error
	if run.StartedAt, err = parseRFC3339(startedAt, "started_at"); err != nil {
		return nil, err
	}
	if finishedAt != "" {
		if run.FinishedAt, err = parseRFC3339(finishedAt, "finished_at"); err != nil {
			return nil, err
		}
	}
	return &run, nil
}
