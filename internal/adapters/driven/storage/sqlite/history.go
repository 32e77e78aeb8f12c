package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/merkuze-health/merkuze/internal/core/domain"
	"github.com/merkuze-health/merkuze/internal/core/ports/driven"
)

type runStore struct {
	db *sql.DB
}

var _ driven.IngestionHistory = (*runStore)(nil)

// Record logs a finished ingestion run.
func (s *runStore) Record(ctx context.Context, run domain.IngestionRun) error {
	failures := run.Failures
	if failures == nil {
		failures = []domain.ChunkFailure{}
	}
	failuresJSON, err := json.Marshal(failures)
	if err != nil {
		return fmt.Errorf("marshalling failures: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO ingestion_runs (collection, succeeded, failed, failures, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.Collection, run.Succeeded, run.Failed, string(failuresJSON),
		formatTime(run.StartedAt), formatTime(run.FinishedAt))

	if err != nil {
		return fmt.Errorf("recording ingestion run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *runStore) Recent(ctx context.Context, limit int) ([]domain.IngestionRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, collection, succeeded, failed, failures, started_at, finished_at
		FROM ingestion_runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying ingestion runs: %w", err)
	}
	defer rows.Close()

	runs := []domain.IngestionRun{}
	for rows.Next() {
		var run domain.IngestionRun
		var failuresJSON, startedAt, finishedAt string
		if err := rows.Scan(&run.ID, &run.Collection, &run.Succeeded, &run.Failed,
			&failuresJSON, &startedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("scanning ingestion run: %w", err)
		}
		if err := json.Unmarshal([]byte(failuresJSON), &run.Failures); err != nil {
			return nil, fmt.Errorf("unmarshaling failures: %w", err)
		}
		run.StartedAt = parseTime(startedAt)
		run.FinishedAt = parseTime(finishedAt)
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ingestion runs: %w", err)
	}

	return runs, nil
}
