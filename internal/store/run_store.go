package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/bugzilla-recovery/internal/model"
)

// StartRun records the beginning of an archive pass.
func (s *SQLiteStore) StartRun(ctx context.Context, archive string) (model.IngestRun, error) {
	run := model.IngestRun{
		ID:        uuid.New().String(),
		Archive:   archive,
		StartedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ingest_runs (id, archive, started_at)
		VALUES (?, ?, ?)`,
		run.ID, run.Archive, run.StartedAt,
	)
	if err != nil {
		return model.IngestRun{}, fmt.Errorf("starting run for %s: %w", archive, err)
	}
	return run, nil
}

// FinishRun stores the counters of a completed pass.
func (s *SQLiteStore) FinishRun(ctx context.Context, run model.IngestRun) error {
	finished := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		UPDATE ingest_runs SET
			finished_at = ?, messages = ?, issues_inserted = ?,
			issues_updated = ?, comments_inserted = ?
		WHERE id = ?`,
		finished, run.Messages, run.IssuesInserted,
		run.IssuesUpdated, run.CommentsInserted, run.ID,
	)
	if err != nil {
		return fmt.Errorf("finishing run %s: %w", run.ID, err)
	}
	return nil
}

// GetRuns lists recorded passes, oldest first.
func (s *SQLiteStore) GetRuns(ctx context.Context) ([]model.IngestRun, error) {
	var runs []model.IngestRun
	err := s.db.SelectContext(ctx, &runs, `
		SELECT id, archive, started_at, finished_at, messages,
			issues_inserted, issues_updated, comments_inserted
		FROM ingest_runs ORDER BY started_at, id`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	return runs, nil
}
