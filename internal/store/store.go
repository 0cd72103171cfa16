package store

import (
	"context"

	"github.com/nhle/bugzilla-recovery/internal/model"
	"github.com/nhle/bugzilla-recovery/internal/reconcile"
)

// Store defines the persistence interface used by ingestion and reports.
type Store interface {
	// === Batches ===

	Begin(ctx context.Context) (*Batch, error)

	// === Issues and comments ===

	GetIssue(ctx context.Context, id int64) (*model.Issue, error)
	GetIssues(ctx context.Context) ([]model.Issue, error)
	GetComments(ctx context.Context, issueID int64) ([]model.Comment, error)
	CountIssues(ctx context.Context) (int, error)
	CountComments(ctx context.Context) (int, error)

	// === Run log ===

	StartRun(ctx context.Context, archive string) (model.IngestRun, error)
	FinishRun(ctx context.Context, run model.IngestRun) error
	GetRuns(ctx context.Context) ([]model.IngestRun, error)

	Close() error
}

var (
	_ Store           = (*SQLiteStore)(nil)
	_ reconcile.Store = (*Batch)(nil)
)
