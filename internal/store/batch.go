package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/bugzilla-recovery/internal/model"
)

// Batch is one transaction of reconciler writes. It satisfies
// reconcile.Store.
type Batch struct {
	tx *sqlx.Tx
}

// GetIssue returns the stored issue, or nil if it has not been seen.
func (b *Batch) GetIssue(ctx context.Context, id int64) (*model.Issue, error) {
	return getIssue(ctx, b.tx, id)
}

// InsertIssue adds a new issue row. An existing row is left untouched.
func (b *Batch) InsertIssue(ctx context.Context, issue model.Issue) error {
	return insertIssue(ctx, b.tx, issue)
}

// UpdateIssue overwrites the metadata of an existing issue row.
func (b *Batch) UpdateIssue(ctx context.Context, issue model.Issue) error {
	return updateIssue(ctx, b.tx, issue)
}

// InsertComment adds c unless its dedup key is already stored for the
// issue, and reports whether a row was added.
func (b *Batch) InsertComment(ctx context.Context, c model.Comment) (bool, error) {
	return insertComment(ctx, b.tx, c)
}

// Commit makes the batch durable.
func (b *Batch) Commit() error {
	if err := b.tx.Commit(); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}
	return nil
}

// Rollback discards the batch. It is a no-op after Commit.
func (b *Batch) Rollback() {
	_ = b.tx.Rollback()
}
