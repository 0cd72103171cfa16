package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/bugzilla-recovery/internal/model"
)

const commentColumns = `issue_id, comment_index, author, body, received_at, dedup_key`

// GetComments retrieves the comments of one issue in comment order.
// Unnumbered comments sort last, by arrival.
func (s *SQLiteStore) GetComments(ctx context.Context, issueID int64) ([]model.Comment, error) {
	var comments []model.Comment
	err := s.db.SelectContext(ctx, &comments, `
		SELECT `+commentColumns+` FROM comments
		WHERE issue_id = ?
		ORDER BY comment_index < 0, comment_index, received_at, id`, issueID)
	if err != nil {
		return nil, fmt.Errorf("querying comments for issue %d: %w", issueID, err)
	}
	return comments, nil
}

// CountComments returns the number of stored comments.
func (s *SQLiteStore) CountComments(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM comments"); err != nil {
		return 0, fmt.Errorf("counting comments: %w", err)
	}
	return n, nil
}

func insertComment(ctx context.Context, e sqlx.ExecerContext, c model.Comment) (bool, error) {
	result, err := e.ExecContext(ctx, `
		INSERT OR IGNORE INTO comments (`+commentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.IssueID, c.CommentIndex, c.Author, c.Body, c.ReceivedAt.UTC(), c.DedupKey,
	)
	if err != nil {
		return false, fmt.Errorf("inserting comment for issue %d: %w", c.IssueID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading insert result: %w", err)
	}
	return rows > 0, nil
}
