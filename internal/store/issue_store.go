package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/bugzilla-recovery/internal/model"
)

const issueColumns = `issue_id, subject, product, component, severity,
	priority, status, assignee, is_security, last_update`

// GetIssue retrieves a single issue by bug number, or nil if unknown.
func (s *SQLiteStore) GetIssue(ctx context.Context, id int64) (*model.Issue, error) {
	return getIssue(ctx, s.db, id)
}

// GetIssues retrieves every issue ordered by bug number.
func (s *SQLiteStore) GetIssues(ctx context.Context) ([]model.Issue, error) {
	var issues []model.Issue
	err := s.db.SelectContext(ctx, &issues,
		"SELECT "+issueColumns+" FROM issues ORDER BY issue_id")
	if err != nil {
		return nil, fmt.Errorf("querying issues: %w", err)
	}
	return issues, nil
}

// CountIssues returns the number of stored issues.
func (s *SQLiteStore) CountIssues(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM issues"); err != nil {
		return 0, fmt.Errorf("counting issues: %w", err)
	}
	return n, nil
}

func getIssue(ctx context.Context, q sqlx.QueryerContext, id int64) (*model.Issue, error) {
	var issue model.Issue
	err := sqlx.GetContext(ctx, q, &issue,
		"SELECT "+issueColumns+" FROM issues WHERE issue_id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting issue %d: %w", id, err)
	}
	return &issue, nil
}

func insertIssue(ctx context.Context, e sqlx.ExecerContext, issue model.Issue) error {
	_, err := e.ExecContext(ctx, `
		INSERT OR IGNORE INTO issues (`+issueColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		issue.ID, issue.Subject, issue.Product, issue.Component, issue.Severity,
		issue.Priority, issue.Status, issue.Assignee, boolToInt(issue.IsSecurity),
		issue.LastUpdate.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting issue %d: %w", issue.ID, err)
	}
	return nil
}

func updateIssue(ctx context.Context, e sqlx.ExecerContext, issue model.Issue) error {
	result, err := e.ExecContext(ctx, `
		UPDATE issues SET
			subject = ?, product = ?, component = ?, severity = ?,
			priority = ?, status = ?, assignee = ?, is_security = ?,
			last_update = ?
		WHERE issue_id = ?`,
		issue.Subject, issue.Product, issue.Component, issue.Severity,
		issue.Priority, issue.Status, issue.Assignee, boolToInt(issue.IsSecurity),
		issue.LastUpdate.UTC(), issue.ID,
	)
	if err != nil {
		return fmt.Errorf("updating issue %d: %w", issue.ID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("issue %d not found", issue.ID)
	}
	return nil
}
