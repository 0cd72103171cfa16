package model

import "time"

// IngestRun is the audit record of one archive pass.
type IngestRun struct {
	ID         string     `json:"id" db:"id"`
	Archive    string     `json:"archive" db:"archive"`
	StartedAt  time.Time  `json:"started_at" db:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty" db:"finished_at"`

	Messages         int `json:"messages" db:"messages"`
	IssuesInserted   int `json:"issues_inserted" db:"issues_inserted"`
	IssuesUpdated    int `json:"issues_updated" db:"issues_updated"`
	CommentsInserted int `json:"comments_inserted" db:"comments_inserted"`
}
