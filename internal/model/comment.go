package model

import "time"

// Comment index sentinels. Numbered comments use their declared position
// (0 is the initial description).
const (
	// CommentIndexNone marks a body with no recognizable comment.
	CommentIndexNone = -1

	// CommentIndexUnnumbered marks a recognizable body whose comment
	// position could not be determined.
	CommentIndexUnnumbered = -2
)

// Comment is one free-form comment recovered from a notification body.
// Rows are immutable once stored.
type Comment struct {
	IssueID      int64     `json:"issue_id" db:"issue_id"`
	CommentIndex int       `json:"comment_index" db:"comment_index"`
	Author       string    `json:"author" db:"author"`
	Body         string    `json:"body" db:"body"`
	ReceivedAt   time.Time `json:"received_at" db:"received_at"`

	// DedupKey is unique per issue; see reconcile.Fingerprint.
	DedupKey string `json:"dedup_key" db:"dedup_key"`
}

// Numbered reports whether the comment carries a definite position.
func (c Comment) Numbered() bool {
	return c.CommentIndex >= 0
}
