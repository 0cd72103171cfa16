// Package reconcile merges parsed notifications into stored issue and
// comment records.
//
// The only consistency rule is an optimistic compare-and-update: stored
// metadata is overwritten only by a strictly newer authoritative
// message. With a single sequential writer no locking is needed, and
// re-running an archive is idempotent.
package reconcile

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nhle/bugzilla-recovery/internal/bugmail"
	"github.com/nhle/bugzilla-recovery/internal/model"
)

// Store is the persistence surface the reconciler needs.
type Store interface {
	// GetIssue returns nil without error when the issue is unknown.
	GetIssue(ctx context.Context, id int64) (*model.Issue, error)
	InsertIssue(ctx context.Context, issue model.Issue) error
	UpdateIssue(ctx context.Context, issue model.Issue) error
	// InsertComment skips rows whose (issue_id, dedup_key) exists and
	// reports whether a row was added.
	InsertComment(ctx context.Context, c model.Comment) (bool, error)
}

// IssueOutcome says what happened to the issue row for one message.
type IssueOutcome int

const (
	IssueInserted IssueOutcome = iota + 1
	IssueUpdated
	// IssueStale means the stored row is as new or newer.
	IssueStale
	// IssueNonAuthoritative means the category may not overwrite metadata.
	IssueNonAuthoritative
)

func (o IssueOutcome) String() string {
	switch o {
	case IssueInserted:
		return "inserted"
	case IssueUpdated:
		return "updated"
	case IssueStale:
		return "stale"
	case IssueNonAuthoritative:
		return "non-authoritative"
	default:
		return "none"
	}
}

// Result summarises one Apply call.
type Result struct {
	Issue              IssueOutcome
	CommentsInserted   int
	CommentsDuplicate  int
	BodiesUnrecognized int
}

// Reconciler applies parsed messages to a Store.
type Reconciler struct {
	logger *zap.Logger
}

// New creates a Reconciler. A nil logger discards output.
func New(logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{logger: logger}
}

// Apply merges msg into s. Metadata and comments are reconciled
// independently: a stale message still contributes its comments.
// msg must be eligible.
func (r *Reconciler) Apply(
	ctx context.Context,
	s Store,
	msg *bugmail.ParsedMessage,
) (Result, error) {
	if !msg.Eligible() {
		return Result{}, fmt.Errorf("reconciling ineligible %s message", msg.Category.Label())
	}

	var res Result

	outcome, err := r.applyIssue(ctx, s, msg)
	if err != nil {
		return res, err
	}
	res.Issue = outcome

	for _, body := range msg.Bodies {
		if !body.Recognized {
			res.BodiesUnrecognized++
			continue
		}

		c := withFingerprint(model.Comment{
			IssueID:      msg.Subject.IssueID,
			CommentIndex: body.CommentIndex,
			Author:       msg.Author,
			Body:         body.Body,
			ReceivedAt:   msg.Date,
		})

		added, err := s.InsertComment(ctx, c)
		if err != nil {
			return res, fmt.Errorf("inserting comment %d of bug %d: %w", c.CommentIndex, c.IssueID, err)
		}
		if added {
			res.CommentsInserted++
		} else {
			res.CommentsDuplicate++
		}
	}

	return res, nil
}

// applyIssue inserts or freshness-gates the issue row.
func (r *Reconciler) applyIssue(
	ctx context.Context,
	s Store,
	msg *bugmail.ParsedMessage,
) (IssueOutcome, error) {
	id := msg.Subject.IssueID

	existing, err := s.GetIssue(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("loading bug %d: %w", id, err)
	}

	incoming := issueFromMessage(msg)

	if existing == nil {
		if err := s.InsertIssue(ctx, incoming); err != nil {
			return 0, fmt.Errorf("inserting bug %d: %w", id, err)
		}
		return IssueInserted, nil
	}

	if msg.Eligibility != bugmail.Authoritative {
		r.logger.Debug("non-authoritative metadata ignored",
			zap.Int64("issue_id", id),
			zap.String("category", msg.Category.Label()),
		)
		return IssueNonAuthoritative, nil
	}

	if !msg.Date.After(existing.LastUpdate) {
		r.logger.Debug("stale metadata ignored",
			zap.Int64("issue_id", id),
			zap.Time("message_date", msg.Date),
			zap.Time("last_update", existing.LastUpdate),
		)
		return IssueStale, nil
	}

	incoming.IsSecurity = incoming.IsSecurity || existing.IsSecurity
	if err := s.UpdateIssue(ctx, incoming); err != nil {
		return 0, fmt.Errorf("updating bug %d: %w", id, err)
	}
	return IssueUpdated, nil
}

func issueFromMessage(msg *bugmail.ParsedMessage) model.Issue {
	issue := model.Issue{
		ID:         msg.Subject.IssueID,
		Subject:    msg.Subject.Title,
		Product:    msg.Metadata.Product,
		Component:  msg.Metadata.Component,
		Severity:   msg.Metadata.Severity,
		Priority:   msg.Metadata.Priority,
		Status:     msg.Metadata.Status,
		Assignee:   msg.Metadata.Assignee,
		LastUpdate: msg.Date,
	}
	for _, body := range msg.Bodies {
		if body.IsSecurity {
			issue.IsSecurity = true
		}
	}
	return issue
}
