package ingest

import (
	"github.com/nhle/bugzilla-recovery/internal/reconcile"
)

// Stats counts what happened to the messages of one archive.
type Stats struct {
	Archive string

	Messages         int
	SkippedCategory  int
	MalformedSubject int
	UnreadableHeader int
	UndatedMessages  int
	UnreadableParts  int

	IssuesInserted         int
	IssuesUpdated          int
	IssuesStale            int
	IssuesNonAuthoritative int

	CommentsInserted   int
	CommentsDuplicate  int
	BodiesUnrecognized int
}

// Add accumulates o into s. The archive name is left unchanged.
func (s *Stats) Add(o Stats) {
	s.Messages += o.Messages
	s.SkippedCategory += o.SkippedCategory
	s.MalformedSubject += o.MalformedSubject
	s.UnreadableHeader += o.UnreadableHeader
	s.UndatedMessages += o.UndatedMessages
	s.UnreadableParts += o.UnreadableParts
	s.IssuesInserted += o.IssuesInserted
	s.IssuesUpdated += o.IssuesUpdated
	s.IssuesStale += o.IssuesStale
	s.IssuesNonAuthoritative += o.IssuesNonAuthoritative
	s.CommentsInserted += o.CommentsInserted
	s.CommentsDuplicate += o.CommentsDuplicate
	s.BodiesUnrecognized += o.BodiesUnrecognized
}

func (s *Stats) record(res reconcile.Result) {
	switch res.Issue {
	case reconcile.IssueInserted:
		s.IssuesInserted++
	case reconcile.IssueUpdated:
		s.IssuesUpdated++
	case reconcile.IssueStale:
		s.IssuesStale++
	case reconcile.IssueNonAuthoritative:
		s.IssuesNonAuthoritative++
	}
	s.CommentsInserted += res.CommentsInserted
	s.CommentsDuplicate += res.CommentsDuplicate
	s.BodiesUnrecognized += res.BodiesUnrecognized
}
