package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/nhle/bugzilla-recovery/internal/bugmail"
	"github.com/nhle/bugzilla-recovery/internal/model"
)

type commentKey struct {
	issueID int64
	key     string
}

// memStore is an in-memory Store with the same conflict rules as SQLite.
type memStore struct {
	issues   map[int64]model.Issue
	comments map[commentKey]model.Comment
}

func newMemStore() *memStore {
	return &memStore{
		issues:   make(map[int64]model.Issue),
		comments: make(map[commentKey]model.Comment),
	}
}

func (m *memStore) GetIssue(_ context.Context, id int64) (*model.Issue, error) {
	issue, ok := m.issues[id]
	if !ok {
		return nil, nil
	}
	return &issue, nil
}

func (m *memStore) InsertIssue(_ context.Context, issue model.Issue) error {
	if _, ok := m.issues[issue.ID]; !ok {
		m.issues[issue.ID] = issue
	}
	return nil
}

func (m *memStore) UpdateIssue(_ context.Context, issue model.Issue) error {
	m.issues[issue.ID] = issue
	return nil
}

func (m *memStore) InsertComment(_ context.Context, c model.Comment) (bool, error) {
	k := commentKey{c.IssueID, c.DedupKey}
	if _, ok := m.comments[k]; ok {
		return false, nil
	}
	m.comments[k] = c
	return true, nil
}

var (
	t1 = time.Date(2011, 5, 1, 9, 0, 0, 0, time.UTC)
	t2 = time.Date(2011, 5, 2, 9, 0, 0, 0, time.UTC)
)

func message(category bugmail.Category, at time.Time, status string, bodies ...bugmail.Classification) *bugmail.ParsedMessage {
	return &bugmail.ParsedMessage{
		Category:    category,
		Eligibility: category.Eligibility(),
		Subject:     bugmail.Subject{IssueID: 42, Title: "crash on startup"},
		Author:      "alice@example.com",
		Date:        at,
		Metadata:    bugmail.Metadata{Product: "Browser", Status: status},
		Bodies:      bodies,
	}
}

func numbered(index int, text string) bugmail.Classification {
	return bugmail.Classification{Body: text, CommentIndex: index, Recognized: true}
}

func apply(t *testing.T, r *Reconciler, s Store, msgs ...*bugmail.ParsedMessage) []Result {
	t.Helper()
	var out []Result
	for _, m := range msgs {
		res, err := r.Apply(context.Background(), s, m)
		require.NoError(t, err)
		out = append(out, res)
	}
	return out
}

func TestApplyInsertsNewIssue(t *testing.T) {
	s := newMemStore()
	r := New(zaptest.NewLogger(t))

	res := apply(t, r, s, message(bugmail.CategoryNew, t1, "NEW", numbered(0, "It crashes immediately.")))

	assert.Equal(t, IssueInserted, res[0].Issue)
	assert.Equal(t, 1, res[0].CommentsInserted)
	assert.Equal(t, model.Issue{
		ID:         42,
		Subject:    "crash on startup",
		Product:    "Browser",
		Status:     "NEW",
		LastUpdate: t1,
	}, s.issues[42])
}

func TestApplyOrderTolerance(t *testing.T) {
	older := func() *bugmail.ParsedMessage { return message(bugmail.CategoryNew, t1, "NEW") }
	newer := func() *bugmail.ParsedMessage { return message(bugmail.CategoryChanged, t2, "RESOLVED") }

	for name, order := range map[string][]*bugmail.ParsedMessage{
		"forward":  {older(), newer()},
		"backward": {newer(), older()},
	} {
		t.Run(name, func(t *testing.T) {
			s := newMemStore()
			apply(t, New(nil), s, order...)

			got := s.issues[42]
			assert.Equal(t, "RESOLVED", got.Status)
			assert.Equal(t, t2, got.LastUpdate)
		})
	}
}

func TestApplyEqualTimestampIsStale(t *testing.T) {
	s := newMemStore()
	res := apply(t, New(nil), s,
		message(bugmail.CategoryNew, t1, "NEW"),
		message(bugmail.CategoryChanged, t1, "ASSIGNED"),
	)

	assert.Equal(t, IssueStale, res[1].Issue)
	assert.Equal(t, "NEW", s.issues[42].Status)
}

func TestApplyNonAuthoritativeGuard(t *testing.T) {
	s := newMemStore()
	res := apply(t, New(nil), s,
		message(bugmail.CategoryNew, t1, "NEW"),
		message(bugmail.CategoryRequest, t2, "REQUESTED", numbered(5, "review?")),
	)

	assert.Equal(t, IssueNonAuthoritative, res[1].Issue)
	assert.Equal(t, 1, res[1].CommentsInserted)
	assert.Equal(t, "NEW", s.issues[42].Status)
	assert.Equal(t, t1, s.issues[42].LastUpdate)
}

func TestApplyRequestMayCreateIssue(t *testing.T) {
	s := newMemStore()
	res := apply(t, New(nil), s, message(bugmail.CategoryRequest, t1, "NEW"))

	assert.Equal(t, IssueInserted, res[0].Issue)
	assert.Contains(t, s.issues, int64(42))
}

func TestApplySecurityIsMonotonic(t *testing.T) {
	secure := numbered(1, "moved to security")
	secure.IsSecurity = true

	s := newMemStore()
	apply(t, New(nil), s,
		message(bugmail.CategoryNew, t1, "NEW", secure),
		message(bugmail.CategoryChanged, t2, "FIXED", numbered(2, "fixed")),
	)

	got := s.issues[42]
	assert.True(t, got.IsSecurity)
	assert.Equal(t, "FIXED", got.Status)
}

func TestApplyCommentDedupByIndex(t *testing.T) {
	s := newMemStore()
	res := apply(t, New(nil), s,
		message(bugmail.CategoryChanged, t1, "NEW", numbered(3, "Taking this one.")),
		message(bugmail.CategoryChanged, t1, "NEW", numbered(3, "Taking  this one.\n")),
	)

	assert.Equal(t, 1, res[0].CommentsInserted)
	assert.Equal(t, 1, res[1].CommentsDuplicate)
	assert.Len(t, s.comments, 1)
}

func TestApplyUnnumberedDedupByBody(t *testing.T) {
	unnumbered := func(text string) bugmail.Classification {
		return bugmail.Classification{Body: text, CommentIndex: model.CommentIndexUnnumbered, Recognized: true}
	}

	s := newMemStore()
	apply(t, New(nil), s,
		message(bugmail.CategoryChanged, t1, "NEW", unnumbered("a")),
		message(bugmail.CategoryChanged, t2, "NEW", unnumbered("a")),
		message(bugmail.CategoryChanged, t2, "NEW", unnumbered("b")),
	)

	assert.Len(t, s.comments, 2)
}

func TestApplyCountsUnrecognizedBodies(t *testing.T) {
	s := newMemStore()
	res := apply(t, New(nil), s, message(bugmail.CategoryChanged, t1, "NEW",
		bugmail.Classification{Body: "x", CommentIndex: model.CommentIndexNone},
	))

	assert.Equal(t, 1, res[0].BodiesUnrecognized)
	assert.Empty(t, s.comments)
	assert.Contains(t, s.issues, int64(42))
}

func TestApplyIsIdempotent(t *testing.T) {
	msgs := []*bugmail.ParsedMessage{
		message(bugmail.CategoryNew, t1, "NEW", numbered(0, "desc")),
		message(bugmail.CategoryChanged, t2, "ASSIGNED", numbered(1, "mine")),
	}

	s := newMemStore()
	r := New(nil)
	apply(t, r, s, msgs...)
	issues := s.issues[42]
	comments := len(s.comments)

	again := apply(t, r, s, msgs...)
	assert.Equal(t, issues, s.issues[42])
	assert.Equal(t, comments, len(s.comments))
	for _, res := range again {
		assert.Equal(t, IssueStale, res.Issue)
		assert.Zero(t, res.CommentsInserted)
	}
}

func TestApplyRejectsIneligible(t *testing.T) {
	_, err := New(nil).Apply(context.Background(), newMemStore(), message(bugmail.CategoryWhine, t1, ""))
	assert.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, Fingerprint(1, 2, "a"), Fingerprint(1, 2, "b"))
	assert.NotEqual(t, Fingerprint(1, 2, "a"), Fingerprint(1, 3, "a"))
	assert.NotEqual(t, Fingerprint(1, 2, "a"), Fingerprint(2, 2, "a"))
	assert.Equal(t,
		Fingerprint(1, model.CommentIndexUnnumbered, "same"),
		Fingerprint(9, model.CommentIndexUnnumbered, "same"),
	)
	assert.NotEqual(t,
		Fingerprint(1, model.CommentIndexUnnumbered, "a"),
		Fingerprint(1, model.CommentIndexUnnumbered, "b"),
	)
	assert.Len(t, Fingerprint(1, 0, ""), 64)
}
