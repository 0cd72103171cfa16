package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/bugzilla-recovery/internal/ingest"
	"github.com/nhle/bugzilla-recovery/internal/store"
	"github.com/nhle/bugzilla-recovery/tests/testutil"
)

type result struct {
	stdout string
	stderr string
	err    error
}

// runCLI executes the command tree with an isolated config file.
func runCLI(t *testing.T, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cfg := filepath.Join(t.TempDir(), "config.yaml")
	full := append([]string{"--config", cfg, "--log-level", "error"}, args...)
	err := execute(newRootCmd(), full, &stdout, &stderr)
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

var at = time.Date(2012, 1, 3, 10, 0, 0, 0, time.UTC)

func fixture(t *testing.T) string {
	t.Helper()
	return testutil.WriteMbox(t, "mail-1201",
		testutil.Notification{
			Category: "new",
			IssueID:  42,
			Title:    "New: crash on startup",
			Date:     at,
			Status:   "NEW",
			Body:     testutil.CommentBody(42, 0, "It crashes immediately."),
		}.Raw(),
		testutil.Notification{
			Category: "whine",
			IssueID:  42,
			Title:    "crash on startup",
			Date:     at,
		}.Raw(),
	)
}

func TestExtractWithoutSetup(t *testing.T) {
	db := filepath.Join(t.TempDir(), "bugs.db")

	res := runCLI(t, "--db", db, "extract", fixture(t))
	require.Error(t, res.err)
	assert.ErrorIs(t, res.err, store.ErrStoreMissing)
	assert.Contains(t, res.stderr, `run "bugrecover setup --db `+db+`" first`)

	_, err := os.Stat(db)
	assert.True(t, os.IsNotExist(err), "extract must not create the database")
}

func TestExtractArgCount(t *testing.T) {
	for _, args := range [][]string{{"extract"}, {"extract", "a", "b"}} {
		res := runCLI(t, args...)
		require.Error(t, res.err)
		assert.Contains(t, res.stderr, "Usage:")
	}
}

func TestSetupThenExtract(t *testing.T) {
	db := filepath.Join(t.TempDir(), "bugs.db")

	res := runCLI(t, "--db", db, "setup")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "database ready")

	res = runCLI(t, "--db", db, "extract", fixture(t))
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "issues inserted")
	assert.Contains(t, res.stdout, "skipped by category")

	s, err := store.Open(db)
	require.NoError(t, err)
	defer s.Close()

	issue, err := s.GetIssue(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, issue)
	assert.Equal(t, "crash on startup", issue.Subject)

	res = runCLI(t, "--db", db, "runs")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "mail-1201")
}

func TestExtractDirectory(t *testing.T) {
	db := filepath.Join(t.TempDir(), "bugs.db")
	require.NoError(t, runCLI(t, "--db", db, "setup").err)

	res := runCLI(t, "--db", db, "extract", filepath.Dir(fixture(t)))
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "mail-1201")
}

func TestTypes(t *testing.T) {
	res := runCLI(t, "types", fixture(t))
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "new")
	assert.Contains(t, res.stdout, "whine")
	assert.Contains(t, res.stdout, "ineligible")
}

func TestSplit(t *testing.T) {
	out := t.TempDir()

	res := runCLI(t, "split", "--out", out, fixture(t))
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "mail-1201")
	assert.FileExists(t, filepath.Join(out, "mail-1201"))
}

func TestIMAPRequiresHost(t *testing.T) {
	res := runCLI(t, "imap")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "imap.host")
}

func TestRenderStatsTotal(t *testing.T) {
	out := renderStats([]ingest.Stats{
		{Archive: "a", Messages: 2, IssuesInserted: 1},
		{Archive: "b", Messages: 3, CommentsInserted: 4},
	})
	assert.Contains(t, out, "total (2 archives)")

	single := renderStats([]ingest.Stats{{Archive: "a"}})
	assert.NotContains(t, single, "total")
}
