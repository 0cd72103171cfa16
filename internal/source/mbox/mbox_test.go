package mbox

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/nhle/bugzilla-recovery/tests/testutil"
)

func notification(id int64, at time.Time) []byte {
	return testutil.Notification{
		Category: "changed",
		IssueID:  id,
		Title:    "crash on startup",
		Date:     at,
		Status:   "NEW",
		Body:     testutil.CommentBody(id, 1, "It gets worse."),
	}.Raw()
}

func readAll(t *testing.T, a *Archive) [][]byte {
	t.Helper()
	var out [][]byte
	for {
		raw, err := a.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, raw)
	}
}

func TestArchiveReadsInOrder(t *testing.T) {
	jan := time.Date(2012, 1, 3, 10, 0, 0, 0, time.UTC)
	path := testutil.WriteMbox(t, "mail", notification(1, jan), notification(2, jan))

	a, err := Open(path)
	require.NoError(t, err)
	defer a.Close()

	got := readAll(t, a)
	require.Len(t, got, 2)
	assert.Contains(t, string(got[0]), "[Bug 1]")
	assert.Contains(t, string(got[1]), "[Bug 2]")
	assert.Contains(t, string(got[0]), "It gets worse.")
	assert.Equal(t, path, a.Name())
}

func TestArchiveEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	a, err := Open(path)
	require.NoError(t, err)
	defer a.Close()

	assert.Empty(t, readAll(t, a))
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"mail-1202", "mail-1201", "mail-broken"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	got, err := Expand(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "mail-1201"),
		filepath.Join(dir, "mail-1202"),
		filepath.Join(dir, "mail-broken"),
	}, got)

	single, err := Expand(got[0])
	require.NoError(t, err)
	assert.Equal(t, got[:1], single)

	_, err = Expand(filepath.Join(dir, "nope"))
	assert.Error(t, err)
}

func TestSplitByMonth(t *testing.T) {
	jan := time.Date(2012, 1, 3, 10, 0, 0, 0, time.UTC)
	feb := time.Date(2012, 2, 14, 8, 30, 0, 0, time.UTC)
	broken := []byte("Subject: [Bug 3] no date\r\nX-Bugzilla-Type: new\r\n\r\nbody\r\n")
	path := testutil.WriteMbox(t, "all", notification(1, jan), notification(2, feb), broken, notification(4, jan))

	src, err := Open(path)
	require.NoError(t, err)
	defer src.Close()

	out := t.TempDir()
	counts, err := Split(context.Background(), src, out, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"mail-1201": 2, "mail-1202": 1, BrokenName: 1}, counts)

	files, err := Expand(out)
	require.NoError(t, err)
	require.Len(t, files, 3)

	janArchive, err := Open(filepath.Join(out, "mail-1201"))
	require.NoError(t, err)
	defer janArchive.Close()
	got := readAll(t, janArchive)
	require.Len(t, got, 2)
	assert.Contains(t, string(got[0]), "[Bug 1]")
	assert.Contains(t, string(got[1]), "[Bug 4]")
}

func TestSplitAppends(t *testing.T) {
	jan := time.Date(2012, 1, 3, 10, 0, 0, 0, time.UTC)
	out := t.TempDir()

	for i := range 2 {
		src, err := Open(testutil.WriteMbox(t, "part", notification(int64(i+1), jan)))
		require.NoError(t, err)
		_, err = Split(context.Background(), src, out, nil)
		require.NoError(t, err)
		require.NoError(t, src.Close())
	}

	a, err := Open(filepath.Join(out, "mail-1201"))
	require.NoError(t, err)
	defer a.Close()
	assert.Len(t, readAll(t, a), 2)
}
