package bugmail

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/bugzilla-recovery/internal/model"
)

const commentBody = "http://tracker.example/42\n" +
	"\n" +
	"--- Comment #0 from alice@example.com ---\n" +
	"It crashes immediately.\n" +
	"-- \n" +
	"signature"

const changedBody = `https://bugzilla.example.org/show_bug.cgi?id=7

Bob <bob@example.com> changed:

           What    |Removed                     |Added
----------------------------------------------------------------------------
             Status|NEW                         |ASSIGNED
              Group|                            |Security Issue

--- Comment #3 from Bob <bob@example.com>  2012-03-01 10:00:00 PST ---
Taking this one.

--
Configure bugmail: https://bugzilla.example.org/userprefs.cgi`

const newBugBody = `https://bugzilla.example.org/show_bug.cgi?id=9

            Bug ID: 9
           Summary: Toolbar vanishes
                    after resize
           Product: Browser
             Group: Security Issue
          Reporter: carol@example.com

Steps: resize the window.
`

func TestClassifyBodyComment(t *testing.T) {
	got := ClassifyBody(commentBody)

	require.True(t, got.Recognized)
	assert.Equal(t, 0, got.CommentIndex)
	assert.False(t, got.IsSecurity)
	assert.Equal(t,
		"http://tracker.example/42\n\n--- Comment #0 from alice@example.com ---\nIt crashes immediately.",
		got.Body,
	)
}

func TestClassifyBodyChangeTable(t *testing.T) {
	got := ClassifyBody(changedBody)

	require.True(t, got.Recognized)
	assert.Equal(t, 3, got.CommentIndex)
	assert.True(t, got.IsSecurity)
	assert.Contains(t, got.Body, "Bob <bob@example.com> changed:")
	assert.Contains(t, got.Body, "Taking this one.")
	assert.NotContains(t, got.Body, "Configure bugmail")
}

func TestClassifyBodySummaryHeader(t *testing.T) {
	got := ClassifyBody(newBugBody)

	require.True(t, got.Recognized)
	assert.Equal(t, 0, got.CommentIndex)
	assert.True(t, got.IsSecurity)
	assert.True(t, strings.HasSuffix(got.Body, "Steps: resize the window.\n"))
}

func TestClassifyBodyCRLF(t *testing.T) {
	got := ClassifyBody(strings.ReplaceAll(commentBody, "\n", "\r\n"))

	require.True(t, got.Recognized)
	assert.Equal(t, 0, got.CommentIndex)
	assert.NotContains(t, got.Body, "\r")
	assert.True(t, strings.HasSuffix(got.Body, "It crashes immediately."))
}

func TestClassifyBodyUnrecognized(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "no url line", body: "--- Comment #1 from a@example.com ---\nhello\n"},
		{name: "empty", body: ""},
		{
			name: "change table only",
			body: "http://x/1\n\nA <a@x> changed:\n\n What|Removed|Added\n-------------------\n Status|NEW|FIXED\n\n",
		},
		{name: "signature before content", body: "http://x/1\n-- \n--- Comment #2 from a ---\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyBody(tt.body)
			assert.False(t, got.Recognized)
			assert.Equal(t, model.CommentIndexNone, got.CommentIndex)
		})
	}
}

func TestClassifyBodySecurityOnlyFromAddedColumn(t *testing.T) {
	body := "http://x/1\n\nA <a@x> changed:\n\n What|Removed|Added\n" +
		"-------------------------\n" +
		" Group|Security Issue|\n\n" +
		"--- Comment #4 from a ---\nopened up\n"

	got := ClassifyBody(body)
	require.True(t, got.Recognized)
	assert.Equal(t, 4, got.CommentIndex)
	assert.False(t, got.IsSecurity)
}

func TestClassifyBodyOverflowedIndex(t *testing.T) {
	got := ClassifyBody("http://x/1\n--- Comment #99999999999999999999 from a ---\ntext\n")

	require.True(t, got.Recognized)
	assert.Equal(t, model.CommentIndexUnnumbered, got.CommentIndex)
}

func TestHandlersCoverEveryState(t *testing.T) {
	for s := stateBegin; s <= stateComment; s++ {
		_, ok := handlers[s]
		assert.True(t, ok, "missing handler for %s", s)
	}
}

func TestStateTransitions(t *testing.T) {
	tests := []struct {
		from bodyState
		line string
		want bodyState
	}{
		{stateBegin, "preamble", stateBegin},
		{stateBegin, "https://bugzilla.example.org/show_bug.cgi?id=1", stateBetweenSections},
		{stateBetweenSections, "   ", stateBetweenSections},
		{stateBetweenSections, "Dan <dan@example.com> changed:", stateChangeTableHeader},
		{stateBetweenSections, "           Summary: broken", stateSummaryHeader},
		{stateBetweenSections, "--- Comment #2 from Dan ---", stateComment},
		{stateBetweenSections, "Do not reply to this email.", stateBetweenSections},
		{stateChangeTableHeader, " What |Removed |Added", stateChangeTableHeader},
		{stateChangeTableHeader, "------------------------------", stateChangeTableRow},
		{stateChangeTableRow, " Status|NEW|FIXED", stateChangeTableRow},
		{stateChangeTableRow, "", stateBetweenSections},
		{stateSummaryHeader, "  Product: Browser", stateSummaryHeader},
		{stateSummaryHeader, "", stateBetweenSections},
		{stateComment, "", stateComment},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"/"+tt.line, func(t *testing.T) {
			c := &classifier{state: tt.from, index: model.CommentIndexNone}
			assert.Equal(t, tt.want, handlers[tt.from](c, tt.line))
		})
	}
}

func TestClassifyBodyRecognizedAlwaysCarriesIndex(t *testing.T) {
	bodies := []string{
		commentBody,
		changedBody,
		newBugBody,
		"http://x/1\n--- Comment #99999999999999999999 from a ---\ntext\n",
	}
	for _, body := range bodies {
		got := ClassifyBody(body)
		require.True(t, got.Recognized)
		assert.NotEqual(t, model.CommentIndexNone, got.CommentIndex)
	}
}
