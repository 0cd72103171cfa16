package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-mbox"
)

// Notification describes one tracker email for fixtures.
type Notification struct {
	Category string
	IssueID  int64
	Title    string
	Date     time.Time
	Who      string
	Status   string
	Body     string
}

// Raw renders n as a CRLF-terminated RFC 5322 message.
func (n Notification) Raw() []byte {
	who := n.Who
	if who == "" {
		who = "alice@example.com"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "From: bugzilla-daemon@example.org\r\n")
	fmt.Fprintf(&b, "Subject: [Bug %d] %s\r\n", n.IssueID, n.Title)
	fmt.Fprintf(&b, "Date: %s\r\n", n.Date.Format("Mon, 2 Jan 2006 15:04:05 -0700"))
	fmt.Fprintf(&b, "X-Bugzilla-Type: %s\r\n", n.Category)
	fmt.Fprintf(&b, "X-Bugzilla-Who: %s\r\n", who)
	fmt.Fprintf(&b, "X-Bugzilla-Product: Browser\r\n")
	fmt.Fprintf(&b, "X-Bugzilla-Component: Startup\r\n")
	fmt.Fprintf(&b, "X-Bugzilla-Status: %s\r\n", n.Status)
	fmt.Fprintf(&b, "Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(n.Body, "\n", "\r\n"))
	return []byte(b.String())
}

// CommentBody renders a notification body carrying one numbered comment.
func CommentBody(issueID int64, index int, text string) string {
	return fmt.Sprintf("https://bugzilla.example.org/show_bug.cgi?id=%d\n\n"+
		"--- Comment #%d from alice@example.com ---\n%s\n\n-- \nConfigure bugmail\n",
		issueID, index, text)
}

// WriteMbox writes messages to an mbox file in a temporary directory and
// returns its path.
func WriteMbox(t *testing.T, name string, messages ...[]byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
	defer f.Close()

	w := mbox.NewWriter(f)
	for i, raw := range messages {
		mw, err := w.CreateMessage("bugzilla-daemon@example.org", time.Unix(int64(i), 0).UTC())
		if err != nil {
			t.Fatalf("creating message %d: %v", i, err)
		}
		if _, err := mw.Write(raw); err != nil {
			t.Fatalf("writing message %d: %v", i, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing mbox writer: %v", err)
	}
	return path
}
