package bugmail

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrMalformedSubject is returned when a subject does not name a bug.
var ErrMalformedSubject = errors.New("malformed subject")

var subjectPattern = regexp.MustCompile(
	`\[Bug (\d+)\] (?:New: )?(.+?)(?: : \[Attachment \d+\].*)?$`,
)

// Subject is the issue reference carried by a notification subject.
type Subject struct {
	IssueID int64
	Title   string
}

// ParseSubject extracts the bug number and title from a subject line
// such as "[Bug 42] New: crash on startup". Folded header line breaks
// are removed first.
func ParseSubject(raw string) (Subject, error) {
	line := strings.NewReplacer("\r\n", "", "\n", "", "\r", "").Replace(raw)

	m := subjectPattern.FindStringSubmatch(line)
	if m == nil {
		return Subject{}, fmt.Errorf("%w: %q", ErrMalformedSubject, line)
	}

	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return Subject{}, fmt.Errorf("%w: bug number %q: %v", ErrMalformedSubject, m[1], err)
	}

	return Subject{IssueID: id, Title: m[2]}, nil
}
