package bugmail

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DateLayout is the textual form of notification Date headers once the
// zone suffix is removed.
const DateLayout = "Mon, 2 Jan 2006 15:04:05"

var (
	zoneComment = regexp.MustCompile(`\s*\([^)]*\)$`)
	zoneOffset  = regexp.MustCompile(`\s*[+-]\d{4}$`)
)

// ParseDate parses a Date header. The numeric UTC offset is discarded,
// not applied: the wall-clock value is read as UTC.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(strings.NewReplacer("\r\n", " ", "\n", " ").Replace(raw))
	s = zoneComment.ReplaceAllString(s, "")
	s = zoneOffset.ReplaceAllString(s, "")

	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", raw, err)
	}
	return t, nil
}
