package bugmail

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nhle/bugzilla-recovery/internal/model"
)

// bodyState is a position of the body classifier.
type bodyState int

const (
	stateBegin bodyState = iota
	stateBetweenSections
	stateChangeTableHeader
	stateChangeTableRow
	stateSummaryHeader
	stateComment
)

func (s bodyState) String() string {
	switch s {
	case stateBegin:
		return "begin"
	case stateBetweenSections:
		return "between-sections"
	case stateChangeTableHeader:
		return "change-table-header"
	case stateChangeTableRow:
		return "change-table-row"
	case stateSummaryHeader:
		return "summary-header"
	case stateComment:
		return "comment"
	default:
		return "unknown"
	}
}

var (
	urlLine         = regexp.MustCompile(`^http`)
	blankLine       = regexp.MustCompile(`^\s*$`)
	changeTableLine = regexp.MustCompile(`^.* <.*> changed:$`)
	ruleLine        = regexp.MustCompile(`^-{19}`)
	commentLine     = regexp.MustCompile(`^--- Comment #(\d+) from .+? ---$`)
	summaryLine     = regexp.MustCompile(`^\s*(?:Bug ID|Summary):`)
	signatureLine   = regexp.MustCompile(`^--\s*$`)
	keyValueLine    = regexp.MustCompile(`^\s*([^:]+?):\s*(.*)$`)
)

const (
	// securityField is the field that carries an issue's access group.
	securityField = "Group"
	// securityValue is the group that marks a restricted issue.
	securityValue = "Security Issue"
	// summaryKey marks the header block of a new issue's description.
	summaryKey = "Summary"
)

// Classification is the result of interpreting one text/plain body.
type Classification struct {
	// Body is every accumulated line, headers and tables included,
	// up to but excluding the signature marker.
	Body string

	// CommentIndex is the declared comment position, 0 for the initial
	// description, or one of the model.CommentIndex* sentinels.
	CommentIndex int

	// IsSecurity is set when the body moves the issue into the
	// security group.
	IsSecurity bool

	// Recognized reports whether the body is an issue comment
	// notification at all.
	Recognized bool
}

// classifier carries the mutable state of one ClassifyBody call.
type classifier struct {
	state      bodyState
	lines      []string
	index      int
	sawComment bool
	sawSummary bool
	security   bool
}

// handler processes one line in a given state and returns the next state.
type handler func(c *classifier, line string) bodyState

var handlers = map[bodyState]handler{
	stateBegin:             (*classifier).begin,
	stateBetweenSections:   (*classifier).betweenSections,
	stateChangeTableHeader: (*classifier).changeTableHeader,
	stateChangeTableRow:    (*classifier).changeTableRow,
	stateSummaryHeader:     (*classifier).summaryHeader,
	stateComment:           (*classifier).comment,
}

// ClassifyBody runs the notification state machine over body. Both
// "\n" and "\r\n" line endings are accepted.
func ClassifyBody(body string) Classification {
	c := &classifier{
		state: stateBegin,
		index: model.CommentIndexNone,
	}

	for _, line := range splitLines(body) {
		if signatureLine.MatchString(line) {
			break
		}
		c.lines = append(c.lines, line)
		c.state = handlers[c.state](c, line)
	}

	result := Classification{
		Body:         strings.Join(c.lines, "\n"),
		CommentIndex: model.CommentIndexNone,
		IsSecurity:   c.security,
	}

	if c.sawComment || c.sawSummary {
		result.Recognized = true
		result.CommentIndex = c.index
	}

	return result
}

func (c *classifier) begin(line string) bodyState {
	if urlLine.MatchString(line) {
		return stateBetweenSections
	}
	return stateBegin
}

func (c *classifier) betweenSections(line string) bodyState {
	switch {
	case blankLine.MatchString(line):
		return stateBetweenSections
	case changeTableLine.MatchString(line):
		return stateChangeTableHeader
	case summaryLine.MatchString(line):
		// The marker line is itself the first key of the block.
		return c.summaryHeader(line)
	}

	if m := commentLine.FindStringSubmatch(line); m != nil {
		c.sawComment = true
		if n, err := strconv.Atoi(m[1]); err == nil {
			c.index = n
		} else {
			c.index = model.CommentIndexUnnumbered
		}
		return stateComment
	}

	return stateBetweenSections
}

func (c *classifier) changeTableHeader(line string) bodyState {
	if ruleLine.MatchString(line) {
		return stateChangeTableRow
	}
	return stateChangeTableHeader
}

func (c *classifier) changeTableRow(line string) bodyState {
	if blankLine.MatchString(line) {
		return stateBetweenSections
	}

	fields := strings.Split(line, "|")
	if len(fields) < 3 {
		// Wrapped continuation of the previous row.
		return stateChangeTableRow
	}

	name := strings.TrimSpace(fields[0])
	added := strings.TrimSpace(fields[2])
	if name == securityField && strings.Contains(added, securityValue) {
		c.security = true
	}

	return stateChangeTableRow
}

func (c *classifier) summaryHeader(line string) bodyState {
	if blankLine.MatchString(line) {
		return stateBetweenSections
	}

	m := keyValueLine.FindStringSubmatch(line)
	if m == nil {
		// Continuation of a multi-line value; only first lines count.
		return stateSummaryHeader
	}

	key, value := m[1], strings.TrimSpace(m[2])
	switch key {
	case securityField:
		if strings.Contains(value, securityValue) {
			c.security = true
		}
	case summaryKey:
		c.sawSummary = true
		c.index = 0
	}

	return stateSummaryHeader
}

func (c *classifier) comment(string) bodyState {
	return stateComment
}

// splitLines splits on "\n", dropping the "\r" of "\r\n" endings.
func splitLines(body string) []string {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
