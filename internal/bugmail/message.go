package bugmail

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset" // registers legacy charsets
	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-message/textproto"
)

// Header names set by the tracker on every notification.
const (
	HeaderType      = "X-Bugzilla-Type"
	HeaderWho       = "X-Bugzilla-Who"
	HeaderProduct   = "X-Bugzilla-Product"
	HeaderComponent = "X-Bugzilla-Component"
	HeaderSeverity  = "X-Bugzilla-Severity"
	HeaderPriority  = "X-Bugzilla-Priority"
	HeaderStatus    = "X-Bugzilla-Status"
	HeaderAssignee  = "X-Bugzilla-Assigned-To"
)

// Metadata holds the classification headers of one notification.
type Metadata struct {
	Product   string
	Component string
	Severity  string
	Priority  string
	Status    string
	Assignee  string
}

// ParsedMessage is the transient result of reading one notification.
// Fields past Eligibility are only populated for eligible messages.
type ParsedMessage struct {
	Category    Category
	Eligibility Eligibility

	Subject    Subject
	SubjectErr error

	Author   string
	Date     time.Time
	DateErr  error
	Metadata Metadata

	// Bodies has one entry per text/plain part, recognized or not.
	Bodies []Classification

	// UnreadableParts counts parts that could not be decoded. Text
	// parts among them are still classified from their raw bytes.
	UnreadableParts int
}

// Eligible reports whether the message passed the category gate and
// names an issue.
func (m *ParsedMessage) Eligible() bool {
	return m.Eligibility != Ineligible && m.SubjectErr == nil
}

// ReadCategory reads only the notification category of a raw message.
func ReadCategory(raw []byte) (Category, error) {
	h, err := readHeader(raw)
	if err != nil {
		return CategoryNone, err
	}
	return ParseCategory(h.Get(HeaderType)), nil
}

// maxPartDepth bounds multipart nesting.
const maxPartDepth = 8

// ParseMessage reads a raw RFC 5322 message. An error is returned only
// when the message header itself cannot be read; every other problem is
// recorded on the result.
func ParseMessage(raw []byte) (*ParsedMessage, error) {
	br := bufio.NewReader(bytes.NewReader(raw))
	th, err := textproto.ReadHeader(br)
	if err != nil {
		return nil, fmt.Errorf("reading message header: %w", err)
	}

	h := mail.Header{Header: message.Header{Header: th}}
	category := ParseCategory(h.Get(HeaderType))
	parsed := &ParsedMessage{
		Category:    category,
		Eligibility: category.Eligibility(),
	}
	if parsed.Eligibility == Ineligible {
		return parsed, nil
	}

	subject, err := h.Text("Subject")
	if err != nil {
		subject = h.Get("Subject")
	}
	parsed.Subject, parsed.SubjectErr = ParseSubject(subject)
	if parsed.SubjectErr != nil {
		return parsed, nil
	}

	parsed.Author = headerText(h, HeaderWho)
	parsed.Date, parsed.DateErr = ParseDate(h.Get("Date"))
	parsed.Metadata = Metadata{
		Product:   headerText(h, HeaderProduct),
		Component: headerText(h, HeaderComponent),
		Severity:  headerText(h, HeaderSeverity),
		Priority:  headerText(h, HeaderPriority),
		Status:    headerText(h, HeaderStatus),
		Assignee:  headerText(h, HeaderAssignee),
	}

	if err := parsed.walk(th, br, 0); err != nil {
		parsed.UnreadableParts++
	}

	return parsed, nil
}

// walk visits the leaves of an entity whose body is still undecoded.
// Multipart structure is split on the raw bytes so that every text part
// is available as-is when its transfer or charset decoding fails.
func (m *ParsedMessage) walk(th textproto.Header, body io.Reader, depth int) error {
	mh := message.Header{Header: th}
	contentType, params, _ := mh.ContentType()

	if strings.HasPrefix(strings.ToLower(contentType), "multipart/") {
		if depth >= maxPartDepth {
			return fmt.Errorf("multipart nesting deeper than %d", maxPartDepth)
		}
		mr := textproto.NewMultipartReader(body, params["boundary"])
		for {
			p, err := mr.NextPart()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("reading multipart: %w", err)
			}
			if err := m.walk(p.Header, p, depth+1); err != nil {
				m.UnreadableParts++
			}
		}
	}

	// Attachments, including text ones such as patches, are not
	// interpreted.
	if disp, _, _ := mh.ContentDisposition(); strings.EqualFold(disp, "attachment") {
		return nil
	}
	if !strings.EqualFold(contentType, "text/plain") && contentType != "" {
		return nil
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("reading part: %w", err)
	}
	m.Bodies = append(m.Bodies, ClassifyBody(m.decodePart(mh, raw)))
	return nil
}

// decodePart applies the transfer encoding and charset of a text part.
// With an unknown charset the decoded bytes are kept as-is; when
// decoding fails the raw bytes are used instead.
func (m *ParsedMessage) decodePart(mh message.Header, raw []byte) string {
	e, err := message.New(mh, bytes.NewReader(raw))
	if err != nil && !message.IsUnknownCharset(err) {
		m.UnreadableParts++
		return string(raw)
	}

	decoded, err := io.ReadAll(e.Body)
	if err != nil {
		m.UnreadableParts++
		return string(raw)
	}
	return string(decoded)
}

func readHeader(raw []byte) (mail.Header, error) {
	e, err := message.Read(bytes.NewReader(raw))
	if err != nil && !message.IsUnknownCharset(err) {
		return mail.Header{}, fmt.Errorf("reading message header: %w", err)
	}
	return mail.Header{Header: e.Header}, nil
}

// headerText decodes an RFC 2047 header value, falling back to the raw
// value when the encoding is not understood.
func headerText(h mail.Header, key string) string {
	v, err := h.Text(key)
	if err != nil {
		v = h.Get(key)
	}
	return strings.TrimSpace(v)
}
