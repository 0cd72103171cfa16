package bugmail

import "strings"

// Category is the upstream X-Bugzilla-Type value of a notification.
type Category string

const (
	CategoryNew        Category = "new"
	CategoryChanged    Category = "changed"
	CategoryNewChanged Category = "newchanged"
	CategoryRequest    Category = "request" // attachment and flag requests
	CategoryAdmin      Category = "admin"
	CategoryWhine      Category = "whine" // periodic digests
	CategoryNone       Category = ""      // delivery-status bounces carry no type
)

// Eligibility says how much of a message may be ingested.
type Eligibility int

const (
	// Ineligible messages are skipped entirely.
	Ineligible Eligibility = iota
	// BodyOnly messages contribute comments and may create an issue row,
	// but never overwrite stored metadata.
	BodyOnly
	// Authoritative messages may update stored metadata.
	Authoritative
)

func (e Eligibility) String() string {
	switch e {
	case Authoritative:
		return "authoritative"
	case BodyOnly:
		return "body-only"
	default:
		return "ineligible"
	}
}

// ParseCategory normalises a raw header value.
func ParseCategory(raw string) Category {
	return Category(strings.ToLower(strings.TrimSpace(raw)))
}

// Eligibility maps a category to its ingestion policy. Categories not
// listed here are ineligible so that newer archives never break a run.
func (c Category) Eligibility() Eligibility {
	switch c {
	case CategoryNew, CategoryChanged, CategoryNewChanged:
		return Authoritative
	case CategoryRequest:
		return BodyOnly
	case CategoryAdmin, CategoryWhine, CategoryNone:
		return Ineligible
	default:
		return Ineligible
	}
}

// Label renders the category for reports; the absent category shows as
// "(none)".
func (c Category) Label() string {
	if c == CategoryNone {
		return "(none)"
	}
	return string(c)
}
