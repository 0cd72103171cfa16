package bugmail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryEligibility(t *testing.T) {
	tests := []struct {
		raw  string
		want Eligibility
	}{
		{"new", Authoritative},
		{"changed", Authoritative},
		{"newchanged", Authoritative},
		{" NewChanged ", Authoritative},
		{"request", BodyOnly},
		{"admin", Ineligible},
		{"whine", Ineligible},
		{"", Ineligible},
		{"something-from-2030", Ineligible},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseCategory(tt.raw).Eligibility(), "category %q", tt.raw)
	}
}

func TestCategoryLabel(t *testing.T) {
	assert.Equal(t, "(none)", CategoryNone.Label())
	assert.Equal(t, "whine", CategoryWhine.Label())
	assert.Equal(t, "body-only", BodyOnly.String())
}
