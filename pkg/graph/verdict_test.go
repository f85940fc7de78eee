package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     bool
	}{
		{"verified with reason", "VERIFIED: the file contains hi", true},
		{"bare verified", "VERIFIED", true},
		{"verified lowercase", "verified: looks good", true},
		{"verified mixed case", "Verified: done", true},
		{"leading whitespace", "  \n VERIFIED: ok", true},
		{"verified then newline", "VERIFIED\nextra detail", true},
		{"verified then space", "VERIFIED looks right", true},
		{"not verified", "NOT_VERIFIED: file is empty", false},
		{"not verified lowercase", "not_verified: missing step", false},
		{"bare not verified", "NOT_VERIFIED", false},
		{"empty response", "", false},
		{"whitespace only", "   \n\t", false},
		{"unrecognized prose", "The task looks complete to me.", false},
		{"verdict buried mid-sentence", "I think it is VERIFIED: yes", false},
		{"verified as substring", "UNVERIFIED: nope", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseVerdict(tt.response))
		})
	}
}
