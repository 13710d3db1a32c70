package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{name: "nil slice", input: nil, want: nil},
		{name: "empty slice", input: []string{}, want: []string{}},
		{
			name:  "trims whitespace",
			input: []string{"  Complex or unusual route detected  ", "Significant value discrepancy detected "},
			want:  []string{"Complex or unusual route detected", "Significant value discrepancy detected"},
		},
		{
			name: "keeps first occurrence of repeated reasons",
			input: []string{
				"High-risk commodity (HS: 2710123456)",
				"High-risk commodity (HS: 2710123456)",
				"Shipment from high-risk country (IR)",
			},
			want: []string{
				"High-risk commodity (HS: 2710123456)",
				"Shipment from high-risk country (IR)",
			},
		},
		{
			name:  "drops blanks, preserves order and case",
			input: []string{"Foo", "", "  ", "foo", "Foo"},
			want:  []string{"Foo", "foo"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupeAndTrim(tt.input))
		})
	}
}

func TestDedupeAndTrimDoesNotMutateInput(t *testing.T) {
	input := []string{"a", "a", "b"}
	got := DedupeAndTrim(input)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, []string{"a", "a", "b"}, input)
}
