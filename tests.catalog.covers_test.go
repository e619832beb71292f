package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Ensure the recognized shared-drive link shapes get rewritten into a
// directly fetchable URL and everything else passes through.
func TestNormalizeCoverURL(t *testing.T) {
	testCases := []struct {
		name     string
		url      string
		expected string
	}{
		{
			name:     "file link",
			url:      "https://drive.google.com/file/d/1AbC_dEf-23/view?usp=sharing",
			expected: "https://lh3.googleusercontent.com/u/0/d/1AbC_dEf-23",
		},
		{
			name:     "open link",
			url:      "https://drive.google.com/open?id=1AbC_dEf-23",
			expected: "https://lh3.googleusercontent.com/u/0/d/1AbC_dEf-23",
		},
		{
			name:     "docs variant",
			url:      "https://docs.google.com/file/d/1AbC_dEf-23/edit",
			expected: "https://lh3.googleusercontent.com/u/0/d/1AbC_dEf-23",
		},
		{
			name:     "scheme-less link",
			url:      "drive.google.com/file/d/1AbC_dEf-23/view",
			expected: "https://lh3.googleusercontent.com/u/0/d/1AbC_dEf-23",
		},
		{
			name:     "ordinary url passes through",
			url:      "https://images.unsplash.com/photo-1543004471",
			expected: "https://images.unsplash.com/photo-1543004471",
		},
		{
			name:     "empty stays empty",
			url:      "",
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizeCoverURL(tc.url))
		})
	}
}

// Ensure generated cover filenames stay download-safe.
func TestSanitizeCoverFilename(t *testing.T) {
	assert.Equal(t, "Dune_cover.png", SanitizeCoverFilename("Dune"))
	assert.Equal(t, "El_Quijote_cover.png", SanitizeCoverFilename(" El Quijote "))
	assert.Equal(t, "cover_cover.png", SanitizeCoverFilename("???"))
	assert.Equal(t, "cover_cover.png", SanitizeCoverFilename(""))
}
