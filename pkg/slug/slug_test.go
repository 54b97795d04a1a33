// Copyright (c) 2026 Critica. All rights reserved.

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/critica-app/critica/pkg/slug"
)

/*
TestFrom covers the slug transformation pipeline end to end: accent removal,
lowercasing, hyphenation, and cleanup.
*/
func TestFrom(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple_words", input: "Science Fiction", want: "science-fiction"},
		{name: "accents_stripped", input: "Éléphant Café", want: "elephant-cafe"},
		{name: "punctuation_collapsed", input: "Rock & Roll!!", want: "rock-roll"},
		{name: "digits_kept", input: "Top 100 Albums", want: "top-100-albums"},
		{name: "hyphens_trimmed", input: "--already-sluggy--", want: "already-sluggy"},
		// Scripts with no ASCII decomposition produce an empty slug; callers
		// must supply one explicitly.
		{name: "non_latin", input: "Книги", want: ""},
		{name: "empty_input", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.From(tt.input))
		})
	}
}
