package wake

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	g, err := New("jarvis")
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"comma", "jarvis, type hello", "type hello", true},
		{"space", "jarvis open firefox", "open firefox", true},
		{"upper case", "JARVIS: Delete 3 words", "Delete 3 words", true},
		{"leading punctuation", "  ...jarvis - what time is it?", "what time is it?", true},
		{"many separators", "jarvis,,,   ;; search cats", "search cats", true},
		{"phrase only", "jarvis", "", false},
		{"phrase and punctuation", "jarvis...", "", false},
		{"missing phrase", "hello there", "", false},
		{"phrase not at start", "hey jarvis type hello", "", false},
		{"no word boundary", "jarvisx type hello", "", false},
		{"empty", "", "", false},
		{"newline", "jarvis\ntype two lines", "type two lines", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := g.Extract(tt.in)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestMultiWordPhrase(t *testing.T) {
	g, err := New("Hey Jarvis")
	require.NoError(t, err)
	require.Equal(t, "Hey Jarvis", g.Phrase())

	for _, in := range []string{"hey jarvis type hi", "hey, jarvis: type hi", "Hey-Jarvis type hi"} {
		got, ok := g.Extract(in)
		require.True(t, ok, in)
		require.Equal(t, "type hi", got)
	}

	_, ok := g.Extract("heyjarvis type hi")
	require.False(t, ok)
}

func TestPhraseIsQuoted(t *testing.T) {
	g, err := New("c3.po")
	require.NoError(t, err)

	_, ok := g.Extract("c3xpo type hi")
	require.False(t, ok)
	got, ok := g.Extract("c3 po type hi")
	require.True(t, ok)
	require.Equal(t, "type hi", got)
}

func TestEmptyPhrase(t *testing.T) {
	_, err := New(" ,. ")
	require.ErrorIs(t, err, ErrEmptyPhrase)
}
