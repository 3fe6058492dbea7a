package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitLineup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"commas and ampersand", "Quartet One, Solo Act & The Trio", []string{"Quartet One", "Solo Act", "The Trio"}},
		{"and word", "A and B", []string{"A", "B"}},
		{"slash", "A / B", []string{"A", "B"}},
		{"with", "Headliner with Opener", []string{"Headliner", "Opener"}},
		{"w slash", "Headliner w/ Opener", []string{"Headliner", "Opener"}},
		{"feat", "DJ One feat. MC Two", []string{"DJ One", "MC Two"}},
		{"plus", "A + B", []string{"A", "B"}},
		{"dots", "A · B • C", []string{"A", "B", "C"}},
		{"single act", "Lone Act", []string{"Lone Act"}},
		{"empty", "   ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitLineup(tt.in))
		})
	}
}

func TestDedupArtists(t *testing.T) {
	got := DedupArtists([]string{"Miles Davis", "miles  davis", " Trane ", "Trane", ""})
	assert.Equal(t, []string{"Miles Davis", "Trane"}, got)
}
