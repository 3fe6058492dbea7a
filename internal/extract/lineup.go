package extract

import (
	"regexp"
	"strings"
)

// lineupSeparators are patterns that split a lineup string into individual
// act names: "A, B & C", "A / B", "A x B", "A w/ B", "A feat. B".
var lineupSeparators = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s*,\s*`),
	regexp.MustCompile(`(?i)\s+&\s+`),
	regexp.MustCompile(`(?i)\s+and\s+`),
	regexp.MustCompile(`\s*/\s*`),
	regexp.MustCompile(`(?i)\s+x\s+`),
	regexp.MustCompile(`\s*\+\s*`),
	regexp.MustCompile(`(?i)\s+w/\s+`),
	regexp.MustCompile(`(?i)\s+feat\.?\s+`),
	regexp.MustCompile(`(?i)\s+featuring\s+`),
	regexp.MustCompile(`(?i)\s+with\s+`),
	regexp.MustCompile(`\s*[·•|]\s*`),
}

// SplitLineup splits a free-text lineup into individual artist names.
func SplitLineup(text string) []string {
	parts := []string{strings.TrimSpace(text)}
	for _, sep := range lineupSeparators {
		var next []string
		for _, p := range parts {
			next = append(next, sep.Split(p, -1)...)
		}
		parts = next
	}
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// DedupArtists removes duplicate names, comparing case- and
// whitespace-insensitively, preserving first-seen order.
func DedupArtists(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, n := range names {
		key := artistKey(n)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, strings.TrimSpace(n))
	}
	return out
}

var spaceRe = regexp.MustCompile(`\s+`)

func artistKey(name string) string {
	return spaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), " ")
}
