// Package dedupe computes stable content hashes so the same event scraped
// twice (or from two sources) lands on one row.
package dedupe

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var squashRe = regexp.MustCompile(`\s+`)

// normalize lowercases and collapses whitespace so cosmetic differences
// between sources do not defeat the hash.
func normalize(s string) string {
	return squashRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}

// ContentHash returns the dedup hash for an event: sha256 over normalized
// title, date, and venue name, pipe-separated.
func ContentHash(title, date, venue string) string {
	h := sha256.Sum256([]byte(normalize(title) + "|" + normalize(date) + "|" + normalize(venue)))
	return hex.EncodeToString(h[:])
}
