// Package dateutil parses the date formats that show up on event listings:
// ISO timestamps from structured data and loose human text like
// "Sat, Jan 4" from scraped pages.
package dateutil

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/rotisserie/eris"
)

// ordinalRe strips "1st"/"2nd"/"3rd"/"4th" suffixes that defeat parsers.
var ordinalRe = regexp.MustCompile(`(?i)\b(\d{1,2})(st|nd|rd|th)\b`)

// weekdayPrefixRe strips a leading weekday ("Sat, " / "Saturday ") which
// dateparse mishandles when no year follows.
var weekdayPrefixRe = regexp.MustCompile(`(?i)^(?:mon|tues?|wed(?:nes)?|thu(?:rs)?|fri|sat(?:ur)?|sun)(?:day)?\.?,?\s+`)

// ParseHumanDate parses a human-written event date. Dates with no year are
// resolved to the next occurrence on or after ref.
func ParseHumanDate(text string, ref time.Time) (time.Time, error) {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return time.Time{}, eris.New("dateutil: empty date")
	}
	cleaned = ordinalRe.ReplaceAllString(cleaned, "$1")
	cleaned = weekdayPrefixRe.ReplaceAllString(cleaned, "")

	if t, err := dateparse.ParseAny(cleaned); err == nil {
		// dateparse defaults a missing year to year 0; roll those forward.
		if t.Year() == 0 {
			return nextOccurrence(t.Month(), t.Day(), ref), nil
		}
		return t, nil
	}

	// "Jan 4" style without year.
	for _, layout := range []string{"Jan 2", "January 2", "Jan. 2", "1/2"} {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return nextOccurrence(t.Month(), t.Day(), ref), nil
		}
	}

	return time.Time{}, eris.Errorf("dateutil: unparseable date %q", text)
}

// nextOccurrence resolves a month/day with no year to the next calendar
// occurrence on or after ref. Listings never advertise the past.
func nextOccurrence(month time.Month, day int, ref time.Time) time.Time {
	candidate := time.Date(ref.Year(), month, day, 0, 0, 0, 0, ref.Location())
	if candidate.Before(ref.Truncate(24 * time.Hour)) {
		candidate = candidate.AddDate(1, 0, 0)
	}
	return candidate
}
