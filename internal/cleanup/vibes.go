package cleanup

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/citypulse/harvester/internal/store"
)

// vibeAliases folds the spelling variants that accumulated across sources
// into one canonical tag each.
var vibeAliases = map[string]string{
	"live-music":     "live music",
	"livemusic":      "live music",
	"open-mic":       "open mic",
	"openmic":        "open mic",
	"family":         "family friendly",
	"kid friendly":   "family friendly",
	"kid-friendly":   "family friendly",
	"kids":           "family friendly",
	"21+":            "twenty one plus",
	"21 plus":        "twenty one plus",
	"free admission": "free",
	"no cover":       "free",
	"outdoors":       "outdoor",
	"al fresco":      "outdoor",
	"dj set":         "dj",
	"djs":            "dj",
}

var vibeCaser = cases.Lower(language.AmericanEnglish)

// NormalizeVibe maps a raw vibe tag to its canonical lowercase form.
func NormalizeVibe(raw string) string {
	tag := strings.TrimSpace(vibeCaser.String(raw))
	tag = strings.Trim(tag, ".,;#")
	if canonical, ok := vibeAliases[tag]; ok {
		return canonical
	}
	return tag
}

// NormalizeVibes canonicalizes and dedups a vibe list, sorted for stable
// storage. Empty tags are dropped.
func NormalizeVibes(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	var out []string
	for _, r := range raw {
		tag := NormalizeVibe(r)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// NormalizeVenueVibes rewrites every venue's vibe list into canonical form.
// Returns the number of venues changed.
func NormalizeVenueVibes(ctx context.Context, st store.Store) (int, error) {
	venues, err := st.ListVenues(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, v := range venues {
		if len(v.Vibes) == 0 {
			continue
		}
		normalized := NormalizeVibes(v.Vibes)
		if equalStrings(normalized, v.Vibes) {
			continue
		}
		if err := st.UpdateVenueVibes(ctx, v.ID, normalized); err != nil {
			return updated, err
		}
		zap.L().Info("cleanup: normalized vibes",
			zap.String("venue", v.Name),
			zap.Strings("vibes", normalized))
		updated++
	}
	return updated, nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
