package cleanup

import (
	"context"
	"regexp"
	"strings"

	"github.com/citypulse/harvester/internal/store"
)

// festivalRe flags umbrella-festival titles. Festival aggregator pages leak
// dozens of sub-events under one title, contaminating per-venue listings.
var festivalRe = regexp.MustCompile(`(?i)\b(festival|fest|block party|art walk|crawl)\b`)

// FestivalHit is one flagged event from the audit.
type FestivalHit struct {
	EventID    string `json:"event_id"`
	Source     string `json:"source"`
	Title      string `json:"title"`
	Duplicates int    `json:"duplicates"`
}

// AuditFestivals scans stored events for umbrella-festival titles and counts
// how many rows share each flagged title across sources. It only reports;
// deletion stays a human decision.
func AuditFestivals(ctx context.Context, st store.Store) ([]FestivalHit, error) {
	events, err := st.ListEvents(ctx, store.EventFilter{})
	if err != nil {
		return nil, err
	}

	titleCounts := make(map[string]int, len(events))
	for _, ev := range events {
		titleCounts[strings.ToLower(ev.Title)]++
	}

	var hits []FestivalHit
	for _, ev := range events {
		if !festivalRe.MatchString(ev.Title) {
			continue
		}
		hits = append(hits, FestivalHit{
			EventID:    ev.ID,
			Source:     ev.SourceName,
			Title:      ev.Title,
			Duplicates: titleCounts[strings.ToLower(ev.Title)],
		})
	}
	return hits, nil
}

// IsFestivalTitle reports whether a title looks like an umbrella festival
// rather than a single event.
func IsFestivalTitle(title string) bool {
	return festivalRe.MatchString(title)
}
