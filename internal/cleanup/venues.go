// Package cleanup holds the data-hygiene passes run against an existing
// database: venue type classification, vibe taxonomy normalization, and the
// festival-contamination audit.
package cleanup

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/citypulse/harvester/internal/model"
	"github.com/citypulse/harvester/internal/store"
)

// venueTypeRules maps name keywords to a venue type. First match wins, so
// more specific buckets come before broader ones.
var venueTypeRules = []struct {
	keywords []string
	vt       model.VenueType
}{
	{[]string{"theater", "theatre", "playhouse", "opera"}, model.VenueTypeTheater},
	{[]string{"gallery", "museum", "art center", "arts center"}, model.VenueTypeGallery},
	{[]string{"park", "garden", "amphitheater", "amphitheatre", "plaza", "pavilion"}, model.VenueTypeOutdoor},
	{[]string{"library", "church", "community", "rec center", "recreation"}, model.VenueTypeCommunity},
	{[]string{"restaurant", "cafe", "café", "kitchen", "grill", "bistro", "eatery"}, model.VenueTypeRestaurant},
	{[]string{"bar", "pub", "tavern", "brewery", "brewing", "taproom", "saloon", "lounge"}, model.VenueTypeBar},
	{[]string{"hall", "ballroom", "club", "stage", "records", "music"}, model.VenueTypeMusic},
}

// ClassifyVenue assigns a venue type from name keywords.
func ClassifyVenue(name string) model.VenueType {
	lower := strings.ToLower(name)
	for _, rule := range venueTypeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.vt
			}
		}
	}
	return model.VenueTypeOther
}

// ClassifyVenues assigns a type to every venue that does not have one yet.
// Returns the number of venues updated.
func ClassifyVenues(ctx context.Context, st store.Store) (int, error) {
	venues, err := st.ListVenues(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, v := range venues {
		if v.VenueType != "" {
			continue
		}
		vt := ClassifyVenue(v.Name)
		if err := st.UpdateVenueType(ctx, v.ID, vt); err != nil {
			return updated, err
		}
		zap.L().Info("cleanup: classified venue",
			zap.String("venue", v.Name),
			zap.String("type", string(vt)))
		updated++
	}
	return updated, nil
}
