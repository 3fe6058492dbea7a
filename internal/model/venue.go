package model

import "time"

// VenueType buckets venues for downstream filtering. Assigned by the
// cleanup classifier, not by extraction.
type VenueType string

const (
	VenueTypeMusic      VenueType = "music_venue"
	VenueTypeBar        VenueType = "bar"
	VenueTypeTheater    VenueType = "theater"
	VenueTypeGallery    VenueType = "gallery"
	VenueTypeOutdoor    VenueType = "outdoor"
	VenueTypeCommunity  VenueType = "community"
	VenueTypeRestaurant VenueType = "restaurant"
	VenueTypeOther      VenueType = "other"
)

// Venue is one persisted venue row. Venues are shared across sources and
// matched by normalized name.
type Venue struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	City      string    `json:"city,omitempty"`
	VenueType VenueType `json:"venue_type,omitempty"`
	Vibes     []string  `json:"vibes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
