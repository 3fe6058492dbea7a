// Package store persists normalized events and venues. Two backends: pgx
// for Postgres, modernc sqlite for local runs.
package store

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/citypulse/harvester/internal/config"
	"github.com/citypulse/harvester/internal/model"
)

// EventFilter specifies criteria for listing events.
type EventFilter struct {
	Source string     `json:"source,omitempty"`
	Since  *time.Time `json:"since,omitempty"`
	Limit  int        `json:"limit,omitempty"`
}

// Store defines the persistence interface for the crawler fleet.
type Store interface {
	// Venues
	GetOrCreateVenue(ctx context.Context, name, city string) (*model.Venue, error)
	ListVenues(ctx context.Context) ([]model.Venue, error)
	UpdateVenueType(ctx context.Context, venueID string, vt model.VenueType) error
	UpdateVenueVibes(ctx context.Context, venueID string, vibes []string) error

	// Events
	InsertEvent(ctx context.Context, ev *model.Event) error
	FindEventByHash(ctx context.Context, contentHash string) (*model.Event, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]model.Event, error)
	DeleteEvent(ctx context.Context, eventID string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open picks the backend from config.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	case "sqlite", "":
		return NewSQLite(cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}

var venueKeyRe = regexp.MustCompile(`\s+`)

// venueKey normalizes a venue name for matching across sources.
func venueKey(name string) string {
	return venueKeyRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), " ")
}
