package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/citypulse/harvester/internal/model"
)

// SQLiteStore implements Store on a local sqlite file. Used for single-host
// crawls and tests; the schema mirrors the Postgres one with TEXT JSON.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) a sqlite database at path. An empty
// path defaults to harvester.db in the working directory.
func NewSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		path = "harvester.db"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: open %s", path)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS venues (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	name_key   TEXT NOT NULL UNIQUE,
	address    TEXT NOT NULL DEFAULT '',
	city       TEXT NOT NULL DEFAULT '',
	venue_type TEXT NOT NULL DEFAULT '',
	vibes      TEXT NOT NULL DEFAULT '[]',
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
	id           TEXT PRIMARY KEY,
	source_name  TEXT NOT NULL,
	title        TEXT NOT NULL,
	start_time   TIMESTAMP,
	venue_id     TEXT NOT NULL DEFAULT '',
	content_hash TEXT NOT NULL UNIQUE,
	record       TEXT NOT NULL,
	created_at   TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_source ON events(source_name);
CREATE INDEX IF NOT EXISTS idx_events_start_time ON events(start_time);
CREATE INDEX IF NOT EXISTS idx_events_venue ON events(venue_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetOrCreateVenue(ctx context.Context, name, city string) (*model.Venue, error) {
	key := venueKey(name)
	if key == "" {
		return nil, eris.New("sqlite: empty venue name")
	}

	var v model.Venue
	var vibesJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, address, city, venue_type, vibes, created_at FROM venues WHERE name_key = ?`,
		key,
	).Scan(&v.ID, &v.Name, &v.Address, &v.City, &v.VenueType, &vibesJSON, &v.CreatedAt)
	if err == nil {
		_ = json.Unmarshal([]byte(vibesJSON), &v.Vibes)
		return &v, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrap(err, "sqlite: get venue")
	}

	v = model.Venue{
		ID:        uuid.New().String(),
		Name:      name,
		City:      city,
		CreatedAt: time.Now().UTC(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO venues (id, name, name_key, city, created_at) VALUES (?, ?, ?, ?, ?)`,
		v.ID, v.Name, key, v.City, v.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert venue")
	}
	return &v, nil
}

func (s *SQLiteStore) ListVenues(ctx context.Context) ([]model.Venue, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, address, city, venue_type, vibes, created_at FROM venues ORDER BY name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list venues")
	}
	defer rows.Close()

	var venues []model.Venue
	for rows.Next() {
		var v model.Venue
		var vibesJSON string
		if err := rows.Scan(&v.ID, &v.Name, &v.Address, &v.City, &v.VenueType, &vibesJSON, &v.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan venue")
		}
		_ = json.Unmarshal([]byte(vibesJSON), &v.Vibes)
		venues = append(venues, v)
	}
	return venues, eris.Wrap(rows.Err(), "sqlite: list venues rows")
}

func (s *SQLiteStore) UpdateVenueType(ctx context.Context, venueID string, vt model.VenueType) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE venues SET venue_type = ? WHERE id = ?`,
		string(vt), venueID,
	)
	return eris.Wrap(err, "sqlite: update venue type")
}

func (s *SQLiteStore) UpdateVenueVibes(ctx context.Context, venueID string, vibes []string) error {
	vibesJSON, err := json.Marshal(vibes)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal vibes")
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE venues SET vibes = ? WHERE id = ?`,
		string(vibesJSON), venueID,
	)
	return eris.Wrap(err, "sqlite: update venue vibes")
}

func (s *SQLiteStore) InsertEvent(ctx context.Context, ev *model.Event) error {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	recordJSON, err := json.Marshal(ev.Record)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal record")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO events (id, source_name, title, start_time, venue_id, content_hash, record, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (content_hash) DO NOTHING`,
		ev.ID, ev.SourceName, ev.Title, ev.StartTime, ev.VenueID, ev.ContentHash, string(recordJSON), ev.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert event")
}

func (s *SQLiteStore) FindEventByHash(ctx context.Context, contentHash string) (*model.Event, error) {
	var ev model.Event
	var recordJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, source_name, title, start_time, venue_id, content_hash, record, created_at
		 FROM events WHERE content_hash = ?`,
		contentHash,
	).Scan(&ev.ID, &ev.SourceName, &ev.Title, &ev.StartTime, &ev.VenueID, &ev.ContentHash, &recordJSON, &ev.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: find event by hash")
	}
	if err := json.Unmarshal([]byte(recordJSON), &ev.Record); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal record")
	}
	return &ev, nil
}

func (s *SQLiteStore) ListEvents(ctx context.Context, filter EventFilter) ([]model.Event, error) {
	query := `SELECT id, source_name, title, start_time, venue_id, content_hash, record, created_at FROM events`
	var args []any
	var where []string
	if filter.Source != "" {
		where = append(where, `source_name = ?`)
		args = append(args, filter.Source)
	}
	if filter.Since != nil {
		where = append(where, `start_time >= ?`)
		args = append(args, *filter.Since)
	}
	if len(where) > 0 {
		query += ` WHERE ` + where[0]
		if len(where) > 1 {
			query += ` AND ` + where[1]
		}
	}
	query += ` ORDER BY start_time`
	if filter.Limit > 0 {
		query += ` LIMIT ` + strconv.Itoa(filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list events")
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var ev model.Event
		var recordJSON string
		if err := rows.Scan(&ev.ID, &ev.SourceName, &ev.Title, &ev.StartTime, &ev.VenueID, &ev.ContentHash, &recordJSON, &ev.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan event")
		}
		if err := json.Unmarshal([]byte(recordJSON), &ev.Record); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal record")
		}
		events = append(events, ev)
	}
	return events, eris.Wrap(rows.Err(), "sqlite: list events rows")
}

func (s *SQLiteStore) DeleteEvent(ctx context.Context, eventID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, eventID)
	return eris.Wrap(err, "sqlite: delete event")
}
