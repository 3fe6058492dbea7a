package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/citypulse/harvester/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock satisfies it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool. Tests inject pgxmock here.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS venues (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	name_key   TEXT NOT NULL UNIQUE,
	address    TEXT,
	city       TEXT,
	venue_type TEXT,
	vibes      JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS events (
	id           TEXT PRIMARY KEY,
	source_name  TEXT NOT NULL,
	title        TEXT NOT NULL,
	start_time   TIMESTAMPTZ,
	venue_id     TEXT REFERENCES venues(id),
	content_hash TEXT NOT NULL UNIQUE,
	record       JSONB NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_events_source ON events(source_name);
CREATE INDEX IF NOT EXISTS idx_events_start_time ON events(start_time);
CREATE INDEX IF NOT EXISTS idx_events_venue ON events(venue_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) GetOrCreateVenue(ctx context.Context, name, city string) (*model.Venue, error) {
	key := venueKey(name)
	if key == "" {
		return nil, eris.New("postgres: empty venue name")
	}

	var v model.Venue
	var vibesJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, COALESCE(address, ''), COALESCE(city, ''), COALESCE(venue_type, ''), vibes, created_at FROM venues WHERE name_key = $1`,
		key,
	).Scan(&v.ID, &v.Name, &v.Address, &v.City, &v.VenueType, &vibesJSON, &v.CreatedAt)
	if err == nil {
		if len(vibesJSON) > 0 {
			_ = json.Unmarshal(vibesJSON, &v.Vibes)
		}
		return &v, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrap(err, "postgres: get venue")
	}

	v = model.Venue{
		ID:        uuid.New().String(),
		Name:      name,
		City:      city,
		CreatedAt: time.Now().UTC(),
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO venues (id, name, name_key, address, city, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		v.ID, v.Name, key, v.Address, v.City, v.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert venue")
	}
	return &v, nil
}

func (s *PostgresStore) ListVenues(ctx context.Context) ([]model.Venue, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, COALESCE(address, ''), COALESCE(city, ''), COALESCE(venue_type, ''), vibes, created_at FROM venues ORDER BY name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list venues")
	}
	defer rows.Close()

	var venues []model.Venue
	for rows.Next() {
		var v model.Venue
		var vibesJSON []byte
		if err := rows.Scan(&v.ID, &v.Name, &v.Address, &v.City, &v.VenueType, &vibesJSON, &v.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan venue")
		}
		if len(vibesJSON) > 0 {
			_ = json.Unmarshal(vibesJSON, &v.Vibes)
		}
		venues = append(venues, v)
	}
	return venues, eris.Wrap(rows.Err(), "postgres: list venues rows")
}

func (s *PostgresStore) UpdateVenueType(ctx context.Context, venueID string, vt model.VenueType) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE venues SET venue_type = $1 WHERE id = $2`,
		string(vt), venueID,
	)
	return eris.Wrap(err, "postgres: update venue type")
}

func (s *PostgresStore) UpdateVenueVibes(ctx context.Context, venueID string, vibes []string) error {
	vibesJSON, err := json.Marshal(vibes)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal vibes")
	}
	_, err = s.pool.Exec(ctx,
		`UPDATE venues SET vibes = $1 WHERE id = $2`,
		vibesJSON, venueID,
	)
	return eris.Wrap(err, "postgres: update venue vibes")
}

func (s *PostgresStore) InsertEvent(ctx context.Context, ev *model.Event) error {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	recordJSON, err := json.Marshal(ev.Record)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal record")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO events (id, source_name, title, start_time, venue_id, content_hash, record, created_at)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8)
		 ON CONFLICT (content_hash) DO NOTHING`,
		ev.ID, ev.SourceName, ev.Title, ev.StartTime, ev.VenueID, ev.ContentHash, recordJSON, ev.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert event")
}

func (s *PostgresStore) FindEventByHash(ctx context.Context, contentHash string) (*model.Event, error) {
	var ev model.Event
	var recordJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT id, source_name, title, start_time, COALESCE(venue_id, ''), content_hash, record, created_at
		 FROM events WHERE content_hash = $1`,
		contentHash,
	).Scan(&ev.ID, &ev.SourceName, &ev.Title, &ev.StartTime, &ev.VenueID, &ev.ContentHash, &recordJSON, &ev.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: find event by hash")
	}
	if err := json.Unmarshal(recordJSON, &ev.Record); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal record")
	}
	return &ev, nil
}

func (s *PostgresStore) ListEvents(ctx context.Context, filter EventFilter) ([]model.Event, error) {
	query := `SELECT id, source_name, title, start_time, COALESCE(venue_id, ''), content_hash, record, created_at FROM events`
	var args []any
	var where []string
	if filter.Source != "" {
		args = append(args, filter.Source)
		where = append(where, `source_name = $1`)
	}
	if filter.Since != nil {
		args = append(args, *filter.Since)
		if len(args) == 1 {
			where = append(where, `start_time >= $1`)
		} else {
			where = append(where, `start_time >= $2`)
		}
	}
	if len(where) > 0 {
		query += ` WHERE ` + where[0]
		if len(where) > 1 {
			query += ` AND ` + where[1]
		}
	}
	query += ` ORDER BY start_time NULLS LAST`
	if filter.Limit > 0 {
		query += ` LIMIT ` + strconv.Itoa(filter.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list events")
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var ev model.Event
		var recordJSON []byte
		if err := rows.Scan(&ev.ID, &ev.SourceName, &ev.Title, &ev.StartTime, &ev.VenueID, &ev.ContentHash, &recordJSON, &ev.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan event")
		}
		if err := json.Unmarshal(recordJSON, &ev.Record); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal record")
		}
		events = append(events, ev)
	}
	return events, eris.Wrap(rows.Err(), "postgres: list events rows")
}

func (s *PostgresStore) DeleteEvent(ctx context.Context, eventID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, eventID)
	return eris.Wrap(err, "postgres: delete event")
}
