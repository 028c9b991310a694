package provider

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/mapview/internal/model"
	"github.com/sells-group/mapview/internal/viewport"
)

// SQLiteProvider serves records from a local snapshot database. Used for
// offline work and as the import target for spreadsheet ingest.
type SQLiteProvider struct {
	db *sql.DB
}

// NewSQLite opens the snapshot at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "provider: open sqlite")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "provider: exec %s", pragma)
		}
	}
	return &SQLiteProvider{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS locations (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	address    TEXT NOT NULL DEFAULT '',
	category   TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL DEFAULT 'active',
	latitude   REAL,
	longitude  REAL,
	source     TEXT NOT NULL DEFAULT '',
	source_id  TEXT NOT NULL DEFAULT '',
	properties TEXT,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_locations_lat_lon ON locations(latitude, longitude);
CREATE INDEX IF NOT EXISTS idx_locations_source ON locations(source, source_id);
`

// Migrate creates the locations table if it does not exist.
func (p *SQLiteProvider) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "provider: migrate sqlite")
}

func (p *SQLiteProvider) Name() string { return "sqlite" }

// FetchBounds returns records inside bounds. Rows with null coordinates
// never satisfy the BETWEEN predicates.
func (p *SQLiteProvider) FetchBounds(ctx context.Context, bounds viewport.Bounds) ([]model.Location, error) {
	if err := bounds.Validate(); err != nil {
		return nil, eris.Wrap(err, "provider: invalid bounds")
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT id, name, address, category, status, latitude, longitude, source, source_id, properties, updated_at
		FROM locations
		WHERE latitude BETWEEN ? AND ?
		  AND longitude BETWEEN ? AND ?`,
		bounds.South, bounds.North, bounds.West, bounds.East)
	if err != nil {
		return nil, eris.Wrap(err, "provider: query locations")
	}
	defer rows.Close()

	var records []model.Location
	for rows.Next() {
		var loc model.Location
		var props sql.NullString
		if err := rows.Scan(
			&loc.ID, &loc.Name, &loc.Address, &loc.Category, &loc.Status,
			&loc.Latitude, &loc.Longitude, &loc.Source, &loc.SourceID,
			&props, &loc.UpdatedAt,
		); err != nil {
			return nil, eris.Wrap(err, "provider: scan location")
		}
		if props.Valid {
			loc.Properties = []byte(props.String)
		}
		records = append(records, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "provider: iterate locations")
	}
	return records, nil
}

// All returns every record in the snapshot, including rows without
// coordinates.
func (p *SQLiteProvider) All(ctx context.Context) ([]model.Location, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, name, address, category, status, latitude, longitude, source, source_id, properties, updated_at
		FROM locations
		ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "provider: query all locations")
	}
	defer rows.Close()

	var records []model.Location
	for rows.Next() {
		var loc model.Location
		var props sql.NullString
		if err := rows.Scan(
			&loc.ID, &loc.Name, &loc.Address, &loc.Category, &loc.Status,
			&loc.Latitude, &loc.Longitude, &loc.Source, &loc.SourceID,
			&props, &loc.UpdatedAt,
		); err != nil {
			return nil, eris.Wrap(err, "provider: scan location")
		}
		if props.Valid {
			loc.Properties = []byte(props.String)
		}
		records = append(records, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "provider: iterate locations")
	}
	return records, nil
}

// Upsert writes a record into the snapshot, replacing any existing row with
// the same id.
func (p *SQLiteProvider) Upsert(ctx context.Context, loc model.Location) error {
	var props any
	if len(loc.Properties) > 0 {
		props = string(loc.Properties)
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO locations (id, name, address, category, status, latitude, longitude, source, source_id, properties, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			address = excluded.address,
			category = excluded.category,
			status = excluded.status,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			source = excluded.source,
			source_id = excluded.source_id,
			properties = excluded.properties,
			updated_at = excluded.updated_at`,
		loc.ID, loc.Name, loc.Address, loc.Category, loc.Status,
		loc.Latitude, loc.Longitude, loc.Source, loc.SourceID,
		props, loc.UpdatedAt)
	return eris.Wrap(err, "provider: upsert location")
}

// Count returns the number of records in the snapshot.
func (p *SQLiteProvider) Count(ctx context.Context) (int, error) {
	var n int
	err := p.db.QueryRowContext(ctx, `SELECT count(*) FROM locations`).Scan(&n)
	if err != nil {
		return 0, eris.Wrap(err, "provider: count locations")
	}
	return n, nil
}

// Close closes the database.
func (p *SQLiteProvider) Close() error {
	return p.db.Close()
}
