package provider

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/mapview/internal/db"
	"github.com/sells-group/mapview/internal/model"
	"github.com/sells-group/mapview/internal/viewport"
)

// PostgresProvider serves records from a locations table.
type PostgresProvider struct {
	pool db.Pool
}

const locationsByBoundsQuery = `
SELECT id, name, address, category, status, latitude, longitude, source, source_id, properties, updated_at
FROM locations
WHERE latitude BETWEEN $1 AND $2
  AND longitude BETWEEN $3 AND $4`

// NewPostgres connects to the database and verifies the connection.
func NewPostgres(ctx context.Context, connString string) (*PostgresProvider, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "provider: parse postgres config")
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "provider: create postgres pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "provider: ping postgres")
	}
	return &PostgresProvider{pool: pool}, nil
}

func (p *PostgresProvider) Name() string { return "postgres" }

// FetchBounds returns records whose stored coordinates fall inside bounds.
// Records with null coordinates never match the BETWEEN predicates, so only
// mappable rows come back.
func (p *PostgresProvider) FetchBounds(ctx context.Context, bounds viewport.Bounds) ([]model.Location, error) {
	if err := bounds.Validate(); err != nil {
		return nil, eris.Wrap(err, "provider: invalid bounds")
	}

	rows, err := p.pool.Query(ctx, locationsByBoundsQuery,
		bounds.South, bounds.North, bounds.West, bounds.East)
	if err != nil {
		return nil, eris.Wrap(err, "provider: query locations")
	}
	defer rows.Close()

	var records []model.Location
	for rows.Next() {
		var loc model.Location
		if err := rows.Scan(
			&loc.ID, &loc.Name, &loc.Address, &loc.Category, &loc.Status,
			&loc.Latitude, &loc.Longitude, &loc.Source, &loc.SourceID,
			&loc.Properties, &loc.UpdatedAt,
		); err != nil {
			return nil, eris.Wrap(err, "provider: scan location")
		}
		records = append(records, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "provider: iterate locations")
	}
	return records, nil
}

// locationColumns orders the columns used by both FetchBounds and
// UpsertLocations.
var locationColumns = []string{
	"id", "name", "address", "category", "status",
	"latitude", "longitude", "source", "source_id", "properties", "updated_at",
}

// UpsertLocations bulk-writes records into the locations table, replacing
// rows that share an id.
func (p *PostgresProvider) UpsertLocations(ctx context.Context, records []model.Location) (int64, error) {
	rows := make([][]any, 0, len(records))
	for _, loc := range records {
		rows = append(rows, []any{
			loc.ID, loc.Name, loc.Address, loc.Category, loc.Status,
			loc.Latitude, loc.Longitude, loc.Source, loc.SourceID,
			loc.Properties, loc.UpdatedAt,
		})
	}

	n, err := db.BulkUpsert(ctx, p.pool, db.UpsertConfig{
		Table:        "locations",
		Columns:      locationColumns,
		ConflictKeys: []string{"id"},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "provider: upsert locations")
	}
	return n, nil
}

// Close releases the connection pool.
func (p *PostgresProvider) Close() {
	p.pool.Close()
}
