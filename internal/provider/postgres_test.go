package provider

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/mapview/internal/model"
)

// newMockPostgresProvider creates a PostgresProvider backed by pgxmock.
func newMockPostgresProvider(t *testing.T) (*PostgresProvider, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return &PostgresProvider{pool: mock}, mock
}

func TestPostgresProvider_FetchBounds(t *testing.T) {
	p, mock := newMockPostgresProvider(t)
	now := time.Now().UTC()

	rows := pgxmock.NewRows(locationColumns).
		AddRow("loc-1", "Union Station", "1701 Wynkoop St", "transit", model.StatusActive,
			ptr(39.753), ptr(-105.0), "import", "src-1", []byte(`{"floors":3}`), now).
		AddRow("loc-2", "Warehouse", "", "", model.StatusPending,
			(*float64)(nil), (*float64)(nil), "", "", []byte(nil), now)

	mock.ExpectQuery(`SELECT id, name, address, category, status, latitude, longitude`).
		WithArgs(denverBounds.South, denverBounds.North, denverBounds.West, denverBounds.East).
		WillReturnRows(rows)

	records, err := p.FetchBounds(context.Background(), denverBounds)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Union Station", records[0].Name)
	assert.True(t, records[0].Mappable())
	assert.False(t, records[1].Mappable())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProvider_FetchBounds_QueryError(t *testing.T) {
	p, mock := newMockPostgresProvider(t)

	mock.ExpectQuery(`SELECT id, name`).
		WithArgs(denverBounds.South, denverBounds.North, denverBounds.West, denverBounds.East).
		WillReturnError(eris.New("connection lost"))

	_, err := p.FetchBounds(context.Background(), denverBounds)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query locations")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProvider_Name(t *testing.T) {
	p, _ := newMockPostgresProvider(t)
	assert.Equal(t, "postgres", p.Name())
}

func TestPostgresProvider_UpsertLocations(t *testing.T) {
	p, mock := newMockPostgresProvider(t)
	now := time.Now().UTC()

	records := []model.Location{
		{ID: "loc-1", Name: "Union Station", Status: model.StatusActive,
			Latitude: ptr(39.753), Longitude: ptr(-105.0), UpdatedAt: now},
		{ID: "loc-2", Name: "Warehouse", Status: model.StatusPending, UpdatedAt: now},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE "_tmp_upsert_locations"`).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_locations"}, locationColumns).
		WillReturnResult(2)
	mock.ExpectExec(`INSERT INTO "locations" .* ON CONFLICT \("id"\) DO UPDATE SET`).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	n, err := p.UpsertLocations(context.Background(), records)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProvider_UpsertLocations_Empty(t *testing.T) {
	p, mock := newMockPostgresProvider(t)

	n, err := p.UpsertLocations(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
