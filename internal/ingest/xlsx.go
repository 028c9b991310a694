// Package ingest imports location spreadsheets into the SQLite snapshot.
// Rows with blank or unparsable coordinates are kept without coordinates so
// they stay searchable; they just never render as markers.
package ingest

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/mapview/internal/model"
	"github.com/sells-group/mapview/internal/provider"
)

// Options configures the spreadsheet importer.
type Options struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
	Source     string // recorded on every imported row
}

// Summary reports the outcome of an import.
type Summary struct {
	Imported   int
	Unmappable int
	Skipped    int
}

// Known header names, lowercased. The importer matches loosely so exports
// from different systems work without reshaping.
var headerAliases = map[string]string{
	"id":        "id",
	"name":      "name",
	"address":   "address",
	"category":  "category",
	"type":      "category",
	"status":    "status",
	"latitude":  "latitude",
	"lat":       "latitude",
	"longitude": "longitude",
	"lon":       "longitude",
	"lng":       "longitude",
	"source id": "source_id",
	"source_id": "source_id",
}

// ImportXLSX reads the spreadsheet at path and upserts every row into the
// snapshot. The first row must be a header row.
func ImportXLSX(ctx context.Context, path string, target *provider.SQLiteProvider, opts Options) (Summary, error) {
	var summary Summary

	f, err := xlsx.OpenFile(path)
	if err != nil {
		return summary, eris.Wrap(err, "ingest: open spreadsheet")
	}
	sheet, err := getSheet(f, opts)
	if err != nil {
		return summary, err
	}
	if len(sheet.Rows) == 0 {
		return summary, eris.New("ingest: spreadsheet is empty")
	}

	columns := mapHeader(sheet.Rows[0])
	if _, ok := columns["name"]; !ok {
		return summary, eris.New("ingest: header row has no name column")
	}

	now := time.Now().UTC()
	for i, row := range sheet.Rows[1:] {
		if ctx.Err() != nil {
			return summary, eris.Wrap(ctx.Err(), "ingest: cancelled")
		}

		loc, ok := rowToLocation(row, columns, opts.Source, now)
		if !ok {
			summary.Skipped++
			continue
		}
		if !loc.Mappable() {
			summary.Unmappable++
			zap.L().Debug("imported row without coordinates",
				zap.Int("row", i+2),
				zap.String("name", loc.Name),
			)
		}
		if err := target.Upsert(ctx, loc); err != nil {
			return summary, eris.Wrapf(err, "ingest: row %d", i+2)
		}
		summary.Imported++
	}

	zap.L().Info("spreadsheet imported",
		zap.String("path", path),
		zap.Int("imported", summary.Imported),
		zap.Int("unmappable", summary.Unmappable),
		zap.Int("skipped", summary.Skipped),
	)
	return summary, nil
}

func getSheet(f *xlsx.File, opts Options) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("ingest: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}
	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("ingest: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}
	return f.Sheets[opts.SheetIndex], nil
}

// mapHeader maps canonical column names to cell indexes.
func mapHeader(row *xlsx.Row) map[string]int {
	columns := make(map[string]int)
	for j, cell := range row.Cells {
		key := strings.ToLower(strings.TrimSpace(cell.String()))
		if canonical, ok := headerAliases[key]; ok {
			columns[canonical] = j
		}
	}
	return columns
}

func rowToLocation(row *xlsx.Row, columns map[string]int, source string, now time.Time) (model.Location, bool) {
	get := func(name string) string {
		j, ok := columns[name]
		if !ok || j >= len(row.Cells) {
			return ""
		}
		return strings.TrimSpace(row.Cells[j].String())
	}

	name := get("name")
	if name == "" {
		return model.Location{}, false
	}

	loc := model.Location{
		ID:        get("id"),
		Name:      name,
		Address:   get("address"),
		Category:  get("category"),
		Status:    parseStatus(get("status")),
		Source:    source,
		SourceID:  get("source_id"),
		UpdatedAt: now,
	}
	if loc.ID == "" {
		loc.ID = uuid.New().String()
	}

	lat, latOK := parseCoord(get("latitude"), 90)
	lon, lonOK := parseCoord(get("longitude"), 180)
	if latOK && lonOK {
		loc.Latitude = &lat
		loc.Longitude = &lon
	}

	return loc, true
}

func parseStatus(s string) model.LocationStatus {
	switch model.LocationStatus(strings.ToLower(s)) {
	case model.StatusPending:
		return model.StatusPending
	case model.StatusArchived:
		return model.StatusArchived
	case model.StatusDemolished:
		return model.StatusDemolished
	default:
		return model.StatusActive
	}
}

func parseCoord(s string, limit float64) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < -limit || v > limit {
		return 0, false
	}
	return v, true
}
