// Package provider abstracts the record backends the viewport cache is
// filled from. Implementations fetch every location inside a bounding box;
// callers treat any returned error as "leave the current data alone".
package provider

import (
	"context"

	"github.com/sells-group/mapview/internal/model"
	"github.com/sells-group/mapview/internal/viewport"
)

// Provider fetches location records for a bounding box.
type Provider interface {
	// Name identifies the provider in logs and stats.
	Name() string

	// FetchBounds returns every record whose coordinates fall inside the
	// given bounds. Records without coordinates may be included; callers
	// filter them before mapping.
	FetchBounds(ctx context.Context, bounds viewport.Bounds) ([]model.Location, error)
}
