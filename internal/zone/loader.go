package zone

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Source produces the features for one overlay category.
type Source interface {
	Kind() Kind
	Load(ctx context.Context) ([]Feature, error)
}

// ShapefileSource loads a category from a local shapefile.
type ShapefileSource struct {
	ZoneKind Kind
	Path     string
	Options  ShapefileOptions
}

// Kind implements Source.
func (s ShapefileSource) Kind() Kind { return s.ZoneKind }

// Load implements Source.
func (s ShapefileSource) Load(_ context.Context) ([]Feature, error) {
	return LoadShapefile(s.Path, s.ZoneKind, s.Options)
}

// LoadAll loads every source concurrently into a Set. A category that fails
// degrades to "layer not shown" with a warning; LoadAll itself never fails.
func LoadAll(ctx context.Context, sources []Source) *Set {
	set := NewSet()

	type loaded struct {
		kind     Kind
		features []Feature
	}
	results := make([]loaded, len(sources))

	g, gCtx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			features, err := src.Load(gCtx)
			if err != nil {
				zap.L().Warn("zone: layer failed to load, hiding it",
					zap.String("kind", string(src.Kind())),
					zap.Error(err),
				)
				return nil
			}
			results[i] = loaded{kind: src.Kind(), features: features}
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		if len(r.features) > 0 {
			set.Put(r.kind, append(set.Features(r.kind), r.features...))
		}
	}

	for _, kind := range Kinds {
		zap.L().Info("zone: layer loaded",
			zap.String("kind", string(kind)),
			zap.Int("features", len(set.Features(kind))),
		)
	}
	return set
}
