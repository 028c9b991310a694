package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/mapview/internal/config"
	"github.com/sells-group/mapview/internal/provider"
	"github.com/sells-group/mapview/internal/session"
	"github.com/sells-group/mapview/internal/viewport"
	"github.com/sells-group/mapview/internal/zone"
)

// buildProvider assembles the record backend from config. When a SQLite
// snapshot is configured alongside a remote backend it becomes the fallback.
func buildProvider(ctx context.Context, cfg *config.Config) (provider.Provider, func(), error) {
	closers := []func(){}
	closeAll := func() {
		for _, fn := range closers {
			fn()
		}
	}

	var snapshot *provider.SQLiteProvider
	if cfg.Provider.SQLitePath != "" {
		p, err := provider.NewSQLite(cfg.Provider.SQLitePath)
		if err != nil {
			return nil, nil, eris.Wrap(err, "open sqlite snapshot")
		}
		if err := p.Migrate(ctx); err != nil {
			p.Close()
			return nil, nil, eris.Wrap(err, "migrate sqlite snapshot")
		}
		snapshot = p
		closers = append(closers, func() { _ = p.Close() })
	}

	switch cfg.Provider.Kind {
	case "sqlite":
		if snapshot == nil {
			closeAll()
			return nil, nil, eris.New("provider.sqlite_path is required for the sqlite provider")
		}
		return snapshot, closeAll, nil

	case "postgres":
		pg, err := provider.NewPostgres(ctx, cfg.Provider.DatabaseURL)
		if err != nil {
			closeAll()
			return nil, nil, eris.Wrap(err, "connect postgres")
		}
		closers = append(closers, pg.Close)
		if snapshot != nil {
			return provider.NewFallback(pg, snapshot), closeAll, nil
		}
		return pg, closeAll, nil

	case "http":
		httpProv := provider.NewHTTP(cfg.Provider.BaseURL, provider.HTTPOptions{
			Timeout: time.Duration(cfg.Provider.TimeoutSecs) * time.Second,
		})
		if snapshot != nil {
			return provider.NewFallback(httpProv, snapshot), closeAll, nil
		}
		return httpProv, closeAll, nil

	default:
		closeAll()
		return nil, nil, eris.Errorf("unknown provider kind %q", cfg.Provider.Kind)
	}
}

// loadZones reads the layer manifest and loads every local shapefile. A
// missing manifest is not fatal; the map just has no overlays.
func loadZones(ctx context.Context, cfg *config.Config) (*zone.Set, map[zone.Kind]bool) {
	visibility := map[zone.Kind]bool{
		zone.KindFlood:       true,
		zone.KindOpportunity: true,
	}

	manifest, err := zone.LoadManifest(cfg.Zones.ManifestPath)
	if err != nil {
		zap.L().Warn("zone manifest not loaded, overlays disabled", zap.Error(err))
		return zone.NewSet(), visibility
	}

	var sources []zone.Source
	for _, layer := range manifest.Layers {
		kind, err := zone.ParseKind(layer.Kind)
		if err != nil {
			continue
		}
		visibility[kind] = layer.DefaultVisible()

		path := layer.Path
		if path == "" {
			// Fetched bundles land under the data dir named after the layer.
			path = filepath.Join(cfg.Zones.DataDir, layer.Name+".shp")
		} else if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.Zones.DataDir, path)
		}

		sources = append(sources, zone.ShapefileSource{
			ZoneKind: kind,
			Path:     path,
			Options: zone.ShapefileOptions{
				Fields: layer.Fields,
				Source: layer.Source,
			},
		})
	}

	return zone.LoadAll(ctx, sources), visibility
}

// buildSession wires a fully configured Session.
func buildSession(ctx context.Context, cfg *config.Config) (*session.Session, func(), error) {
	prov, closeProvider, err := buildProvider(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	zones, visibility := loadZones(ctx, cfg)

	cache := viewport.NewCache(
		viewport.WithExpiration(time.Duration(cfg.Cache.ExpirationMinutes)*time.Minute),
		viewport.WithPadFraction(cfg.Cache.PadFraction),
	)

	sess := session.New(prov,
		session.WithCache(cache),
		session.WithDebounce(time.Duration(cfg.Cache.DebounceMs)*time.Millisecond),
		session.WithFetchTimeout(time.Duration(cfg.Provider.TimeoutSecs)*time.Second),
		session.WithPreloadLimit(cfg.Preload.Limit),
		session.WithClickThreshold(cfg.Selection.ClickThresholdDeg),
		session.WithZones(zones),
	)
	for kind, visible := range visibility {
		sess.SetZoneVisible(kind, visible)
	}

	cleanup := func() {
		sess.Close()
		closeProvider()
	}
	return sess, cleanup, nil
}
