package main

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/mapview/internal/fetcher"
	"github.com/sells-group/mapview/internal/zone"
)

var zonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "Manage zone overlay data",
}

var zonesFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download and extract the zone bundles listed in the manifest",
	RunE: func(cmd *cobra.Command, args []string) error {
		manifest, err := zone.LoadManifest(cfg.Zones.ManifestPath)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(cfg.Zones.DataDir, 0o755); err != nil {
			return eris.Wrap(err, "create data dir")
		}

		for _, layer := range manifest.Layers {
			if layer.URL == "" {
				continue
			}
			if err := fetchLayer(cmd.Context(), layer); err != nil {
				zap.L().Error("layer fetch failed",
					zap.String("layer", layer.Name),
					zap.Error(err),
				)
				continue
			}
			zap.L().Info("layer fetched", zap.String("layer", layer.Name))
		}
		return nil
	},
}

var zonesStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show loaded feature counts per overlay",
	RunE: func(cmd *cobra.Command, args []string) error {
		set, _ := loadZones(cmd.Context(), cfg)
		for _, kind := range zone.Kinds {
			cmd.Printf("%s: %d features\n", kind, len(set.Features(kind)))
		}
		return nil
	},
}

// fetchLayer downloads one bundle and extracts it into the data dir.
func fetchLayer(ctx context.Context, layer zone.Layer) error {
	u, err := url.Parse(layer.URL)
	if err != nil {
		return eris.Wrapf(err, "parse url for layer %s", layer.Name)
	}

	var dl fetcher.Fetcher
	switch u.Scheme {
	case "ftp":
		dl = fetcher.NewFTPFetcher(fetcher.FTPOptions{})
	case "http", "https":
		dl = fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			RateLimiters: fetcher.DefaultRateLimiters(),
		})
	default:
		return eris.Errorf("unsupported scheme %q for layer %s", u.Scheme, layer.Name)
	}

	archive := filepath.Join(cfg.Zones.DataDir, layer.Name+".zip")
	if _, err := dl.DownloadToFile(ctx, layer.URL, archive); err != nil {
		return err
	}
	defer os.Remove(archive)

	extracted, err := fetcher.ExtractZIP(archive, cfg.Zones.DataDir)
	if err != nil {
		return err
	}

	// The loader expects <name>.shp; rename the bundle's shapefile parts.
	for _, path := range extracted {
		ext := strings.ToLower(filepath.Ext(path))
		switch ext {
		case ".shp", ".shx", ".dbf", ".prj":
			dest := filepath.Join(cfg.Zones.DataDir, layer.Name+ext)
			if path != dest {
				if err := os.Rename(path, dest); err != nil {
					return eris.Wrapf(err, "rename %s", path)
				}
			}
		}
	}
	return nil
}

func init() {
	zonesCmd.AddCommand(zonesFetchCmd)
	zonesCmd.AddCommand(zonesStatusCmd)
	rootCmd.AddCommand(zonesCmd)
}
