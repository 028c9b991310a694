package fetcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFTPURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantHost string
		wantPath string
		wantErr  bool
	}{
		{"default port", "ftp://ftp2.census.gov/geo/tiger/TIGER2024/TRACT/tl_2024_08_tract.zip", "ftp2.census.gov:21", "/geo/tiger/TIGER2024/TRACT/tl_2024_08_tract.zip", false},
		{"explicit port", "ftp://mirror.example.com:2121/zones/flood.zip", "mirror.example.com:2121", "/zones/flood.zip", false},
		{"wrong scheme", "https://example.com/zones.zip", "", "", true},
		{"empty path", "ftp://example.com", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, path, err := parseFTPURL(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, host)
			assert.Equal(t, tt.wantPath, path)
		})
	}
}

func TestNewFTPFetcherDefaults(t *testing.T) {
	f := NewFTPFetcher(FTPOptions{})
	assert.NotZero(t, f.opts.Timeout)
}
